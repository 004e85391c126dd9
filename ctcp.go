// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"runtime"
	"strings"
	"sync"
	"time"
)

// ctcpDelim is the prefix and suffix byte CTCP payloads are wrapped in.
const ctcpDelim byte = 0x01

// CTCPEvent is the decoded form of a CTCP-wrapped PRIVMSG/NOTICE payload.
type CTCPEvent struct {
	Nick    string
	Command string
	Text    string
	Reply   bool // true if delivered via NOTICE (a reply to our own query)
}

// isCTCP reports whether text is wrapped in ctcpDelim on both ends and long
// enough to contain at least a one-character command, per §4.5's PRIVMSG
// and NOTICE bullet ("if payload starts and ends with U+0001").
func isCTCP(text string) bool {
	return len(text) >= 3 && text[0] == ctcpDelim && text[len(text)-1] == ctcpDelim
}

// decodeCTCP unwraps a CTCP payload into a command/text pair. f.Command is
// expected to already be "privmsg" or "notice".
func decodeCTCP(f Frame) *CTCPEvent {
	if len(f.Args) != 2 || !isCTCP(f.Args[1]) {
		return nil
	}

	body := f.Args[1][1 : len(f.Args[1])-1]

	sp := strings.IndexByte(body, ' ')
	if sp < 0 {
		return &CTCPEvent{Nick: f.Nick, Command: strings.ToUpper(body), Reply: f.Command == "notice"}
	}

	return &CTCPEvent{
		Nick:    f.Nick,
		Command: strings.ToUpper(body[:sp]),
		Text:    body[sp+1:],
		Reply:   f.Command == "notice",
	}
}

// encodeCTCPRaw wraps cmd (and optional text) in CTCP delimiters.
func encodeCTCPRaw(cmd, text string) string {
	if cmd == "" {
		return ""
	}

	out := string(ctcpDelim) + cmd
	if text != "" {
		out += " " + text
	}
	return out + string(ctcpDelim)
}

// CTCPHandler responds to a decoded CTCP query or reply.
type CTCPHandler func(c *Client, ctcp CTCPEvent)

// CTCP dispatches incoming CTCP queries to registered handlers, falling back
// to a small set of default responders (PING, VERSION, TIME, SOURCE).
type CTCP struct {
	mu       sync.RWMutex
	handlers map[string]CTCPHandler
}

func newCTCP() *CTCP {
	c := &CTCP{handlers: make(map[string]CTCPHandler)}
	c.setDefaults()
	return c
}

// Set registers handler for the given CTCP command (case-insensitive).
// Passing "*" registers a wildcard handler invoked before the specific one.
func (c *CTCP) Set(cmd string, handler CTCPHandler) {
	cmd = strings.ToUpper(cmd)
	c.mu.Lock()
	c.handlers[cmd] = handler
	c.mu.Unlock()
}

// Clear removes the handler registered for cmd, including defaults.
func (c *CTCP) Clear(cmd string) {
	cmd = strings.ToUpper(cmd)
	c.mu.Lock()
	delete(c.handlers, cmd)
	c.mu.Unlock()
}

// call dispatches ctcp to its registered handler, if any.
func (c *CTCP) call(client *Client, ctcp *CTCPEvent) {
	c.mu.RLock()
	wildcard, hasWildcard := c.handlers["*"]
	handler, ok := c.handlers[ctcp.Command]
	c.mu.RUnlock()

	if hasWildcard {
		wildcard(client, *ctcp)
	}
	if ok {
		handler(client, *ctcp)
	}
}

func (c *CTCP) setDefaults() {
	c.handlers["PING"] = func(client *Client, ctcp CTCPEvent) {
		if ctcp.Reply {
			return
		}
		client.Cmd.SendCTCPReply(ctcp.Nick, "PING", ctcp.Text)
	}
	c.handlers["VERSION"] = func(client *Client, ctcp CTCPEvent) {
		if ctcp.Reply {
			return
		}
		client.Cmd.SendCTCPReply(ctcp.Nick, "VERSION", "halcyon-irc ("+runtime.Version()+")")
	}
	c.handlers["SOURCE"] = func(client *Client, ctcp CTCPEvent) {
		if ctcp.Reply {
			return
		}
		client.Cmd.SendCTCPReply(ctcp.Nick, "SOURCE", "https://github.com/halcyon-irc/irc")
	}
	c.handlers["TIME"] = func(client *Client, ctcp CTCPEvent) {
		if ctcp.Reply {
			return
		}
		client.Cmd.SendCTCPReply(ctcp.Nick, "TIME", time.Now().Format(time.RFC1123Z))
	}
}
