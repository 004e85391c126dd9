// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"encoding/base64"
	"strings"
)

// registerCAP wires the CAP negotiation and SASL PLAIN state machine
// described in §4.5.1 onto c.Handlers.
func (c *Client) registerCAP() {
	c.Handlers.On("cap", handleCAP)
	c.Handlers.On("authenticate", handleAuthenticate)
	c.Handlers.On("rpl_loggedin", handleSASLLoggedIn)
	c.Handlers.On("rpl_saslsuccess", handleSASLSuccess)
	c.Handlers.On("err_nicklocked", handleSASLFailure)
	c.Handlers.On("err_saslfail", handleSASLFailure)
	c.Handlers.On("err_sasltoolong", handleSASLFailure)
	c.Handlers.On("err_saslaborted", handleSASLFailure)
	c.Handlers.On("rpl_saslmechs", handleSASLFailure)
}

// sendCapLS kicks off negotiation: "CAP LS 302" is always the first line a
// session sends, per §4.6's connect sequence.
func (c *Client) sendCapLS() {
	c.sender.Send(Serialize("CAP", "LS", "302"))
}

// handleCAP implements the LSOpen -> Requested -> Acked/End transitions of
// the CAP state machine. Frame.Args for a CAP message is
// [nick-or-*, subcommand, ...payload], with the capability list as the
// trailing argument when present.
func handleCAP(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}

	sub := strings.ToUpper(f.Args[1])

	switch sub {
	case "LS":
		handleCapLS(c, f)
	case "ACK":
		handleCapACK(c, f)
	case "NAK":
		handleCapNAK(c, f)
	}
}

func handleCapLS(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}

	payload := f.Args[len(f.Args)-1]
	for _, tok := range strings.Fields(payload) {
		name := tok
		if eq := strings.IndexByte(tok, '='); eq >= 0 {
			name = tok[:eq]
			c.state.Supported.Capabilities[strings.ToLower(tok[:eq])] = tok[eq+1:]
		} else {
			c.state.Supported.Capabilities[strings.ToLower(name)] = ""
		}
	}

	// A multi-line LS has "*" as the 3rd argument before the capability
	// list; the final line omits it, leaving exactly 3 args.
	if len(f.Args) != 3 {
		return
	}

	c.Handlers.Emit(c, "cap-ls", f, c.state.RequestedDisconnect)

	want := map[string]bool{}
	var req []string
	for _, name := range c.config.Capabilities {
		name = strings.ToLower(name)
		if _, ok := c.state.Supported.Capabilities[name]; ok && !want[name] {
			want[name] = true
			req = append(req, name)
		}
	}
	if c.config.SASL && !want["sasl"] {
		if _, ok := c.state.Supported.Capabilities["sasl"]; ok {
			req = append(req, "sasl")
		}
	}

	if len(req) == 0 {
		c.sender.Send(Serialize("CAP", "END"))
		return
	}

	c.state.PendingCapReq = req
	c.sender.Send(Serialize("CAP", "REQ", strings.Join(req, " ")))
}

func handleCapACK(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}

	acked := strings.Fields(f.Args[len(f.Args)-1])
	for _, name := range acked {
		name = strings.ToLower(name)
		c.state.Capabilities[name] = true
		c.state.PendingCapReq = removeString(c.state.PendingCapReq, name)
	}

	if len(c.state.PendingCapReq) > 0 {
		return
	}

	if c.config.SASL {
		c.sender.Send(Serialize("AUTHENTICATE", "PLAIN"))
		return
	}

	c.sender.Send(Serialize("CAP", "END"))
	c.Handlers.Emit(c, "cap-end", f, c.state.RequestedDisconnect)
}

func handleCapNAK(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}

	naked := strings.Fields(f.Args[len(f.Args)-1])
	for _, name := range naked {
		c.state.PendingCapReq = removeString(c.state.PendingCapReq, strings.ToLower(name))
	}

	if len(c.state.PendingCapReq) > 0 {
		return
	}

	c.sender.Send(Serialize("CAP", "END"))
	c.Handlers.Emit(c, "cap-end", f, c.state.RequestedDisconnect)
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// handleAuthenticate responds to the SASL PLAIN continuation prompt ("+")
// with base64(authzid\0authcid\0password).
func handleAuthenticate(c *Client, f Frame) {
	if len(f.Args) != 1 || f.Args[0] != "+" {
		return
	}

	user := c.config.UserName
	payload := user + "\x00" + user + "\x00" + c.config.Password
	c.sender.Send(Serialize("AUTHENTICATE", base64.StdEncoding.EncodeToString([]byte(payload))))
}

func handleSASLLoggedIn(c *Client, f Frame) {
	c.logf("account login: %v", f.Args)
}

func handleSASLSuccess(c *Client, f Frame) {
	c.Handlers.Emit(c, "sasl-authenticated", f, c.state.RequestedDisconnect)
	c.sender.Send(Serialize("CAP", "END"))
	c.Handlers.Emit(c, "cap-end", f, c.state.RequestedDisconnect)
}

func handleSASLFailure(c *Client, f Frame) {
	c.Handlers.Emit(c, "sasl-authentication-failed", f, c.state.RequestedDisconnect)
	c.sender.Send(Serialize("CAP", "END"))
	c.Handlers.Emit(c, "cap-end", f, c.state.RequestedDisconnect)
}
