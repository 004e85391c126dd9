// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"fmt"
	"strings"
)

// ErrInvalidTarget is returned by Commands methods when a nick, channel, or
// user argument fails validation before ever reaching the wire.
type ErrInvalidTarget struct {
	Target string
}

func (e *ErrInvalidTarget) Error() string {
	return fmt.Sprintf("invalid target: %q", e.Target)
}

// ErrNotOperator is returned by SetChanMode when this session does not hold
// channel operator privileges in Channel.
type ErrNotOperator struct {
	Channel string
}

func (e *ErrNotOperator) Error() string {
	return fmt.Sprintf("setchanmode %s: channel operator privileges required", e.Channel)
}

// Commands implements the CommandAPI surface: one method per outbound IRC
// operation, wrapping a Client and writing through its Sender.
type Commands struct {
	c *Client
}

func (cmd *Commands) send(raw string) {
	cmd.c.mu.Lock()
	sender := cmd.c.sender
	cmd.c.mu.Unlock()
	if sender != nil {
		sender.Send(raw)
	}
}

// Nick requests a nickname change.
func (cmd *Commands) Nick(name string) error {
	if !IsValidNick(name) {
		return &ErrInvalidTarget{Target: name}
	}
	cmd.send(Serialize("NICK", name))
	return nil
}

// Join enters one or more channels, batching them onto as few JOIN lines as
// the session's negotiated line length allows.
func (cmd *Commands) Join(channels ...string) error {
	return cmd.joinBatch(channels, "")
}

// JoinKey enters a single key-protected channel.
func (cmd *Commands) JoinKey(channel, key string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	cmd.send(Serialize("JOIN", channel, key))
	return nil
}

func (cmd *Commands) joinBatch(channels []string, key string) error {
	cmd.c.mu.Lock()
	max := cmd.c.state.MaxLineLength - len("JOIN") - 1
	cmd.c.mu.Unlock()
	if max <= 0 {
		max = 400
	}

	var buf string
	for i, ch := range channels {
		if !IsValidChannel(ch) {
			return &ErrInvalidTarget{Target: ch}
		}

		if buf != "" && len(buf)+1+len(ch) > max {
			cmd.send(Serialize("JOIN", buf))
			buf = ""
		}

		if buf == "" {
			buf = ch
		} else {
			buf += "," + ch
		}

		if i == len(channels)-1 && buf != "" {
			cmd.send(Serialize("JOIN", buf))
		}
	}
	return nil
}

// JoinOnce enters channel and invokes cb exactly once, the next time this
// session completes self-join sync for it (see handleEndOfWho's "joinsync"
// emission), rather than on a bare server ACK.
func (cmd *Commands) JoinOnce(channel string, cb func(c *Client)) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	cmd.c.Handlers.Once("joinsync#"+lowerName(channel), func(c *Client, f Frame) { cb(c) })
	cmd.send(Serialize("JOIN", channel))
	return nil
}

// Part leaves channel with no part message.
func (cmd *Commands) Part(channel string) error {
	return cmd.PartMessage(channel, "")
}

// PartMessage leaves channel, announcing message as the reason.
func (cmd *Commands) PartMessage(channel, message string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	if message == "" {
		cmd.send(Serialize("PART", channel))
	} else {
		cmd.send(Serialize("PART", channel, message))
	}
	return nil
}

// PartOnce leaves channel and invokes cb exactly once, the next time this
// session observes its own PART on that channel.
func (cmd *Commands) PartOnce(channel, message string, cb func(c *Client)) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	cmd.c.Handlers.Once("selfpart#"+lowerName(channel), func(c *Client, f Frame) { cb(c) })
	return cmd.PartMessage(channel, message)
}

// Message sends text to target (a channel or nick), splitting it across
// multiple PRIVMSG frames per splitMessage when it exceeds the session's
// negotiated line length.
func (cmd *Commands) Message(target, text string) error {
	return cmd.sendSplit("PRIVMSG", target, text)
}

// Messagef formats and sends a PRIVMSG to target.
func (cmd *Commands) Messagef(target, format string, a ...interface{}) error {
	return cmd.Message(target, fmt.Sprintf(format, a...))
}

// Notice sends text to target via NOTICE, split the same way as Message.
func (cmd *Commands) Notice(target, text string) error {
	return cmd.sendSplit("NOTICE", target, text)
}

// Noticef formats and sends a NOTICE to target.
func (cmd *Commands) Noticef(target, format string, a ...interface{}) error {
	return cmd.Notice(target, fmt.Sprintf(format, a...))
}

// sendSplit splits text into sub-lines no longer than maxLineLength -
// len(target) (§4.6.1) and sends one verb frame per sub-line, handed off to
// the session goroutine via submit so the state read and every send it
// produces are atomic relative to ProtocolHandler (§5). PRIVMSG sub-lines
// additionally emit "selfMessage(target, line)"; NOTICE does not.
func (cmd *Commands) sendSplit(verb, target, text string) error {
	if !IsValidNick(target) && !IsValidChannel(target) {
		return &ErrInvalidTarget{Target: target}
	}

	emitSelf := verb == "PRIVMSG"
	cmd.c.submit(func() {
		max := cmd.c.state.MaxLineLength - len(target)
		if max <= 0 {
			max = 400
		}

		for _, line := range splitMessage(text, max) {
			cmd.send(Serialize(verb, target, line))
			if emitSelf {
				payload := Frame{Command: "selfMessage", Args: []string{target, line}}
				cmd.c.Handlers.Emit(cmd.c, "selfMessage", payload, cmd.c.state.RequestedDisconnect)
			}
		}
	})
	return nil
}

// Action sends a CTCP ACTION (/me) to target.
func (cmd *Commands) Action(target, text string) error {
	if !IsValidNick(target) && !IsValidChannel(target) {
		return &ErrInvalidTarget{Target: target}
	}
	cmd.send(Serialize("PRIVMSG", target, encodeCTCPRaw("ACTION", text)))
	return nil
}

// SendCTCP sends a CTCP query to target via PRIVMSG.
func (cmd *Commands) SendCTCP(target, ctcpCmd, text string) error {
	if !IsValidNick(target) && !IsValidChannel(target) {
		return &ErrInvalidTarget{Target: target}
	}
	out := encodeCTCPRaw(ctcpCmd, text)
	if out == "" {
		return fmt.Errorf("invalid CTCP command %q", ctcpCmd)
	}
	cmd.send(Serialize("PRIVMSG", target, out))
	return nil
}

// SendCTCPReply sends a CTCP reply to target via NOTICE, as required by the
// protocol (a CTCP reply is always a NOTICE, never a PRIVMSG).
func (cmd *Commands) SendCTCPReply(target, ctcpCmd, text string) error {
	if !IsValidNick(target) && !IsValidChannel(target) {
		return &ErrInvalidTarget{Target: target}
	}
	out := encodeCTCPRaw(ctcpCmd, text)
	if out == "" {
		return fmt.Errorf("invalid CTCP command %q", ctcpCmd)
	}
	cmd.send(Serialize("NOTICE", target, out))
	return nil
}

// Topic sets channel's topic to message. Pass an empty message to query the
// current topic instead.
func (cmd *Commands) Topic(channel, message string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	if message == "" {
		cmd.send(Serialize("TOPIC", channel))
	} else {
		cmd.send(Serialize("TOPIC", channel, message))
	}
	return nil
}

// whoFormatLetters are the WHOX field letters resolveWhoFormat keeps in a
// caller's format: type, channel, username, ip, host, server, nick,
// status, hops, idle, account, realname.
const whoFormatLetters = "tcuihsnfdlar"

// defaultWhoFormat is the WHOX format sent when the caller asks for WHO
// with no usable format of its own and the server supports WHOX. Who
// queues the target, not the format (see WhoState).
const defaultWhoFormat = "%cuhsnfdr"

// resolveWhoFormat validates format per §4.6: "o" always passes through; a
// "%"-format passes through, filtered to the letters in whoFormatLetters,
// only when the server advertised WHOX support; anything else falls back to
// defaultWhoFormat (under WHOX) or plain WHO (without it, returning "").
func resolveWhoFormat(format string, whox bool) string {
	if format == "o" {
		return "o"
	}
	if !whox {
		return ""
	}
	if format == "" || format[0] != '%' {
		return defaultWhoFormat
	}

	var out strings.Builder
	out.WriteByte('%')
	for i := 1; i < len(format); i++ {
		if strings.IndexByte(whoFormatLetters, format[i]) >= 0 {
			out.WriteByte(format[i])
		}
	}
	if out.Len() <= 1 {
		return defaultWhoFormat
	}
	return out.String()
}

// Who issues a WHO query against target, honoring the optional extended
// WHOX format string (validated by resolveWhoFormat). Pass "" for the
// default format.
func (cmd *Commands) Who(target, format string) error {
	if !IsValidNick(target) && !IsValidChannel(target) && !IsValidUser(target) {
		return &ErrInvalidTarget{Target: target}
	}

	cmd.c.submit(func() {
		eff := resolveWhoFormat(format, cmd.c.state.Supported.WHOX)
		cmd.c.state.Who.Queue = append(cmd.c.state.Who.Queue, lowerName(target))

		if eff == "" {
			cmd.send(Serialize("WHO", target))
			return
		}
		cmd.send(Serialize("WHO", target, eff))
	})
	return nil
}

// Whois sends a WHOIS query against nick. Results arrive as rpl_whois*
// events and a final "whois" event once rpl_endofwhois flushes them.
func (cmd *Commands) Whois(nick string) error {
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	cmd.send(Serialize("WHOIS", nick))
	return nil
}

// Whowas sends a WHOWAS query for nick, asking for up to amount results.
func (cmd *Commands) Whowas(nick string, amount int) error {
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	cmd.send(Serialize("WHOWAS", nick, fmt.Sprint(amount)))
	return nil
}

// List requests the channel list. With no arguments it lists the whole
// server; otherwise it is batched like Join.
func (cmd *Commands) List(channels ...string) error {
	if len(channels) == 0 {
		cmd.send(Serialize("LIST"))
		return nil
	}

	max := 400
	var buf string
	for i, ch := range channels {
		if !IsValidChannel(ch) {
			return &ErrInvalidTarget{Target: ch}
		}
		if buf != "" && len(buf)+1+len(ch) > max {
			cmd.send(Serialize("LIST", buf))
			buf = ""
		}
		if buf == "" {
			buf = ch
		} else {
			buf += "," + ch
		}
		if i == len(channels)-1 {
			cmd.send(Serialize("LIST", buf))
		}
	}
	return nil
}

// Invite invites nick to channel.
func (cmd *Commands) Invite(channel, nick string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	cmd.send(Serialize("INVITE", nick, channel))
	return nil
}

// Kick removes nick from channel, with an optional reason.
func (cmd *Commands) Kick(channel, nick, reason string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}
	if !IsValidNick(nick) {
		return &ErrInvalidTarget{Target: nick}
	}
	if reason == "" {
		cmd.send(Serialize("KICK", channel, nick))
	} else {
		cmd.send(Serialize("KICK", channel, nick, reason))
	}
	return nil
}

// Away marks the session away with reason, or clears away status when
// reason is empty.
func (cmd *Commands) Away(reason string) error {
	if reason == "" {
		cmd.send(Serialize("AWAY"))
	} else {
		cmd.send(Serialize("AWAY", reason))
	}
	return nil
}

// Oper authenticates as an IRC operator.
func (cmd *Commands) Oper(user, pass string) error {
	cmd.send(Serialize("OPER", user, pass))
	return nil
}

// Ping sends a PING with the given token.
func (cmd *Commands) Ping(token string) error {
	cmd.send(Serialize("PING", token))
	return nil
}

// Pong answers a PING with the given token.
func (cmd *Commands) Pong(token string) error {
	cmd.send(Serialize("PONG", token))
	return nil
}

// SendRaw writes a preformatted command and argument list directly.
func (cmd *Commands) SendRaw(command string, args ...string) error {
	if command == "" {
		return fmt.Errorf("empty raw command")
	}
	cmd.send(Serialize(strings.ToUpper(command), args...))
	return nil
}

// SetChanMode applies a single +/- mode letter to nicks in channel. It
// refuses outright when this session does not hold channel operator
// privileges (so callers can treat the error as "would be rejected by the
// server anyway" without needing a round trip), resolves nicks against
// current channel membership, drops any nick that already has the mode
// (adding) or already lacks it (removing), and batches the rest into as few
// MODE lines as the server's advertised MODES limit allows.
func (cmd *Commands) SetChanMode(channel string, add bool, mode byte, nicks ...string) error {
	if !IsValidChannel(channel) {
		return &ErrInvalidTarget{Target: channel}
	}

	cmd.c.mu.Lock()
	haveOp := cmd.c.state.haveOp(channel)
	cmd.c.mu.Unlock()
	if !haveOp {
		return &ErrNotOperator{Channel: channel}
	}

	cmd.c.submit(func() {
		ch := cmd.c.state.ChanData(channel, false)
		if ch == nil {
			return
		}

		var targets []string
		for _, nick := range nicks {
			u, ok := ch.Users[lowerName(nick)]
			if !ok {
				continue
			}
			has := u.Modes[mode]
			if add == has {
				continue
			}
			targets = append(targets, nick)
		}
		if len(targets) == 0 {
			return
		}

		batch := cmd.c.state.Supported.Modes
		if batch <= 0 {
			batch = len(targets)
		}

		sign := byte('-')
		if add {
			sign = '+'
		}

		for i := 0; i < len(targets); i += batch {
			group := targets[i:min(i+batch, len(targets))]
			modes := string(sign) + strings.Repeat(string(mode), len(group))
			params := append([]string{channel, modes}, group...)
			cmd.send(Serialize("MODE", params...))
		}
	})
	return nil
}
