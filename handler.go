// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dispatch is the single entry point the session loop feeds every parsed
// Frame through. For most commands it emits the frame under its symbolic
// command name (the builtins registered by registerBuiltins, plus anything a
// caller added via Handlers.On, fire here as ordinary subscribers) and that
// single Emit call both runs the builtin's state tracking and satisfies
// spec.md's "emit <command>" requirement for free. NICK is special-cased:
// its base event must carry a channels=[...] payload no plain re-emission of
// the raw frame can express, so handleNick is called directly instead of
// being registered as a "nick" subscriber, letting it own that event name
// without re-triggering itself.
func dispatch(c *Client, f Frame) {
	if f.Command == "nick" {
		handleNick(c, f)
		return
	}

	c.Handlers.Emit(c, f.Command, f, c.state.RequestedDisconnect)

	switch f.Command {
	case "privmsg":
		c.Handlers.Emit(c, "message", f, c.state.RequestedDisconnect)
		routeMessage(c, f, "message")
	case "notice":
		routeMessage(c, f, "notice")
	case "error":
		if c.config.ShowErrors {
			c.logf("server error: %v", f.Args)
		}
	}
}

// registerBuiltins wires the protocol-level state tracking and lifecycle
// handlers this module always runs, regardless of what a caller later adds
// via Handlers.On.
func (c *Client) registerBuiltins() {
	c.Handlers.On("rpl_welcome", handleWelcome)
	c.Handlers.On("ping", handlePing)
	c.Handlers.On("pong", handlePong)

	c.Handlers.On("err_nicknameinuse", handleNickInUse)
	c.Handlers.On("err_nickcollision", handleNickInUse)
	c.Handlers.On("err_unavailresource", handleNickInUse)
	c.Handlers.On("err_erroneusnickname", handleNickInUse)

	c.Handlers.On("rpl_isupport", handleISupport)
	c.Handlers.On("rpl_yourhost", handleYourHost)
	c.Handlers.On("rpl_created", handleCreated)

	c.Handlers.On("join", handleJoin)
	c.Handlers.On("part", handlePart)
	c.Handlers.On("kick", handleKick)
	c.Handlers.On("quit", handleQuit)
	c.Handlers.On("kill", handleKill)
	// "nick" is handled directly from dispatch, not registered here: see
	// dispatch's doc comment.

	c.Handlers.On("mode", handleMode)
	c.Handlers.On("rpl_channelmodeis", handleMode)
	c.Handlers.On("rpl_creationtime", handleCreationTime)

	c.Handlers.On("topic", handleTopic)
	c.Handlers.On("rpl_topic", handleTopicReply)
	c.Handlers.On("rpl_topicwhotime", handleTopicWhoTime)

	c.Handlers.On("rpl_whoreply", handleWho)
	c.Handlers.On("rpl_whospcrpl", handleWho)
	c.Handlers.On("rpl_endofwho", handleEndOfWho)

	c.Handlers.On("rpl_whoisuser", handleWhoisUser)
	c.Handlers.On("rpl_whoisserver", handleWhoisServer)
	c.Handlers.On("rpl_whoisoperator", handleWhoisOperator)
	c.Handlers.On("rpl_whoisidle", handleWhoisIdle)
	c.Handlers.On("rpl_whoischannels", handleWhoisChannels)
	c.Handlers.On("rpl_whoisaccount", handleWhoisAccount)
	c.Handlers.On("rpl_away", handleWhoisAway)
	c.Handlers.On("rpl_endofwhois", handleEndOfWhois)

	c.Handlers.On("rpl_liststart", handleListStart)
	c.Handlers.On("rpl_list", handleList)
	c.Handlers.On("rpl_listend", handleListEnd)

	c.Handlers.On("rpl_motdstart", handleMotd)
	c.Handlers.On("rpl_motd", handleMotd)
	c.Handlers.On("rpl_endofmotd", handleMotdEnd)
	c.Handlers.On("err_nomotd", handleMotdEnd)

	// INVITE needs no state tracking; the generic Emit above already fires
	// "invite" (f.Command == "invite") with the inviter as f.Nick and
	// [target, channel] as f.Args, which is everything §4.5 asks for.
	c.Handlers.On("account", handleAccount)

	c.Handlers.On("err_umodeunknownflag", handleServerError)
}

// handleWelcome processes RPL_WELCOME (001): the server's own "Welcome to
// IRC <nick>!<user>@<host>" line is the first place a hostmask for us is
// ever seen, so it doubles as our hostmask discovery.
func handleWelcome(c *Client, f Frame) {
	if len(f.Args) == 0 {
		return
	}
	c.state.OwnNick = f.Args[0]

	if len(f.Args) > 1 {
		if fields := strings.Fields(f.Args[1]); len(fields) > 0 {
			c.state.HostMask = fields[len(fields)-1]
		}
	}

	c.state.recomputeMaxLineLength()
	c.Handlers.Emit(c, "registered", f, c.state.RequestedDisconnect)
}

// handlePing answers the server's keepalive. The "ping" event itself is
// already emitted generically by dispatch before this runs (f.Command ==
// "ping"), carrying the token in f.Args, so nothing further is emitted here.
func handlePing(c *Client, f Frame) {
	token := ""
	if len(f.Args) > 0 {
		token = f.Args[len(f.Args)-1]
	}
	c.sender.Send(Serialize("PONG", token))
}

// handlePong exists purely so "pong" has a registered builtin; dispatch's
// generic per-command Emit already delivers the event (f.Command == "pong")
// with the replied-to token in f.Args.
func handlePong(c *Client, f Frame) {}

// handleNickInUse escalates the configured nickname with a monotonically
// increasing integer suffix off the originally configured nick (nick1,
// nick2, nick3, ...), per §8's "Nick-in-use escalation" property.
func handleNickInUse(c *Client, f Frame) {
	c.nickAttempt++
	c.config.Nick = c.baseNick + strconv.Itoa(c.nickAttempt)
	c.sender.Send(Serialize("NICK", c.config.Nick))
}

func handleISupport(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}

	for _, tok := range f.Args[1 : len(f.Args)-1] {
		name, value := tok, ""
		if eq := strings.IndexByte(tok, '='); eq >= 0 {
			name, value = tok[:eq], tok[eq+1:]
		}

		switch name {
		case "CHANTYPES":
			c.state.Supported.Channel.Types = value
		case "CHANMODES":
			parts := strings.SplitN(value, ",", 4)
			for len(parts) < 4 {
				parts = append(parts, "")
			}
			c.state.Supported.Channel.Modes = ChanModes{A: parts[0], B: parts[1], C: parts[2], D: parts[3]}
		case "PREFIX":
			parsePrefix(c, value)
		case "WHOX":
			c.state.Supported.WHOX = true
		case "NICKLEN":
			c.state.Supported.NickLength, _ = strconv.Atoi(value)
		case "TOPICLEN":
			c.state.Supported.TopicLength, _ = strconv.Atoi(value)
		case "MODES":
			c.state.Supported.Modes, _ = strconv.Atoi(value)
		case "CHANLIMIT":
			c.state.Supported.Channel.Length, _ = strconv.Atoi(value)
		}
	}
}

// parsePrefix decodes "(ohv)@%+" into the two lookup tables SessionState
// keeps for membership-prefix modes.
func parsePrefix(c *Client, value string) {
	if len(value) < 2 || value[0] != '(' {
		return
	}
	close := strings.IndexByte(value, ')')
	if close < 0 {
		return
	}

	modes := value[1:close]
	prefixes := value[close+1:]
	if len(modes) != len(prefixes) {
		return
	}

	for i := 0; i < len(modes); i++ {
		c.state.PrefixForMode[prefixes[i]] = modes[i]
		c.state.ModeForPrefix[modes[i]] = prefixes[i]
		c.state.Supported.Channel.Modes.B += string(modes[i])
	}
}

func handleYourHost(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	const prefix, suffix = "Your host is ", " running version "
	msg := f.Args[len(f.Args)-1]
	if !strings.Contains(msg, prefix) || !strings.Contains(msg, ",") {
		return
	}
	rest := strings.TrimPrefix(msg, prefix)
	parts := strings.SplitN(rest, ",", 2)
	c.state.Server.Host = parts[0]
	if len(parts) > 1 {
		c.state.Server.Version = strings.TrimPrefix(strings.TrimSpace(parts[1]), strings.TrimSpace(suffix))
	}
}

// handleCreated parses the free-text RPL_CREATED (003) message into
// ServerInfo.Created. The message has no fixed grammar across ircds ("This
// server was created ..."), so the timestamp is recovered with a lenient
// date parser rather than a hand-rolled layout table.
func handleCreated(c *Client, f Frame) {
	if len(f.Args) == 0 {
		return
	}
	msg := f.Args[len(f.Args)-1]

	const marker = "This server was created "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		c.logf("server created: %s", msg)
		return
	}

	t, err := dateparse.ParseAny(msg[idx+len(marker):])
	if err != nil {
		c.logf("server created: unparseable timestamp %q: %v", msg, err)
		return
	}
	c.state.Server.Created = t
}

// handleJoin tracks channel membership and, on our own JOIN, kicks off
// self-join sync: MODE plus a WHO request against the channel. "join" (base)
// is already emitted generically by dispatch; this adds the channel-qualified
// variant for every JOIN, plus "selfjoin" (+ its channel variant) immediately
// when it's ours. Membership/mode data isn't synced yet at that point — that
// completion is signaled separately by "joinsync" once the WHO started here
// concludes (handleEndOfWho).
func handleJoin(c *Client, f Frame) {
	if len(f.Args) == 0 || f.Nick == "" {
		return
	}
	channel := f.Args[0]

	ch := c.state.ChanData(channel, true)
	u := newUserEntry()
	u.Username, u.Host = f.User, f.Host
	ch.Users[lowerName(f.Nick)] = u

	if strings.EqualFold(f.Nick, c.state.OwnNick) {
		c.state.HostMask = f.User + "@" + f.Host
		c.state.recomputeMaxLineLength()
		c.state.SyncChans[lowerName(channel)] = time.Now()

		c.sender.Send(Serialize("MODE", channel))

		c.state.Who.Queue = append(c.state.Who.Queue, lowerName(channel))
		if c.state.Supported.WHOX {
			c.sender.Send(Serialize("WHO", channel, "%tacuhnr,2"))
		} else {
			c.sender.Send(Serialize("WHO", channel))
		}

		c.Handlers.Emit(c, "selfjoin", f, c.state.RequestedDisconnect)
		c.Handlers.Emit(c, "selfjoin#"+lowerName(channel), f, c.state.RequestedDisconnect)
	}

	c.Handlers.Emit(c, "join#"+lowerName(channel), f, c.state.RequestedDisconnect)
}

func handlePart(c *Client, f Frame) {
	if len(f.Args) == 0 || f.Nick == "" {
		return
	}
	channel := f.Args[0]

	if strings.EqualFold(f.Nick, c.state.OwnNick) {
		c.state.deleteChan(channel)
		c.Handlers.Emit(c, "selfpart", f, c.state.RequestedDisconnect)
		c.Handlers.Emit(c, "selfpart#"+lowerName(channel), f, c.state.RequestedDisconnect)
		return
	}

	if ch := c.state.ChanData(channel, false); ch != nil {
		delete(ch.Users, lowerName(f.Nick))
	}
}

// handleKick tracks membership loss on a KICK. "kick" (base) is already
// emitted generically by dispatch; self-kick additionally gets "selfkick"
// (+ channel variant). autoRejoin applies to any kick observed in a channel
// we're tracking, not just our own.
func handleKick(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	channel, nick := f.Args[0], f.Args[1]

	if strings.EqualFold(nick, c.state.OwnNick) {
		c.state.deleteChan(channel)
		c.Handlers.Emit(c, "selfkick", f, c.state.RequestedDisconnect)
		c.Handlers.Emit(c, "selfkick#"+lowerName(channel), f, c.state.RequestedDisconnect)
	} else if ch := c.state.ChanData(channel, false); ch != nil {
		delete(ch.Users, lowerName(nick))
	}

	if c.config.AutoRejoin {
		c.sender.Send(Serialize("JOIN", channel))
	}
}

// handleQuit removes a departing user from every channel we share with
// them. The exception is a server-initiated nick-to-host change reported as
// "Changing host" (an IRCv3 chghost fallback some networks emit as a
// synthetic QUIT/JOIN pair): the user never really left, so membership is
// left untouched, "quit"/"quit#<channel>" still fire (something was
// observed), but "realquit"/"realquit#<channel>" do not.
// "quit" (base) is already emitted generically by dispatch.
func handleQuit(c *Client, f Frame) {
	if f.Nick == "" || strings.EqualFold(f.Nick, c.state.OwnNick) {
		return
	}

	changingHost := len(f.Args) > 0 && f.Args[len(f.Args)-1] == "Changing host"

	var channels []string
	if changingHost {
		channels = c.state.NickInChannels(f.Nick, false)
	} else {
		channels = c.state.NickInChannels(f.Nick, true)
	}

	for _, channel := range channels {
		c.Handlers.Emit(c, "quit#"+lowerName(channel), f, c.state.RequestedDisconnect)
	}
	if changingHost {
		return
	}

	for _, channel := range channels {
		c.Handlers.Emit(c, "realquit#"+lowerName(channel), f, c.state.RequestedDisconnect)
	}
	c.Handlers.Emit(c, "realquit", f, c.state.RequestedDisconnect)
}

// handleKill removes a killed nick from every channel we share with them
// and emits a per-channel "kill#<channel>"; the aggregate "kill" is already
// emitted generically by dispatch.
func handleKill(c *Client, f Frame) {
	nick := f.Nick
	if nick == "" && len(f.Args) > 0 {
		nick = f.Args[0]
	}
	if nick == "" {
		return
	}
	for _, channel := range c.state.NickInChannels(nick, true) {
		c.Handlers.Emit(c, "kill#"+lowerName(channel), f, c.state.RequestedDisconnect)
	}
}

// handleNick is called directly from dispatch rather than registered as a
// "nick" subscriber (see dispatch), so it's free to own the "nick" event
// name itself: it rekeys channel membership, emits "selfnick" when the
// renamed nick is ours, "nick#<channel>" per affected channel, and finally
// "nick" carrying the new nick in f.Args[0] followed by the affected
// channels in f.Args[1:], per §8's nick-change scenario.
func handleNick(c *Client, f Frame) {
	if f.Nick == "" || len(f.Args) == 0 {
		return
	}
	newNick := f.Args[0]
	isSelf := strings.EqualFold(f.Nick, c.state.OwnNick)

	if isSelf {
		c.state.OwnNick = newNick
		c.state.recomputeMaxLineLength()
	}

	old := lowerName(f.Nick)
	var channels []string
	c.state.eachChan(func(ch *Channel) {
		u, ok := ch.Users[old]
		if !ok {
			return
		}
		delete(ch.Users, old)
		ch.Users[lowerName(newNick)] = u
		channels = append(channels, ch.ServerName)
	})

	if isSelf {
		c.Handlers.Emit(c, "selfnick", f, c.state.RequestedDisconnect)
	}

	for _, channel := range channels {
		c.Handlers.Emit(c, "nick#"+lowerName(channel), f, c.state.RequestedDisconnect)
	}

	nickFrame := f
	nickFrame.Args = append([]string{newNick}, channels...)
	c.Handlers.Emit(c, "nick", nickFrame, c.state.RequestedDisconnect)
}

// handleMode tracks channel mode changes and emits "+mode"/"-mode" per
// toggle, plus "+selfmode"/"-selfmode" when the toggle is a membership
// prefix mode applied to us.
func handleMode(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	channel := f.Args[0]

	if channel == "" || !strings.ContainsAny(string(channel[0]), c.state.Supported.Channel.Types) {
		// A user-mode MODE line targeting us, not a channel; nothing to track.
		return
	}

	ch := c.state.ChanData(channel, true)

	for _, t := range parseModes(f.Args[1], f.Args[2:], c.state.ModeForPrefix) {
		name := "-mode"
		if t.add {
			name = "+mode"
		}

		if _, isPrefix := c.state.ModeForPrefix[t.name]; isPrefix && t.arg != "" {
			u, ok := ch.Users[lowerName(t.arg)]
			if !ok {
				u = newUserEntry()
				ch.Users[lowerName(t.arg)] = u
			}
			u.Modes[t.name] = t.add

			c.Handlers.Emit(c, name, f, c.state.RequestedDisconnect)
			if strings.EqualFold(t.arg, c.state.OwnNick) {
				selfName := "-selfmode"
				if t.add {
					selfName = "+selfmode"
				}
				c.Handlers.Emit(c, selfName, f, c.state.RequestedDisconnect)
			}
			continue
		}

		applyChanMode(&ch.Mode, t.name, t.add)
		c.Handlers.Emit(c, name, f, c.state.RequestedDisconnect)
	}
}

func handleCreationTime(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}
	if ch := c.state.ChanData(f.Args[1], false); ch != nil {
		ch.Created = f.Args[2]
	}
}

// handleTopic processes a live TOPIC command: updates both topic and
// topicBy. "topic" (base) is already emitted generically by dispatch, since
// the raw frame already carries everything this case needs (f.Nick as
// setter, f.Args as [channel, topic]).
func handleTopic(c *Client, f Frame) {
	if len(f.Args) == 0 {
		return
	}
	channel := f.Args[0]
	ch := c.state.ChanData(channel, false)
	if ch == nil {
		return
	}
	if len(f.Args) > 1 {
		ch.Topic = f.Args[1]
	}
	if f.Nick != "" {
		ch.TopicBy = f.Nick
	}
}

// handleTopicReply processes RPL_TOPIC (332), which carries only the
// current topic text, no setter — unlike the live TOPIC command, it must
// not touch topicBy or emit "topic" (topicBy isn't known until
// rpl_topicwhotime, below).
func handleTopicReply(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}
	if ch := c.state.ChanData(f.Args[1], false); ch != nil {
		ch.Topic = f.Args[2]
	}
}

// handleTopicWhoTime processes RPL_TOPICWHOTIME (333), which completes what
// rpl_topic started: now that both topic and setter are known, emit "topic"
// carrying channel, topic and topicBy.
func handleTopicWhoTime(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}
	ch := c.state.ChanData(f.Args[1], false)
	if ch == nil {
		return
	}
	ch.TopicBy = f.Args[2]

	payload := Frame{Command: "topic", Nick: ch.TopicBy, Args: []string{ch.ServerName, ch.Topic, ch.TopicBy}}
	c.Handlers.Emit(c, "topic", payload, c.state.RequestedDisconnect)
}

// handleWho absorbs both RPL_WHOREPLY (352) and the WHOX extended form
// (354, requested as "%tacuhnr,2").
func handleWho(c *Client, f Frame) {
	if f.Command == "rpl_whospcrpl" {
		if len(f.Args) != 8 || f.Args[1] != "2" {
			return
		}
		account, channel, ident, host, nick, realname := f.Args[2], f.Args[3], f.Args[4], f.Args[5], f.Args[6], f.Args[7]
		applyWhoData(c, channel, nick, ident, host, realname, account, "")
		return
	}

	if len(f.Args) != 8 {
		return
	}
	channel, ident, host, nick, flags, trail := f.Args[1], f.Args[2], f.Args[3], f.Args[5], f.Args[6], f.Args[7]

	realname := trail
	for i := 0; i < len(realname); i++ {
		if realname[i] < '0' || realname[i] > '9' {
			realname = strings.TrimLeft(realname[i:], " ")
			break
		}
	}

	applyWhoData(c, channel, nick, ident, host, realname, "", flags)
}

func applyWhoData(c *Client, channel, nick, ident, host, realname, account, flags string) {
	ch := c.state.ChanData(channel, false)
	if ch == nil {
		return
	}

	u, ok := ch.Users[lowerName(nick)]
	if !ok {
		u = newUserEntry()
		ch.Users[lowerName(nick)] = u
	}
	u.Username, u.Host = ident, host
	if account != "" && account != "0" {
		u.Account = account
	}
	u.IsRegistered = u.Account != ""
	_ = realname

	for i := 1; i < len(flags); i++ {
		if mode, ok := c.state.PrefixForMode[flags[i]]; ok {
			u.Modes[mode] = true
		}
	}
}

// handleEndOfWho concludes one outstanding WHO/WHOX request: "who#<target>"
// and "who" always fire, and "joinsync" (+ channel variant) additionally
// fires when this WHO was the one handleJoin issued to sync a self-join.
func handleEndOfWho(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	target := lowerName(f.Args[1])
	c.state.Who.Queue = removeString(c.state.Who.Queue, target)

	c.Handlers.Emit(c, "who#"+target, f, c.state.RequestedDisconnect)
	c.Handlers.Emit(c, "who", f, c.state.RequestedDisconnect)

	if _, pending := c.state.SyncChans[target]; pending {
		delete(c.state.SyncChans, target)
		c.Handlers.Emit(c, "joinsync", f, c.state.RequestedDisconnect)
		c.Handlers.Emit(c, "joinsync#"+target, f, c.state.RequestedDisconnect)
	}
}

func handleWhoisUser(c *Client, f Frame) {
	if len(f.Args) < 5 {
		return
	}
	w := c.state.whoisEntry(f.Args[1], true)
	w.User, w.Host, w.RealName = f.Args[2], f.Args[3], f.Args[len(f.Args)-1]
}

func handleWhoisServer(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}
	w := c.state.whoisEntry(f.Args[1], true)
	w.Server, w.ServerInfo = f.Args[2], f.Args[len(f.Args)-1]
}

func handleWhoisOperator(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	c.state.whoisEntry(f.Args[1], true).Operator = true
}

func handleWhoisIdle(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}
	c.state.whoisEntry(f.Args[1], true).Idle = f.Args[2]
}

func handleWhoisChannels(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	w := c.state.whoisEntry(f.Args[1], true)
	w.Channels = strings.Fields(f.Args[len(f.Args)-1])
}

func handleWhoisAccount(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}
	c.state.whoisEntry(f.Args[1], true).Account = f.Args[2]
}

func handleWhoisAway(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	w := c.state.whoisEntry(f.Args[1], false)
	if w == nil {
		return
	}
	w.Away = f.Args[len(f.Args)-1]
}

func handleEndOfWhois(c *Client, f Frame) {
	if len(f.Args) < 2 {
		return
	}
	w := c.state.flushWhois(f.Args[1])
	if w == nil {
		return
	}
	c.Handlers.Emit(c, "whois", Frame{Command: "whois", Args: []string{w.Nick}}, c.state.RequestedDisconnect)
}

func handleListStart(c *Client, f Frame) {
	c.state.ChannelList = nil
	c.Handlers.Emit(c, "channellist_start", f, c.state.RequestedDisconnect)
}

func handleList(c *Client, f Frame) {
	if len(f.Args) < 3 {
		return
	}
	users, _ := strconv.Atoi(f.Args[2])
	entry := channelListEntry{
		Name:  f.Args[1],
		Users: users,
		Topic: f.Args[len(f.Args)-1],
	}
	c.state.ChannelList = append(c.state.ChannelList, entry)

	c.Handlers.Emit(c, "channellist_item", Frame{Command: "channellist_item", Args: []string{entry.Name, f.Args[2], entry.Topic}}, c.state.RequestedDisconnect)
}

func handleListEnd(c *Client, f Frame) {
	c.Handlers.Emit(c, "channellist", f, c.state.RequestedDisconnect)
}

func handleMotd(c *Client, f Frame) {
	if f.Command == "rpl_motdstart" {
		c.state.MotdBuffer = ""
		return
	}
	if c.state.MotdBuffer != "" {
		c.state.MotdBuffer += "\n"
	}
	if len(f.Args) > 0 {
		c.state.MotdBuffer += f.Args[len(f.Args)-1]
	}
}

func handleMotdEnd(c *Client, f Frame) {
	payload := Frame{Command: "motd", Args: []string{c.state.MotdBuffer}}
	c.Handlers.Emit(c, "motd", payload, c.state.RequestedDisconnect)

	for _, channel := range c.config.Channels {
		c.sender.Send(Serialize("JOIN", channel))
	}
}

func handleAccount(c *Client, f Frame) {
	if f.Nick == "" || len(f.Args) == 0 {
		return
	}
	account := f.Args[0]
	if account == "*" {
		account = ""
	}
	c.state.eachChan(func(ch *Channel) {
		if u, ok := ch.Users[lowerName(f.Nick)]; ok {
			u.Account = account
			u.IsRegistered = account != ""
		}
	})
}

func handleServerError(c *Client, f Frame) {
	if c.config.ShowErrors {
		c.logf("server error %s: %v", f.Command, f.Args)
	}
}

// routeMessage derives the channel-qualified and CTCP-aware events layered
// on top of a plain privmsg/notice frame. base is "message" or "notice"
// (dispatch already emitted the bare base-named event before calling in
// here); this adds the channel-qualified "<base>#<channel>" plus, mirroring
// how the original client emitted both the server-cased and lowercase form
// of a channel event, a lowercase alias when the server's casing differs,
// and "pm" when the target is our own nick.
func routeMessage(c *Client, f Frame, base string) {
	if len(f.Args) != 2 {
		return
	}
	target := f.Args[0]

	if ctcp := decodeCTCP(f); ctcp != nil {
		c.CTCP.call(c, ctcp)
		return
	}

	if len(target) > 0 && strings.ContainsAny(string(target[0]), c.state.Supported.Channel.Types) {
		c.Handlers.Emit(c, base+"#"+target, f, c.state.RequestedDisconnect)
		if lower := lowerName(target); lower != target {
			c.Handlers.Emit(c, base+"#"+lower, f, c.state.RequestedDisconnect)
		}
		return
	}

	if strings.EqualFold(target, c.state.OwnNick) {
		c.Handlers.Emit(c, "pm", f, c.state.RequestedDisconnect)
	}
}
