// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"strings"
	"time"

	cmap "github.com/orcaman/concurrent-map"
)

// UserEntry is what SessionState knows about a single nick's presence in a
// channel.
type UserEntry struct {
	Username     string
	Host         string
	Away         bool
	Modes        map[byte]bool
	Account      string
	IsRegistered bool
}

func newUserEntry() *UserEntry {
	return &UserEntry{Modes: make(map[byte]bool)}
}

// Channel is the in-memory model of one joined (or being-synced) channel.
// Key is always the lowercased name; ServerName preserves the case the
// server used when it last mentioned the channel.
type Channel struct {
	Key        string
	ServerName string
	Users      map[string]*UserEntry
	Mode       string
	Topic      string
	TopicBy    string
	Created    string
}

func newChannel(name string) *Channel {
	return &Channel{
		Key:        lowerName(name),
		ServerName: name,
		Users:      make(map[string]*UserEntry),
	}
}

// WhoisAccumulator collects WHOIS reply fragments for one nick until
// rpl_endofwhois flushes them.
type WhoisAccumulator struct {
	Nick        string
	User        string
	Host        string
	RealName    string
	Server      string
	ServerInfo  string
	Idle        string
	Channels    []string
	Operator    bool
	Account     string
	AccountInfo string
	Away        string
}

// WhoState tracks in-flight WHO/WHOX requests. Queue holds the lowercased
// target of each WHO sent, and rpl_endofwho removes it again. The requested
// format is not recorded: handleWho applies each reply row as it arrives,
// reading only the plain 352 layout and the "%tacuhnr,2" WHOX layout, and
// drops 354 rows of any other format. Data is not filled in.
type WhoState struct {
	Data  map[string][][]string
	Queue []string
}

func newWhoState() *WhoState {
	return &WhoState{Data: make(map[string][][]string)}
}

// ChanModes groups the four CHANMODES categories (A, B, C, D) plus the
// membership-prefix modes PREFIX appends to category B.
type ChanModes struct {
	A, B, C, D string
}

// ChannelSupport groups the channel-related ISUPPORT fields.
type ChannelSupport struct {
	Length int
	Types  string
	Limit  map[string]int
	Modes  ChanModes
	IDLength map[string]string
}

// Supported is the feature set absorbed from ISUPPORT (005) replies.
type Supported struct {
	Channel      ChannelSupport
	KickLength   string
	NickLength   int
	TopicLength  int
	Modes        int
	MaxList      map[string]int
	MaxTargets   map[string]int
	WHOX         bool
	UserModes    string
	Capabilities map[string]string
}

func newSupported() *Supported {
	return &Supported{
		Channel: ChannelSupport{
			Limit:    make(map[string]int),
			IDLength: make(map[string]string),
		},
		MaxList:      make(map[string]int),
		MaxTargets:   make(map[string]int),
		Capabilities: make(map[string]string),
	}
}

// ServerInfo holds ambient server identification absorbed from 002 (Host,
// Version) and 003 (Created),
// not part of the original data model but cheap and standard to track.
type ServerInfo struct {
	Host    string
	Version string
	Created time.Time
}

// channelListEntry is one row accumulated from a LIST reply.
type channelListEntry struct {
	Name  string
	Users int
	Topic string
}

// SessionState is the single-writer in-memory model of the current IRC
// session. Every field here is per-instance: nothing is shared across
// Client values, which was a latent bug in the implementation this model
// reproduces the behavior of.
type SessionState struct {
	OwnNick       string
	HostMask      string
	MaxLineLength int

	Capabilities  map[string]bool
	PendingCapReq []string

	// chans is read from outside the session goroutine by accessors like
	// NicksInChannel, so it uses a concurrent map; writes still only ever
	// happen from the session goroutine (§5).
	chans cmap.ConcurrentMap

	SyncChans map[string]time.Time

	MotdBuffer  string
	ChannelList []channelListEntry

	PrefixForMode map[byte]byte
	ModeForPrefix map[byte]byte

	Supported Supported
	Server    ServerInfo

	Who *WhoState

	// whoisBuf is likewise read from outside the session goroutine when a
	// caller's one-shot whois callback fires after flush.
	whoisBuf cmap.ConcurrentMap

	RequestedDisconnect bool
}

// NewSessionState returns a freshly initialized, empty session.
func NewSessionState() *SessionState {
	return &SessionState{
		Capabilities:  make(map[string]bool),
		chans:         cmap.New(),
		SyncChans:     make(map[string]time.Time),
		PrefixForMode: make(map[byte]byte),
		ModeForPrefix: make(map[byte]byte),
		Supported:     *newSupported(),
		Who:           newWhoState(),
		whoisBuf:      cmap.New(),
	}
}

// lowerName applies the lowercasing spec.md's Channel.key invariant
// requires. Full RFC1459 casemapping (where {}|^ fold onto []\~) is a
// per-server negotiated detail this module does not track separately;
// ASCII lowercasing covers the overwhelming common case and matches what
// CHANTYPES-based key comparisons need.
func lowerName(s string) string {
	return strings.ToLower(s)
}

// recomputeMaxLineLength enforces the invariant
// maxLineLength == 497 - len(ownNick) - len(hostMask).
func (s *SessionState) recomputeMaxLineLength() {
	s.MaxLineLength = 497 - len(s.OwnNick) - len(s.HostMask)
}

// ChanData returns the channel keyed by the lowercased form of name,
// creating an empty skeleton first if create is true and it doesn't exist.
func (s *SessionState) ChanData(name string, create bool) *Channel {
	key := lowerName(name)
	if v, ok := s.chans.Get(key); ok {
		return v.(*Channel)
	}
	if !create {
		return nil
	}

	ch := newChannel(name)
	s.chans.Set(key, ch)
	return ch
}

// deleteChan removes a channel entirely, e.g. on self-PART/self-KICK.
func (s *SessionState) deleteChan(name string) {
	s.chans.Remove(lowerName(name))
}

// eachChan calls fn for every currently-tracked channel.
func (s *SessionState) eachChan(fn func(ch *Channel)) {
	for item := range s.chans.IterBuffered() {
		fn(item.Val.(*Channel))
	}
}

// NickInChannels enumerates the channels containing nick. If remove is
// true, the nick's membership is dropped from each as it is found.
func (s *SessionState) NickInChannels(nick string, remove bool) []string {
	key := lowerName(nick)

	var out []string
	s.eachChan(func(ch *Channel) {
		if _, ok := ch.Users[key]; ok {
			out = append(out, ch.ServerName)
			if remove {
				delete(ch.Users, key)
			}
		}
	})
	return out
}

// userHasChanMode reports whether nick has mode set in channel. Unknown
// channel or nick: false.
func (s *SessionState) userHasChanMode(channel, nick string, mode byte) bool {
	ch := s.ChanData(channel, false)
	if ch == nil {
		return false
	}
	u, ok := ch.Users[lowerName(nick)]
	if !ok {
		return false
	}
	return u.Modes[mode]
}

// nickHasChanMode is an alias kept for symmetry with the public surface
// described in §4.4; it behaves identically to userHasChanMode.
func (s *SessionState) nickHasChanMode(channel, nick string, mode byte) bool {
	return s.userHasChanMode(channel, nick, mode)
}

// haveOp reports whether our own nick has the channel's "op" prefix mode
// in channel (the mode mapped to '@' via PrefixForMode, if any).
func (s *SessionState) haveOp(channel string) bool {
	return s.selfHasPrefix(channel, '@')
}

// haveVoice reports whether our own nick has the '+' (voice) prefix mode.
func (s *SessionState) haveVoice(channel string) bool {
	return s.selfHasPrefix(channel, '+')
}

func (s *SessionState) selfHasPrefix(channel string, prefix byte) bool {
	mode, ok := s.PrefixForMode[prefix]
	if !ok {
		return false
	}
	return s.userHasChanMode(channel, s.OwnNick, mode)
}

// UsersWithChanMode returns the UserEntry values in channel that carry
// mode.
func (s *SessionState) UsersWithChanMode(channel string, mode byte) []*UserEntry {
	ch := s.ChanData(channel, false)
	if ch == nil {
		return nil
	}
	var out []*UserEntry
	for _, u := range ch.Users {
		if u.Modes[mode] {
			out = append(out, u)
		}
	}
	return out
}

// NicksWithChanMode returns the nicks in channel that carry mode.
func (s *SessionState) NicksWithChanMode(channel string, mode byte) []string {
	ch := s.ChanData(channel, false)
	if ch == nil {
		return nil
	}
	var out []string
	for nick, u := range ch.Users {
		if u.Modes[mode] {
			out = append(out, nick)
		}
	}
	return out
}

// NicksInChannel lists the nicks present in channel, optionally filtered
// by withoutModes: with combined==true, a nick is excluded only if it
// carries ALL of withoutModes; with combined==false (the default), a nick
// is excluded if it carries ANY of withoutModes.
func (s *SessionState) NicksInChannel(channel string, withoutModes []byte, combined bool) []string {
	ch := s.ChanData(channel, false)
	if ch == nil {
		return nil
	}

	var out []string
	for nick, u := range ch.Users {
		if len(withoutModes) == 0 {
			out = append(out, nick)
			continue
		}

		excluded := combined
		for _, mode := range withoutModes {
			has := s.userHasChanMode(channel, nick, mode)
			if combined {
				excluded = excluded && has
			} else {
				if has {
					excluded = true
					break
				}
			}
		}

		if !excluded {
			out = append(out, nick)
		}
	}
	return out
}

// whoisEntry returns (creating if absent) the accumulator for nick.
func (s *SessionState) whoisEntry(nick string, create bool) *WhoisAccumulator {
	key := lowerName(nick)
	if v, ok := s.whoisBuf.Get(key); ok {
		return v.(*WhoisAccumulator)
	}
	if !create {
		return nil
	}
	acc := &WhoisAccumulator{Nick: nick}
	s.whoisBuf.Set(key, acc)
	return acc
}

// flushWhois removes and returns the accumulator for nick, if any.
func (s *SessionState) flushWhois(nick string) *WhoisAccumulator {
	key := lowerName(nick)
	v, ok := s.whoisBuf.Pop(key)
	if !ok {
		return nil
	}
	return v.(*WhoisAccumulator)
}
