// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "testing"

func TestChanDataCreatesSkeleton(t *testing.T) {
	s := NewSessionState()

	if ch := s.ChanData("#Test", false); ch != nil {
		t.Fatalf("expected nil for non-existent channel without create, got %+v", ch)
	}

	ch := s.ChanData("#Test", true)
	if ch == nil {
		t.Fatal("expected a channel to be created")
	}

	if ch.Key != "#test" {
		t.Errorf("Key = %q, want %q", ch.Key, "#test")
	}
	if ch.ServerName != "#Test" {
		t.Errorf("ServerName = %q, want %q", ch.ServerName, "#Test")
	}

	again := s.ChanData("#test", false)
	if again != ch {
		t.Error("expected ChanData to return the same instance on lookup by lowercased key")
	}
}

func TestRecomputeMaxLineLength(t *testing.T) {
	s := NewSessionState()
	s.OwnNick = "nick"
	s.HostMask = "nick!u@h.example"
	s.recomputeMaxLineLength()

	want := 497 - len("nick") - len("nick!u@h.example")
	if s.MaxLineLength != want {
		t.Errorf("MaxLineLength = %d, want %d", s.MaxLineLength, want)
	}
}

func TestNickInChannelsRemove(t *testing.T) {
	s := NewSessionState()
	a := s.ChanData("#a", true)
	b := s.ChanData("#b", true)
	a.Users["old"] = newUserEntry()
	b.Users["old"] = newUserEntry()

	chans := s.NickInChannels("old", false)
	if len(chans) != 2 {
		t.Fatalf("expected 2 channels, got %d (%v)", len(chans), chans)
	}

	chans = s.NickInChannels("old", true)
	if len(chans) != 2 {
		t.Fatalf("expected 2 channels on removal pass, got %d", len(chans))
	}

	if _, ok := a.Users["old"]; ok {
		t.Error("expected membership to be removed from #a")
	}
	if _, ok := b.Users["old"]; ok {
		t.Error("expected membership to be removed from #b")
	}
}

func TestUserHasChanMode(t *testing.T) {
	s := NewSessionState()
	ch := s.ChanData("#x", true)
	u := newUserEntry()
	u.Modes['o'] = true
	ch.Users["alice"] = u

	if !s.userHasChanMode("#x", "alice", 'o') {
		t.Error("expected alice to have mode o")
	}
	if s.userHasChanMode("#x", "alice", 'v') {
		t.Error("expected alice not to have mode v")
	}
	if s.userHasChanMode("#x", "bob", 'o') {
		t.Error("expected unknown user to report false")
	}
	if s.userHasChanMode("#nope", "alice", 'o') {
		t.Error("expected unknown channel to report false")
	}
}

func TestNicksInChannelFiltering(t *testing.T) {
	s := NewSessionState()
	ch := s.ChanData("#x", true)

	op := newUserEntry()
	op.Modes['o'] = true
	ch.Users["op"] = op

	voice := newUserEntry()
	voice.Modes['v'] = true
	ch.Users["voice"] = voice

	opVoice := newUserEntry()
	opVoice.Modes['o'] = true
	opVoice.Modes['v'] = true
	ch.Users["opvoice"] = opVoice

	plain := newUserEntry()
	ch.Users["plain"] = plain

	// OR semantics: excludes anyone with o OR v.
	or := s.NicksInChannel("#x", []byte{'o', 'v'}, false)
	if len(or) != 1 || or[0] != "plain" {
		t.Errorf("OR filter = %v, want [plain]", or)
	}

	// AND semantics: excludes only those with BOTH o and v.
	and := s.NicksInChannel("#x", []byte{'o', 'v'}, true)
	want := map[string]bool{"op": true, "voice": true, "plain": true}
	if len(and) != 3 {
		t.Errorf("AND filter = %v, want 3 entries excluding only opvoice", and)
	}
	for _, n := range and {
		if !want[n] {
			t.Errorf("unexpected nick %q in AND filter result", n)
		}
	}
}

func TestWhoisAccumulatorLifecycle(t *testing.T) {
	s := NewSessionState()

	if s.whoisEntry("nick", false) != nil {
		t.Fatal("expected no accumulator before creation")
	}

	acc := s.whoisEntry("Nick", true)
	acc.User = "u"

	same := s.whoisEntry("nick", false)
	if same != acc {
		t.Error("expected case-insensitive lookup to find the same accumulator")
	}

	flushed := s.flushWhois("NICK")
	if flushed != acc {
		t.Error("expected flushWhois to return the accumulator")
	}

	if s.whoisEntry("nick", false) != nil {
		t.Error("expected accumulator to be gone after flush")
	}
}
