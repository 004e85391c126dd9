// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "testing"

func TestParseModesMembershipPrefix(t *testing.T) {
	modeForPrefix := map[byte]byte{'o': '@', 'v': '+'}

	got := parseModes("+ov", []string{"alice", "bob"}, modeForPrefix)
	if len(got) != 2 {
		t.Fatalf("parseModes() = %v, want 2 toggles", got)
	}
	if got[0].add != true || got[0].name != 'o' || got[0].arg != "alice" {
		t.Errorf("toggle[0] = %+v", got[0])
	}
	if got[1].add != true || got[1].name != 'v' || got[1].arg != "bob" {
		t.Errorf("toggle[1] = %+v", got[1])
	}
}

func TestParseModesChannelArgModes(t *testing.T) {
	modeForPrefix := map[byte]byte{'o': '@'}

	got := parseModes("+kl", []string{"secret", "50"}, modeForPrefix)
	if len(got) != 2 || got[0].arg != "secret" || got[1].arg != "50" {
		t.Errorf("parseModes() = %+v", got)
	}
}

func TestParseModesNoArgChannelMode(t *testing.T) {
	modeForPrefix := map[byte]byte{'o': '@'}

	got := parseModes("+nt", nil, modeForPrefix)
	if len(got) != 2 || got[0].arg != "" || got[1].arg != "" {
		t.Errorf("parseModes() = %+v", got)
	}
}

func TestParseModesMixedAddRemove(t *testing.T) {
	modeForPrefix := map[byte]byte{'o': '@', 'v': '+'}

	got := parseModes("+o-v", []string{"alice", "bob"}, modeForPrefix)
	if len(got) != 2 {
		t.Fatalf("parseModes() = %v", got)
	}
	if !got[0].add || got[0].name != 'o' {
		t.Errorf("toggle[0] = %+v, want add o", got[0])
	}
	if got[1].add || got[1].name != 'v' {
		t.Errorf("toggle[1] = %+v, want remove v", got[1])
	}
}

func TestApplyChanModeAddAndRemove(t *testing.T) {
	mode := "nt"

	applyChanMode(&mode, 's', true)
	if mode != "nts" {
		t.Fatalf("applyChanMode(add s) = %q", mode)
	}

	applyChanMode(&mode, 's', true)
	if mode != "nts" {
		t.Fatalf("applyChanMode(add s again) = %q, want no duplication", mode)
	}

	applyChanMode(&mode, 'n', false)
	if mode != "ts" {
		t.Fatalf("applyChanMode(remove n) = %q", mode)
	}
}
