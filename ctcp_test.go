// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "testing"

func TestIsCTCP(t *testing.T) {
	if !isCTCP("\x01VERSION\x01") {
		t.Error("expected wrapped payload to be detected as CTCP")
	}
	if isCTCP("hello") {
		t.Error("expected plain text not to be detected as CTCP")
	}
	if isCTCP("\x01") {
		t.Error("expected single-byte payload to be rejected")
	}
}

func TestDecodeCTCPWithText(t *testing.T) {
	f := Frame{Command: "privmsg", Nick: "alice", Args: []string{"bob", "\x01PING 12345\x01"}}
	ctcp := decodeCTCP(f)
	if ctcp == nil {
		t.Fatal("expected a decoded CTCP event")
	}
	if ctcp.Command != "PING" || ctcp.Text != "12345" || ctcp.Reply {
		t.Errorf("decodeCTCP() = %+v", ctcp)
	}
}

func TestDecodeCTCPCommandOnly(t *testing.T) {
	f := Frame{Command: "notice", Nick: "alice", Args: []string{"bob", "\x01VERSION\x01"}}
	ctcp := decodeCTCP(f)
	if ctcp == nil {
		t.Fatal("expected a decoded CTCP event")
	}
	if ctcp.Command != "VERSION" || ctcp.Text != "" || !ctcp.Reply {
		t.Errorf("decodeCTCP() = %+v", ctcp)
	}
}

func TestDecodeCTCPRejectsPlainMessages(t *testing.T) {
	f := Frame{Command: "privmsg", Args: []string{"bob", "hello there"}}
	if decodeCTCP(f) != nil {
		t.Error("expected nil for a non-CTCP payload")
	}
}

func TestEncodeCTCPRaw(t *testing.T) {
	if got := encodeCTCPRaw("PING", "123"); got != "\x01PING 123\x01" {
		t.Errorf("encodeCTCPRaw() = %q", got)
	}
	if got := encodeCTCPRaw("VERSION", ""); got != "\x01VERSION\x01" {
		t.Errorf("encodeCTCPRaw() = %q", got)
	}
	if got := encodeCTCPRaw("", "x"); got != "" {
		t.Errorf("encodeCTCPRaw() with empty command = %q, want empty", got)
	}
}

func TestCTCPSetAndClear(t *testing.T) {
	c := newCTCP()

	var called bool
	c.Set("PING", func(client *Client, ctcp CTCPEvent) { called = true })
	c.call(nil, &CTCPEvent{Command: "PING"})
	if !called {
		t.Error("expected custom PING handler to run")
	}

	c.Clear("PING")
	called = false
	c.call(nil, &CTCPEvent{Command: "PING"})
	if called {
		t.Error("expected handler to be gone after Clear")
	}
}
