// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "testing"

func TestSplitPrefix(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		nick     string
		user     string
		host     string
	}{
		{"full", "dan!dan@localhost", "dan", "dan", "localhost"},
		{"noUser", "dan@localhost", "dan", "", "localhost"},
		{"nickOnly", "dan", "dan", "", ""},
		{"serverName", "irc.example.net", "irc.example.net", "", ""},
		{"userNoHost", "dan!dan", "dan", "dan", ""},
		{"empty", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nick, user, host := splitPrefix(tt.raw)
			if nick != tt.nick || user != tt.user || host != tt.host {
				t.Errorf("splitPrefix(%q) = (%q, %q, %q), want (%q, %q, %q)",
					tt.raw, nick, user, host, tt.nick, tt.user, tt.host)
			}
		})
	}
}

func TestJoinHostmask(t *testing.T) {
	tests := []struct {
		name             string
		nick, user, host string
		want             string
	}{
		{"full", "dan", "dan", "localhost", "dan!dan@localhost"},
		{"noHost", "dan", "dan", "", "dan!dan"},
		{"noUser", "dan", "", "localhost", "dan@localhost"},
		{"nickOnly", "dan", "", "", "dan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinHostmask(tt.nick, tt.user, tt.host); got != tt.want {
				t.Errorf("joinHostmask(%q, %q, %q) = %q, want %q", tt.nick, tt.user, tt.host, got, tt.want)
			}
		})
	}
}

func TestSplitPrefixJoinHostmaskRoundTrip(t *testing.T) {
	raws := []string{"dan!dan@localhost", "irc.example.net", "dan@localhost"}
	for _, raw := range raws {
		nick, user, host := splitPrefix(raw)
		if got := joinHostmask(nick, user, host); got != raw {
			t.Errorf("round trip %q -> %q", raw, got)
		}
	}
}
