// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "bytes"

// IsValidChannel validates an IRC channel name against RFC 2812's channel
// grammar, plus "*" (commonly accepted by networks such as ZNC).
func IsValidChannel(channel string) bool {
	if len(channel) <= 1 || len(channel) > 50 {
		return false
	}

	// #, +, !<channelid>, &, or *
	if bytes.IndexByte([]byte{0x21, 0x23, 0x26, 0x2A, 0x2B}, channel[0]) == -1 {
		return false
	}

	if channel[0] == 0x21 {
		// !<channelid> requires a 5-char id plus at least one more byte.
		if len(channel) < 7 {
			return false
		}
	}

	for i := 1; i < len(channel); i++ {
		if channel[i] == 0x07 || channel[i] == 0x2C || channel[i] == 0x20 {
			// BEL, comma, space are never valid in a channel name.
			return false
		}
	}

	return true
}

// IsValidNick validates an IRC nickname against RFC 2812's grammar.
func IsValidNick(nick string) bool {
	if len(nick) == 0 {
		return false
	}

	// a-z, A-Z, and _\[]{}^|
	if nick[0] < 0x41 || nick[0] > 0x7D {
		return false
	}

	for i := 1; i < len(nick); i++ {
		if (nick[i] < 0x41 || nick[i] > 0x7D) && (nick[i] < 0x30 || nick[i] > 0x39) && nick[i] != 0x2D {
			return false
		}
	}

	return true
}

// IsValidUser validates an IRC username/ident. Networks are lenient here;
// this module only rejects the empty string and embedded whitespace/NUL.
func IsValidUser(user string) bool {
	if len(user) == 0 {
		return false
	}

	for i := 0; i < len(user); i++ {
		if user[i] == 0x00 || user[i] == 0x20 || user[i] == '\r' || user[i] == '\n' {
			return false
		}
	}

	return true
}
