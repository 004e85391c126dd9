// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

// modeToggle is one +/- mode character parsed out of a MODE frame, along
// with the argument token it consumed (if any).
type modeToggle struct {
	add  bool
	name byte
	arg  string
}

// channelArgModes are the channel-mode letters that always consume an
// argument token, per §4.5's MODE bullet ("if it matches [bkl]").
const channelArgModes = "bkl"

// parseModes walks a MODE frame's flag string (args[1]) and the remaining
// argument tokens (args[2:]), classifying each flag as either a
// membership-prefix mode (a mode letter present in modeForPrefix, keyed by
// mode letter rather than by prefix character) or a channel mode, consuming
// an argument token for membership modes and for channel modes in
// channelArgModes.
func parseModes(flags string, rest []string, modeForPrefix map[byte]byte) []modeToggle {
	add := true
	var idx int
	var out []modeToggle

	for i := 0; i < len(flags); i++ {
		switch flags[i] {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}

		t := modeToggle{add: add, name: flags[i]}

		_, isPrefix := modeForPrefix[flags[i]]
		needsArg := isPrefix
		if !needsArg {
			for j := 0; j < len(channelArgModes); j++ {
				if channelArgModes[j] == flags[i] {
					needsArg = true
					break
				}
			}
		}

		if needsArg && idx < len(rest) {
			t.arg = rest[idx]
			idx++
		}

		out = append(out, t)
	}

	return out
}

// applyChanMode adds or removes mode from the channel's Mode string, without
// duplicating an already-present character.
func applyChanMode(mode *string, name byte, add bool) {
	has := false
	for i := 0; i < len(*mode); i++ {
		if (*mode)[i] == name {
			has = true
			break
		}
	}

	if add && !has {
		*mode += string(name)
		return
	}

	if !add && has {
		out := make([]byte, 0, len(*mode))
		for i := 0; i < len(*mode); i++ {
			if (*mode)[i] != name {
				out = append(out, (*mode)[i])
			}
		}
		*mode = string(out)
	}
}
