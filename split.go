// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"strings"
	"unicode"
)

// splitLine breaks a single line of text into sub-lines no longer than max
// runes, scanning backward from the cut point for whitespace so words are
// not broken apart when avoidable. If no whitespace exists in range, it
// hard-cuts at max.
func splitLine(line string, max int) []string {
	if max <= 0 {
		return []string{line}
	}

	var out []string
	for len([]rune(line)) > max {
		runes := []rune(line)
		cut := max

		idx := -1
		for i := cut; i >= 0; i-- {
			if i < len(runes) && unicode.IsSpace(runes[i]) {
				idx = i
				break
			}
		}

		if idx <= 0 {
			out = append(out, string(runes[:cut]))
			line = string(runes[cut:])
			continue
		}

		out = append(out, string(runes[:idx]))
		line = string(runes[idx+1:]) // consume the separating whitespace
	}

	out = append(out, line)
	return out
}

// splitMessage splits text on newlines first (each line sent as its own
// frame), then each resulting line via splitLine if it exceeds max.
func splitMessage(text string, max int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		out = append(out, splitLine(line, max)...)
	}
	return out
}
