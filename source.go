// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "strings"

// splitPrefix parses an IRC message prefix (the part between ":" and the
// first space) into its nick/user/host components. A prefix may be a bare
// servername ("irc.example.net"), in which case nick holds the whole string
// and user/host are empty.
func splitPrefix(raw string) (nick, user, host string) {
	uh := strings.IndexByte(raw, '@')
	if uh >= 0 {
		host = raw[uh+1:]
		raw = raw[:uh]
	}

	ni := strings.IndexByte(raw, '!')
	if ni >= 0 {
		user = raw[ni+1:]
		raw = raw[:ni]
	}

	nick = raw
	return nick, user, host
}

// joinHostmask reassembles a nick/user/host triple into nick!user@host,
// omitting parts that are empty.
func joinHostmask(nick, user, host string) string {
	var b strings.Builder
	b.WriteString(nick)
	if user != "" {
		b.WriteByte('!')
		b.WriteString(user)
	}
	if host != "" {
		b.WriteByte('@')
		b.WriteString(host)
	}
	return b.String()
}
