// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"reflect"
	"testing"
)

func TestParseFrameServerPrefix(t *testing.T) {
	f := ParseFrame(":irc.example.net 001 dan :Welcome to the network", false)
	if f.Prefix != "irc.example.net" || f.Nick != "irc.example.net" || f.User != "" || f.Host != "" {
		t.Errorf("ParseFrame() prefix fields = %+v", f)
	}
	if f.Command != "rpl_welcome" || f.CommandType != "reply" || f.RawCommand != "001" {
		t.Errorf("ParseFrame() command fields = %+v", f)
	}
	if !reflect.DeepEqual(f.Args, []string{"dan", "Welcome to the network"}) {
		t.Errorf("ParseFrame() args = %v", f.Args)
	}
}

func TestParseFrameUserPrefix(t *testing.T) {
	f := ParseFrame(":dan!dan@localhost PRIVMSG #test :hello there", false)
	if f.Nick != "dan" || f.User != "dan" || f.Host != "localhost" {
		t.Errorf("ParseFrame() prefix fields = %+v", f)
	}
	if f.Command != "privmsg" || f.CommandType != "normal" {
		t.Errorf("ParseFrame() command fields = %+v", f)
	}
	if !reflect.DeepEqual(f.Args, []string{"#test", "hello there"}) {
		t.Errorf("ParseFrame() args = %v", f.Args)
	}
}

func TestParseFrameErrorNumeric(t *testing.T) {
	f := ParseFrame(":irc.example.net 433 * dan :Nickname is already in use.", false)
	if f.Command != "err_nicknameinuse" || f.CommandType != "error" {
		t.Errorf("ParseFrame() = %+v", f)
	}
}

func TestParseFrameNoPrefix(t *testing.T) {
	f := ParseFrame("PING :12345", false)
	if f.Prefix != "" || f.Command != "ping" {
		t.Errorf("ParseFrame() = %+v", f)
	}
	if !reflect.DeepEqual(f.Args, []string{"12345"}) {
		t.Errorf("ParseFrame() args = %v", f.Args)
	}
}

func TestSerializeTrailingMarker(t *testing.T) {
	tests := []struct {
		cmd  string
		args []string
		want string
	}{
		{"PING", []string{"12345"}, "PING 12345\r\n"},
		{"PRIVMSG", []string{"#test", "hello world"}, "PRIVMSG #test :hello world\r\n"},
		{"JOIN", []string{"#test"}, "JOIN #test\r\n"},
		{"PRIVMSG", []string{"#test", ""}, "PRIVMSG #test :\r\n"},
		{"PRIVMSG", []string{"#test", ":alreadytrailing"}, "PRIVMSG #test ::alreadytrailing\r\n"},
	}

	for _, tt := range tests {
		if got := Serialize(tt.cmd, tt.args...); got != tt.want {
			t.Errorf("Serialize(%q, %v) = %q, want %q", tt.cmd, tt.args, got, tt.want)
		}
	}
}

func TestFrameDecoderBufferBoundaries(t *testing.T) {
	d := NewFrameDecoder(nil)

	// Split a single line across two Feed calls.
	lines, err := d.Feed([]byte("PING :123"))
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no complete lines yet, got %v", lines)
	}

	lines, err = d.Feed([]byte("45\r\nPRIVMSG #test :hi\r\n"))
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	want := []string{"PING :12345", "PRIVMSG #test :hi"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Feed() = %v, want %v", lines, want)
	}
}

func TestFrameDecoderMultipleLinesPerChunk(t *testing.T) {
	d := NewFrameDecoder(nil)

	// A lone trailing \r is treated as a completed line terminator rather
	// than held back speculatively, so a following \n on its own produces an
	// empty (dropped) line rather than merging into a CRLF pair.
	lines, err := d.Feed([]byte("NOTICE a :one\r\nNOTICE b :two\nNOTICE c :three\r"))
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	want := []string{"NOTICE a :one", "NOTICE b :two", "NOTICE c :three"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Feed() = %v, want %v", lines, want)
	}

	lines, err = d.Feed([]byte("\nNOTICE d :four\r\n"))
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	want = []string{"NOTICE d :four"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("Feed() = %v, want %v", lines, want)
	}
}

func TestFrameDecoderDropsEmptyLines(t *testing.T) {
	d := NewFrameDecoder(nil)
	lines, err := d.Feed([]byte("\r\n\r\nPING :1\r\n\r\n"))
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"PING :1"}) {
		t.Errorf("Feed() = %v", lines)
	}
}
