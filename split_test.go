// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"reflect"
	"testing"
)

func TestSplitLineWhitespaceScan(t *testing.T) {
	got := splitLine("hello world of irc", 10)
	want := []string{"hello", "world of", "irc"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitLine() = %v, want %v", got, want)
	}
}

func TestSplitLineHardCut(t *testing.T) {
	got := splitLine("abcdefgh", 3)
	want := []string{"abc", "def", "gh"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitLine() = %v, want %v", got, want)
	}
}

func TestSplitLineUnderLimit(t *testing.T) {
	got := splitLine("short", 100)
	want := []string{"short"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitLine() = %v, want %v", got, want)
	}
}

func TestSplitLineNonPositiveMax(t *testing.T) {
	got := splitLine("anything", 0)
	want := []string{"anything"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitLine() = %v, want %v", got, want)
	}
}

func TestSplitMessageNewlines(t *testing.T) {
	got := splitMessage("line one\nline two", 100)
	want := []string{"line one", "line two"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitMessage() = %v, want %v", got, want)
	}
}

func TestSplitMessageNewlinesAndLength(t *testing.T) {
	got := splitMessage("hello world of irc\nabcdefgh", 10)
	want := []string{"hello", "world of", "irc", "abcdefgh"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitMessage() = %v, want %v", got, want)
	}
}
