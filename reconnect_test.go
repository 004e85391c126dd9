// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"testing"
	"time"
)

func TestReconnectSupervisorRetries(t *testing.T) {
	var attempts []int
	count := 3

	r := NewReconnectSupervisor(&count, time.Millisecond,
		func(attempt int) error { attempts = append(attempts, attempt); return nil },
		func(limit int) { t.Fatalf("abort called unexpectedly with limit %d", limit) },
	)

	r.OnClose(0)

	if len(attempts) != 1 || attempts[0] != 1 {
		t.Fatalf("attempts = %v, want [1]", attempts)
	}
}

func TestReconnectSupervisorBound(t *testing.T) {
	count := 2
	var aborted int
	var abortLimit int

	r := NewReconnectSupervisor(&count, time.Millisecond,
		func(attempt int) error { t.Fatalf("reconnect called unexpectedly with attempt %d", attempt); return nil },
		func(limit int) { aborted++; abortLimit = limit },
	)

	r.OnClose(2)

	if aborted != 1 {
		t.Fatalf("abort called %d times, want 1", aborted)
	}
	if abortLimit != 2 {
		t.Fatalf("abort limit = %d, want 2", abortLimit)
	}
}

func TestReconnectSupervisorUnboundedRetryCount(t *testing.T) {
	var attempt int
	r := NewReconnectSupervisor(nil, time.Millisecond,
		func(a int) error { attempt = a; return nil },
		func(limit int) { t.Fatal("abort should never fire with a nil RetryCount") },
	)

	r.OnClose(1000)

	if attempt != 1001 {
		t.Fatalf("attempt = %d, want 1001", attempt)
	}
}
