// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "time"

// ReconnectSupervisor schedules reconnect attempts after an unexpected
// transport close, up to a bounded retry count. A nil RetryCount means
// unbounded retries.
type ReconnectSupervisor struct {
	RetryCount *int
	RetryDelay time.Duration

	// reconnect is invoked with the next attempt number; it returns an
	// error for the attempt (mirroring Client.connect's return).
	reconnect func(attempt int) error
	// abort is invoked when the bound is reached, with the configured
	// RetryCount.
	abort func(limit int)
}

// NewReconnectSupervisor builds a supervisor bound to the given reconnect
// and abort callbacks.
func NewReconnectSupervisor(retryCount *int, retryDelay time.Duration, reconnect func(int) error, abort func(int)) *ReconnectSupervisor {
	return &ReconnectSupervisor{
		RetryCount: retryCount,
		RetryDelay: retryDelay,
		reconnect:  reconnect,
		abort:      abort,
	}
}

// OnClose is called by the session loop when the transport closes and the
// disconnect was not requested by the caller. attempt is the number of
// reconnect attempts made so far (0 on the first unexpected close).
func (r *ReconnectSupervisor) OnClose(attempt int) {
	if r.RetryCount != nil && attempt >= *r.RetryCount {
		r.abort(*r.RetryCount)
		return
	}

	time.Sleep(r.RetryDelay)
	_ = r.reconnect(attempt + 1)
}
