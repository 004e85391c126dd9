// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"sync"
	"time"
)

// Sender is the egress interface ProtocolHandler and CommandAPI write
// through. Two implementations exist: immediateSender writes straight to
// the transport, floodSender paces writes on a timer.
type Sender interface {
	// Send enqueues (or writes) a fully-serialized frame.
	Send(raw string)
	// SendImmediate bypasses any pacing, used for the shutdown QUIT.
	SendImmediate(raw string)
	// ClearQueue drops any pending, not-yet-written frames.
	ClearQueue()
}

// transportWriter is the minimal surface Sender implementations need from
// Transport.
type transportWriter interface {
	Write(b []byte) error
}

// immediateSender writes every frame straight to the transport in the
// caller's context. This is the default (Config.FloodProtection == false).
type immediateSender struct {
	t transportWriter
}

func newImmediateSender(t transportWriter) *immediateSender {
	return &immediateSender{t: t}
}

func (s *immediateSender) Send(raw string)          { _ = s.t.Write([]byte(raw)) }
func (s *immediateSender) SendImmediate(raw string)  { _ = s.t.Write([]byte(raw)) }
func (s *immediateSender) ClearQueue()               {}

// floodSender enqueues frames and drains them on a fixed interval, to
// avoid server-side flood kicks. The first dequeue tick fires immediately
// on activation, then on each subsequent interval.
type floodSender struct {
	t     transportWriter
	delay time.Duration

	mu    sync.Mutex
	queue []string

	stop chan struct{}
	once sync.Once
}

func newFloodSender(t transportWriter, delay time.Duration) *floodSender {
	s := &floodSender{
		t:     t,
		delay: delay,
		stop:  make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *floodSender) loop() {
	s.drain()

	tick := time.NewTicker(s.delay)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			s.drain()
		case <-s.stop:
			return
		}
	}
}

func (s *floodSender) drain() {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	raw := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()

	_ = s.t.Write([]byte(raw))
}

// Send enqueues raw for the next pacing tick.
func (s *floodSender) Send(raw string) {
	s.mu.Lock()
	s.queue = append(s.queue, raw)
	s.mu.Unlock()
}

// SendImmediate bypasses the queue entirely.
func (s *floodSender) SendImmediate(raw string) {
	_ = s.t.Write([]byte(raw))
}

// ClearQueue drops any frames not yet written.
func (s *floodSender) ClearQueue() {
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
}

// Close stops the pacing goroutine. Safe to call more than once.
func (s *floodSender) Close() {
	s.once.Do(func() { close(s.stop) })
}
