// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import "sync"

// HandlerFunc receives a Frame along with the Client that produced it.
type HandlerFunc func(c *Client, f Frame)

type subscriber struct {
	id      uint64
	fn      HandlerFunc
	once    bool
	removed bool
}

// EventBus is a name-indexed pub/sub dispatcher. Handlers registered for a
// name fire synchronously, in registration order, whenever that name is
// emitted. Event names are arbitrary strings, not just raw IRC commands —
// this module emits derived names like "message#channel" and "selfjoin"
// alongside the wire commands.
type EventBus struct {
	mu   sync.Mutex
	subs map[string][]*subscriber
	next uint64
}

// NewEventBus returns an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[string][]*subscriber)}
}

// On registers fn to run every time name is emitted. It returns a token
// that Off can use to remove this specific registration.
func (b *EventBus) On(name string, fn HandlerFunc) uint64 {
	return b.register(name, fn, false)
}

// Once registers fn to run exactly once: it is removed before being
// invoked, so a handler that re-emits the same event cannot re-trigger
// itself.
func (b *EventBus) Once(name string, fn HandlerFunc) uint64 {
	return b.register(name, fn, true)
}

func (b *EventBus) register(name string, fn HandlerFunc, once bool) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	id := b.next
	b.subs[name] = append(b.subs[name], &subscriber{id: id, fn: fn, once: once})
	return id
}

// Off removes a specific subscriber by the token On/Once returned.
func (b *EventBus) Off(name string, token uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[name]
	for i, s := range list {
		if s.id == token {
			b.subs[name] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Emit dispatches frame to every handler registered under name, in
// registration order. Once-handlers are removed before being invoked. A
// panic from a handler is recovered and, if requestedDisconnect is false,
// re-raised once dispatch to the remaining handlers has completed — a
// handler failure must not prevent its siblings from running, but a
// session that is not shutting down still surfaces it as fatal.
func (b *EventBus) Emit(c *Client, name string, frame Frame, requestedDisconnect bool) {
	b.mu.Lock()
	list := make([]*subscriber, len(b.subs[name]))
	copy(list, b.subs[name])
	kept := b.subs[name][:0]
	for _, s := range list {
		if !s.once {
			kept = append(kept, s)
		}
	}
	b.subs[name] = kept
	b.mu.Unlock()

	if len(list) == 0 {
		return
	}

	var onceIDs []uint64
	var firstPanic any

	for _, s := range list {
		if s.once {
			onceIDs = append(onceIDs, s.id)
		}

		func() {
			defer func() {
				if r := recover(); r != nil && firstPanic == nil {
					firstPanic = r
				}
			}()
			s.fn(c, frame)
		}()
	}

	if len(onceIDs) > 0 {
		b.mu.Lock()
		remaining := b.subs[name][:0]
		for _, s := range b.subs[name] {
			keep := true
			for _, id := range onceIDs {
				if s.id == id {
					keep = false
					break
				}
			}
			if keep {
				remaining = append(remaining, s)
			}
		}
		b.subs[name] = remaining
		b.mu.Unlock()
	}

	if firstPanic != nil && !requestedDisconnect {
		panic(firstPanic)
	}
}

// Len reports the total number of live registrations, mainly for debug
// logging and tests.
func (b *EventBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, list := range b.subs {
		n += len(list)
	}
	return n
}
