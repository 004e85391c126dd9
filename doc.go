// Copyright 2016-2017 Liam Stanley <me@liamstanley.io>. All rights reserved.
// Use of this source code is governed by the MIT license that can be
// found in the LICENSE file.

// Package irc is a protocol engine for IRC clients: frame parsing and
// serialization, transport lifecycle (including TLS with tolerant
// self-signed/expired certificate handling), session state tracking
// (nicks, channels, users, WHOIS, ISUPPORT, capabilities), CAP/SASL
// negotiation, CTCP, and bounded-retry reconnection.
//
// The package owns no UI and no CLI front-end; it is meant to be embedded
// by something that wants to speak IRC. Construct a Client with New,
// register event handlers on Client.Handlers, then call Connect.
package irc
