// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/halcyon-irc/irc/internal/ctxgroup"
)

// WebIRC carries the WEBIRC header fields used by gateways (web clients,
// bouncers) to forward the real originating host/address instead of the
// gateway's own. Pass, IP and Host must all be set for the header to be
// sent; User is passed through but not required.
type WebIRC struct {
	Pass string
	User string
	IP   string
	Host string
}

func (w WebIRC) ready() bool {
	return w.Pass != "" && w.IP != "" && w.Host != ""
}

// Config holds the options recognized by New, matching §6's configuration
// table. Fields left at their zero value take the defaults documented
// below, applied by New.
type Config struct {
	Server       string // target host. Required.
	Nick         string // desired nickname. Required.
	Password     string // server PASS, or the SASL PLAIN secret when SASL is set.
	UserName     string // IRC user / SASL authcid. Default "nodebot".
	RealName     string // GECOS. Default "nodeJS IRC client".
	Port         int    // TCP port. Default 6667.
	LocalAddress string // source bind address.

	Debug      io.Writer // raw line + debug logging destination. Default discarded.
	ShowErrors bool      // log server error replies.

	AutoRejoin bool     // send JOIN for a channel whenever a KICK from it is observed.
	Channels   []string // joined automatically once the MOTD completes.

	RetryCount *int          // max reconnect attempts; nil = unbounded.
	RetryDelay time.Duration // reconnect backoff. Default 2s.

	Secure      bool // dial with TLS.
	SelfSigned  bool // tolerate a self-signed leaf certificate.
	CertExpired bool // tolerate an expired leaf certificate.
	TLSConfig   *tls.Config

	FloodProtection      bool          // pace outbound frames through SendQueue.
	FloodProtectionDelay time.Duration // pacing interval. Default 1s.

	SASL         bool     // authenticate via SASL PLAIN after CAP negotiation.
	Capabilities []string // CAP REQ set, intersected with what the server supports.

	StripColors     bool   // passed to ParseFrame, which ignores it: formatting codes are not stripped.
	ChannelPrefixes string // initial CHANTYPES, before 005 overrides it. Default "&#".
	MessageSplit    int    // reserved upper bound for outbound line length. Default 512.

	Transcoder Transcoder // decodes inbound bytes to text. Default PassthroughTranscoder.

	WebIRC WebIRC
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = 6667
	}
	if c.UserName == "" {
		c.UserName = "nodebot"
	}
	if c.RealName == "" {
		c.RealName = "nodeJS IRC client"
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.FloodProtectionDelay == 0 {
		c.FloodProtectionDelay = time.Second
	}
	if c.ChannelPrefixes == "" {
		c.ChannelPrefixes = "&#"
	}
	if c.MessageSplit == 0 {
		c.MessageSplit = 512
	}
}

func (c *Config) validate() error {
	if c.Server == "" {
		return errors.New("config: empty server")
	}
	if !IsValidNick(c.Nick) {
		return fmt.Errorf("config: invalid nickname %q", c.Nick)
	}
	if !IsValidUser(c.UserName) {
		return fmt.Errorf("config: invalid user name %q", c.UserName)
	}
	return nil
}

// Client manages a single IRC session: one Transport, one SessionState, one
// dispatch loop. Nothing about Client is shared across instances (§9).
type Client struct {
	config Config

	state    *SessionState
	Handlers *EventBus
	CTCP     *CTCP
	Cmd      *Commands

	transport *Transport
	sender    Sender
	floodSend *floodSender // non-nil only when FloodProtection is enabled, for Close.
	decoder   *FrameDecoder
	reconnect *ReconnectSupervisor

	debug *log.Logger

	baseNick    string // config.Nick as originally given, before any nick-in-use escalation.
	nickAttempt int    // number of escalation suffixes tried so far.

	// mu guards the Client-lifecycle fields above (transport, sender,
	// floodSend, decoder, reconnect, cmdQueue) plus state.RequestedDisconnect.
	// It is never held across dispatch or Handlers.Emit: §5's single-writer
	// invariant over SessionState is instead upheld by cmdQueue below, so a
	// handler invoked during dispatch is free to call back into Commands
	// without re-entering a lock it's already holding.
	mu sync.Mutex

	// cmdQueue is the hand-off point §5 requires for CommandAPI calls that
	// read or mutate SessionState: non-nil only while connected (set up in
	// connect, drained solely by sessionLoop), so every such read/mutation
	// runs on the single session goroutine alongside ProtocolHandler
	// instead of racing it. See submit.
	cmdQueue chan func()

	stop     context.CancelFunc
	initTime time.Time
}

// submit hands fn off to the session goroutine when one is running, so it
// executes serialized with ProtocolHandler dispatch per §5; with no live
// session (cmdQueue nil, e.g. before Connect or in tests that talk to
// Commands directly) or a saturated queue, fn runs inline instead.
func (c *Client) submit(fn func()) {
	c.mu.Lock()
	q := c.cmdQueue
	c.mu.Unlock()

	if q == nil {
		fn()
		return
	}

	select {
	case q <- fn:
	default:
		fn()
	}
}

// New constructs a Client from config. It does not connect; call Connect.
func New(config Config) (*Client, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   config,
		state:    NewSessionState(),
		Handlers: NewEventBus(),
		CTCP:     newCTCP(),
		initTime: time.Now(),
		baseNick: config.Nick,
	}
	c.Cmd = &Commands{c: c}

	c.state.Supported.Channel.Types = config.ChannelPrefixes

	debugOut := config.Debug
	if debugOut == nil {
		debugOut = ioutil.Discard
	}
	c.debug = log.New(debugOut, "debug: ", log.Ltime|log.Lshortfile)

	c.registerBuiltins()
	c.registerCAP()

	return c, nil
}

func (c *Client) logf(format string, a ...interface{}) {
	c.debug.Printf(format, a...)
}

// Connect dials the configured server and runs the session loop until the
// connection closes or ctx is canceled. It is reconnect attempt 0;
// ReconnectSupervisor calls connect with increasing attempt numbers on
// automatic retries.
func (c *Client) Connect(ctx context.Context) error {
	return c.connect(ctx, 0)
}

func (c *Client) connect(ctx context.Context, attempt int) error {
	addr := dialAddr(c.config.Server, c.config.Port)

	var tlsCfg *TLSConfig
	if c.config.Secure {
		tlsCfg = &TLSConfig{
			Enabled:     true,
			SelfSigned:  c.config.SelfSigned,
			CertExpired: c.config.CertExpired,
			Config:      c.config.TLSConfig,
		}
	}

	transport, err := DialTransport(addr, c.config.LocalAddress, tlsCfg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.transport = transport
	c.decoder = NewFrameDecoder(c.config.Transcoder)
	c.state.RequestedDisconnect = false
	c.cmdQueue = make(chan func(), 256)

	if c.config.FloodProtection {
		fs := newFloodSender(transport, c.config.FloodProtectionDelay)
		c.floodSend = fs
		c.sender = fs
	} else {
		c.floodSend = nil
		c.sender = newImmediateSender(transport)
	}

	c.reconnect = NewReconnectSupervisor(c.config.RetryCount, c.config.RetryDelay,
		func(next int) error { return c.connect(ctx, next) },
		func(limit int) { c.Handlers.Emit(c, "abort", Frame{Args: []string{fmt.Sprint(limit)}}, true) },
	)
	c.mu.Unlock()

	group := ctxgroup.New(ctx)
	c.stop = group.Cancel

	group.Go(func(ctx context.Context) error {
		transport.Run()
		return nil
	})
	group.Go(func(ctx context.Context) error {
		c.sessionLoop(ctx, transport.Events(), attempt)
		return nil
	})

	return group.Wait()
}

func (c *Client) sessionLoop(ctx context.Context, events <-chan TransportEvent, attempt int) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-c.cmdQueue:
			fn()
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case TransportOpen:
				c.onOpen()
			case TransportData:
				c.onData(ev.Data)
			case TransportClose, TransportError:
				c.onClose(ctx, attempt)
				return
			}
		}
	}
}

func (c *Client) onOpen() {
	c.logf("connection open to %s", c.config.Server)

	if c.config.WebIRC.ready() {
		c.sender.Send(Serialize("WEBIRC", c.config.WebIRC.Pass, c.config.WebIRC.User, c.config.WebIRC.Host, c.config.WebIRC.IP))
	}
	if c.config.Password != "" && !c.config.SASL {
		c.sender.Send(Serialize("PASS", c.config.Password))
	}

	c.sendCapLS()

	c.sender.Send(Serialize("NICK", c.config.Nick))
	c.sender.Send(Serialize("USER", c.config.UserName, "0", "*", c.config.RealName))

	c.Handlers.Once("cap-end", func(c *Client, f Frame) {
		c.Handlers.Emit(c, "connect", f, c.state.RequestedDisconnect)
	})
}

func (c *Client) onData(data []byte) {
	c.mu.Lock()
	lines, err := c.decoder.Feed(data)
	c.mu.Unlock()
	if err != nil {
		c.logf("decode error: %v", err)
		return
	}

	for _, line := range lines {
		f := ParseFrame(line, c.config.StripColors)
		c.logf("< %s", line)
		dispatch(c, f)
	}
}

func (c *Client) onClose(ctx context.Context, attempt int) {
	c.mu.Lock()
	requested := c.state.RequestedDisconnect
	sup := c.reconnect
	if c.floodSend != nil {
		c.floodSend.Close()
	}
	c.mu.Unlock()

	c.Handlers.Emit(c, "end", Frame{}, requested)

	if requested || sup == nil {
		return
	}

	sup.OnClose(attempt)
}

// Disconnect sends QUIT (bypassing flood pacing after clearing any pending
// queue) and cooperatively closes the transport.
func (c *Client) Disconnect(message string) error {
	c.mu.Lock()
	c.state.RequestedDisconnect = true
	sender := c.sender
	transport := c.transport
	stop := c.stop
	c.mu.Unlock()

	if sender != nil {
		sender.ClearQueue()
		sender.SendImmediate(Serialize("QUIT", message))
	}
	if stop != nil {
		stop()
	}
	if transport != nil {
		return transport.RequestClose()
	}
	return nil
}

// String returns a brief description of the client, mainly for logging.
func (c *Client) String() string {
	return fmt.Sprintf("<Client server=%q nick=%q handlers=%d>", c.config.Server, c.config.Nick, c.Handlers.Len())
}

// HasCapability reports whether name was successfully negotiated via CAP.
func (c *Client) HasCapability(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Capabilities[strings.ToLower(name)]
}
