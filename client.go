// Package gamenet is a client-side TCP networking library for
// interactive games and applications: long-lived, event-driven, framed
// byte-stream connections with optional TLS and optional per-message
// authenticated encryption (see package cipher and package securecodec).
package gamenet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/hkdf"

	"github.com/nalang/gamenet/internal/framing"
	"github.com/nalang/gamenet/internal/queue"
	"github.com/nalang/gamenet/internal/transport"
)

// portValidator checks the numeric port passed to Connect; a single
// shared instance, per go-playground/validator's own recommendation to
// cache the struct-and-tag metadata it builds on first use.
var portValidator = validator.New()

type clientState int32

const (
	stateIdle clientState = iota
	stateConnecting
	stateConnected
	stateClosing
)

func (s clientState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	case stateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Client is the public facade: connect/disconnect/send/poll over one
// long-lived TCP (optionally TLS) connection at a time. All methods are
// safe to call from any goroutine.
type Client struct {
	tag    string
	opts   ClientOptions
	log    *logrus.Entry
	events *queue.Bounded[Event]

	state  atomic.Int32
	connID atomic.Uint64

	mu     sync.Mutex
	engine *transport.Engine
	cancel context.CancelFunc
	ctag   string

	warnMu     sync.Mutex
	lastWarnAt time.Time
}

// queueWarnInterval is the minimum gap between consecutive event-queue
// depth warnings.
const queueWarnInterval = 10 * time.Second

// NewClient returns an idle Client identified by tag, which must be
// non-empty. tag is combined with a per-connect sequence number to form
// each connection's ctag ("<tag>#<id>").
func NewClient(tag string, opts ClientOptions) (*Client, error) {
	if tag == "" {
		return nil, ErrInvalidTag
	}

	normalized, err := opts.Transport.Normalize()
	if err != nil {
		return nil, err
	}
	opts.Transport = normalized

	return &Client{
		tag:    tag,
		opts:   opts,
		log:    logrus.NewEntry(opts.logger()).WithField("tag", tag),
		events: queue.NewBounded[Event](opts.Transport.MaxRecvQueue),
	}, nil
}

// Ctag returns the connection tag of the most recent (or current)
// connect attempt, or "" if Connect has never been called.
func (c *Client) Ctag() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctag
}

// Connected reports whether the client currently holds an established
// connection.
func (c *Client) Connected() bool {
	return clientState(c.state.Load()) == stateConnected
}

// Connecting reports whether a connect attempt is in flight.
func (c *Client) Connecting() bool {
	return clientState(c.state.Load()) == stateConnecting
}

// Connect validates host and, if the client is Idle, starts an
// asynchronous connect attempt: DNS/numeric resolution, TCP dial, and
// TLS handshake if configured, followed by the receive/send workers. A
// second Connect call while not Idle is a no-op that logs and returns
// nil, per the state machine's "at most one concurrent connect attempt"
// invariant.
func (c *Client) Connect(host string, port uint16) error {
	if host == "" {
		return ErrInvalidHost
	}
	if err := portValidator.Var(port, "gte=1,lte=65535"); err != nil {
		return err
	}

	if !c.state.CompareAndSwap(int32(stateIdle), int32(stateConnecting)) {
		c.log.WithField("state", clientState(c.state.Load())).Warn("connect called while not idle")
		return nil
	}

	if dropped := c.drainEvents(); dropped > 0 {
		c.log.WithField("dropped", dropped).Info("discarded leftover events from a previous session")
	}

	id := c.connID.Add(1)
	ctag := fmt.Sprintf("%s#%d", c.tag, id)
	c.mu.Lock()
	c.ctag = ctag
	c.mu.Unlock()

	to, err := c.opts.resolveTransportOptions()
	if err != nil {
		c.state.Store(int32(stateIdle))
		return err
	}

	go c.run(ctag, host, port, to)
	return nil
}

func (c *Client) run(ctag, host string, port uint16, to transport.Options) {
	log := c.log.WithField("ctag", ctag)
	ctx, cancel := context.WithCancel(context.Background())

	conn, err := transport.Dial(ctx, host, port, to)
	if err != nil {
		cancel()
		log.WithError(err).Warn("connect failed")
		c.state.Store(int32(stateClosing))
		c.pushEvent(Event{Tag: ctag, Kind: EventDisconnected})
		c.state.Store(int32(stateIdle))
		return
	}

	engine := transport.New(conn, ctag, clientSink{c}, to.SendTimeout, log)

	c.mu.Lock()
	c.engine = engine
	c.cancel = cancel
	c.mu.Unlock()

	if clientState(c.state.Load()) == stateClosing {
		// Disconnect raced the handshake and found no engine to close;
		// tear down what it would have closed.
		cancel()
		_ = engine.Close()
	} else {
		c.state.CompareAndSwap(int32(stateConnecting), int32(stateConnected))
	}

	if runErr := engine.Run(ctx); runErr != nil {
		log.WithError(runErr).Warn("connection ended with an error")
	}

	c.mu.Lock()
	c.engine = nil
	c.cancel = nil
	c.mu.Unlock()

	c.state.Store(int32(stateIdle))
}

// Disconnect tears down the current connection, if any. It signals
// cancellation and closes the socket, then returns without waiting for
// the workers to exit: both unblock on their own (the send worker from
// cancellation, the receive worker from the closed socket), and the
// state transitions to Idle once they do. Calling Disconnect while Idle
// is a no-op.
func (c *Client) Disconnect() {
	if clientState(c.state.Load()) == stateIdle {
		return
	}
	c.state.Store(int32(stateClosing))

	c.mu.Lock()
	engine := c.engine
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if engine != nil {
		_ = engine.Close()
	}
}

// Send enqueues payload for delivery in FIFO order relative to other
// successful Send calls. It returns false without enqueuing anything if
// payload is empty, larger than framing.MaxMessageSize, or the client is
// not currently connected.
func (c *Client) Send(payload []byte) bool {
	if len(payload) == 0 || len(payload) > framing.MaxMessageSize {
		return false
	}
	if clientState(c.state.Load()) != stateConnected {
		return false
	}

	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()
	if engine == nil {
		return false
	}

	engine.Send(payload)
	return true
}

// TryNextEvent non-blockingly dequeues the next pending Event. Callers
// own the returned Event and should call its Release method once done
// with its Payload.
func (c *Client) TryNextEvent() (Event, bool) {
	return c.events.TryPop()
}

func (c *Client) drainEvents() int {
	n := 0
	for {
		ev, ok := c.events.TryPop()
		if !ok {
			break
		}
		ev.Release()
		n++
	}
	return n
}

func (c *Client) pushEvent(ev Event) bool {
	overflow := c.events.Push(ev)
	if overflow {
		ev.Release()
	}
	return overflow
}

// clientSink is the transport.Sink the engine reports to. Sink's
// Connected(tag) cannot be a method of Client itself, whose Connected()
// reports the connection state; Data and Disconnected are promoted from
// the embedded Client.
type clientSink struct{ *Client }

// Connected implements transport.Sink. It enqueues a Connected event and,
// if SessionKeyMaterial is configured, logs a non-secret HKDF-derived
// session fingerprint alongside it for correlation with server logs.
func (s clientSink) Connected(tag string) {
	entry := s.log.WithField("ctag", tag)
	if fp, err := s.sessionFingerprint(tag); err == nil && fp != "" {
		entry = entry.WithField("session_fingerprint", fp)
	}
	entry.Info("connected")
	s.pushEvent(Event{Tag: tag, Kind: EventConnected})
}

// Data implements transport.Sink. payload is only valid for the duration
// of the call, so it is copied into a pooled buffer before being queued.
func (c *Client) Data(tag string, payload []byte) bool {
	buf := acquireBuffer(len(payload))
	copy(buf, payload)
	overflow := c.pushEvent(Event{Tag: tag, Kind: EventData, Payload: buf})
	if n := c.events.Len(); n >= c.opts.recvQueueWarnThreshold() {
		c.maybeWarnQueueDepth(tag, n)
	}
	return overflow
}

// Disconnected implements transport.Sink. It enqueues exactly one
// Disconnected event for tag.
func (c *Client) Disconnected(tag string) {
	c.log.WithField("ctag", tag).Info("disconnected")
	c.pushEvent(Event{Tag: tag, Kind: EventDisconnected})
}

// maybeWarnQueueDepth logs at most once per queueWarnInterval once the
// event queue has reached its soft warning threshold.
func (c *Client) maybeWarnQueueDepth(ctag string, depth int) {
	c.warnMu.Lock()
	defer c.warnMu.Unlock()
	now := time.Now()
	if now.Sub(c.lastWarnAt) < queueWarnInterval {
		return
	}
	c.lastWarnAt = now
	c.log.WithField("ctag", ctag).WithField("depth", depth).Warn("event queue approaching capacity")
}

// sessionFingerprint derives a short, non-secret fingerprint from
// SessionKeyMaterial and ctag via HKDF-SHA256. It returns "" if no key
// material is configured.
func (c *Client) sessionFingerprint(ctag string) (string, error) {
	if len(c.opts.SessionKeyMaterial) == 0 {
		return "", nil
	}
	reader := hkdf.New(sha256.New, c.opts.SessionKeyMaterial, []byte(ctag), []byte("gamenet-session-fingerprint"))
	var fp [8]byte
	if _, err := io.ReadFull(reader, fp[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(fp[:]), nil
}
