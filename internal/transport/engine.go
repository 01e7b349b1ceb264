// Package transport runs the two per-connection worker goroutines
// (receive and send) over an already-established net.Conn, translating
// between the length-prefix wire format and whole messages.
package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nalang/gamenet/internal/framing"
	"github.com/nalang/gamenet/internal/queue"
)

// Engine owns one net.Conn and the goroutines reading and writing it. It
// is not reusable: a new Engine is created per connection attempt.
type Engine struct {
	conn        net.Conn
	tag         string
	sink        Sink
	sendTimeout time.Duration
	sendQueue   *queue.Send
	wake        chan struct{}
	log         *logrus.Entry

	mu      sync.Mutex
	started bool
}

// New returns an Engine for conn, identified by tag in every Sink call and
// log line it produces.
func New(conn net.Conn, tag string, sink Sink, sendTimeout time.Duration, log *logrus.Entry) *Engine {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Engine{
		conn:        conn,
		tag:         tag,
		sink:        sink,
		sendTimeout: sendTimeout,
		sendQueue:   queue.New(),
		wake:        make(chan struct{}, 1),
		log:         log.WithField("tag", tag),
	}
}

// Send enqueues payload for the send worker and wakes it. It does not
// block on I/O.
func (e *Engine) Send(payload []byte) {
	e.sendQueue.Push(payload)
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Close closes the underlying connection, unblocking the receive
// worker's in-flight read and causing Run to return. It is safe to call
// concurrently with Run and may be called more than once.
func (e *Engine) Close() error {
	return e.conn.Close()
}

// Run starts the receive and send workers and blocks until both exit,
// which happens when ctx is cancelled or the connection fails. Run emits
// Sink.Connected once the engine is ready to read frames, and
// Sink.Disconnected exactly once when it exits, regardless of cause.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return errors.New("transport: engine already started")
	}
	e.started = true
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	e.sink.Connected(e.tag)
	g.Go(func() error { return e.sendLoop(gctx) })

	recvErr := e.receiveLoop(gctx)
	cancel()
	if sendErr := g.Wait(); sendErr != nil {
		e.log.WithError(sendErr).Warn("send worker ended with an error")
	}

	_ = e.conn.Close()
	e.sink.Disconnected(e.tag)

	if errors.Is(recvErr, framing.ErrClosed) || errors.Is(recvErr, net.ErrClosed) {
		return nil
	}
	return recvErr
}

func (e *Engine) receiveLoop(ctx context.Context) error {
	buf := make([]byte, framing.MaxMessageSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		payload, err := framing.ReadFrame(e.conn, buf)
		if err != nil {
			return err
		}

		// payload aliases buf, which is overwritten on the next
		// iteration; Sink.Data must copy it before returning if it
		// needs to retain it past this call.
		if overflowed := e.sink.Data(e.tag, payload); overflowed {
			e.log.Warn("event queue full, dropping received message")
		}
	}
}

func (e *Engine) sendLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-e.wake:
		}

		for {
			items := e.sendQueue.DrainAll()
			if len(items) == 0 {
				break
			}

			for _, batch := range framing.Batch(items) {
				if e.sendTimeout > 0 {
					_ = e.conn.SetWriteDeadline(time.Now().Add(e.sendTimeout))
				}
				if _, err := e.conn.Write(batch); err != nil {
					return err
				}
			}
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
