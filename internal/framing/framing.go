// Package framing implements the transport's length-prefix wire format:
// a 4-byte big-endian length followed by that many payload bytes. It
// also implements the send-side batching that coalesces several messages
// into as few stream writes as possible.
package framing

import (
	"errors"
	"io"
	"net"

	"github.com/nalang/gamenet/internal/wire"
)

const (
	// MaxMessageSize is the largest payload a single frame may carry.
	MaxMessageSize = 16384
	// MaxSendBuffer is the largest batch the writer will coalesce into
	// one stream Write call.
	MaxSendBuffer = 65536
	// LengthPrefixSize is the size in bytes of the frame's length field.
	LengthPrefixSize = 4
)

// ErrInvalidFrameLength is returned by Decode/ReadFrame when the peer sent
// a length prefix of zero or greater than MaxMessageSize.
var ErrInvalidFrameLength = errors.New("framing: invalid frame length")

// ErrClosed signals a clean close observed mid-read: the peer closed the
// stream, or the local side closed it while a read was in flight. It is
// not a hard I/O error.
var ErrClosed = errors.New("framing: stream closed")

// Encode appends be32(len(payload)) ‖ payload to dst and returns the
// extended slice.
func Encode(dst []byte, payload []byte) []byte {
	var lenBuf [LengthPrefixSize]byte
	wire.PutUint32BE(lenBuf[:], uint32(len(payload)))
	dst = append(dst, lenBuf[:]...)
	dst = append(dst, payload...)
	return dst
}

// largeFrameThreshold is the frame size past which a message is never
// coalesced alongside others, even when it would still numerically fit
// within MaxSendBuffer together with the current batch: a message this
// large already dominates a send call on its own, so batching it with
// neighbors buys nothing and only adds latency to the smaller messages
// that would otherwise have gone out immediately.
const largeFrameThreshold = MaxSendBuffer / 2

// Batch splits messages into consecutive batches, each the concatenation
// of be32(len)‖payload for one or more messages, such that:
//   - every batch is at most MaxSendBuffer bytes, unless a single message
//     does not fit, in which case it gets its own oversize batch,
//   - a message whose own frame size exceeds largeFrameThreshold always
//     starts a fresh batch and is never followed by another message in
//     the same batch, even if the combined size would still fit,
//   - messages appear contiguously and in order within and across batches.
func Batch(messages [][]byte) [][]byte {
	if len(messages) == 0 {
		return nil
	}

	var batches [][]byte
	var current []byte

	flush := func() {
		if len(current) > 0 {
			batches = append(batches, current)
			current = nil
		}
	}

	for _, m := range messages {
		frameSize := LengthPrefixSize + len(m)
		large := frameSize > largeFrameThreshold
		if large || (len(current) > 0 && len(current)+frameSize > MaxSendBuffer) {
			flush()
		}
		current = Encode(current, m)
		if large || len(current) >= MaxSendBuffer {
			flush()
		}
	}
	flush()

	return batches
}

// ReadExactly blocks until exactly len(buf) bytes are read into buf, the
// stream ends cleanly, or a hard I/O error occurs. It returns ErrClosed
// (not a hard error) when the stream ends before any bytes of this call
// were read, or when the local side closed the connection during the
// read; a stream that ends mid-frame after partial bytes were already
// read is surfaced as the underlying io.ErrUnexpectedEOF so the caller
// can tell "clean close between frames" from "truncated frame body".
func ReadExactly(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return ErrClosed
	}
	return err
}

// ReadFrame reads one frame from r: a 4-byte big-endian length prefix
// followed by that many payload bytes. It returns ErrInvalidFrameLength if
// the length is zero or exceeds MaxMessageSize, and ErrClosed if the
// stream ended cleanly before the length prefix. payload is read into buf
// if buf is large enough, otherwise a new slice is allocated.
func ReadFrame(r io.Reader, buf []byte) (payload []byte, err error) {
	var lenBuf [LengthPrefixSize]byte
	if err = ReadExactly(r, lenBuf[:]); err != nil {
		return nil, err
	}

	length := wire.Uint32BE(lenBuf[:])
	if length == 0 || length > MaxMessageSize {
		return nil, ErrInvalidFrameLength
	}

	if cap(buf) >= int(length) {
		payload = buf[:length]
	} else {
		payload = make([]byte, length)
	}

	if err = ReadExactly(r, payload); err != nil {
		if errors.Is(err, ErrClosed) {
			// the peer closed mid-frame: this is a truncated body, not a
			// clean boundary close, so callers must treat it as a hard
			// protocol/I-O error rather than a quiet disconnect.
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
