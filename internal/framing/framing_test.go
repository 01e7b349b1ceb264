package framing

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello world")
	encoded := Encode(nil, payload)

	if len(encoded) != LengthPrefixSize+len(payload) {
		t.Fatalf("unexpected encoded length %d", len(encoded))
	}
	if got := binary.BigEndian.Uint32(encoded[:4]); got != uint32(len(payload)) {
		t.Fatalf("length prefix = %d, want %d", got, len(payload))
	}

	got, err := ReadFrame(bytes.NewReader(encoded), nil)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("decoded payload = %q, want %q", got, payload)
	}
}

func TestReadFrameRejectsZeroLength(t *testing.T) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, 0)
	_, err := ReadFrame(bytes.NewReader(buf), nil)
	if !errors.Is(err, ErrInvalidFrameLength) {
		t.Fatalf("expected ErrInvalidFrameLength, got %v", err)
	}
}

func TestReadFrameRejectsOversizeLength(t *testing.T) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, MaxMessageSize+1)
	_, err := ReadFrame(bytes.NewReader(buf), nil)
	if !errors.Is(err, ErrInvalidFrameLength) {
		t.Fatalf("expected ErrInvalidFrameLength, got %v", err)
	}
}

func TestReadFrameCleanCloseBeforeLength(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil), nil)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestReadFrameTruncatedBody(t *testing.T) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, 10)
	// advertise 10 bytes of body but supply none
	_, err := ReadFrame(bytes.NewReader(buf), nil)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestBatchSmallMessagesCoalesce(t *testing.T) {
	messages := [][]byte{
		bytes.Repeat([]byte{1}, 100),
		bytes.Repeat([]byte{2}, 200),
	}
	batches := Batch(messages)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	verifyBatchesParseTo(t, batches, messages)
}

func TestBatchOversizeMessageGetsOwnBatch(t *testing.T) {
	messages := [][]byte{
		bytes.Repeat([]byte{1}, 100),
		bytes.Repeat([]byte{2}, 200),
		bytes.Repeat([]byte{3}, 63000),
	}
	batches := Batch(messages)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if len(batches[0]) > MaxSendBuffer {
		t.Fatalf("batch 0 exceeds MaxSendBuffer: %d", len(batches[0]))
	}
	verifyBatchesParseTo(t, batches, messages)
}

func TestBatchMessageLargerThanCapGetsOwnBatch(t *testing.T) {
	huge := bytes.Repeat([]byte{9}, MaxSendBuffer+5000)
	messages := [][]byte{bytes.Repeat([]byte{1}, 10), huge, bytes.Repeat([]byte{2}, 10)}
	batches := Batch(messages)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	verifyBatchesParseTo(t, batches, messages)
}

func TestBatchEmpty(t *testing.T) {
	if got := Batch(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// verifyBatchesParseTo asserts that concatenating and parsing every batch
// yields exactly the original ordered message list. It parses the length
// prefixes directly rather than through ReadFrame, because Batch accepts
// messages larger than MaxMessageSize and ReadFrame rejects those.
func verifyBatchesParseTo(t *testing.T, batches [][]byte, want [][]byte) {
	t.Helper()
	var all []byte
	for _, b := range batches {
		all = append(all, b...)
	}
	r := bytes.NewReader(all)
	for i, w := range want {
		var lenBuf [LengthPrefixSize]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			t.Fatalf("message %d: reading length prefix: %v", i, err)
		}
		got := make([]byte, binary.BigEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(r, got); err != nil {
			t.Fatalf("message %d: reading payload: %v", i, err)
		}
		if !bytes.Equal(got, w) {
			t.Fatalf("message %d mismatch: got %d bytes, want %d bytes", i, len(got), len(w))
		}
	}
	if r.Len() != 0 {
		t.Fatalf("unexpected trailing bytes: %d", r.Len())
	}
}
