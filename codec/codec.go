// Package codec implements the application packet format carried inside
// each framed message: a command id and an opaque token alongside the
// payload body.
package codec

import (
	"errors"

	"github.com/nalang/gamenet/internal/wire"
)

// innerHeaderSize is the size in bytes of the length field plus the
// command+token header that precede body on the wire.
const innerHeaderSize = 4 + 4 + 8

// payloadLenFloor is the smallest value the embedded length field may
// carry: an empty body still has a command and a token (12 bytes).
const payloadLenFloor = 12

// ErrPacketTooShort is returned by Decode when the input is too short to
// contain the embedded length field, command and token.
var ErrPacketTooShort = errors.New("codec: packet too short")

// Packet is an application-level record: a numeric command, an opaque
// token (e.g. a session or request identifier), and a body.
type Packet struct {
	Command uint32
	Token   uint64
	Body    []byte
}

// Encode appends be32(payload_len) ‖ be32(command) ‖ be64(token) ‖ body to
// dst and returns the extended slice. payload_len is 12+len(body): the
// length of everything that follows the length field itself. This field
// duplicates the enclosing frame's own length prefix and exists only for
// wire compatibility with peers that expect it; Decode does not require
// it to match the actual remaining length, only that it is present.
func Encode(dst []byte, p Packet) []byte {
	var header [innerHeaderSize]byte
	wire.PutUint32BE(header[0:4], uint32(payloadLenFloor+len(p.Body)))
	wire.PutUint32BE(header[4:8], p.Command)
	wire.PutUint64BE(header[8:16], p.Token)
	dst = append(dst, header[:]...)
	dst = append(dst, p.Body...)
	return dst
}

// Decode parses a Packet from data, which must start with the embedded
// be32 length field produced by Encode: command is read from bytes
// [4:8), token from [8:16), and body from [16:). The embedded length is
// consumed but never checked against len(data) — only that data itself
// carries at least a length field, command and token.
func Decode(data []byte) (Packet, error) {
	if len(data) < innerHeaderSize {
		return Packet{}, ErrPacketTooShort
	}
	return Packet{
		Command: wire.Uint32BE(data[4:8]),
		Token:   wire.Uint64BE(data[8:16]),
		Body:    data[16:],
	}, nil
}
