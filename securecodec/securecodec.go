// Package securecodec composes the application packet codec with a
// per-message cipher, so every encoded packet is also encrypted (and,
// for authenticated ciphers, integrity-checked) before it reaches the
// wire.
package securecodec

import (
	"github.com/nalang/gamenet/cipher"
	"github.com/nalang/gamenet/codec"
)

// Codec encodes packets through an application codec and then a cipher,
// and reverses the order on decode.
type Codec struct {
	cipher cipher.Cipher
}

// New returns a Codec that encrypts with c.
func New(c cipher.Cipher) *Codec {
	return &Codec{cipher: c}
}

// Encode serializes p with the application codec, then encrypts the
// result.
func (sc *Codec) Encode(p codec.Packet) ([]byte, error) {
	plain := codec.Encode(nil, p)
	return sc.cipher.Encrypt(plain)
}

// Decode decrypts data and parses the result as an application packet.
// Any decryption or parse failure (including a Poly1305 authentication
// failure) is reported uniformly via ok=false: the caller must treat
// every such failure as "drop this message", never distinguishing the
// cause, so a tampered message cannot be told apart from a malformed one.
func (sc *Codec) Decode(data []byte) (p codec.Packet, ok bool) {
	plain, err := sc.cipher.Decrypt(data)
	if err != nil {
		return codec.Packet{}, false
	}
	p, err = codec.Decode(plain)
	if err != nil {
		return codec.Packet{}, false
	}
	return p, true
}
