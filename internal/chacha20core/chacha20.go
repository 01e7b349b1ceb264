// Package chacha20core implements the ChaCha20 block function and stream
// transform bit-exactly per RFC 7539 §2.3/§2.4. It is kept internal and
// allocation-light; the public, host-facing cipher lives in the cipher
// package.
package chacha20core

import (
	"errors"

	"github.com/nalang/gamenet/internal/wire"
)

const (
	// KeySize is the ChaCha20 key size in bytes (256 bits).
	KeySize = 32
	// NonceSize is the ChaCha20 nonce size in bytes (96 bits, RFC 7539).
	NonceSize = 12
	// BlockSize is the size in bytes of one keystream block.
	BlockSize = 64

	stateWords = 16
)

// the four constant words, the little-endian decoding of "expand 32-byte k".
var constants = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// ErrCounterOverflow is returned when a stream transform would need to
// increment the 32-bit block counter past its maximum value. At most
// 2^32 * 64 bytes may be processed under one (key, nonce) pair.
var ErrCounterOverflow = errors.New("chacha20: counter overflow")

// ErrInvalidKeySize is returned when a key is not exactly KeySize bytes.
var ErrInvalidKeySize = errors.New("chacha20: invalid key size")

// ErrInvalidNonceSize is returned when a nonce is not exactly NonceSize bytes.
var ErrInvalidNonceSize = errors.New("chacha20: invalid nonce size")

// state is the 16 32-bit words of ChaCha20 state, laid out as
//
//	C C C C
//	K K K K
//	K K K K
//	B N N N
type state [stateWords]uint32

// newState builds the initial ChaCha20 state from a 32-byte key, a 12-byte
// nonce and a starting block counter.
func newState(key, nonce []byte, counter uint32) (state, error) {
	var s state
	if len(key) != KeySize {
		return s, ErrInvalidKeySize
	}
	if len(nonce) != NonceSize {
		return s, ErrInvalidNonceSize
	}

	s[0], s[1], s[2], s[3] = constants[0], constants[1], constants[2], constants[3]
	for i := 0; i < 8; i++ {
		s[4+i] = wire.Uint32LE(key[i*4 : i*4+4])
	}
	s[12] = counter
	s[13] = wire.Uint32LE(nonce[0:4])
	s[14] = wire.Uint32LE(nonce[4:8])
	s[15] = wire.Uint32LE(nonce[8:12])
	return s, nil
}

func rotl(x uint32, n uint) uint32 {
	return (x << n) | (x >> (32 - n))
}

// quarterRound performs the RFC 7539 §2.1 quarter round on state words
// a, b, c, d (indices into s).
func quarterRound(s *state, a, b, c, d int) {
	s[a] += s[b]
	s[d] ^= s[a]
	s[d] = rotl(s[d], 16)

	s[c] += s[d]
	s[b] ^= s[c]
	s[b] = rotl(s[b], 12)

	s[a] += s[b]
	s[d] ^= s[a]
	s[d] = rotl(s[d], 8)

	s[c] += s[d]
	s[b] ^= s[c]
	s[b] = rotl(s[b], 7)
}

// block runs the RFC 7539 §2.3 block function: 20 rounds (10 column/diagonal
// double-rounds) over a copy of the initial state, then adds the original
// state back in word-wise. out must be at least BlockSize bytes.
func block(initial state, out []byte) {
	working := initial

	for i := 0; i < 10; i++ {
		// column rounds
		quarterRound(&working, 0, 4, 8, 12)
		quarterRound(&working, 1, 5, 9, 13)
		quarterRound(&working, 2, 6, 10, 14)
		quarterRound(&working, 3, 7, 11, 15)
		// diagonal rounds
		quarterRound(&working, 0, 5, 10, 15)
		quarterRound(&working, 1, 6, 11, 12)
		quarterRound(&working, 2, 7, 8, 13)
		quarterRound(&working, 3, 4, 9, 14)
	}

	for i := 0; i < stateWords; i++ {
		wire.PutUint32LE(out[i*4:i*4+4], working[i]+initial[i])
	}
}

// XORKeyStream XORs src into dst using the ChaCha20 keystream for the given
// key, nonce and starting counter. dst and src may overlap exactly. It
// returns ErrCounterOverflow, rather than wrap
// the counter silently, when the number of 64-byte blocks needed to cover
// src would carry the 32-bit counter past its maximum value.
func XORKeyStream(dst, src, key, nonce []byte, counter uint32) error {
	blocksNeeded := uint64(len(src)+BlockSize-1) / BlockSize
	if blocksNeeded > 0 && uint64(counter)+blocksNeeded-1 > 0xFFFFFFFF {
		return ErrCounterOverflow
	}

	s, err := newState(key, nonce, counter)
	if err != nil {
		return err
	}

	var keystream [BlockSize]byte
	remaining := src
	out := dst
	for len(remaining) > 0 {
		block(s, keystream[:])

		n := BlockSize
		if len(remaining) < n {
			n = len(remaining)
		}
		for i := 0; i < n; i++ {
			out[i] = remaining[i] ^ keystream[i]
		}

		remaining = remaining[n:]
		out = out[n:]
		s[12]++
	}

	return nil
}

// Block64 computes a single 64-byte keystream block for (key, nonce,
// counter) into out. Used by the AEAD construction to derive the one-time
// Poly1305 key (RFC 7539 §2.6, counter=0).
func Block64(out []byte, key, nonce []byte, counter uint32) error {
	s, err := newState(key, nonce, counter)
	if err != nil {
		return err
	}
	block(s, out)
	return nil
}
