// Package poly1305core implements the Poly1305 one-time MAC bit-exactly
// per RFC 7539 §2.5, using the reference 5×26-bit limb accumulator
// (stored in 32-bit words, per the RFC's recommended constant-time
// strategy) over a clamped multiplier r held in the same 5×26-bit limbs.
package poly1305core

import (
	"errors"

	"github.com/nalang/gamenet/internal/wire"
)

const (
	// KeySize is the required Poly1305 one-time key size in bytes.
	KeySize = 32
	// TagSize is the size in bytes of a Poly1305 tag.
	TagSize = 16

	blockSize = 16
	mask26    = 0x3ffffff
)

// ErrInvalidKeySize is returned when a key is not exactly KeySize bytes.
var ErrInvalidKeySize = errors.New("poly1305: invalid key size")

// multiplyReduce computes h = (h * r) mod (2^130 - 5) for the 5-limb
// accumulator h against the clamped 5-limb multiplier (r0..r4, with
// s1..s4 = r1..r4 * 5 precomputed so the schoolbook multiply folds the
// 2^130 ≡ 5 (mod 2^130-5) reduction in as it goes), then partially
// carries the 9-limb product back down to 5 limbs.
func multiplyReduce(h0, h1, h2, h3, h4, r0, r1, r2, r3, r4, s1, s2, s3, s4 uint32) (uint32, uint32, uint32, uint32, uint32) {
	d0 := uint64(h0)*uint64(r0) + uint64(h1)*uint64(s4) + uint64(h2)*uint64(s3) + uint64(h3)*uint64(s2) + uint64(h4)*uint64(s1)
	d1 := uint64(h0)*uint64(r1) + uint64(h1)*uint64(r0) + uint64(h2)*uint64(s4) + uint64(h3)*uint64(s3) + uint64(h4)*uint64(s2)
	d2 := uint64(h0)*uint64(r2) + uint64(h1)*uint64(r1) + uint64(h2)*uint64(r0) + uint64(h3)*uint64(s4) + uint64(h4)*uint64(s3)
	d3 := uint64(h0)*uint64(r3) + uint64(h1)*uint64(r2) + uint64(h2)*uint64(r1) + uint64(h3)*uint64(r0) + uint64(h4)*uint64(s4)
	d4 := uint64(h0)*uint64(r4) + uint64(h1)*uint64(r3) + uint64(h2)*uint64(r2) + uint64(h3)*uint64(r1) + uint64(h4)*uint64(r0)

	var c uint64
	c = d0 >> 26
	h0 = uint32(d0) & mask26
	d1 += c
	c = d1 >> 26
	h1 = uint32(d1) & mask26
	d2 += c
	c = d2 >> 26
	h2 = uint32(d2) & mask26
	d3 += c
	c = d3 >> 26
	h3 = uint32(d3) & mask26
	d4 += c
	c = d4 >> 26
	h4 = uint32(d4) & mask26
	h0 += uint32(c) * 5
	c32 := h0 >> 26
	h0 &= mask26
	h1 += c32

	return h0, h1, h2, h3, h4
}

// Sum computes the Poly1305 tag of msg under the given 32-byte one-time
// key: the low 16 bytes clamped into the multiplier r, the high 16 bytes
// used as the additive s.
func Sum(msg, key []byte) ([TagSize]byte, error) {
	var tag [TagSize]byte
	if len(key) != KeySize {
		return tag, ErrInvalidKeySize
	}

	t0 := wire.Uint32LE(key[0:4])
	t1 := wire.Uint32LE(key[4:8])
	t2 := wire.Uint32LE(key[8:12])
	t3 := wire.Uint32LE(key[12:16])

	// clamp: mask with 0x0ffffffc0ffffffc0ffffffc0fffffff (little-endian),
	// expressed directly in the 26-bit limb decomposition.
	r0 := t0 & 0x3ffffff
	r1 := ((t0 >> 26) | (t1 << 6)) & 0x3ffff03
	r2 := ((t1 >> 20) | (t2 << 12)) & 0x3ffc0ff
	r3 := ((t2 >> 14) | (t3 << 18)) & 0x3f03fff
	r4 := (t3 >> 8) & 0x00fffff

	s1 := r1 * 5
	s2 := r2 * 5
	s3 := r3 * 5
	s4 := r4 * 5

	var h0, h1, h2, h3, h4 uint32

	var buf [blockSize]byte
	remaining := msg

	// process every full 16-byte block: the conceptual 17th byte (0x01) is
	// folded in as bit 128 of the accumulator (hibit) rather than appended,
	// since a full block leaves no room for it within 16 bytes.
	for len(remaining) >= blockSize {
		block := remaining[:blockSize]
		remaining = remaining[blockSize:]

		t0 = wire.Uint32LE(block[0:4])
		t1 = wire.Uint32LE(block[4:8])
		t2 = wire.Uint32LE(block[8:12])
		t3 = wire.Uint32LE(block[12:16])

		h0 += t0 & mask26
		h1 += ((t0 >> 26) | (t1 << 6)) & mask26
		h2 += ((t1 >> 20) | (t2 << 12)) & mask26
		h3 += ((t2 >> 14) | (t3 << 18)) & mask26
		h4 += (t3 >> 8) | (1 << 24)

		h0, h1, h2, h3, h4 = multiplyReduce(h0, h1, h2, h3, h4, r0, r1, r2, r3, r4, s1, s2, s3, s4)
	}

	// a short (possibly empty) remainder: if nonempty, it becomes one more
	// block with an explicit 0x01 byte at the true message boundary,
	// zero-padded to 16 bytes, and hibit=0 since the 0x01 is already
	// present in the decoded words. An exact multiple of 16 bytes
	// (including the empty message) adds no further block.
	if len(remaining) > 0 {
		for i := range buf {
			buf[i] = 0
		}
		copy(buf[:], remaining)
		buf[len(remaining)] = 1
		block := buf[:]

		t0 = wire.Uint32LE(block[0:4])
		t1 = wire.Uint32LE(block[4:8])
		t2 = wire.Uint32LE(block[8:12])
		t3 = wire.Uint32LE(block[12:16])

		h0 += t0 & mask26
		h1 += ((t0 >> 26) | (t1 << 6)) & mask26
		h2 += ((t1 >> 20) | (t2 << 12)) & mask26
		h3 += ((t2 >> 14) | (t3 << 18)) & mask26
		h4 += t3 >> 8 // hibit=0: the 0x01 byte is already explicit in buf

		h0, h1, h2, h3, h4 = multiplyReduce(h0, h1, h2, h3, h4, r0, r1, r2, r3, r4, s1, s2, s3, s4)
	}

	// fully carry h
	var c uint32
	c = h1 >> 26
	h1 &= mask26
	h2 += c
	c = h2 >> 26
	h2 &= mask26
	h3 += c
	c = h3 >> 26
	h3 &= mask26
	h4 += c
	c = h4 >> 26
	h4 &= mask26
	h0 += c * 5
	c = h0 >> 26
	h0 &= mask26
	h1 += c

	// compute h - p, p = 2^130 - 5
	g0 := h0 + 5
	c = g0 >> 26
	g0 &= mask26
	g1 := h1 + c
	c = g1 >> 26
	g1 &= mask26
	g2 := h2 + c
	c = g2 >> 26
	g2 &= mask26
	g3 := h3 + c
	c = g3 >> 26
	g3 &= mask26
	g4 := h4 + c - (1 << 26)

	// select h if h < p, else h - p: mask is all-zero when g4 underflowed
	// (i.e. h < p), all-ones otherwise — constant-time select, no branch
	// on secret data.
	mask := (g4 >> 31) - 1
	g0 &= mask
	g1 &= mask
	g2 &= mask
	g3 &= mask
	g4 &= mask
	notMask := ^mask
	h0 = (h0 & notMask) | g0
	h1 = (h1 & notMask) | g1
	h2 = (h2 & notMask) | g2
	h3 = (h3 & notMask) | g3
	h4 = (h4 & notMask) | g4

	// h = h mod 2^128, repacked from 26-bit limbs into 32-bit words
	h0 = (h0 | (h1 << 26))
	h1 = (h1>>6 | (h2 << 20))
	h2 = (h2>>12 | (h3 << 14))
	h3 = (h3>>18 | (h4 << 8))

	s0 := wire.Uint32LE(key[16:20])
	s1w := wire.Uint32LE(key[20:24])
	s2w := wire.Uint32LE(key[24:28])
	s3w := wire.Uint32LE(key[28:32])

	f := uint64(h0) + uint64(s0)
	h0 = uint32(f)
	f = uint64(h1) + uint64(s1w) + f>>32
	h1 = uint32(f)
	f = uint64(h2) + uint64(s2w) + f>>32
	h2 = uint32(f)
	f = uint64(h3) + uint64(s3w) + f>>32
	h3 = uint32(f)

	wire.PutUint32LE(tag[0:4], h0)
	wire.PutUint32LE(tag[4:8], h1)
	wire.PutUint32LE(tag[8:12], h2)
	wire.PutUint32LE(tag[12:16], h3)

	return tag, nil
}
