package chacha20core

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex: %v", err)
	}
	return b
}

// TestRFC7539Section2_4_2 checks the ChaCha20 encryption test vector from
// RFC 7539 §2.4.2 ("Ladies and Gentlemen of the class of '99...").
func TestRFC7539Section2_4_2(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	nonce := mustHex(t, "000000000000004a00000000")

	plaintext := []byte(
		"Ladies and Gentlemen of the class of '99: If I could offer you " +
			"only one tip for the future, sunscreen would be it.")
	if len(plaintext) != 114 {
		t.Fatalf("test plaintext must be 114 bytes, got %d", len(plaintext))
	}

	wantPrefix := mustHex(t, "6e2e359a2568f98041ba0728dd0d6981e97e7aec1d4360c20a27afccfd9fae0b")

	ciphertext := make([]byte, len(plaintext))
	if err := XORKeyStream(ciphertext, plaintext, key, nonce, 1); err != nil {
		t.Fatalf("XORKeyStream: %v", err)
	}

	if !bytes.Equal(ciphertext[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("ciphertext prefix = %x, want %x", ciphertext[:len(wantPrefix)], wantPrefix)
	}

	// decrypting must round-trip
	decrypted := make([]byte, len(ciphertext))
	if err := XORKeyStream(decrypted, ciphertext, key, nonce, 1); err != nil {
		t.Fatalf("XORKeyStream (decrypt): %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Fatalf("round trip mismatch")
	}
}

func TestBlockFunctionRFC7539Section2_3_2(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	nonce := mustHex(t, "000000090000004a00000000")

	want := mustHex(t,
		"10f1e7e4d13b5915500fdd1fa32071c4c7d1f4c733c068030422aa9ac3d46c4"+
			"ed2826446079faa0914c2d705d98b02a2b5129cd1de164eb9cbd083e8a2503c4e")

	out := make([]byte, BlockSize)
	if err := Block64(out, key, nonce, 1); err != nil {
		t.Fatalf("Block64: %v", err)
	}
	if !bytes.Equal(out, want) {
		t.Fatalf("block mismatch:\ngot  %x\nwant %x", out, want)
	}
}

func TestXORKeyStreamEmpty(t *testing.T) {
	key := make([]byte, KeySize)
	nonce := make([]byte, NonceSize)
	if err := XORKeyStream(nil, nil, key, nonce, 0); err != nil {
		t.Fatalf("unexpected error on empty input: %v", err)
	}
}

func TestXORKeyStreamInvalidKeySize(t *testing.T) {
	nonce := make([]byte, NonceSize)
	err := XORKeyStream(make([]byte, 1), make([]byte, 1), make([]byte, 16), nonce, 0)
	if err != ErrInvalidKeySize {
		t.Fatalf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestXORKeyStreamInvalidNonceSize(t *testing.T) {
	key := make([]byte, KeySize)
	err := XORKeyStream(make([]byte, 1), make([]byte, 1), key, make([]byte, 8), 0)
	if err != ErrInvalidNonceSize {
		t.Fatalf("expected ErrInvalidNonceSize, got %v", err)
	}
}

func TestXORKeyStreamCounterOverflow(t *testing.T) {
	key := make([]byte, KeySize)
	nonce := make([]byte, NonceSize)
	src := make([]byte, BlockSize*2)
	err := XORKeyStream(make([]byte, len(src)), src, key, nonce, 0xFFFFFFFF)
	if err != ErrCounterOverflow {
		t.Fatalf("expected ErrCounterOverflow, got %v", err)
	}
}

func TestXORKeyStreamIsSymmetric(t *testing.T) {
	key := []byte("01234567890123456789012345678901")[:32]
	nonce := []byte("abcdefghijkl")[:12]

	for _, n := range []int{0, 1, 63, 64, 65, 127, 128, 1000} {
		plaintext := bytes.Repeat([]byte{0xAB}, n)
		ciphertext := make([]byte, n)
		if err := XORKeyStream(ciphertext, plaintext, key, nonce, 0); err != nil {
			t.Fatalf("n=%d: encrypt: %v", n, err)
		}
		decrypted := make([]byte, n)
		if err := XORKeyStream(decrypted, ciphertext, key, nonce, 0); err != nil {
			t.Fatalf("n=%d: decrypt: %v", n, err)
		}
		if !bytes.Equal(decrypted, plaintext) {
			t.Fatalf("n=%d: round trip mismatch", n)
		}
	}
}
