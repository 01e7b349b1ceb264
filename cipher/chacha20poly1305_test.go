package cipher

import (
	"bytes"
	"testing"

	"github.com/nalang/gamenet/internal/chacha20core"
	"github.com/nalang/gamenet/internal/poly1305core"
)

func TestChaCha20Poly1305RoundTrip(t *testing.T) {
	c, err := NewChaCha20Poly1305Cipher(testKey(t))
	if err != nil {
		t.Fatalf("NewChaCha20Poly1305Cipher: %v", err)
	}
	plain := []byte("authenticated message")

	ct, err := c.Encrypt(plain)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	wantLen := chacha20core.NonceSize + len(plain) + poly1305core.TagSize
	if len(ct) != wantLen {
		t.Fatalf("ciphertext length = %d, want %d", len(ct), wantLen)
	}

	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(pt, plain) {
		t.Fatalf("roundtrip mismatch: got %q want %q", pt, plain)
	}
}

func TestChaCha20Poly1305RoundTripEmptyMessage(t *testing.T) {
	c, err := NewChaCha20Poly1305Cipher(testKey(t))
	if err != nil {
		t.Fatalf("NewChaCha20Poly1305Cipher: %v", err)
	}

	ct, err := c.Encrypt(nil)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if len(pt) != 0 {
		t.Fatalf("expected empty plaintext, got %q", pt)
	}
}

func TestChaCha20Poly1305TamperedTagFailsAuthentication(t *testing.T) {
	c, err := NewChaCha20Poly1305Cipher(testKey(t))
	if err != nil {
		t.Fatalf("NewChaCha20Poly1305Cipher: %v", err)
	}
	ct, err := c.Encrypt([]byte("do not tamper with me"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tampered := make([]byte, len(ct))
	copy(tampered, ct)
	tampered[len(tampered)-1] ^= 0xFF // corrupt the last byte of the tag

	if _, err := c.Decrypt(tampered); err != ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestChaCha20Poly1305TamperedNonceFailsAuthentication(t *testing.T) {
	c, err := NewChaCha20Poly1305Cipher(testKey(t))
	if err != nil {
		t.Fatalf("NewChaCha20Poly1305Cipher: %v", err)
	}
	ct, err := c.Encrypt([]byte("message"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tampered := make([]byte, len(ct))
	copy(tampered, ct)
	tampered[0] ^= 0x01 // corrupt the nonce, changing the derived one-time key

	if _, err := c.Decrypt(tampered); err != ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestChaCha20Poly1305DecryptTooShort(t *testing.T) {
	c, err := NewChaCha20Poly1305Cipher(testKey(t))
	if err != nil {
		t.Fatalf("NewChaCha20Poly1305Cipher: %v", err)
	}
	if _, err := c.Decrypt(make([]byte, chacha20core.NonceSize+poly1305core.TagSize-1)); err != ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestChaCha20Poly1305WrongKeyFailsAuthentication(t *testing.T) {
	c1, _ := NewChaCha20Poly1305Cipher(testKey(t))
	wrongKey := testKey(t)
	wrongKey[0] ^= 0xFF
	c2, _ := NewChaCha20Poly1305Cipher(wrongKey)

	ct, err := c1.Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := c2.Decrypt(ct); err != ErrAuthenticationFailed {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestChaCha20Poly1305Name(t *testing.T) {
	c, _ := NewChaCha20Poly1305Cipher(testKey(t))
	if got := c.Name(); got != "chacha20poly1305" {
		t.Fatalf("Name() = %q, want %q", got, "chacha20poly1305")
	}
}
