package cipher

import (
	"bytes"
	"testing"
)

func TestXorCipherRoundTrip(t *testing.T) {
	c, err := NewXorCipher([]byte("key"))
	if err != nil {
		t.Fatalf("NewXorCipher: %v", err)
	}
	plain := []byte("a message longer than the key")

	ct, err := c.Encrypt(plain)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(ct, plain) {
		t.Fatal("expected ciphertext to differ from plaintext")
	}

	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(pt, plain) {
		t.Fatalf("roundtrip mismatch: got %q want %q", pt, plain)
	}
}

func TestXorCipherEmptyKeyRejected(t *testing.T) {
	if _, err := NewXorCipher(nil); err != ErrEmptyKey {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestXorCipherName(t *testing.T) {
	c, _ := NewXorCipher([]byte("k"))
	if got := c.Name(); got != "xor" {
		t.Fatalf("Name() = %q, want %q", got, "xor")
	}
}
