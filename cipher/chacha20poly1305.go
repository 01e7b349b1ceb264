package cipher

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/nalang/gamenet/internal/chacha20core"
	"github.com/nalang/gamenet/internal/poly1305core"
)

// ErrAuthenticationFailed is returned by Decrypt when the Poly1305 tag
// does not verify. Callers must treat this the same as any other decode
// failure and must not distinguish "bad tag" from "malformed ciphertext"
// in anything observable to a remote peer.
var ErrAuthenticationFailed = errors.New("cipher: authentication failed")

// ChaCha20Poly1305Cipher implements the AEAD construction from RFC 7539
// §2.8, specialized to whole-message use with no associated data. Wire
// format: nonce(12) ‖ ciphertext ‖ tag(16). The Poly1305 one-time key is
// derived by running the ChaCha20 block function at counter=0 over 64
// zero bytes and keeping the first 32; the message itself is encrypted
// starting at counter=1, and the tag covers the ciphertext only.
type ChaCha20Poly1305Cipher struct {
	key []byte
}

// NewChaCha20Poly1305Cipher returns a ChaCha20Poly1305Cipher. key must be
// chacha20core.KeySize bytes.
func NewChaCha20Poly1305Cipher(key []byte) (*ChaCha20Poly1305Cipher, error) {
	if len(key) != chacha20core.KeySize {
		return nil, ErrInvalidKeySize
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &ChaCha20Poly1305Cipher{key: k}, nil
}

func (c *ChaCha20Poly1305Cipher) oneTimeKey(nonce []byte) ([poly1305core.KeySize]byte, error) {
	var block [chacha20core.BlockSize]byte
	var polyKey [poly1305core.KeySize]byte
	if err := chacha20core.Block64(block[:], c.key, nonce, 0); err != nil {
		return polyKey, err
	}
	copy(polyKey[:], block[:poly1305core.KeySize])
	return polyKey, nil
}

func (c *ChaCha20Poly1305Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, chacha20core.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	polyKey, err := c.oneTimeKey(nonce)
	if err != nil {
		return nil, err
	}

	out := make([]byte, chacha20core.NonceSize+len(plaintext)+poly1305core.TagSize)
	copy(out, nonce)
	body := out[chacha20core.NonceSize : chacha20core.NonceSize+len(plaintext)]
	if err := chacha20core.XORKeyStream(body, plaintext, c.key, nonce, 1); err != nil {
		return nil, err
	}

	tag, err := poly1305core.Sum(body, polyKey[:])
	if err != nil {
		return nil, err
	}
	copy(out[chacha20core.NonceSize+len(plaintext):], tag[:])

	return out, nil
}

func (c *ChaCha20Poly1305Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	minLen := chacha20core.NonceSize + poly1305core.TagSize
	if len(ciphertext) < minLen {
		return nil, ErrAuthenticationFailed
	}

	nonce := ciphertext[:chacha20core.NonceSize]
	body := ciphertext[chacha20core.NonceSize : len(ciphertext)-poly1305core.TagSize]
	wantTag := ciphertext[len(ciphertext)-poly1305core.TagSize:]

	polyKey, err := c.oneTimeKey(nonce)
	if err != nil {
		return nil, err
	}

	gotTag, err := poly1305core.Sum(body, polyKey[:])
	if err != nil {
		return nil, err
	}
	if !ConstantTimeCompare(gotTag[:], wantTag) {
		return nil, ErrAuthenticationFailed
	}

	plaintext := make([]byte, len(body))
	if err := chacha20core.XORKeyStream(plaintext, body, c.key, nonce, 1); err != nil {
		return nil, err
	}
	return plaintext, nil
}

func (c *ChaCha20Poly1305Cipher) Name() string {
	return "chacha20poly1305"
}
