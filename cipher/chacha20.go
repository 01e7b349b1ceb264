package cipher

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/nalang/gamenet/internal/chacha20core"
)

// ErrInvalidKeySize is returned when a ChaCha20Cipher is constructed with
// a key that is not chacha20core.KeySize bytes.
var ErrInvalidKeySize = errors.New("cipher: invalid key size")

// ErrInvalidNonceSize is returned when NewChaCha20CipherFixedNonce is
// given a nonce that is not chacha20core.NonceSize bytes.
var ErrInvalidNonceSize = errors.New("cipher: invalid nonce size")

// ErrMessageTooShort is returned by Decrypt in auto-nonce mode when the
// ciphertext is shorter than the prepended nonce.
var ErrMessageTooShort = errors.New("cipher: message too short to contain a nonce")

// ChaCha20Cipher wraps the raw ChaCha20 stream transform as a whole-message
// Cipher. With a fixed nonce, the caller is responsible for never reusing
// the (key, nonce) pair across messages — ChaCha20 alone provides no
// authentication and no protection against nonce reuse. In auto-nonce mode
// (the default via NewChaCha20Cipher) a fresh random nonce is drawn per
// Encrypt call and prepended to the ciphertext, removing that burden from
// the caller at the cost of 12 bytes per message.
type ChaCha20Cipher struct {
	key        []byte
	fixedNonce []byte // nil in auto-nonce mode
}

// NewChaCha20Cipher returns a ChaCha20Cipher in auto-nonce mode: every
// Encrypt call draws a fresh random nonce from crypto/rand and prepends it
// to the output.
func NewChaCha20Cipher(key []byte) (*ChaCha20Cipher, error) {
	if len(key) != chacha20core.KeySize {
		return nil, ErrInvalidKeySize
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &ChaCha20Cipher{key: k}, nil
}

// NewChaCha20CipherFixedNonce returns a ChaCha20Cipher that reuses the
// given nonce for every message. The caller must guarantee the (key,
// nonce) pair is never reused across two different plaintexts.
func NewChaCha20CipherFixedNonce(key, nonce []byte) (*ChaCha20Cipher, error) {
	if len(key) != chacha20core.KeySize {
		return nil, ErrInvalidKeySize
	}
	if len(nonce) != chacha20core.NonceSize {
		return nil, ErrInvalidNonceSize
	}
	k := make([]byte, len(key))
	copy(k, key)
	n := make([]byte, len(nonce))
	copy(n, nonce)
	return &ChaCha20Cipher{key: k, fixedNonce: n}, nil
}

func (c *ChaCha20Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	if c.fixedNonce != nil {
		out := make([]byte, len(plaintext))
		if err := chacha20core.XORKeyStream(out, plaintext, c.key, c.fixedNonce, 0); err != nil {
			return nil, err
		}
		return out, nil
	}

	nonce := make([]byte, chacha20core.NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, chacha20core.NonceSize+len(plaintext))
	copy(out, nonce)
	if err := chacha20core.XORKeyStream(out[chacha20core.NonceSize:], plaintext, c.key, nonce, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChaCha20Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if c.fixedNonce != nil {
		out := make([]byte, len(ciphertext))
		if err := chacha20core.XORKeyStream(out, ciphertext, c.key, c.fixedNonce, 0); err != nil {
			return nil, err
		}
		return out, nil
	}

	if len(ciphertext) < chacha20core.NonceSize {
		return nil, ErrMessageTooShort
	}
	nonce := ciphertext[:chacha20core.NonceSize]
	body := ciphertext[chacha20core.NonceSize:]
	out := make([]byte, len(body))
	if err := chacha20core.XORKeyStream(out, body, c.key, nonce, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ChaCha20Cipher) Name() string {
	return "chacha20"
}
