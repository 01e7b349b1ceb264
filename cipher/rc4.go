package cipher

import "crypto/rc4"

// Rc4Cipher implements RC4 (KSA + PRGA) via the standard library's
// crypto/rc4 package. RC4 is symmetric and explicitly labelled legacy:
// it is included for interoperability with older peers, not recommended
// for new deployments.
type Rc4Cipher struct {
	key []byte
}

// NewRc4Cipher returns an Rc4Cipher. Key length must be 1..256 bytes, the
// range crypto/rc4 itself enforces.
func NewRc4Cipher(key []byte) (*Rc4Cipher, error) {
	if _, err := rc4.NewCipher(key); err != nil {
		return nil, err
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Rc4Cipher{key: k}, nil
}

// transform creates a fresh *rc4.Cipher per call: RC4 has no separate
// nonce, so every message must restart the keystream from the same key
// schedule to be decryptable independently.
func (c *Rc4Cipher) transform(in []byte) ([]byte, error) {
	stream, err := rc4.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)
	return out, nil
}

func (c *Rc4Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	return c.transform(plaintext)
}

func (c *Rc4Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	return c.transform(ciphertext)
}

func (c *Rc4Cipher) Name() string {
	return "rc4"
}
