package cipher

// NullCipher is the identity cipher: Encrypt and Decrypt both return the
// input unchanged. Useful for development and for transports that already
// carry their own encryption (e.g. TLS) where per-message encryption adds
// nothing.
type NullCipher struct{}

// NewNullCipher returns a NullCipher.
func NewNullCipher() NullCipher {
	return NullCipher{}
}

func (NullCipher) Encrypt(plaintext []byte) ([]byte, error) {
	return plaintext, nil
}

func (NullCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	return ciphertext, nil
}

func (NullCipher) Name() string {
	return "null"
}

func init() {
	Register("null", func() (Cipher, error) { return NewNullCipher(), nil })
}
