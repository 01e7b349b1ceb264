// Package cipher implements the pluggable per-message cipher stack: a
// minimal Cipher interface plus trivial, legacy and authenticated
// implementations, all operating on whole messages rather than streams.
package cipher

import (
	"crypto/subtle"
	"fmt"
	"sync"
)

// Cipher is the minimal interface every message cipher implements.
// encrypt/decrypt operate on whole messages; implementations own any
// nonce/IV material they need, and those that draw a fresh nonce per
// message embed it in their output.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
	Name() string
}

// ConstantTimeCompare reports whether a and b are equal, in time
// independent of their contents when they are the same length. Used for
// authentication tag comparison, where a timing side channel would leak
// information about the correct tag.
func ConstantTimeCompare(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}

// registry backs Register/Lookup, the cipher-by-name indirection a host
// can use to select a cipher from configuration instead of wiring a
// concrete type.
var (
	registryMu sync.RWMutex
	registry   = map[string]func() (Cipher, error){}
)

// Register associates name with a factory function, so Lookup(name) can
// later construct a fresh Cipher. Re-registering a name overwrites the
// previous factory.
func Register(name string, factory func() (Cipher, error)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Lookup constructs the cipher registered under name.
func Lookup(name string) (Cipher, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cipher: no cipher registered under name %q", name)
	}
	return factory()
}
