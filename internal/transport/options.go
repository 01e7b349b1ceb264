package transport

import (
	"crypto/tls"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultNoDelay      = true
	DefaultSendTimeout  = 5000 * time.Millisecond
	DefaultRecvWarn     = 1000
	DefaultMaxRecvQueue = 10000
)

// Options configures one connection attempt.
type Options struct {
	NoDelay       bool          `validate:"-"`
	SendTimeout   time.Duration `validate:"gte=0"`
	AddressFamily AddressFamily `validate:"-"`

	// TLSConfig, when non-nil, is used to wrap the dialed TCP connection
	// in a TLS client handshake before the engine starts. Built by
	// package tlsoptions.
	TLSConfig *tls.Config `validate:"-"`

	// MaxRecvQueue bounds the event queue the engine's receive worker
	// pushes into via Sink.Data.
	MaxRecvQueue int `validate:"gte=1"`
	// RecvQueueWarn is the depth at which the engine logs a warning
	// before MaxRecvQueue is reached.
	RecvQueueWarn int `validate:"gte=0"`
}

// DefaultOptions returns the documented default configuration.
func DefaultOptions() Options {
	return Options{
		NoDelay:       DefaultNoDelay,
		SendTimeout:   DefaultSendTimeout,
		AddressFamily: AddressFamilyUnspecified,
		MaxRecvQueue:  DefaultMaxRecvQueue,
		RecvQueueWarn: DefaultRecvWarn,
	}
}

// withDefaults returns a copy of o with zero-valued tunable fields
// replaced by their documented defaults, so a caller-supplied
// Options{} still produces a valid configuration once normalized.
func (o Options) withDefaults() Options {
	if o.SendTimeout == 0 {
		o.SendTimeout = DefaultSendTimeout
	}
	if o.MaxRecvQueue == 0 {
		o.MaxRecvQueue = DefaultMaxRecvQueue
	}
	if o.RecvQueueWarn == 0 {
		o.RecvQueueWarn = DefaultRecvWarn
	}
	return o
}

// Normalize applies withDefaults and then validates the result via
// go-playground/validator struct tags, returning the normalized Options.
func (o Options) Normalize() (Options, error) {
	normalized := o.withDefaults()
	if err := normalized.Validate(); err != nil {
		return normalized, err
	}
	return normalized, nil
}

// Validate checks o's struct tags via go-playground/validator without
// applying withDefaults first, so a zero-valued MaxRecvQueue is rejected
// here even though Normalize would have filled it in. A zero SendTimeout
// passes its gte=0 tag.
func (o Options) Validate() error {
	return validator.New().Struct(o)
}
