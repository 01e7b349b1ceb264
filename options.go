package gamenet

import (
	"github.com/sirupsen/logrus"

	"github.com/nalang/gamenet/internal/transport"
	"github.com/nalang/gamenet/tlsoptions"
)

// ClientOptions configures a Client for the lifetime of the instance;
// individual Connect calls reuse it unchanged.
type ClientOptions struct {
	// Transport controls socket options, address family selection and
	// event-queue sizing. See transport.DefaultOptions. Validated via
	// transport.Options' own struct tags, not ClientOptions'.
	Transport transport.Options `validate:"-"`

	// TLS, when non-nil and Enabled, is validated and turned into a
	// *tls.Config wired onto Transport.TLSConfig at Connect time.
	TLS *tlsoptions.Options `validate:"-"`

	// SessionKeyMaterial, when non-empty, is used to derive a
	// connection-scoped, non-secret session fingerprint included in the
	// Connected log line, via HKDF-SHA256 salted with the connection
	// tag. It is never logged itself and never used for message
	// encryption; pass the same key material the host uses for its
	// secure codec if it wants client and server logs to correlate.
	SessionKeyMaterial []byte

	// Logger receives structured diagnostics. Defaults to
	// logrus.StandardLogger() when nil.
	Logger *logrus.Logger `validate:"-"`
}

// DefaultClientOptions returns the documented default configuration with
// TLS disabled.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Transport: transport.DefaultOptions(),
	}
}

func (o ClientOptions) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

func (o ClientOptions) recvQueueWarnThreshold() int {
	if o.Transport.RecvQueueWarn > 0 {
		return o.Transport.RecvQueueWarn
	}
	return transport.DefaultRecvWarn
}

// Validate checks o.Transport's struct tags via go-playground/validator,
// the same way tlsoptions.Options is validated. o.TLS, when set and
// Enabled, is validated separately in resolveTransportOptions: it carries
// certificate-freshness checks beyond what a struct tag can express.
func (o ClientOptions) Validate() error {
	return o.Transport.Validate()
}

// resolveTransportOptions validates o.TLS (if set) and returns a
// transport.Options with TLSConfig populated accordingly.
func (o ClientOptions) resolveTransportOptions() (transport.Options, error) {
	to := o.Transport
	if o.TLS != nil && o.TLS.Enabled {
		if err := o.TLS.Validate(); err != nil {
			return to, err
		}
		to.TLSConfig = o.TLS.ToTLSConfig()
	}
	return to, nil
}
