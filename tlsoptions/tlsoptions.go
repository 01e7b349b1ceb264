// Package tlsoptions configures the optional TLS layer a connection may
// negotiate on top of the raw TCP stream.
package tlsoptions

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/ocsp"
)

// ErrClientCertificateMissingKey is returned when a configured client
// certificate has no matching private key.
var ErrClientCertificateMissingKey = errors.New("tlsoptions: client certificate has no private key")

// ErrClientCertificateNotYetValid is returned when a configured client
// certificate's NotBefore is in the future.
var ErrClientCertificateNotYetValid = errors.New("tlsoptions: client certificate is not yet valid")

// ErrClientCertificateExpired is returned when a configured client
// certificate's NotAfter is in the past.
var ErrClientCertificateExpired = errors.New("tlsoptions: client certificate has expired")

// ErrCertificateRevoked is returned when the peer's stapled OCSP response
// reports its certificate as revoked.
var ErrCertificateRevoked = errors.New("tlsoptions: peer certificate is revoked")

// CertificateValidator is a host-supplied replacement for the default
// chain/hostname verification performed during the handshake.
type CertificateValidator func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error

// Options configures the TLS layer. The zero value disables TLS; set
// Enabled to opt in.
type Options struct {
	Enabled bool `validate:"-"`

	// MinVersion is the lowest TLS protocol version the client will
	// negotiate. Zero defaults to tls.VersionTLS12.
	MinVersion uint16 `validate:"omitempty,gte=769"`

	// ServerName is used for SNI and default certificate verification.
	ServerName string `validate:"required_with=Enabled"`

	// ClientCertificate, if set, is presented during the handshake and
	// must carry a private key and be time-valid when Validate runs.
	ClientCertificate *tls.Certificate `validate:"-"`

	// CheckCertificateRevocation enables checking the peer's stapled OCSP
	// response, when the server provides one, in addition to chain
	// validation. A server that staples no response is not treated as
	// revoked; only an explicit "revoked" status fails the handshake.
	CheckCertificateRevocation bool `validate:"-"`

	// CertificateValidator, if set, replaces the default verification
	// policy entirely.
	CertificateValidator CertificateValidator `validate:"-"`

	// RootCAs overrides the system trust store when non-nil.
	RootCAs *x509.CertPool `validate:"-"`
}

// Validate checks struct tags via go-playground/validator and additionally
// verifies ClientCertificate, when set, carries a private key and is
// currently time-valid.
func (o *Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return err
	}
	if o.ClientCertificate == nil {
		return nil
	}
	if o.ClientCertificate.PrivateKey == nil {
		return ErrClientCertificateMissingKey
	}
	if len(o.ClientCertificate.Certificate) == 0 {
		return ErrClientCertificateMissingKey
	}
	leaf, err := x509.ParseCertificate(o.ClientCertificate.Certificate[0])
	if err != nil {
		return err
	}
	now := time.Now()
	if now.Before(leaf.NotBefore) {
		return ErrClientCertificateNotYetValid
	}
	if now.After(leaf.NotAfter) {
		return ErrClientCertificateExpired
	}
	return nil
}

// Default returns an Options with the documented default values: minimum
// TLS 1.2 and revocation checking enabled. TLS itself stays disabled
// (Enabled is false) until the caller opts in.
func Default() Options {
	return Options{
		MinVersion:                 tls.VersionTLS12,
		CheckCertificateRevocation: true,
	}
}

// ToTLSConfig builds a *tls.Config from o. Callers must call Validate
// first; ToTLSConfig does not re-validate.
func (o *Options) ToTLSConfig() *tls.Config {
	minVersion := o.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}

	cfg := &tls.Config{
		ServerName: o.ServerName,
		MinVersion: minVersion,
		RootCAs:    o.RootCAs,
	}

	if o.ClientCertificate != nil {
		cfg.Certificates = []tls.Certificate{*o.ClientCertificate}
	}

	if o.CertificateValidator != nil {
		cfg.InsecureSkipVerify = true
		validate := o.CertificateValidator
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
			return validate(rawCerts, verifiedChains)
		}
	}

	if o.CheckCertificateRevocation {
		cfg.VerifyConnection = verifyOCSPStaple
	}

	return cfg
}

// verifyOCSPStaple rejects a connection only when the peer stapled an OCSP
// response that explicitly reports its leaf certificate as revoked. A
// missing staple, or one that fails to parse against the presented chain,
// is not itself treated as revocation: most servers do not staple, and
// hard-failing on their absence would turn this into an availability
// check rather than a revocation check.
func verifyOCSPStaple(cs tls.ConnectionState) error {
	if len(cs.OCSPResponse) == 0 || len(cs.PeerCertificates) == 0 {
		return nil
	}
	leaf := cs.PeerCertificates[0]
	issuer := leaf
	if len(cs.PeerCertificates) > 1 {
		issuer = cs.PeerCertificates[1]
	}
	resp, err := ocsp.ParseResponseForCert(cs.OCSPResponse, leaf, issuer)
	if err != nil {
		return nil
	}
	if resp.Status == ocsp.Revoked {
		return fmt.Errorf("%w: %s", ErrCertificateRevoked, leaf.Subject)
	}
	return nil
}
