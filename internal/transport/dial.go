package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrNotTCP is returned when the dialer produces a connection that is not
// a *net.TCPConn, which should not happen given this package only dials
// "tcp".
var ErrNotTCP = errors.New("transport: dialed connection is not TCP")

// Dial resolves host under opts.AddressFamily, connects to the first
// reachable address on port, applies socket options, and performs a TLS
// handshake if opts.TLSConfig is set. It returns a net.Conn ready for
// framed reads and writes.
func Dial(ctx context.Context, host string, port uint16, opts Options) (net.Conn, error) {
	ips, err := resolveOrdered(ctx, nil, host, opts.AddressFamily)
	if err != nil {
		return nil, err
	}

	var lastErr error
	var dialer net.Dialer
	for _, ip := range ips {
		addr := net.JoinHostPort(ip.String(), strconv.Itoa(int(port)))
		conn, dialErr := dialer.DialContext(ctx, "tcp", addr)
		if dialErr != nil {
			lastErr = dialErr
			continue
		}

		tcpConn, ok := conn.(*net.TCPConn)
		if !ok {
			_ = conn.Close()
			return nil, ErrNotTCP
		}
		if sockErr := applySocketOptions(tcpConn, opts.NoDelay, opts.SendTimeout); sockErr != nil {
			_ = conn.Close()
			lastErr = sockErr
			continue
		}

		if opts.TLSConfig == nil {
			return tcpConn, nil
		}

		tlsConn := tls.Client(tcpConn, opts.TLSConfig)
		if hsErr := tlsConn.HandshakeContext(ctx); hsErr != nil {
			_ = conn.Close()
			lastErr = hsErr
			continue
		}
		return tlsConn, nil
	}

	if lastErr == nil {
		lastErr = ErrNoAddresses
	}
	return nil, fmt.Errorf("transport: dial %s:%d: %w", host, port, lastErr)
}
