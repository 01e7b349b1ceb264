//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package transport

import (
	"net"
	"time"
)

// applySocketOptions falls back to the portable net.TCPConn API on
// platforms x/sys/unix doesn't cover. SendTimeout degrades to a
// per-Write deadline applied by the caller rather than a true
// socket-level SO_SNDTIMEO.
func applySocketOptions(conn *net.TCPConn, noDelay bool, _ time.Duration) error {
	return conn.SetNoDelay(noDelay)
}
