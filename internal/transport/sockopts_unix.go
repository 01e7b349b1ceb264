//go:build linux || darwin || freebsd || netbsd || openbsd

package transport

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// applySocketOptions sets TCP_NODELAY and SO_SNDTIMEO directly via the raw
// file descriptor on platforms x/sys/unix supports. SO_SNDTIMEO bounds how
// long a single blocking Write on the fd may take, which is a closer match
// to "socket-level send timeout" than repeatedly setting a write deadline.
func applySocketOptions(conn *net.TCPConn, noDelay bool, sendTimeout time.Duration) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var opErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		nodelayVal := 0
		if noDelay {
			nodelayVal = 1
		}
		if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, nodelayVal); err != nil {
			opErr = err
			return
		}

		if sendTimeout > 0 {
			tv := unix.NsecToTimeval(sendTimeout.Nanoseconds())
			if err := unix.SetsockoptTimeval(int(fd), unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
				opErr = err
				return
			}
		}
	})
	if ctrlErr != nil {
		return ctrlErr
	}
	return opErr
}
