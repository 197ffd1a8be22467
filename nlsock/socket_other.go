//go:build !linux

package nlsock

import (
	"errors"

	"github.com/m-lab/netlinkx/netlink"
)

// ErrNotSupported is returned by OpenConfig on systems without netlink.
var ErrNotSupported = errors.New("netlink is only available on linux")

// OpenConfig does nothing, but is needed for compiling on Darwin.
func OpenConfig(cfg Config) (*Socket, error) {
	return nil, netlink.NewSyscallError("socket", ErrNotSupported)
}

// Fd returns -1.
func (s *Socket) Fd() int {
	return -1
}
