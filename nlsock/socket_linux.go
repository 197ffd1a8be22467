package nlsock

import (
	"errors"
	"log"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/m-lab/netlinkx/netlink"
)

// sysConn is a netlink socket file descriptor.
type sysConn struct {
	fd int
}

func (c *sysConn) Send(b []byte) (int, error) {
	return unix.SendmsgN(c.fd, b, nil, &unix.SockaddrNetlink{Family: unix.AF_NETLINK}, 0)
}

func (c *sysConn) Recv(b []byte) (int, Addr, bool, error) {
	// With MSG_TRUNC the kernel reports the real length of the datagram.
	n, from, err := unix.Recvfrom(c.fd, b, unix.MSG_TRUNC)
	if err != nil {
		return 0, Addr{}, false, err
	}
	var a Addr
	if sa, ok := from.(*unix.SockaddrNetlink); ok {
		a = Addr{Pid: sa.Pid, Groups: sa.Groups}
	}
	if n > len(b) {
		return len(b), a, true, nil
	}
	return n, a, false, nil
}

func (c *sysConn) Close() error {
	return unix.Close(c.fd)
}

// OpenConfig opens a netlink socket as described by cfg. Every failure is a
// *netlink.Error with Code SyscallFailure that carries the errno.
func OpenConfig(cfg Config) (*Socket, error) {
	cfg = cfg.withDefaults()

	fd := -1
	create := func() error {
		var err error
		fd, err = unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, cfg.Protocol)
		return err
	}
	var err error
	if cfg.Namespace == "" {
		err = create()
	} else {
		err = inNamespace(cfg.Namespace, create)
	}
	if err != nil {
		if fd >= 0 {
			unix.Close(fd)
		}
		return nil, netlink.NewSyscallError("socket", err)
	}

	local, err := setup(fd, cfg)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return newSocket(&sysConn{fd: fd}, local, uint32(time.Now().Unix())), nil
}

func setup(fd int, cfg Config) (Addr, error) {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, cfg.SendBufferSize); err != nil {
		return Addr{}, netlink.NewSyscallError("setsockopt SO_SNDBUF", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, cfg.ReceiveBufferSize); err != nil {
		return Addr{}, netlink.NewSyscallError("setsockopt SO_RCVBUF", err)
	}
	if cfg.ReceiveTimeout > 0 {
		tv := unix.NsecToTimeval(cfg.ReceiveTimeout.Nanoseconds())
		if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			return Addr{}, netlink.NewSyscallError("setsockopt SO_RCVTIMEO", err)
		}
	}
	if cfg.ExtendedAck {
		// Kernels before 4.12 do not know the option. Acks still work.
		if err := unix.SetsockoptInt(fd, unix.SOL_NETLINK, unix.NETLINK_EXT_ACK, 1); err != nil {
			log.Println("Extended ack not available:", err)
		}
	}

	sa := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Pid: uint32(os.Getpid()), Groups: cfg.Groups}
	err := unix.Bind(fd, sa)
	if errors.Is(err, unix.EADDRINUSE) {
		// Another socket of this process owns the pid. Let the kernel pick.
		sa.Pid = 0
		err = unix.Bind(fd, sa)
	}
	if err != nil {
		return Addr{}, netlink.NewSyscallError("bind", err)
	}

	lsa, err := unix.Getsockname(fd)
	if err != nil {
		return Addr{}, netlink.NewSyscallError("getsockname", err)
	}
	nsa, ok := lsa.(*unix.SockaddrNetlink)
	if !ok {
		return Addr{}, netlink.NewSyscallError("getsockname", unix.EAFNOSUPPORT)
	}
	return Addr{Pid: nsa.Pid, Groups: nsa.Groups}, nil
}

// Fd returns the file descriptor of the socket, or -1 if it has none.
func (s *Socket) Fd() int {
	if c, ok := s.c.(*sysConn); ok {
		return c.fd
	}
	return -1
}
