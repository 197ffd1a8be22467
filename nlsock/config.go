package nlsock

import "time"

// DefaultBufferSize is the kernel send and receive buffer requested for
// every socket. Route dumps on a busy host arrive in bursts, so this is
// larger than a single datagram.
const DefaultBufferSize = 16 * 1024

// Config describes how a socket is opened.
type Config struct {
	// Protocol is the netlink family, e.g. unix.NETLINK_ROUTE (0).
	Protocol int
	// Groups is the multicast group mask the socket is bound to.
	Groups uint32

	SendBufferSize    int
	ReceiveBufferSize int

	// ReceiveTimeout sets SO_RCVTIMEO. Zero blocks forever.
	ReceiveTimeout time.Duration
	// ExtendedAck asks the kernel to attach a message to error frames.
	ExtendedAck bool
	// Namespace is the path of a network namespace file, e.g.
	// /var/run/netns/blue. Empty means the namespace of the caller.
	Namespace string
}

// DefaultConfig is a NETLINK_ROUTE socket with no multicast groups.
var DefaultConfig = Config{
	SendBufferSize:    DefaultBufferSize,
	ReceiveBufferSize: DefaultBufferSize,
	ExtendedAck:       true,
}

func (c Config) withDefaults() Config {
	if c.SendBufferSize <= 0 {
		c.SendBufferSize = DefaultBufferSize
	}
	if c.ReceiveBufferSize <= 0 {
		c.ReceiveBufferSize = DefaultBufferSize
	}
	return c
}
