package nlsock

import (
	"github.com/m-lab/netlinkx/metrics"
	"github.com/m-lab/netlinkx/netlink"
)

// Parser is called for every data message that belongs to the current
// request. It returns nil to keep receiving, netlink.ErrStreamDone to stop
// successfully, netlink.ErrSkipMessage to ignore the message, or any other
// error to abort the receive loop.
//
// The message is only valid for the duration of the call. Anything the parser
// needs from it afterwards must be copied, typically into a closure variable.
type Parser func(m *netlink.Message) error

// ParseAck is the parser used by Transaction. Requests that only mutate
// state are answered by an ack, which the receive loop decodes itself. Data
// messages seen here are multicast notifications or stray replies, and are
// ignored.
func ParseAck(m *netlink.Message) error {
	skipLog.Printf("Ignoring message type %d while waiting for ack", m.Type())
	metrics.MessageCount.WithLabelValues("unexpected").Inc()
	return netlink.ErrSkipMessage
}
