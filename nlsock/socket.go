// Package nlsock sends netlink requests to the kernel and collects the
// replies. A Socket is opened once and used for many transactions; each
// transaction is a Send followed by a blocking Receive loop that filters the
// incoming messages by sequence number and hands data messages to a Parser.
//
// The engine is synchronous. It never locks and never starts goroutines, so
// a Socket shared between goroutines must be locked by the caller around each
// Send/Receive pair.
package nlsock

import (
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/m-lab/go/logx"
	"github.com/m-lab/netlinkx/metrics"
	"github.com/m-lab/netlinkx/netlink"
)

// readBufferSize is the largest datagram Receive accepts. The kernel may fill
// dump datagrams up to 32K, independently of SO_RCVBUF.
const readBufferSize = 32 * 1024

// ErrNoData is returned when a read from the socket returns zero bytes.
var ErrNoData = errors.New("netlink socket returned no data")

// skipLog rate limits the logging of messages that belong to someone else.
var skipLog = logx.NewLogEvery(log.Default(), time.Second)

// Addr is a netlink socket address.
type Addr struct {
	Pid    uint32
	Groups uint32
}

// conn is the transport under a Socket.
type conn interface {
	// Send writes one datagram addressed to the kernel.
	Send(b []byte) (int, error)
	// Recv reads one datagram. truncated is set when the datagram was larger
	// than b.
	Recv(b []byte) (n int, from Addr, truncated bool, err error)
	Close() error
}

// Socket is a netlink socket bound to a local address.
type Socket struct {
	sync.Mutex

	c     conn
	local Addr
	seq   uint32
	buf   []byte

	closeOnce sync.Once
	closeErr  error
}

func newSocket(c conn, local Addr, seed uint32) *Socket {
	return &Socket{
		c:     c,
		local: local,
		seq:   seed,
		buf:   make([]byte, readBufferSize),
	}
}

// Open opens a NETLINK_ROUTE socket bound to the multicast groups in groups.
func Open(groups uint32) (*Socket, error) {
	cfg := DefaultConfig
	cfg.Groups = groups
	return OpenConfig(cfg)
}

// LocalAddr returns the address the socket is bound to, as reported by the
// kernel.
func (s *Socket) LocalAddr() Addr { return s.local }

// Seq returns the most recently issued sequence number.
func (s *Socket) Seq() uint32 { return atomic.LoadUint32(&s.seq) }

// NextSeq issues a new sequence number.
func (s *Socket) NextSeq() uint32 { return atomic.AddUint32(&s.seq, 1) }

// Close releases the socket. It is safe to call more than once.
func (s *Socket) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.c.Close()
	})
	return s.closeErr
}

// Send stamps m with seq and the local port id and writes it to the kernel.
// Requests that do not carry the NLM_F_DUMP bits ask for an acknowledgement,
// so that every request has a terminal reply.
func (s *Socket) Send(seq uint32, m *netlink.Message) error {
	m.SetSeq(seq)
	m.SetPid(s.local.Pid)
	flags := m.Flags() | netlink.NLM_F_REQUEST
	if flags&netlink.NLM_F_DUMP != netlink.NLM_F_DUMP {
		flags |= netlink.NLM_F_ACK
	}
	m.SetFlags(flags)

	b := m.Bytes()
	start := time.Now()
	n, err := s.c.Send(b)
	metrics.SyscallTimeHistogram.WithLabelValues("send").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ErrorCount.WithLabelValues("send").Inc()
		return netlink.NewSyscallError("sendmsg", err)
	}
	if n != len(b) {
		log.Printf("Short write %d of %d bytes", n, len(b))
		metrics.ErrorCount.WithLabelValues("short write").Inc()
		return netlink.NewSyscallError("sendmsg", io.ErrShortWrite)
	}
	return nil
}

// recv reads the next datagram and splits it into messages. If the framing is
// broken it returns the complete messages in front of the damage along with
// the error.
func (s *Socket) recv() ([]*netlink.Message, Addr, error) {
	for {
		start := time.Now()
		n, from, truncated, err := s.c.Recv(s.buf)
		metrics.SyscallTimeHistogram.WithLabelValues("recv").Observe(time.Since(start).Seconds())
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if err != nil {
			metrics.ErrorCount.WithLabelValues("recv").Inc()
			return nil, from, netlink.NewSyscallError("recvfrom", err)
		}
		if n == 0 {
			metrics.ErrorCount.WithLabelValues("recv").Inc()
			return nil, from, netlink.NewSyscallError("recvfrom", ErrNoData)
		}
		if truncated {
			metrics.ErrorCount.WithLabelValues("truncated").Inc()
			return nil, from, netlink.NewProtocolError("recvfrom", netlink.ErrTruncated)
		}
		msgs, err := netlink.ParseMessages(s.buf[:n])
		if err != nil {
			metrics.ErrorCount.WithLabelValues("malformed").Inc()
		}
		return msgs, from, err
	}
}

// Receive reads replies to the request sent with seq until the kernel ends
// the reply, the parser stops it, or something fails. It returns StreamDone
// at the end of a dump and OK for a successful acknowledgement. For any
// failure the error is a *netlink.Error or the error returned by the parser.
//
// Multicast notifications for the groups the socket is bound to are passed
// to the parser regardless of their sequence number.
func (s *Socket) Receive(seq uint32, parse Parser) (code netlink.Code, err error) {
	defer func() {
		metrics.TransactionCount.WithLabelValues(code.String()).Inc()
	}()
	for {
		msgs, from, rerr := s.recv()
		if rerr != nil && len(msgs) == 0 {
			return netlink.CodeOf(rerr), rerr
		}
		if from.Pid != 0 {
			metrics.MessageCount.WithLabelValues("foreign").Add(float64(len(msgs)))
			skipLog.Println(netlink.ErrUnexpectedSender, from.Pid)
			continue
		}
		for _, m := range msgs {
			if code, done, err := s.handle(seq, from, m, parse); done {
				return code, err
			}
		}
		if rerr != nil {
			return netlink.CodeOf(rerr), rerr
		}
	}
}

// handle dispatches a single message. done is set when the receive loop must
// end with code and err.
func (s *Socket) handle(seq uint32, from Addr, m *netlink.Message, parse Parser) (code netlink.Code, done bool, err error) {
	if m.Seq() != seq && from.Groups&s.local.Groups == 0 {
		metrics.MessageCount.WithLabelValues("skipped").Inc()
		skipLog.Printf("Wrong Seq nr %d, expected %d", m.Seq(), seq)
		return netlink.SkipMessage, false, nil
	}

	switch m.Type() {
	case netlink.NLMSG_DONE:
		metrics.MessageCount.WithLabelValues("done").Inc()
		if _, err := netlink.DecodeDone(m); err != nil {
			log.Println(err)
			metrics.ErrorCount.WithLabelValues("NLMSG_DONE").Inc()
			return netlink.CodeOf(err), true, err
		}
		return netlink.StreamDone, true, nil
	case netlink.NLMSG_ERROR:
		if _, err := netlink.DecodeAck(m); err != nil {
			metrics.MessageCount.WithLabelValues("nack").Inc()
			metrics.ErrorCount.WithLabelValues("NLMSG_ERROR").Inc()
			return netlink.CodeOf(err), true, err
		}
		metrics.MessageCount.WithLabelValues("ack").Inc()
		return netlink.OK, true, nil
	case netlink.NLMSG_NOOP:
		metrics.MessageCount.WithLabelValues("noop").Inc()
		return netlink.SkipMessage, false, nil
	case netlink.NLMSG_OVERRUN:
		log.Println("Kernel reported NLMSG_OVERRUN")
		metrics.MessageCount.WithLabelValues("overrun").Inc()
		metrics.ErrorCount.WithLabelValues("NLMSG_OVERRUN").Inc()
		err := netlink.NewProtocolError("receive", netlink.ErrOverrun)
		return err.Code, true, err
	}

	err = parse(m)
	switch {
	case err == nil:
		metrics.MessageCount.WithLabelValues("parsed").Inc()
		return netlink.OK, false, nil
	case errors.Is(err, netlink.ErrSkipMessage):
		metrics.MessageCount.WithLabelValues("skipped").Inc()
		return netlink.SkipMessage, false, nil
	case errors.Is(err, netlink.ErrStreamDone):
		metrics.MessageCount.WithLabelValues("parsed").Inc()
		return netlink.StreamDone, true, nil
	}
	metrics.MessageCount.WithLabelValues("parsed").Inc()
	metrics.ErrorCount.WithLabelValues("parser").Inc()
	return netlink.CodeOf(err), true, err
}

// Transaction sends a request that changes kernel state and waits for its
// acknowledgement. A negative acknowledgement is returned as a
// *netlink.Error, so errors.Is(err, syscall.EEXIST) and the like work.
//
// NLM_F_ACK is always set. NLM_F_REPLACE|NLM_F_EXCL share their bits with
// NLM_F_DUMP, so Send alone would not ask for one.
func (s *Socket) Transaction(seq uint32, m *netlink.Message) error {
	m.SetFlags(m.Flags() | netlink.NLM_F_ACK)
	if err := s.Send(seq, m); err != nil {
		return err
	}
	_, err := s.Receive(seq, ParseAck)
	return err
}

// Execute sends m under a fresh sequence number and receives the reply with
// parse.
func (s *Socket) Execute(m *netlink.Message, parse Parser) (netlink.Code, error) {
	seq := s.NextSeq()
	if err := s.Send(seq, m); err != nil {
		return netlink.CodeOf(err), err
	}
	return s.Receive(seq, parse)
}
