package nlsock

import (
	"log"
	"math"
	"syscall"
	"testing"

	"github.com/josharian/native"
	"github.com/m-lab/go/rtx"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/m-lab/netlinkx/netlink"
)

func init() {
	// Always prepend the filename and line number.
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

type datagram struct {
	b         []byte
	from      Addr
	truncated bool
	err       error
}

// fakeConn plays back canned datagrams and records what is sent.
type fakeConn struct {
	sent    [][]byte
	short   bool
	sendErr error
	in      []datagram
	reads   int
	closed  int
}

func (c *fakeConn) Send(b []byte) (int, error) {
	if c.sendErr != nil {
		return 0, c.sendErr
	}
	c.sent = append(c.sent, append([]byte(nil), b...))
	if c.short {
		return len(b) - 1, nil
	}
	return len(b), nil
}

func (c *fakeConn) Recv(b []byte) (int, Addr, bool, error) {
	c.reads++
	if len(c.in) == 0 {
		// What a socket with a receive timeout returns.
		return 0, Addr{}, false, syscall.EAGAIN
	}
	d := c.in[0]
	c.in = c.in[1:]
	if d.err != nil {
		return 0, d.from, false, d.err
	}
	return copy(b, d.b), d.from, d.truncated, nil
}

func (c *fakeConn) Close() error {
	c.closed++
	return nil
}

func (c *fakeConn) push(msgs ...*netlink.Message) {
	c.pushFrom(Addr{}, msgs...)
}

func (c *fakeConn) pushFrom(from Addr, msgs ...*netlink.Message) {
	var b []byte
	for _, m := range msgs {
		b = append(b, m.Bytes()...)
	}
	c.in = append(c.in, datagram{b: b, from: from})
}

// msg builds a reply message carrying payload as raw data.
func msg(typ uint16, flags uint16, seq uint32, payload ...[]byte) *netlink.Message {
	m := netlink.NewMessage(typ, flags, 512)
	m.SetSeq(seq)
	for _, p := range payload {
		rtx.Must(m.AddData(p), "AddData")
	}
	return m
}

func data(seq uint32, v byte) *netlink.Message {
	return msg(16, netlink.NLM_F_MULTI, seq, []byte{v, 0, 0, 0})
}

func done(seq uint32) *netlink.Message {
	return msg(netlink.NLMSG_DONE, netlink.NLM_F_MULTI, seq, status(0))
}

func ack(seq uint32, code int32) *netlink.Message {
	req := netlink.NewMessage(16, netlink.NLM_F_REQUEST|netlink.NLM_F_ACK, 64)
	req.SetSeq(seq)
	return msg(netlink.NLMSG_ERROR, 0, seq, status(code), req.Bytes())
}

func status(code int32) []byte {
	b := make([]byte, 4)
	native.Endian.PutUint32(b, uint32(code))
	return b
}

func newFakeSocket(local Addr) (*Socket, *fakeConn) {
	c := &fakeConn{}
	return newSocket(c, local, 1000), c
}

func counterValue(m prometheus.Metric) float64 {
	var mm dto.Metric
	m.Write(&mm)
	ctr := mm.GetCounter()
	if ctr == nil {
		log.Println(mm.GetUntyped())
		return math.Inf(-1)
	}
	return *ctr.Value
}

// collect returns a parser that records the first byte of every message.
func collect(t *testing.T, got *[]byte) Parser {
	return func(m *netlink.Message) error {
		if len(m.Payload()) == 0 {
			t.Error("Empty payload")
			return nil
		}
		*got = append(*got, m.Payload()[0])
		return nil
	}
}
