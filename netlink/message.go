// Package netlink builds and parses netlink messages: the fixed header, the
// rtattr style attributes that follow it, and the acknowledgement frames the
// kernel sends back.
//
// "Netlink messages are aligned to 32 bits and, generally speaking, they
// contain data that is expressed in host-byte order"
package netlink

import (
	"io"
	"math"
)

// Message is a netlink message held in a fixed capacity buffer. The header
// length field always holds the aligned extent of what has been written.
//
// Messages returned by ParseMessages are views into the receive buffer and
// are only valid until the next receive.
type Message struct {
	buf []byte
}

// Nest marks an attribute opened with BeginAttr.
type Nest struct {
	off int
}

// NewMessage allocates a message of the given capacity. Capacity smaller than
// a header is raised to HeaderLen.
func NewMessage(typ, flags uint16, capacity int) *Message {
	if capacity < HeaderLen {
		capacity = HeaderLen
	}
	m := &Message{buf: make([]byte, capacity)}
	m.Reset(typ, flags)
	return m
}

// Reset clears the message so the buffer can be reused for another request.
func (m *Message) Reset(typ, flags uint16) {
	for i := range m.buf {
		m.buf[i] = 0
	}
	m.setLen(HeaderLen)
	native.PutUint16(m.buf[4:6], typ)
	native.PutUint16(m.buf[6:8], flags)
}

func (m *Message) setLen(n int) {
	native.PutUint32(m.buf[0:4], uint32(n))
}

// Len returns the length recorded in the header.
func (m *Message) Len() int { return int(native.Uint32(m.buf[0:4])) }
func (m *Message) Type() uint16 { return native.Uint16(m.buf[4:6]) }
func (m *Message) Flags() uint16 { return native.Uint16(m.buf[6:8]) }
func (m *Message) Seq() uint32 { return native.Uint32(m.buf[8:12]) }
func (m *Message) Pid() uint32 { return native.Uint32(m.buf[12:16]) }

// Cap returns the capacity of the message buffer.
func (m *Message) Cap() int { return len(m.buf) }

func (m *Message) SetFlags(flags uint16) { native.PutUint16(m.buf[6:8], flags) }
func (m *Message) SetSeq(seq uint32) { native.PutUint32(m.buf[8:12], seq) }
func (m *Message) SetPid(pid uint32) { native.PutUint32(m.buf[12:16], pid) }

// Bytes returns the header and payload, ready to be written to a socket.
func (m *Message) Bytes() []byte {
	return m.buf[:m.Len()]
}

// Payload returns everything after the header.
func (m *Message) Payload() []byte {
	return m.buf[HeaderLen:m.Len()]
}

// tail returns the offset at which the next item will be written, and checks
// that n more (aligned) bytes fit.
func (m *Message) tail(n int) (int, bool) {
	off := Align(m.Len())
	return off, off+Align(n) <= len(m.buf)
}

// AddData appends a fixed size family header (ifinfomsg, rtmsg, ...) padded
// to the alignment unit.
func (m *Message) AddData(data []byte) error {
	off, ok := m.tail(len(data))
	if !ok {
		return NewProtocolError("add data", ErrOverflow)
	}
	end := off + Align(len(data))
	n := copy(m.buf[off:], data)
	zero(m.buf[off+n : end])
	m.setLen(end)
	return nil
}

// AddAttr appends a flat attribute. The message is left unchanged if the
// attribute does not fit.
func (m *Message) AddAttr(typ uint16, data []byte) error {
	alen := AttrHeaderLen + len(data)
	if alen > math.MaxUint16 {
		return NewProtocolError("add attribute", ErrOverflow)
	}
	off, ok := m.tail(alen)
	if !ok {
		return NewProtocolError("add attribute", ErrOverflow)
	}
	end := off + Align(alen)
	native.PutUint16(m.buf[off:off+2], uint16(alen))
	native.PutUint16(m.buf[off+2:off+4], typ)
	n := copy(m.buf[off+AttrHeaderLen:], data)
	zero(m.buf[off+AttrHeaderLen+n : end])
	m.setLen(end)
	return nil
}

func (m *Message) AddAttrUint8(typ uint16, v uint8) error {
	return m.AddAttr(typ, []byte{v})
}

func (m *Message) AddAttrUint16(typ uint16, v uint16) error {
	var b [2]byte
	native.PutUint16(b[:], v)
	return m.AddAttr(typ, b[:])
}

func (m *Message) AddAttrUint32(typ uint16, v uint32) error {
	var b [4]byte
	native.PutUint32(b[:], v)
	return m.AddAttr(typ, b[:])
}

// AddAttrString appends s as a NUL terminated string, e.g. IFLA_IFNAME.
func (m *Message) AddAttrString(typ uint16, s string) error {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return m.AddAttr(typ, b)
}

// BeginAttr opens a nested attribute. Everything added until the matching
// EndAttr becomes its value. Nests must be closed in the reverse order they
// were opened.
func (m *Message) BeginAttr(typ uint16) (Nest, error) {
	off := Align(m.Len())
	if err := m.AddAttr(typ, nil); err != nil {
		return Nest{}, err
	}
	return Nest{off: off}, nil
}

// EndAttr back-patches the length of a nested attribute to cover everything
// written since BeginAttr.
func (m *Message) EndAttr(n Nest) error {
	end := Align(m.Len())
	alen := end - n.off
	if alen > math.MaxUint16 {
		return NewProtocolError("end attribute", ErrOverflow)
	}
	native.PutUint16(m.buf[n.off:n.off+2], uint16(alen))
	return nil
}

// WriteTo writes the message to w. Messages written back to back can be read
// again with ReadMessage.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(m.Bytes())
	return int64(n), err
}

// ReadMessage reads the next message from a stream of saved messages, e.g. a
// capture of kernel responses.
func ReadMessage(r io.Reader) (*Message, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		// Note that this may be EOF
		return nil, err
	}
	l := int(native.Uint32(hdr[0:4]))
	if l < HeaderLen {
		return nil, NewProtocolError("read message", ErrTruncated)
	}
	buf := make([]byte, l)
	copy(buf, hdr[:])
	if _, err := io.ReadFull(r, buf[HeaderLen:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &Message{buf: buf}, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
