package netlink

import "bytes"

// Attribute is a single attribute. Value is backed by the message buffer.
type Attribute struct {
	Type   uint16 // with the NLA_F_* flag bits removed
	Nested bool
	Value  []byte
}

// Table maps attribute type to attribute value. It references the message
// buffer rather than copying it.
type Table map[uint16][]byte

// ParseMessages splits a datagram into messages. If it finds a message whose
// length is impossible it returns the messages before it and a protocol error.
func ParseMessages(b []byte) ([]*Message, error) {
	var msgs []*Message
	for len(b) >= HeaderLen {
		l := int(native.Uint32(b[0:4]))
		if l < HeaderLen || l > len(b) {
			return msgs, NewProtocolError("parse message", ErrTruncated)
		}
		msgs = append(msgs, &Message{buf: b[:l:l]})
		next := Align(l)
		if next > len(b) {
			next = len(b)
		}
		b = b[next:]
	}
	return msgs, nil
}

// ParseAttributes walks b one attribute at a time. It stops at the first
// attribute that claims less than a header or more than what is left, and
// returns everything parsed so far with a protocol error.
// Adapted from ParseRouteAttr in github.com/vishvananda/netlink/nl.
func ParseAttributes(b []byte) ([]Attribute, error) {
	var attrs []Attribute
	for len(b) >= AttrHeaderLen {
		l := int(native.Uint16(b[0:2]))
		typ := native.Uint16(b[2:4])
		if l < AttrHeaderLen || l > len(b) {
			return attrs, NewProtocolError("parse attribute", ErrMalformedAttr)
		}
		attrs = append(attrs, Attribute{
			Type:   typ & NLA_TYPE_MASK,
			Nested: typ&NLA_F_NESTED != 0,
			Value:  b[AttrHeaderLen:l:l],
		})
		next := Align(l)
		if next > len(b) {
			next = len(b)
		}
		b = b[next:]
	}
	return attrs, nil
}

// ParseTable builds a Table from b. When a type appears more than once the
// last value wins. On error the table holds what was parsed before the bad
// attribute, and the caller decides whether that is usable.
func ParseTable(b []byte) (Table, error) {
	attrs, err := ParseAttributes(b)
	t := make(Table, len(attrs))
	for _, a := range attrs {
		t[a.Type] = a.Value
	}
	return t, err
}

// Get returns the value of typ.
func (t Table) Get(typ uint16) ([]byte, bool) {
	v, ok := t[typ]
	return v, ok
}

// Has reports whether typ is present.
func (t Table) Has(typ uint16) bool {
	_, ok := t[typ]
	return ok
}

func (t Table) Uint8(typ uint16) (uint8, bool) {
	v, ok := t[typ]
	if !ok || len(v) < 1 {
		return 0, false
	}
	return v[0], true
}

func (t Table) Uint16(typ uint16) (uint16, bool) {
	v, ok := t[typ]
	if !ok || len(v) < 2 {
		return 0, false
	}
	return native.Uint16(v), true
}

func (t Table) Uint32(typ uint16) (uint32, bool) {
	v, ok := t[typ]
	if !ok || len(v) < 4 {
		return 0, false
	}
	return native.Uint32(v), true
}

// Text returns a string attribute, cut at the first NUL.
func (t Table) Text(typ uint16) (string, bool) {
	v, ok := t[typ]
	if !ok {
		return "", false
	}
	if i := bytes.IndexByte(v, 0); i >= 0 {
		v = v[:i]
	}
	return string(v), true
}

// Nested parses the value of typ as a sequence of attributes. A missing
// attribute yields an empty table.
func (t Table) Nested(typ uint16) (Table, error) {
	return ParseTable(t[typ])
}
