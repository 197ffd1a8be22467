package netlink

import "syscall"

// status reads the signed error code at the start of a payload.
func status(m *Message) (int32, bool) {
	p := m.Payload()
	if len(p) < 4 {
		return 0, false
	}
	return int32(native.Uint32(p[0:4])), true
}

func ackError(op string, code int32) *Error {
	errno := code
	if errno < 0 {
		errno = -errno
	}
	return &Error{
		Op:      op,
		Code:    ProtocolError,
		Errno:   syscall.Errno(errno),
		AckCode: code,
		Err:     syscall.Errno(errno),
	}
}

// DecodeAck decodes an NLMSG_ERROR frame. It returns the signed code from
// the frame, and an *Error with Code ProtocolError when that code is not 0.
// errors.Is(err, syscall.EEXIST) and friends work on the returned error.
func DecodeAck(m *Message) (int32, error) {
	code, ok := status(m)
	if !ok {
		return 0, NewProtocolError("decode ack", ErrTruncated)
	}
	if code == 0 {
		return 0, nil
	}
	e := ackError("ack", code)
	if m.Flags()&NLM_F_ACK_TLVS != 0 {
		e.Message = extAckMessage(m)
	}
	return code, e
}

// DecodeDone decodes the optional status carried by NLMSG_DONE. A dump that
// the kernel aborted ends with a negative status.
func DecodeDone(m *Message) (int32, error) {
	code, ok := status(m)
	if !ok || code >= 0 {
		return 0, nil
	}
	e := ackError("dump", code)
	if m.Flags()&NLM_F_ACK_TLVS != 0 {
		// NLMSG_DONE has no echoed request in front of the TLVs.
		t, _ := ParseTable(m.Payload()[4:])
		e.Message, _ = t.Text(NLMSGERR_ATTR_MSG)
	}
	return code, e
}

// extAckMessage returns the NLMSGERR_ATTR_MSG of an error frame. The TLVs
// follow the echoed request, which is only a header if NLM_F_CAPPED is set.
func extAckMessage(m *Message) string {
	p := m.Payload()
	if len(p) < 4+HeaderLen {
		return ""
	}
	off := 4 + HeaderLen
	if m.Flags()&NLM_F_CAPPED == 0 {
		off = 4 + Align(int(native.Uint32(p[4:8])))
	}
	if off > len(p) {
		return ""
	}
	t, _ := ParseTable(p[off:])
	s, _ := t.Text(NLMSGERR_ATTR_MSG)
	return s
}
