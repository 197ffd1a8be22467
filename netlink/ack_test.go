package netlink_test

import (
	"errors"
	"strings"
	"syscall"
	"testing"

	"github.com/josharian/native"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/netlinkx/netlink"
)

func int32Bytes(v int32) []byte {
	b := make([]byte, 4)
	native.Endian.PutUint32(b, uint32(v))
	return b
}

// errorFrame builds an NLMSG_ERROR message with the given payload parts.
func errorFrame(flags uint16, parts ...[]byte) *netlink.Message {
	m := netlink.NewMessage(netlink.NLMSG_ERROR, flags, 256)
	for _, p := range parts {
		rtx.Must(m.AddData(p), "AddData")
	}
	return m
}

// request is the message echoed back inside error frames.
func request() []byte {
	req := netlink.NewMessage(16, netlink.NLM_F_REQUEST|netlink.NLM_F_ACK, 64)
	rtx.Must(req.AddAttrUint32(1, 5), "AddAttrUint32")
	return req.Bytes()
}

func TestDecodeAckOK(t *testing.T) {
	code, err := netlink.DecodeAck(errorFrame(0, int32Bytes(0), request()))
	if code != 0 || err != nil {
		t.Error("Zero ack should be success", code, err)
	}
}

func TestDecodeAckError(t *testing.T) {
	code, err := netlink.DecodeAck(errorFrame(0, int32Bytes(-17), request()))
	if code != -17 {
		t.Error("Expected -17, got", code)
	}
	if !errors.Is(err, syscall.EEXIST) {
		t.Error("Expected EEXIST, got", err)
	}
	if netlink.CodeOf(err) != netlink.ProtocolError {
		t.Error("Expected ProtocolError, got", netlink.CodeOf(err))
	}
	var e *netlink.Error
	if !errors.As(err, &e) {
		t.Fatal("Expected *netlink.Error")
	}
	if e.AckCode != -17 || e.Errno != syscall.EEXIST || e.Message != "" {
		t.Errorf("Bad error %+v", e)
	}
}

func TestDecodeAckTruncated(t *testing.T) {
	_, err := netlink.DecodeAck(netlink.NewMessage(netlink.NLMSG_ERROR, 0, 16))
	if !errors.Is(err, netlink.ErrTruncated) || netlink.CodeOf(err) != netlink.ProtocolError {
		t.Error("Expected truncation protocol error, got", err)
	}
}

func extAck(msg string) []byte {
	m := netlink.NewMessage(0, 0, 128)
	rtx.Must(m.AddAttrUint32(netlink.NLMSGERR_ATTR_OFFS, 20), "AddAttrUint32")
	rtx.Must(m.AddAttrString(netlink.NLMSGERR_ATTR_MSG, msg), "AddAttrString")
	return m.Payload()
}

func TestDecodeAckExtended(t *testing.T) {
	t.Run("uncapped", func(t *testing.T) {
		m := errorFrame(netlink.NLM_F_ACK_TLVS, int32Bytes(-22), request(), extAck("Unknown device type"))
		_, err := netlink.DecodeAck(m)
		var e *netlink.Error
		if !errors.As(err, &e) {
			t.Fatal("Expected *netlink.Error, got", err)
		}
		if e.Message != "Unknown device type" {
			t.Errorf("Bad extended ack message %q", e.Message)
		}
		if !strings.Contains(err.Error(), "Unknown device type") {
			t.Error("Error string should carry the message:", err)
		}
		if !errors.Is(err, syscall.EINVAL) {
			t.Error("Expected EINVAL, got", err)
		}
	})
	t.Run("capped", func(t *testing.T) {
		// Only the header of the request is echoed. Its length field still
		// describes the full request.
		echoed := request()[:netlink.HeaderLen]
		m := errorFrame(netlink.NLM_F_ACK_TLVS|netlink.NLM_F_CAPPED, int32Bytes(-1), echoed, extAck("denied"))
		_, err := netlink.DecodeAck(m)
		var e *netlink.Error
		if !errors.As(err, &e) {
			t.Fatal("Expected *netlink.Error, got", err)
		}
		if e.Message != "denied" || e.Errno != syscall.EPERM {
			t.Errorf("Bad error %+v", e)
		}
	})
	t.Run("flag without tlvs", func(t *testing.T) {
		m := errorFrame(netlink.NLM_F_ACK_TLVS, int32Bytes(-1))
		_, err := netlink.DecodeAck(m)
		var e *netlink.Error
		if !errors.As(err, &e) || e.Message != "" {
			t.Errorf("Expected an error without message, got %v", err)
		}
	})
}

func TestDecodeDone(t *testing.T) {
	done := func(flags uint16, parts ...[]byte) *netlink.Message {
		m := netlink.NewMessage(netlink.NLMSG_DONE, flags, 128)
		for _, p := range parts {
			rtx.Must(m.AddData(p), "AddData")
		}
		return m
	}
	if _, err := netlink.DecodeDone(done(netlink.NLM_F_MULTI)); err != nil {
		t.Error("DONE without status should be fine", err)
	}
	if _, err := netlink.DecodeDone(done(netlink.NLM_F_MULTI, int32Bytes(0))); err != nil {
		t.Error("DONE with zero status should be fine", err)
	}
	code, err := netlink.DecodeDone(done(netlink.NLM_F_MULTI|netlink.NLM_F_ACK_TLVS, int32Bytes(-16), extAck("busy")))
	if code != -16 || !errors.Is(err, syscall.EBUSY) {
		t.Error("Expected EBUSY, got", code, err)
	}
	var e *netlink.Error
	if !errors.As(err, &e) || e.Message != "busy" {
		t.Errorf("Bad error %v", err)
	}
}
