package netlink

import (
	"errors"
	"fmt"
	"syscall"
)

// Code is the result of a netlink operation. The values are stable and may
// be exposed to callers as plain integers.
type Code int

// Result codes.
const (
	OK             Code = 0
	SyscallFailure Code = -1
	ProtocolError  Code = 1
	SkipMessage    Code = 2
	StreamDone     Code = 3
)

var codeName = map[Code]string{
	OK:             "OK",
	SyscallFailure: "SYSCALL_FAILURE",
	ProtocolError:  "PROTOCOL_ERROR",
	SkipMessage:    "SKIP_MESSAGE",
	StreamDone:     "STREAM_DONE",
}

func (c Code) String() string {
	if s, ok := codeName[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error types.
var (
	// ErrSkipMessage may be returned by a parser to ignore a message. It is a
	// control value and is never returned from a receive loop.
	ErrSkipMessage = errors.New("netlink: message skipped")
	// ErrStreamDone may be returned by a parser to end a receive loop early.
	ErrStreamDone = errors.New("netlink: end of stream")

	ErrOverflow         = errors.New("message buffer overflow")
	ErrTruncated        = errors.New("truncated message")
	ErrMalformedAttr    = errors.New("invalid attribute length")
	ErrOverrun          = errors.New("data lost (NLMSG_OVERRUN)")
	ErrUnexpectedSender = errors.New("message not sent by the kernel")
)

// Error is returned by every failing operation in this package and in nlsock.
// Code is always SyscallFailure or ProtocolError.
type Error struct {
	Op   string
	Code Code
	// Errno is the OS error code, if there is one. For acknowledgements it is
	// the negated kernel error.
	Errno syscall.Errno
	// AckCode is the signed error code carried by an NLMSG_ERROR frame.
	AckCode int32
	// Message is the extended acknowledgement text, if the kernel sent one.
	Message string
	Err     error
}

func (e *Error) Error() string {
	s := "netlink: " + e.Op
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	if e.Message != "" {
		s += " (" + e.Message + ")"
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewSyscallError wraps an error returned by a system call.
func NewSyscallError(op string, err error) *Error {
	e := &Error{Op: op, Code: SyscallFailure, Err: err}
	errors.As(err, &e.Errno)
	return e
}

// NewProtocolError reports a message that violates the protocol.
func NewProtocolError(op string, err error) *Error {
	return &Error{Op: op, Code: ProtocolError, Err: err}
}

// CodeOf maps err onto a result code. Errors that do not come from this
// package are protocol errors.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, ErrStreamDone):
		return StreamDone
	case errors.Is(err, ErrSkipMessage):
		return SkipMessage
	}
	return ProtocolError
}
