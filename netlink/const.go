package netlink

// All of these constants' names make the linter complain, but they mirror
// uapi/linux/netlink.h and we keep them that way so they can be grepped for.
const (
	// HeaderLen is the aligned size of struct nlmsghdr.
	HeaderLen = 16
	// AttrHeaderLen is the aligned size of struct rtattr / struct nlattr.
	AttrHeaderLen = 4
	// AlignTo is the alignment unit of both messages and attributes.
	AlignTo = 4
)

// Reserved message types.
const (
	NLMSG_NOOP     = 0x1
	NLMSG_ERROR    = 0x2
	NLMSG_DONE     = 0x3
	NLMSG_OVERRUN  = 0x4
	NLMSG_MIN_TYPE = 0x10
)

// Message header flags.
const (
	NLM_F_REQUEST   = 0x1
	NLM_F_MULTI     = 0x2
	NLM_F_ACK       = 0x4
	NLM_F_ECHO      = 0x8
	NLM_F_DUMP_INTR = 0x10

	// Modifiers to GET requests.
	NLM_F_ROOT   = 0x100
	NLM_F_MATCH  = 0x200
	NLM_F_ATOMIC = 0x400
	NLM_F_DUMP   = NLM_F_ROOT | NLM_F_MATCH

	// Modifiers to NEW requests.
	NLM_F_REPLACE = 0x100
	NLM_F_EXCL    = 0x200
	NLM_F_CREATE  = 0x400
	NLM_F_APPEND  = 0x800

	// Flags on NLMSG_ERROR acknowledgements.
	NLM_F_CAPPED   = 0x100
	NLM_F_ACK_TLVS = 0x200
)

// Attribute type flag bits.
const (
	NLA_F_NESTED        = 0x8000
	NLA_F_NET_BYTEORDER = 0x4000
	NLA_TYPE_MASK       = ^uint16(NLA_F_NESTED | NLA_F_NET_BYTEORDER)
)

// Extended acknowledgement attributes (enum nlmsgerr_attrs).
const (
	NLMSGERR_ATTR_UNUSED = iota
	NLMSGERR_ATTR_MSG
	NLMSGERR_ATTR_OFFS
	NLMSGERR_ATTR_COOKIE
)

// Align rounds n up to the netlink alignment unit.
func Align(n int) int {
	return (n + AlignTo - 1) & ^(AlignTo - 1)
}
