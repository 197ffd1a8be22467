package netlink

import "github.com/vishvananda/netlink/nl"

// Netlink messages are in host byte order unless NLA_F_NET_BYTEORDER is set.
var native = nl.NativeEndian()
