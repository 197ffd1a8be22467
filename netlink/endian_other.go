//go:build !linux

package netlink

import (
	"encoding/binary"

	ne "github.com/josharian/native"
)

// The nl package only builds on linux, but messages captured there can still
// be decoded elsewhere.
var native binary.ByteOrder = ne.Endian
