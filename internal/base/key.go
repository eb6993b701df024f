// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "encoding/binary"

// InternalKeyKind is the value-type byte of an internal key's trailer.
type InternalKeyKind uint8

// The two value-type kinds recorded in a log batch or tagged on an
// internal key.
const (
	InternalKeyKindDelete InternalKeyKind = 0
	InternalKeyKindSet    InternalKeyKind = 1
)

// trailerLen is the length in bytes of the internal-key trailer: one byte
// of value type followed by a 7-byte little-endian sequence number.
const trailerLen = 8

// InternalKey is a user key suffixed with an 8-byte trailer of
// (value type, sequence number). The trailer's first byte is the value
// type; the remaining 7 bytes are the sequence number, little-endian.
type InternalKey struct {
	UserKey []byte
	SeqNum  uint64
	Kind    InternalKeyKind
}

// DecodeInternalKey parses the trailer off the tail of b. It panics if
// len(b) < 8: this is a programmer-invariant violation (spec.md §7), not a
// tolerable corruption, since any caller handing us such a slice has
// already mis-sliced a key/value stream entry.
func DecodeInternalKey(b []byte) InternalKey {
	if len(b) < trailerLen {
		panic(CorruptionErrorf("internal key too short: %d bytes", len(b)))
	}
	trailer := b[len(b)-trailerLen:]
	var seqBuf [8]byte
	copy(seqBuf[:7], trailer[1:])
	return InternalKey{
		UserKey: b[:len(b)-trailerLen],
		Kind:    InternalKeyKind(trailer[0]),
		SeqNum:  binary.LittleEndian.Uint64(seqBuf[:]),
	}
}

// IsSet reports whether the key's trailer marks a PUT (as opposed to a
// DELETE).
func (k InternalKey) IsSet() bool {
	return k.Kind == InternalKeyKindSet
}
