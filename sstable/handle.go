// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import "encoding/binary"

// BlockHandle is the (offset, size) of a block within a table file,
// encoded as a pair of varints (spec.md §3).
type BlockHandle struct {
	Offset, Size uint64
}

// decodeBlockHandle returns the block handle encoded at the start of src
// and the number of bytes it occupied. It returns (BlockHandle{}, 0) on
// malformed input.
func decodeBlockHandle(src []byte) (BlockHandle, int) {
	offset, n := binary.Uvarint(src)
	if n <= 0 {
		return BlockHandle{}, 0
	}
	size, m := binary.Uvarint(src[n:])
	if m <= 0 {
		return BlockHandle{}, 0
	}
	return BlockHandle{Offset: offset, Size: size}, n + m
}
