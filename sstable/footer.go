// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"bytes"

	"github.com/mikez/spotify-folders/internal/base"
)

// footerLen is the fixed 48-byte footer: two varint-encoded block handles,
// zero padding out to 40 bytes, then the 8-byte magic (spec.md §3).
const footerLen = 48

// tableMagic is the 8-byte little-endian encoding of 0xDB4775248B80FB57.
var tableMagic = []byte{0x57, 0xfb, 0x80, 0x8b, 0x24, 0x75, 0x47, 0xdb}

type footer struct {
	metaindexBH BlockHandle
	indexBH     BlockHandle
}

// readFooter reads and parses the trailing 48 bytes of a table file
// (spec.md §4.D). The metaindex handle is parsed but not retained by
// callers beyond validating the footer shape — this reader has no use for
// any meta block (filters, properties, range deletions all lie outside
// the rootlist locator's scope).
func readFooter(cur *base.Cursor) (footer, error) {
	if cur.Size() < footerLen {
		return footer{}, base.ErrNotATable
	}
	if err := cur.Seek(cur.Size() - footerLen); err != nil {
		return footer{}, err
	}
	buf, err := cur.ReadExact(footerLen)
	if err != nil {
		return footer{}, err
	}
	if !bytes.Equal(buf[footerLen-len(tableMagic):], tableMagic) {
		return footer{}, base.ErrNotATable
	}

	metaindexBH, n := decodeBlockHandle(buf)
	if n == 0 {
		return footer{}, base.CorruptionErrorf("bad metaindex block handle")
	}
	indexBH, m := decodeBlockHandle(buf[n:])
	if m == 0 {
		return footer{}, base.CorruptionErrorf("bad index block handle")
	}
	return footer{metaindexBH: metaindexBH, indexBH: indexBH}, nil
}
