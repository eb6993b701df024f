// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sstable reads LevelDB-format table files (".ldb"): footer,
// index block, and restart-point-compressed data blocks (spec.md §4.D).
// Grounded on the teacher's sstable/table.go (footer/magic handling,
// package doc shape) and backwardn-pebble/sstable/reader.go (readBlock's
// compression-tag switch and checksum verification), generalized down to
// the legacy LevelDB footer only — this reader never needs the
// RocksDB/Pebble footer variants the teacher also parses, since the
// producer here only ever emits the classic format.
package sstable

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/mikez/spotify-folders/internal/base"
	"github.com/mikez/spotify-folders/internal/blockcache"
	"github.com/mikez/spotify-folders/internal/snappyframe"
)

// maskDelta is LevelDB's CRC masking constant: the raw Castagnoli CRC32 of
// a block is rotated and offset by this value before being written to
// disk, so that CRCs of CRCs don't accidentally look like valid CRCs of
// the underlying data. No published package exposes this narrow,
// format-specific transform as a reusable primitive (it's simplest
// expressed directly atop stdlib hash/crc32, the same way the teacher's
// own non-importable internal/crc package does), so it's implemented here
// rather than pulled in from a dependency.
const maskDelta = 0xa282ead8

func maskedCRC32(data []byte) uint32 {
	c := crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli))
	return ((c >> 15) | (c << 17)) + maskDelta
}

// Reader finds the value bound to a key in a single table file.
type Reader struct {
	cur          *base.Cursor
	comparer     base.Compare
	decompressor snappyframe.Decompressor
	indexBH      BlockHandle
	log          base.Logger

	fileID uint64
	cache  *blockcache.Cache
}

// NewReader opens a table file and reads its footer. cmp defaults to
// base.Compare (spec.md §4.E) if nil. A nil decompressor means Snappy
// blocks will surface base.ErrSnappyMissing instead of being decoded.
//
// fileID and cache are optional (fileID is ignored if cache is nil):
// when set, decompressed blocks are read through cache, keyed by
// (fileID, offset), so a directory scan visiting many .ldb files doesn't
// redundantly decompress a block it has already seen (spec.md §4.F domain
// stack enrichment; see internal/blockcache).
func NewReader(r io.ReaderAt, size int64, cmp base.Compare, decompressor snappyframe.Decompressor, log base.Logger, fileID uint64, cache *blockcache.Cache) (*Reader, error) {
	if cmp == nil {
		cmp = base.Compare
	}
	if log == nil {
		log = base.NewLogger(nil)
	}
	cur := base.FromReaderAt(r, size)
	foot, err := readFooter(cur)
	if err != nil {
		return nil, err
	}
	return &Reader{
		cur:          cur,
		comparer:     cmp,
		decompressor: decompressor,
		indexBH:      foot.indexBH,
		log:          log,
		fileID:       fileID,
		cache:        cache,
	}, nil
}

// readBlock reads, checksum-verifies, and decompresses the block at bh,
// consulting the block cache first if one is configured.
func (r *Reader) readBlock(bh BlockHandle) ([]byte, error) {
	cacheKey := blockcache.Key(r.fileID, bh.Offset)
	if data, ok := r.cache.Get(cacheKey); ok {
		return data, nil
	}

	if err := r.cur.Seek(int64(bh.Offset)); err != nil {
		return nil, err
	}
	raw, err := r.cur.ReadExact(int(bh.Size) + blockTrailerLen)
	if err != nil {
		return nil, err
	}
	payload := raw[:bh.Size]
	tag := raw[bh.Size]
	checksum := binary.LittleEndian.Uint32(raw[bh.Size+1:])
	if got := maskedCRC32(raw[:bh.Size+1]); got != checksum {
		return nil, base.CorruptionErrorf("block checksum mismatch at offset %d", bh.Offset)
	}

	var data []byte
	switch tag {
	case noCompressionBlockType:
		data = payload
	case snappyCompressionBlockType:
		if r.decompressor == nil {
			return nil, base.ErrSnappyMissing
		}
		data, err = r.decompressor(payload)
		if err != nil {
			return nil, err
		}
	default:
		return nil, base.ErrUnsupportedCompression
	}

	r.cache.Set(cacheKey, data)
	return data, nil
}

// indexUserKeyCompare compares an index entry's internal-key bytes against
// a raw user key by its user-key portion, per spec.md §4.D ("Keys in the
// index are internal keys whose user-key portion is >= all user keys in
// the referenced data block").
func (r *Reader) indexUserKeyCompare(entryKey, target []byte) int {
	ikey := base.DecodeInternalKey(entryKey)
	return r.comparer(ikey.UserKey, target)
}

// Find locates the most recent value bound to target within this table
// (spec.md §4.D). Returns base.ErrNotFound if the table holds no PUT for
// target, whether because no entry matches or because the newest matching
// entry is a DELETE tombstone.
func (r *Reader) Find(target []byte) ([]byte, error) {
	indexData, err := r.readBlock(r.indexBH)
	if err != nil {
		return nil, err
	}
	index, err := newBlockIter(indexData)
	if err != nil {
		return nil, err
	}

	ok, err := index.SeekGE(r.indexUserKeyCompare, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// No index key is >= target: target is past every data block.
		return nil, base.ErrNotFound
	}

	dataBH, n := decodeBlockHandle(index.Value())
	if n == 0 {
		return nil, base.CorruptionErrorf("corrupt index entry")
	}
	dataBytes, err := r.readBlock(dataBH)
	if err != nil {
		return nil, err
	}
	data, err := newBlockIter(dataBytes)
	if err != nil {
		return nil, err
	}

	for more, err := data.First(); ; more, err = data.Next() {
		if err != nil {
			return nil, err
		}
		if !more {
			// Block exhausted without a match; the comparator guarantees no
			// later block holds target either (spec.md §4.D).
			return nil, base.ErrNotFound
		}
		ikey := base.DecodeInternalKey(data.Key())
		if !bytes.Equal(ikey.UserKey, target) {
			continue
		}
		// Entries within a data block are newest-first for equal user keys
		// (spec.md §4.D), so the first match is the current value.
		if ikey.Kind != base.InternalKeyKindSet {
			return nil, base.ErrNotFound
		}
		return data.Value(), nil
	}
}
