// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"
	"sort"

	"github.com/mikez/spotify-folders/internal/base"
)

// blockTrailerLen is the 5-byte block trailer: a 1-byte compression tag
// and a 4-byte checksum (spec.md §3).
const blockTrailerLen = 5

const (
	noCompressionBlockType     = 0
	snappyCompressionBlockType = 1
)

// blockIter walks the decompressed key/value stream of a single table
// block (an index block or a data block; spec.md §4.D), honoring restart
// points for prefix-compressed keys. Grounded on the blockIter shape in
// other_examples' dialtr-pebble sstable-block.go and
// backwardn-pebble/sstable/reader.go, simplified to sequential walk plus
// binary-search seek (no Prev/cached-entry machinery) since the only
// operation this reader needs is "scan a block for a key".
type blockIter struct {
	data        []byte
	restarts    int // byte offset of the restart-offset table
	numRestarts int
	entriesEnd  int // end of the entries region, i.e. restarts

	offset     int
	nextOffset int
	key        []byte
	val        []byte
}

// newBlockIter parses the restart-point trailer and prepares to walk the
// entries of a decompressed block.
func newBlockIter(data []byte) (*blockIter, error) {
	if len(data) < 4 {
		return nil, base.CorruptionErrorf("block too short to hold a restart count")
	}
	numRestarts := int(binary.LittleEndian.Uint32(data[len(data)-4:]))
	if numRestarts < 0 || 4*(numRestarts+1) > len(data) {
		return nil, base.CorruptionErrorf("invalid restart count %d for block of %d bytes", numRestarts, len(data))
	}
	restarts := len(data) - 4*(numRestarts+1)
	return &blockIter{
		data:        data,
		restarts:    restarts,
		numRestarts: numRestarts,
		entriesEnd:  restarts,
	}, nil
}

// restartOffset returns the byte offset of the i'th restart point.
func (i *blockIter) restartOffset(idx int) int {
	return int(binary.LittleEndian.Uint32(i.data[i.restarts+4*idx:]))
}

// readEntryAt decodes one key/value entry at offset, reconstructing its
// key from prevKey per the shared/unshared prefix-compression scheme
// (spec.md §3). Returns the byte offset of the following entry.
func readEntryAt(data []byte, offset int, entriesEnd int, prevKey []byte) (key, val []byte, next int, err error) {
	c := base.FromBytes(data[offset:entriesEnd])
	shared, err := c.Varint()
	if err != nil {
		return nil, nil, 0, base.CorruptionErrorf("truncated entry header at offset %d", offset)
	}
	unshared, err := c.Varint()
	if err != nil {
		return nil, nil, 0, base.CorruptionErrorf("truncated entry header at offset %d", offset)
	}
	valueLen, err := c.Varint()
	if err != nil {
		return nil, nil, 0, base.CorruptionErrorf("truncated entry header at offset %d", offset)
	}
	if int(shared) > len(prevKey) {
		return nil, nil, 0, base.CorruptionErrorf("shared prefix length %d exceeds previous key length %d", shared, len(prevKey))
	}
	keyTail, err := c.ReadExact(int(unshared))
	if err != nil {
		return nil, nil, 0, base.CorruptionErrorf("truncated key at offset %d", offset)
	}
	key = make([]byte, 0, int(shared)+len(keyTail))
	key = append(key, prevKey[:shared]...)
	key = append(key, keyTail...)

	val, err = c.ReadExact(int(valueLen))
	if err != nil {
		return nil, nil, 0, base.CorruptionErrorf("truncated value at offset %d", offset)
	}
	next = offset + int(c.Pos())
	return key, val, next, nil
}

// First seeks to the first entry in the block.
func (i *blockIter) First() (bool, error) {
	if i.entriesEnd <= 0 {
		return false, nil
	}
	key, val, next, err := readEntryAt(i.data, 0, i.entriesEnd, nil)
	if err != nil {
		return false, err
	}
	i.offset, i.nextOffset, i.key, i.val = 0, next, key, val
	return true, nil
}

// Next advances to the following entry, returning false once the block is
// exhausted.
func (i *blockIter) Next() (bool, error) {
	if i.nextOffset >= i.entriesEnd {
		return false, nil
	}
	key, val, next, err := readEntryAt(i.data, i.nextOffset, i.entriesEnd, i.key)
	if err != nil {
		return false, err
	}
	i.offset, i.nextOffset, i.key, i.val = i.nextOffset, next, key, val
	return true, nil
}

// Key returns the current entry's key.
func (i *blockIter) Key() []byte { return i.key }

// Value returns the current entry's value.
func (i *blockIter) Value() []byte { return i.val }

// SeekGE finds the index of the smallest restart point whose key, compared
// with cmp, is > key, then walks forward from the restart point before it
// until an entry >= key is reached. This is the binary-search step the
// teacher's blockIter.SeekGE performs; Reader.Find uses it to locate the
// first index entry whose user key bounds the target.
func (i *blockIter) SeekGE(cmp base.Compare, key []byte) (bool, error) {
	var seekErr error
	index := sort.Search(i.numRestarts, func(j int) bool {
		offset := i.restartOffset(j)
		// A restart point always has shared == 0, so its whole key is
		// stored right after the entry's three header varints.
		c := base.FromBytes(i.data[offset:i.entriesEnd])
		if _, err := c.Varint(); err != nil {
			seekErr = err
			return true
		}
		unshared, err := c.Varint()
		if err != nil {
			seekErr = err
			return true
		}
		if _, err := c.Varint(); err != nil {
			seekErr = err
			return true
		}
		restartKey, err := c.ReadExact(int(unshared))
		if err != nil {
			seekErr = err
			return true
		}
		return cmp(restartKey, key) > 0
	})
	if seekErr != nil {
		return false, seekErr
	}

	offset := 0
	if index > 0 {
		offset = i.restartOffset(index - 1)
	}
	k, v, next, err := readEntryAt(i.data, offset, i.entriesEnd, nil)
	if err != nil {
		return false, err
	}
	i.offset, i.nextOffset, i.key, i.val = offset, next, k, v

	for {
		if cmp(i.key, key) >= 0 {
			return true, nil
		}
		ok, err := i.Next()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
}
