// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package record reads LevelDB-format write-ahead log segments (".log"
// files): 32 KiB physical blocks of back-to-back fragments that concatenate
// into logical batches of PUT/DELETE operations (spec.md §4.C). Grounded on
// the physical/logical split in other_examples' vchandela-ddia
// lsm-store-wal-reader.go and the teacher's own block-oriented reading
// style; generalized from that WAL reader's 4 KiB chunking to LevelDB's
// 32 KiB blocks and full FULL/FIRST/MIDDLE/LAST fragment semantics.
package record

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/mikez/spotify-folders/internal/base"
)

// blockSize is the physical block size log segments are laid out in; the
// last block in a file may be shorter (spec.md §4.C).
const blockSize = 32 * 1024

// fragmentHeaderLen is the 7-byte fragment header: checksum:u32,
// length:u16, type:u8.
const fragmentHeaderLen = 7

// Fragment types (spec.md §3).
const (
	fragmentFull   = 1
	fragmentFirst  = 2
	fragmentMiddle = 3
	fragmentLast   = 4
)

// Operation is one PUT or DELETE recorded in a log batch.
type Operation struct {
	Kind  base.InternalKeyKind
	Key   []byte
	Value []byte // nil for DELETE
}

// Batch is the logical record assembled from one or more fragments
// (spec.md §3).
type Batch struct {
	Sequence uint64
	Ops      []Operation
}

// Reader produces a lazy sequence of batches from a single log segment
// file (spec.md §4.C).
type Reader struct {
	file  *base.Cursor
	block *base.Cursor // current physical block's remaining bytes, or nil
	log   base.Logger
}

// NewReader wraps a log segment of the given size.
func NewReader(r io.ReaderAt, size int64, log base.Logger) *Reader {
	if log == nil {
		log = base.NewLogger(nil)
	}
	return &Reader{file: base.FromReaderAt(r, size), log: log}
}

// ensureBlock advances to the next physical block if the current one is
// exhausted (or too short to hold another fragment header), returning
// false once the file itself is exhausted.
func (r *Reader) ensureBlock() bool {
	for r.block == nil || r.block.Remaining() < fragmentHeaderLen {
		if r.file.Remaining() <= 0 {
			return false
		}
		n := blockSize
		if int64(n) > r.file.Remaining() {
			n = int(r.file.Remaining())
		}
		r.block = r.file.SubView(n)
	}
	return true
}

// nextFragment returns the next fragment's type and payload, or io.EOF
// once the file is exhausted. A fragment never crosses a block boundary
// (spec.md §4.C); if the declared length would overrun the current block,
// the block is treated as ending here (tolerant read).
func (r *Reader) nextFragment() (typ byte, payload []byte, err error) {
	if !r.ensureBlock() {
		return 0, nil, io.EOF
	}
	hdr, err := r.block.ReadExact(fragmentHeaderLen)
	if err != nil {
		return 0, nil, err
	}
	length := int(hdr[4]) | int(hdr[5])<<8
	typ = hdr[6]
	if int64(length) > r.block.Remaining() {
		r.log.Warnf("record: fragment length %d exceeds remaining block bytes, discarding rest of block", length)
		r.block = nil
		return r.nextFragment()
	}
	payload, err = r.block.ReadExact(length)
	if err != nil {
		return 0, nil, err
	}
	return typ, payload, nil
}

// NextBatch assembles and decodes the next logical batch, resyncing past
// any type-sequence violation by discarding the partial buffer and
// starting fresh on the next FULL/FIRST fragment (spec.md §4.C). Returns
// io.EOF once the file is exhausted.
func (r *Reader) NextBatch() (*Batch, error) {
	var buf []byte
	started := false
	for {
		typ, payload, err := r.nextFragment()
		if err == io.EOF {
			if started {
				r.log.Warnf("record: truncated record at end of file, dropping partial batch")
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		switch typ {
		case fragmentFull:
			return decodeBatch(append([]byte(nil), payload...), r.log)
		case fragmentFirst:
			if started {
				r.log.Warnf("record: FIRST fragment before matching LAST, resyncing")
			}
			buf = append([]byte(nil), payload...)
			started = true
		case fragmentMiddle:
			if !started {
				r.log.Warnf("record: MIDDLE fragment without preceding FIRST, skipping")
				continue
			}
			buf = append(buf, payload...)
		case fragmentLast:
			if !started {
				r.log.Warnf("record: LAST fragment without preceding FIRST, skipping")
				continue
			}
			buf = append(buf, payload...)
			return decodeBatch(buf, r.log)
		default:
			r.log.Warnf("record: unknown fragment type %d, resyncing", typ)
			started = false
			buf = nil
		}
	}
}

// decodeBatch parses sequence:u64 ∥ count:u32 ∥ count operations
// (spec.md §3). Trailing bytes after the declared count are discarded
// with a warning rather than treated as an error (spec.md §4.C).
func decodeBatch(buf []byte, log base.Logger) (*Batch, error) {
	c := base.FromBytes(buf)
	seq, err := c.Uint(8)
	if err != nil {
		return nil, errors.Wrap(err, "record: truncated batch header")
	}
	countU, err := c.Uint(4)
	if err != nil {
		return nil, errors.Wrap(err, "record: truncated batch header")
	}
	count := uint32(countU)

	ops := make([]Operation, 0, count)
	for i := uint32(0); i < count; i++ {
		kindB, err := c.Uint(1)
		if err != nil {
			return nil, errors.Wrapf(err, "record: truncated operation %d/%d", i, count)
		}
		kind := base.InternalKeyKind(kindB)

		keyLen, err := c.Varint()
		if err != nil {
			return nil, errors.Wrapf(err, "record: truncated key length at operation %d/%d", i, count)
		}
		key, err := c.ReadExact(int(keyLen))
		if err != nil {
			return nil, errors.Wrapf(err, "record: truncated key at operation %d/%d", i, count)
		}

		var val []byte
		if kind == base.InternalKeyKindSet {
			valLen, err := c.Varint()
			if err != nil {
				return nil, errors.Wrapf(err, "record: truncated value length at operation %d/%d", i, count)
			}
			val, err = c.ReadExact(int(valLen))
			if err != nil {
				return nil, errors.Wrapf(err, "record: truncated value at operation %d/%d", i, count)
			}
		}
		ops = append(ops, Operation{Kind: kind, Key: key, Value: val})
	}

	if rem := c.Remaining(); rem > 0 {
		log.Warnf("record: %d trailing bytes after decoding batch of %d operations, discarding", rem, count)
	}

	return &Batch{Sequence: seq, Ops: ops}, nil
}

// Find scans every batch and every PUT operation, remembering the last
// value bound to target; log segments aren't sorted, so a full scan is
// mandatory, and "last wins" yields the newest write (spec.md §4.C).
// DELETE operations are not consulted, matching spec.md's definition of
// find literally.
func (r *Reader) Find(target []byte) ([]byte, error) {
	var value []byte
	var found bool
	for {
		batch, err := r.NextBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, op := range batch.Ops {
			if op.Kind == base.InternalKeyKindSet && bytes.Equal(op.Key, target) {
				value = op.Value
				found = true
			}
		}
	}
	if !found {
		return nil, base.ErrNotFound
	}
	return value, nil
}
