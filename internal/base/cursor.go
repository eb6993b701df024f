// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"io"

	"github.com/cockroachdb/errors"
)

// ErrUnexpectedEof is returned by Cursor reads that would exceed the
// cursor's limit.
var ErrUnexpectedEof = errors.New("spotify-folders: unexpected EOF")

// Cursor is a positioned reader over a file or byte slice of known size,
// with bounded sub-views and the fixed-width/varint decoders the log and
// table readers both need (spec.md §4.A). It is the one seam shared by
// the log-segment reader and the table-file reader.
type Cursor struct {
	r    io.ReaderAt
	pos  int64
	size int64
	base int64 // absolute file offset corresponding to pos==0, for sub-views
}

// FromReaderAt wraps a seekable byte source of known size.
func FromReaderAt(r io.ReaderAt, size int64) *Cursor {
	return &Cursor{r: r, size: size}
}

// FromBytes wraps an owned byte slice.
func FromBytes(b []byte) *Cursor {
	return FromReaderAt(bytesReaderAt(b), int64(len(b)))
}

type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Pos returns the current position within the cursor.
func (c *Cursor) Pos() int64 { return c.pos }

// Remaining returns the number of bytes left before the cursor's limit.
func (c *Cursor) Remaining() int64 { return c.size - c.pos }

// Size returns the cursor's total size.
func (c *Cursor) Size() int64 { return c.size }

// Seek moves the cursor to an absolute position within its own bounds.
func (c *Cursor) Seek(pos int64) error {
	if pos < 0 || pos > c.size {
		return ErrUnexpectedEof
	}
	c.pos = pos
	return nil
}

// ReadExact reads exactly n bytes, advancing the cursor.
func (c *Cursor) ReadExact(n int) ([]byte, error) {
	if int64(n) > c.Remaining() {
		return nil, ErrUnexpectedEof
	}
	buf := make([]byte, n)
	if _, err := c.r.ReadAt(buf, c.base+c.pos); err != nil && err != io.EOF {
		return nil, err
	}
	c.pos += int64(n)
	return buf, nil
}

// Uint reads a fixed-width little-endian unsigned integer. n is one of
// {1, 2, 4, 7, 8}; 7 is the odd width used by the internal-key trailer's
// sequence number.
func (c *Cursor) Uint(n int) (uint64, error) {
	b, err := c.ReadExact(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// maxVarintBytes bounds how many bytes Varint will ever consume, even
// though the base-128 encoding itself has no size limit (spec.md §4.A).
const maxVarintBytes = 10

// Varint reads a base-128 varint: little-endian 7-bit groups, MSB
// continuation.
func (c *Cursor) Varint() (uint64, error) {
	var v uint64
	for i := 0; i < maxVarintBytes; i++ {
		b, err := c.ReadExact(1)
		if err != nil {
			return 0, err
		}
		v |= uint64(b[0]&0x7f) << (7 * uint(i))
		if b[0]&0x80 == 0 {
			return v, nil
		}
	}
	return 0, CorruptionErrorf("varint too long")
}

// SubView returns a cursor bounded to min(n, c.Remaining()) bytes, backed
// by the same underlying reader, and advances the parent past those bytes.
// This models the log reader's "read up to N bytes from the current
// block, without letting the callee see past it" need (spec.md §9): the
// sub-view references, but doesn't own, the parent for the duration of one
// physical block.
func (c *Cursor) SubView(n int) *Cursor {
	if int64(n) > c.Remaining() {
		n = int(c.Remaining())
	}
	sub := &Cursor{r: c.r, size: int64(n), base: c.base + c.pos}
	c.pos += int64(n)
	return sub
}
