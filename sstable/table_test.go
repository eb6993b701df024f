// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/require"

	"github.com/mikez/spotify-folders/internal/base"
	"github.com/mikez/spotify-folders/internal/snappyframe"
)

func testEncodeVarint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func testInternalKey(userKey string, seq uint64, kind base.InternalKeyKind) []byte {
	buf := append([]byte(userKey), byte(kind))
	for i := 0; i < 7; i++ {
		buf = append(buf, byte(seq>>(8*uint(i))))
	}
	return buf
}

// buildBlock encodes entries (each a restart point, shared = 0 for
// simplicity) into a key/value stream with a trailing restart table
// (spec.md §3).
func buildBlock(entries [][2][]byte) []byte {
	var entriesBuf []byte
	var restarts []uint32
	for _, e := range entries {
		restarts = append(restarts, uint32(len(entriesBuf)))
		entriesBuf = append(entriesBuf, testEncodeVarint(0)...)
		entriesBuf = append(entriesBuf, testEncodeVarint(uint64(len(e[0])))...)
		entriesBuf = append(entriesBuf, testEncodeVarint(uint64(len(e[1])))...)
		entriesBuf = append(entriesBuf, e[0]...)
		entriesBuf = append(entriesBuf, e[1]...)
	}
	buf := entriesBuf
	for _, r := range restarts {
		rb := make([]byte, 4)
		binary.LittleEndian.PutUint32(rb, r)
		buf = append(buf, rb...)
	}
	nb := make([]byte, 4)
	binary.LittleEndian.PutUint32(nb, uint32(len(restarts)))
	return append(buf, nb...)
}

func wrapBlock(payload []byte, compressionTag byte) []byte {
	out := append([]byte{}, payload...)
	out = append(out, compressionTag)
	crc := maskedCRC32(out)
	crcBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(crcBuf, crc)
	return append(out, crcBuf...)
}

func encodeHandle(offset, size uint64) []byte {
	return append(testEncodeVarint(offset), testEncodeVarint(size)...)
}

// buildTable assembles a minimal single-data-block table file whose only
// key is userKey bound to value. When compress is true, the serialized
// data block (entries plus restart trailer) is Snappy-compressed as a
// whole, the way a real producer would compress it, not just the stored
// value bytes.
func buildTable(userKey string, value []byte, compress bool) []byte {
	dataKey := testInternalKey(userKey, 1, base.InternalKeyKindSet)
	dataPayload := buildBlock([][2][]byte{{dataKey, value}})

	onDisk := dataPayload
	tag := byte(noCompressionBlockType)
	if compress {
		onDisk = snappy.Encode(nil, dataPayload)
		tag = snappyCompressionBlockType
	}
	wrappedData := wrapBlock(onDisk, tag)

	indexKey := testInternalKey(userKey, 1, base.InternalKeyKindSet)
	indexValue := encodeHandle(0, uint64(len(onDisk)))
	indexPayload := buildBlock([][2][]byte{{indexKey, indexValue}})
	wrappedIndex := wrapBlock(indexPayload, noCompressionBlockType)

	footerBody := append(encodeHandle(0, 0), encodeHandle(uint64(len(wrappedData)), uint64(len(indexPayload)))...)
	pad := make([]byte, footerLen-len(tableMagic)-len(footerBody))
	footer := append(footerBody, pad...)
	footer = append(footer, tableMagic...)

	file := append(wrappedData, wrappedIndex...)
	return append(file, footer...)
}

func TestReaderFindUncompressed(t *testing.T) {
	file := buildTable("foo", []byte("bar"), false)
	r, err := NewReader(bytes.NewReader(file), int64(len(file)), nil, snappyframe.Default, nil, 0, nil)
	require.NoError(t, err)

	value, err := r.Find([]byte("foo"))
	require.NoError(t, err)
	require.Equal(t, []byte("bar"), value)
}

func TestReaderFindMissingKey(t *testing.T) {
	file := buildTable("foo", []byte("bar"), false)
	r, err := NewReader(bytes.NewReader(file), int64(len(file)), nil, snappyframe.Default, nil, 0, nil)
	require.NoError(t, err)

	_, err = r.Find([]byte("zzz"))
	require.ErrorIs(t, err, base.ErrNotFound)
}

// TestReaderSnappyBlock covers spec.md §8 invariant 12: a Snappy-compressed
// data block decodes when a decompressor is available...
func TestReaderSnappyBlock(t *testing.T) {
	file := buildTable("foo", []byte("bar"), true)

	r, err := NewReader(bytes.NewReader(file), int64(len(file)), nil, snappyframe.Default, nil, 0, nil)
	require.NoError(t, err)
	value, err := r.Find([]byte("foo"))
	require.NoError(t, err)
	require.Equal(t, []byte("bar"), value)
}

// ... and produces SnappyMissing otherwise.
func TestReaderSnappyBlockMissingDecompressor(t *testing.T) {
	file := buildTable("foo", []byte("bar"), true)

	r, err := NewReader(bytes.NewReader(file), int64(len(file)), nil, nil, nil, 0, nil)
	require.NoError(t, err)
	_, err = r.Find([]byte("foo"))
	require.ErrorIs(t, err, base.ErrSnappyMissing)
}

func TestReaderNotATable(t *testing.T) {
	file := []byte("not a table file at all")
	_, err := NewReader(bytes.NewReader(file), int64(len(file)), nil, snappyframe.Default, nil, 0, nil)
	require.ErrorIs(t, err, base.ErrNotATable)
}
