// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikez/spotify-folders/internal/base"
)

func encodeVarint(v uint64) []byte {
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

type opSpec struct {
	kind  base.InternalKeyKind
	key   []byte
	value []byte
}

func encodeBatchPayload(seq uint64, ops ...opSpec) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, seq)
	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(ops)))
	buf = append(buf, countBuf...)
	for _, op := range ops {
		buf = append(buf, byte(op.kind))
		buf = append(buf, encodeVarint(uint64(len(op.key)))...)
		buf = append(buf, op.key...)
		if op.kind == base.InternalKeyKindSet {
			buf = append(buf, encodeVarint(uint64(len(op.value)))...)
			buf = append(buf, op.value...)
		}
	}
	return buf
}

func encodeFragment(typ byte, payload []byte) []byte {
	hdr := make([]byte, fragmentHeaderLen)
	binary.LittleEndian.PutUint16(hdr[4:6], uint16(len(payload)))
	hdr[6] = typ
	return append(hdr, payload...)
}

type testLogger struct{ warnings []string }

func (l *testLogger) Warnf(format string, args ...interface{}) {
	l.warnings = append(l.warnings, format)
}

func TestReaderDecodesSingleFullFragmentBatch(t *testing.T) {
	payload := encodeBatchPayload(7, opSpec{kind: base.InternalKeyKindSet, key: []byte("k1"), value: []byte("v1")})
	file := encodeFragment(fragmentFull, payload)

	r := NewReader(bytes.NewReader(file), int64(len(file)), &testLogger{})
	batch, err := r.NextBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(7), batch.Sequence)
	require.Len(t, batch.Ops, 1)
	require.Equal(t, []byte("v1"), batch.Ops[0].Value)

	_, err = r.NextBatch()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderFindReturnsLastWrite(t *testing.T) {
	first := encodeFragment(fragmentFull, encodeBatchPayload(1, opSpec{kind: base.InternalKeyKindSet, key: []byte("k"), value: []byte("old")}))
	second := encodeFragment(fragmentFull, encodeBatchPayload(2, opSpec{kind: base.InternalKeyKindSet, key: []byte("k"), value: []byte("new")}))
	file := append(first, second...)

	r := NewReader(bytes.NewReader(file), int64(len(file)), &testLogger{})
	value, err := r.Find([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("new"), value)
}

func TestReaderFindIgnoresDeleteOnlyKeys(t *testing.T) {
	file := encodeFragment(fragmentFull, encodeBatchPayload(1, opSpec{kind: base.InternalKeyKindDelete, key: []byte("k")}))

	r := NewReader(bytes.NewReader(file), int64(len(file)), &testLogger{})
	_, err := r.Find([]byte("k"))
	require.ErrorIs(t, err, base.ErrNotFound)
}

// TestReaderMultiFragmentRecord covers the FIRST/MIDDLE/LAST split of a
// single logical batch across more than one fragment (spec.md §4.C).
func TestReaderMultiFragmentRecord(t *testing.T) {
	payload := encodeBatchPayload(9, opSpec{kind: base.InternalKeyKindSet, key: []byte("split-key"), value: []byte("split-value")})
	mid := len(payload) / 2
	file := append(encodeFragment(fragmentFirst, payload[:mid]), encodeFragment(fragmentLast, payload[mid:])...)

	r := NewReader(bytes.NewReader(file), int64(len(file)), &testLogger{})
	batch, err := r.NextBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(9), batch.Sequence)
	require.Equal(t, []byte("split-value"), batch.Ops[0].Value)
}

// TestReaderShortLastBlock covers spec.md §8 invariant 11: a log segment
// whose last physical block is short (here, the only block, well under
// the 32 KiB physical block size) decodes without error up to the last
// complete fragment, then a truncated trailing fragment header simply
// ends the file.
func TestReaderShortLastBlock(t *testing.T) {
	full := encodeFragment(fragmentFull, encodeBatchPayload(1, opSpec{kind: base.InternalKeyKindSet, key: []byte("k"), value: []byte("v")}))
	truncated := []byte{1, 2, 3} // shorter than fragmentHeaderLen
	file := append(full, truncated...)
	require.Less(t, len(file), blockSize)

	r := NewReader(bytes.NewReader(file), int64(len(file)), &testLogger{})
	batch, err := r.NextBatch()
	require.NoError(t, err)
	require.Equal(t, uint64(1), batch.Sequence)

	_, err = r.NextBatch()
	require.Error(t, err)
}
