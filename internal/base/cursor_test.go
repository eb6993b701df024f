// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorReadExactAndSeek(t *testing.T) {
	c := FromBytes([]byte("hello world"))
	b, err := c.ReadExact(5)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b)
	require.Equal(t, int64(5), c.Pos())

	require.NoError(t, c.Seek(6))
	b, err = c.ReadExact(5)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), b)

	_, err = c.ReadExact(1)
	require.ErrorIs(t, err, ErrUnexpectedEof)
}

func TestCursorVarint(t *testing.T) {
	// 300 encodes as 0xAC 0x02 in base-128 little-endian.
	c := FromBytes([]byte{0xac, 0x02})
	v, err := c.Varint()
	require.NoError(t, err)
	require.Equal(t, uint64(300), v)
}

func TestCursorSubViewBoundsToRemaining(t *testing.T) {
	c := FromBytes([]byte("abcdef"))
	sub := c.SubView(4)
	require.Equal(t, int64(4), sub.Size())
	require.Equal(t, int64(4), c.Pos())

	tail := c.SubView(10)
	require.Equal(t, int64(2), tail.Size())
}

func TestCursorUintOddWidth(t *testing.T) {
	// The 7-byte width used by the internal-key trailer's sequence number.
	c := FromBytes([]byte{1, 0, 0, 0, 0, 0, 0})
	v, err := c.Uint(7)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
}
