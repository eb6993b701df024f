// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package snappyframe decompresses single-shot Snappy block payloads, the
// one compression format the rootlist reader supports (spec.md §1
// Non-goals: "decompressing formats other than Snappy").
package snappyframe

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
)

// Decompress decompresses a single Snappy block, as used by sstable data
// and index blocks whose compression tag is 1. On malformed input it
// returns snappy's own error wrapped with a "corrupt" message (spec.md §4.B).
func Decompress(b []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(b)
	if err != nil {
		return nil, errors.Wrap(err, "spotify-folders: corrupt: malformed snappy block")
	}
	out := make([]byte, n)
	out, err = snappy.Decode(out, b)
	if err != nil {
		return nil, errors.Wrap(err, "spotify-folders: corrupt: malformed snappy block")
	}
	return out, nil
}

// Decompressor is the pluggable decompression callback the table reader
// accepts (spec.md §9 design note: "make decompression pluggable ... with
// absent as a first-class value"). A nil Decompressor means Snappy support
// is unavailable; callers should surface base.ErrSnappyMissing rather than
// attempting Decompress.
type Decompressor func(b []byte) ([]byte, error)

// Default is the Decompressor backed by this package's Decompress. Callers
// wanting a "Snappy is unavailable" build can pass a nil Decompressor
// instead of Default.
var Default Decompressor = Decompress
