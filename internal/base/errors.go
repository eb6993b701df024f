// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"github.com/cockroachdb/errors"
)

// ErrNotFound means no file bound the target key to a value.
var ErrNotFound = errors.New("spotify-folders: not found")

// ErrNotATable means a .ldb file's footer magic did not match.
var ErrNotATable = errors.New("spotify-folders: not a table file")

// ErrUnsupportedCompression means a table block's compression tag was not
// one of {none, snappy}.
var ErrUnsupportedCompression = errors.New("spotify-folders: unsupported block compression")

// ErrSnappyMissing means a Snappy-compressed block was encountered but no
// decompressor was configured.
var ErrSnappyMissing = errors.New("spotify-folders: snappy decompression unavailable")

// CorruptionErrorf builds an error for malformed on-disk framing: bad
// varints, out-of-range restart offsets, shared-length overflow, and
// similar. Mirrors the teacher's base.CorruptionErrorf.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Newf("spotify-folders: corrupt: "+format, args...)
}

// Safef marks the supplied path/identifier as safe for inclusion in a
// redacted error message, the same role errors.Safe(...) plays in the
// teacher's table.go.
func Safef(v interface{}) errors.SafeMessager {
	return errors.Safe(v)
}
