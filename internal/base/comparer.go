// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

// Compare is a three-way byte comparison, the same shape as the teacher's
// db.Compare / bytes.Compare.
type Compare func(a, b []byte) int

// groupSeparator is the byte relied on by the rootlist key
// (`!pl#slc#\x1dspotify:user:...`) and given special comparator treatment:
// it sorts after every other byte at the same position.
const groupSeparator = 0x1d

// Compare implements the producer's custom comparator (spec.md §4.E): a
// byte-order compare with one twist — a group-separator byte (0x1d) is
// ordered after every non-GS byte at the same position, rather than by its
// raw value (0x1d would otherwise sort in the middle of the ASCII range).
// Required for index-key lookups in sstable to land on the correct data
// block.
func Compare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai, bi := a[i], b[i]
		if ai == bi {
			continue
		}
		if ai == groupSeparator {
			return 1
		}
		if bi == groupSeparator {
			return -1
		}
		if ai < bi {
			return -1
		}
		return 1
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// LessOrEqual implements less_or_equal(a, b) from spec.md §4.E as
// Compare(a, b) <= 0, giving the defining relation a name of its own that
// the invariant tests (spec.md §8 invariant 5) exercise directly.
func LessOrEqual(a, b []byte) bool {
	return Compare(a, b) <= 0
}

// InternalCompare orders internal keys by user key ascending (via cmp),
// then by sequence number descending (newest first) for equal user keys —
// the ordering sstable data blocks are sorted in (spec.md §4.D).
func InternalCompare(cmp Compare, a, b InternalKey) int {
	if c := cmp(a.UserKey, b.UserKey); c != 0 {
		return c
	}
	switch {
	case a.SeqNum > b.SeqNum:
		return -1
	case a.SeqNum < b.SeqNum:
		return 1
	default:
		return 0
	}
}
