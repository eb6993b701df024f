// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package rootlist

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// rowMarkerLen is len("spotify:").
const rowMarkerLen = 8

// recordTerminator is the framing byte the producer emits between
// records (spec.md §4.G, Open Questions: the producer's protobuf field
// tag, treated heuristically as a terminator rather than parsed as a
// real varint-prefixed protobuf field).
const recordTerminator = 0x12

// splitRows splits data at every occurrence of the literal "spotify:"
// immediately followed by 'p', 's', or 'e' (spec.md §4.G). Unlike
// original_source/folders.py's `re.split(b'spotify:[pse]', data)`, which
// consumes the marker byte, each returned row *keeps* its marker byte (so
// rows begin with "playlist:", "start-group:", or "end-group:" verbatim,
// matching spec.md's literal row-prefix checks) and the bytes of the next
// "spotify:" marker are excluded from the current row. The first row
// (everything before the first marker) is discarded.
func splitRows(data []byte) [][]byte {
	marker := []byte("spotify:")

	var matchStarts []int // offset of each "spotify:" occurrence that is a real row marker
	for i := 0; ; {
		idx := bytes.Index(data[i:], marker)
		if idx < 0 {
			break
		}
		pos := i + idx
		tagPos := pos + rowMarkerLen
		if tagPos < len(data) {
			switch data[tagPos] {
			case 'p', 's', 'e':
				matchStarts = append(matchStarts, pos)
			}
		}
		i = pos + 1
	}

	rows := make([][]byte, 0, len(matchStarts))
	for i, pos := range matchStarts {
		start := pos + rowMarkerLen
		end := len(data)
		if i+1 < len(matchStarts) {
			end = matchStarts[i+1]
		}
		rows = append(rows, data[start:end])
	}
	return rows
}

// truncateRow truncates a row at its first recordTerminator byte, the
// producer's inter-record framing byte (spec.md §4.G step 1).
func truncateRow(row []byte) []byte {
	if idx := bytes.IndexByte(row, recordTerminator); idx >= 0 {
		return row[:idx]
	}
	return row
}

// percentUnquotePlus decodes '+' as a space and "%XX" as the raw byte
// 0xXX, the same rule as Python's urllib.parse.unquote_plus, then
// NFC-normalizes the result: folder names are freeform user text that may
// arrive in different Unicode normalization forms across client versions
// (SPEC_FULL.md domain stack note).
func percentUnquotePlus(s string) string {
	b := []byte(s)
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		switch {
		case b[i] == '+':
			out = append(out, ' ')
		case b[i] == '%' && i+3 <= len(b):
			v, err := strconv.ParseUint(string(b[i+1:i+3]), 16, 8)
			if err != nil {
				out = append(out, b[i])
				continue
			}
			out = append(out, byte(v))
			i += 2
		default:
			out = append(out, b[i])
		}
	}
	return norm.NFC.String(string(out))
}

// leftPadZero16 left-pads s with '0' to 16 characters (spec.md §6: "the
// 16-hex id is the raw group id left-padded with 0"). s longer than 16
// characters is returned unchanged.
func leftPadZero16(s string) string {
	if len(s) >= 16 {
		return s
	}
	return strings.Repeat("0", 16-len(s)) + s
}

// Decode turns raw rootlist value bytes into a folder/playlist tree
// (spec.md §4.G). userID fills in the placeholder user segment of folder
// URIs; decoding is tolerant — malformed rows are simply not recognized
// by any prefix check and are skipped, and an unbalanced start-group with
// no matching end-group is closed at the end (spec.md §7, §9).
func Decode(raw []byte, userID string) *Tree {
	root := NewFolder()
	current := root
	var stack []*Node

	for _, row := range splitRows(raw) {
		r := truncateRow(row)
		switch {
		case bytes.HasPrefix(r, []byte("playlist:")):
			uri := "spotify:" + string(r)
			current.Children = append(current.Children, NewPlaylist(uri))

		case bytes.HasPrefix(r, []byte("start-group:")):
			tags := bytes.Split(r, []byte(":"))
			name := ""
			groupID := ""
			if len(tags) >= 1 {
				name = percentUnquotePlus(string(tags[len(tags)-1]))
			}
			if len(tags) >= 2 {
				groupID = string(tags[len(tags)-2])
			}
			folder := NewFolder()
			folder.Name = name
			folder.URI = "spotify:user:" + userID + ":folder:" + leftPadZero16(groupID)
			stack = append(stack, current)
			current = folder

		case bytes.HasPrefix(r, []byte("end-group:")):
			if len(stack) == 0 {
				// Tolerant: the root is never popped (spec.md §4.G invariant).
				continue
			}
			parent := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent.Children = append(parent.Children, current)
			current = parent
		}
	}

	// Tolerant close of unbalanced start-group/end-group input.
	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent.Children = append(parent.Children, current)
		current = parent
	}

	return &Tree{Root: current}
}
