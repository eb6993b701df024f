// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package rootlist

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/cockroachdb/tokenbucket"

	"github.com/mikez/spotify-folders/internal/base"
	"github.com/mikez/spotify-folders/internal/blockcache"
	"github.com/mikez/spotify-folders/internal/metrics"
	"github.com/mikez/spotify-folders/internal/snappyframe"
	"github.com/mikez/spotify-folders/record"
	"github.com/mikez/spotify-folders/sstable"
)

// groupSeparator is the literal GS byte embedded in the rootlist key.
const groupSeparator = "\x1d"

// key builds the rootlist key for username (spec.md §3, §6):
// "!pl#slc#\x1dspotify:user:<username>:rootlist#".
func key(username string) []byte {
	return []byte("!pl#slc#" + groupSeparator + "spotify:user:" + username + ":rootlist#")
}

// inferUsername walks path from leaf to root and returns the username
// contributed by the first path segment ending in "-user" (spec.md §4.F):
// everything before the final '-' in that segment.
func inferUsername(path string) (string, bool) {
	dir := filepath.Dir(path)
	for {
		seg := filepath.Base(dir)
		if strings.HasSuffix(seg, "-user") {
			if idx := strings.LastIndex(seg, "-"); idx >= 0 {
				return seg[:idx], true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type candidateFile struct {
	path    string
	modTime time.Time
	size    int64
}

// CandidateInfo describes one file a directory scan would probe,
// exported for the glue layer's "describe what's on disk" CLI surface
// (SPEC_FULL.md's scan subcommand).
type CandidateInfo struct {
	Path    string
	Kind    string // "log", "table", or "other"
	Size    int64
	ModTime time.Time
}

// RootDir computes the candidate root directory for a cacheDir/userHint
// pair (spec.md §4.F step 1), exported so the glue layer can report it.
func RootDir(cacheDir, userHint string) string {
	if userHint == "" {
		return cacheDir
	}
	return filepath.Join(cacheDir, userHint+"-user")
}

// ListCandidates returns every regular file under the candidate root
// directory for cacheDir/userHint, newest-first, the same listing Locate
// itself scans (SPEC_FULL.md's scan subcommand).
func (loc *Locator) ListCandidates(cacheDir, userHint string) ([]CandidateInfo, error) {
	files, err := loc.listFiles(RootDir(cacheDir, userHint))
	if err != nil {
		return nil, err
	}
	out := make([]CandidateInfo, len(files))
	for i, f := range files {
		kind := "other"
		switch filepath.Ext(f.path) {
		case ".log":
			kind = "log"
		case ".ldb":
			kind = "table"
		}
		out[i] = CandidateInfo{Path: f.path, Kind: kind, Size: f.size, ModTime: f.modTime}
	}
	return out, nil
}

// Locator implements the rootlist locator (spec.md §4.F): it builds the
// target key, walks a cache directory newest-file-first, and asks the
// log-segment reader (for .log files) and the table-file reader (for
// .ldb files) for the most recent value bound to that key.
type Locator struct {
	Log          base.Logger
	Cache        *blockcache.Cache
	Decompressor snappyframe.Decompressor
	// Throttle, if non-nil, is consulted once per candidate file before it
	// is opened, bounding how fast a pathological cache directory full of
	// stale segments can be probed. Nil means unlimited (spec.md §4.F
	// imposes no such limit; this is a SPEC_FULL.md domain-stack addition).
	Throttle *tokenbucket.TokenBucket
	// Metrics, if non-nil, is updated with scan counters and per-file
	// lookup latency (SPEC_FULL.md domain-stack addition; nil disables
	// instrumentation entirely).
	Metrics *metrics.Registry
}

// NewLocator returns a Locator with slog-backed logging, no block cache,
// no throttle, and Snappy decompression available.
func NewLocator() *Locator {
	return &Locator{
		Log:          base.NewLogger(nil),
		Decompressor: snappyframe.Default,
	}
}

// Locate returns the username the rootlist key was resolved against and
// the raw value bound to it, or base.ErrNotFound if no file in the
// candidate directory binds the key (spec.md §4.F step 5).
func (loc *Locator) Locate(ctx context.Context, cacheDir, userHint string) (string, []byte, error) {
	root := cacheDir
	if userHint != "" {
		root = filepath.Join(cacheDir, userHint+"-user")
	}

	files, err := loc.listFiles(root)
	if err != nil {
		return "", nil, errors.Wrapf(err, "rootlist: walking %s", redact.Safe(root))
	}

	if value, username, ok := loc.scan(ctx, files, userHint, ".log", loc.findInLog); ok {
		return username, value, nil
	}
	if value, username, ok := loc.scan(ctx, files, userHint, ".ldb", loc.findInTable); ok {
		return username, value, nil
	}
	return "", nil, base.ErrNotFound
}

// listFiles enumerates every regular file under root, sorted by
// last-modified time descending (spec.md §4.F step 2). A failure to stat
// or descend into one entry is logged and skipped, never aborting the
// walk (spec.md §7 tolerance policy).
func (loc *Locator) listFiles(root string) ([]candidateFile, error) {
	var files []candidateFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			loc.Log.Warnf("rootlist: skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			loc.Log.Warnf("rootlist: stat failed for %s: %v", path, err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		files = append(files, candidateFile{path: path, modTime: info.ModTime(), size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})
	return files, nil
}

type findFunc func(path string, target []byte) ([]byte, error)

// scan walks files of the given extension newest-first, probing each with
// find until one yields a value (spec.md §4.F steps 3-4). An I/O error on
// one file is logged and the file skipped, never aborting the scan.
func (loc *Locator) scan(ctx context.Context, files []candidateFile, userHint, ext string, find findFunc) ([]byte, string, bool) {
	for _, f := range files {
		if filepath.Ext(f.path) != ext {
			continue
		}
		username := userHint
		if username == "" {
			inferred, ok := inferUsername(f.path)
			if !ok {
				continue
			}
			username = inferred
		}

		if loc.Throttle != nil {
			if err := loc.Throttle.Wait(ctx, 1); err != nil {
				loc.Log.Warnf("rootlist: throttle wait failed before %s: %v", f.path, err)
				continue
			}
		}

		if loc.Metrics != nil {
			loc.Metrics.FilesScanned.Inc()
		}
		start := time.Now()
		value, err := find(f.path, key(username))
		if loc.Metrics != nil {
			loc.Metrics.ObserveLatency(time.Since(start))
		}
		if err != nil {
			if !errors.Is(err, base.ErrNotFound) {
				loc.Log.Warnf("rootlist: skipping %s: %v", redact.Safe(f.path), err)
				if loc.Metrics != nil {
					loc.Metrics.FilesSkipped.WithLabelValues(skipReason(err)).Inc()
				}
			}
			continue
		}
		if loc.Metrics != nil {
			switch ext {
			case ".log":
				loc.Metrics.LogHits.Inc()
			case ".ldb":
				loc.Metrics.TableHits.Inc()
			}
		}
		return value, username, true
	}
	return nil, "", false
}

// skipReason classifies an error for the FilesSkipped counter's "reason"
// label.
func skipReason(err error) string {
	switch {
	case errors.Is(err, base.ErrNotATable):
		return "not_a_table"
	case errors.Is(err, base.ErrUnsupportedCompression):
		return "unsupported_compression"
	case errors.Is(err, base.ErrSnappyMissing):
		return "snappy_missing"
	default:
		return "io_or_corrupt"
	}
}

func (loc *Locator) findInLog(path string, target []byte) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r := record.NewReader(f, info.Size(), loc.Log)
	return r.Find(target)
}

func (loc *Locator) findInTable(path string, target []byte) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	fileID := blockcache.FileID(path)
	r, err := sstable.NewReader(f, info.Size(), base.Compare, loc.Decompressor, loc.Log, fileID, loc.Cache)
	if err != nil {
		return nil, err
	}
	return r.Find(target)
}
