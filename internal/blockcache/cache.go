// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package blockcache is a small read-through LRU cache of decompressed
// sstable blocks, keyed by (file, offset). Grounded on the teacher's own
// cache.Handle-based block cache in backwardn-pebble/sstable/reader.go
// (readWeakCachedBlock / r.cache.Get(dbNum, fileNum, offset)), generalized
// from a process-wide weak-reference cache down to a bounded LRU held by
// one rootlist locator: this reader has no multiple concurrent readers
// sharing one store, so a fixed-capacity LRU keyed by a single hash is
// enough. The key includes a per-path file identifier, so a cached block
// is only returned for the same file it was read from (spec.md §4.F).
package blockcache

import (
	"container/list"
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Key hashes a (file, offset) pair into a single cache key.
func Key(fileID, offset uint64) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], fileID)
	binary.LittleEndian.PutUint64(buf[8:], offset)
	return xxhash.Sum64(buf[:])
}

// FileID derives a cache-scoped file identifier from a file's path, so
// the locator's directory scan can key block-cache entries without
// tracking its own file numbering (unlike the teacher's engine, which
// assigns sequential FileNums to files it wrote itself).
func FileID(path string) uint64 {
	return xxhash.Sum64String(path)
}

type entry struct {
	key   uint64
	value []byte
}

// Cache is a fixed-capacity LRU. The zero value is not usable; use New.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[uint64]*list.Element
}

// New returns an LRU cache holding at most capacity blocks. A capacity of
// 0 disables caching: Get always misses and Set is a no-op.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[uint64]*list.Element),
	}
}

// Get returns the cached block for key, if any.
func (c *Cache) Get(key uint64) ([]byte, bool) {
	if c == nil || c.capacity == 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Set inserts value under key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache) Set(key uint64, value []byte) {
	if c == nil || c.capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&entry{key: key, value: value})
	c.index[key] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*entry).key)
		}
	}
}
