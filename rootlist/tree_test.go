// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package rootlist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTreeFindMatchesFolderSuffix covers original_source/folders.py's
// get_folder: only folder nodes are matched, by the tail of their URI.
func TestTreeFindMatchesFolderSuffix(t *testing.T) {
	inner := NewFolder()
	inner.Name = "Summer"
	inner.URI = "spotify:user:u:folder:0000000000000abc"
	inner.Children = append(inner.Children, NewPlaylist("spotify:playlist:X"))

	root := NewFolder()
	root.Children = append(root.Children, inner)
	tree := &Tree{Root: root}

	found := tree.Find("abc")
	require.NotNil(t, found)
	require.Equal(t, "Summer", found.Name)

	require.Nil(t, tree.Find("X"))     // a playlist URI is never matched
	require.Nil(t, tree.Find("zzzzz")) // no such folder
}

func TestTreeFindOnNilTree(t *testing.T) {
	var tree *Tree
	require.Nil(t, tree.Find("anything"))
}

func TestNodeMarshalJSON(t *testing.T) {
	playlist := NewPlaylist("spotify:playlist:X")
	b, err := json.Marshal(playlist)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"playlist","uri":"spotify:playlist:X"}`, string(b))

	root := NewFolder()
	b, err = json.Marshal(root)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"folder","children":[]}`, string(b))

	folder := NewFolder()
	folder.Name = "Summer"
	folder.URI = "spotify:user:u:folder:0000000000000abc"
	folder.Children = append(folder.Children, playlist)
	b, err = json.Marshal(folder)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"folder","name":"Summer","uri":"spotify:user:u:folder:0000000000000abc","children":[{"type":"playlist","uri":"spotify:playlist:X"}]}`, string(b))
}
