// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/titankv/titan/internal/base"
)

func TestBlobGCMarkFilesBeingGC(t *testing.T) {
	a := initializedFile(t, 1, 4<<20, 1<<20)
	b := initializedFile(t, 2, 4<<20, 3<<20)
	c := initializedFile(t, 3, 4<<20, 2<<20)
	require.NoError(t, c.FileStateTransit(FileEventDelete))

	gc := newBlobGC([]*BlobFileMeta{a, b, c}, CFOptions{}, true)
	require.Equal(t, "gc[000001 000002 000003] input:12MiB output:6.0MiB continue", gc.String())
	require.Equal(t, uint64(12<<20), gc.InputSize())
	require.Equal(t, uint64(6<<20), gc.EstimatedOutputSize())

	// The third input was deleted after the pick: the first two are rolled
	// back.
	err := gc.MarkFilesBeingGC()
	require.True(t, errors.Is(err, base.ErrInconsistentFileState))
	require.Equal(t, FileStateNormal, a.FileState())
	require.Equal(t, FileStateNormal, b.FileState())
	require.Equal(t, FileStateObsolete, c.FileState())
}

func TestBlobGCRelease(t *testing.T) {
	for _, succeeded := range []bool{true, false} {
		a := initializedFile(t, 1, 100, 10)
		b := initializedFile(t, 2, 100, 10)
		gc := newBlobGC([]*BlobFileMeta{a, b}, CFOptions{}, false)
		require.Equal(t, "gc[000001 000002] input:200B output:20B", gc.String())
		require.NoError(t, gc.MarkFilesBeingGC())
		require.NoError(t, gc.ReleaseGCFiles(succeeded))
		want := FileStateNormal
		if succeeded {
			want = FileStateObsolete
		}
		require.Equal(t, want, a.FileState())
		require.Equal(t, want, b.FileState())
	}

	// Releasing files that were never marked fails but still visits every
	// input.
	a := initializedFile(t, 1, 100, 10)
	b := initializedFile(t, 2, 100, 10)
	require.NoError(t, b.FileStateTransit(FileEventGCBegin))
	gc := newBlobGC([]*BlobFileMeta{a, b}, CFOptions{}, false)
	require.Error(t, gc.ReleaseGCFiles(true))
	require.Equal(t, FileStateNormal, a.FileState())
	require.Equal(t, FileStateObsolete, b.FileState())
}
