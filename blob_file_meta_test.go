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

func TestFileStateTransit(t *testing.T) {
	testCases := []struct {
		events []FileEvent
		want   FileState
	}{
		{[]FileEvent{FileEventInit}, FileStateNormal},
		{[]FileEvent{FileEventFlushOrCompactionOutput}, FileStatePendingLSM},
		{[]FileEvent{FileEventFlushOrCompactionOutput, FileEventFlushCompleted}, FileStateNormal},
		{[]FileEvent{FileEventGCOutput}, FileStatePendingGC},
		{[]FileEvent{FileEventGCOutput, FileEventFlushCompleted}, FileStatePendingGC},
		{[]FileEvent{FileEventGCOutput, FileEventGCCompleted}, FileStateNormal},
		{[]FileEvent{FileEventGCOutput, FileEventGCFailed}, FileStateObsolete},
		{[]FileEvent{FileEventInit, FileEventGCBegin}, FileStateBeingGC},
		{[]FileEvent{FileEventInit, FileEventGCBegin, FileEventGCCompleted}, FileStateObsolete},
		{[]FileEvent{FileEventInit, FileEventGCBegin, FileEventGCFailed}, FileStateNormal},
		{[]FileEvent{FileEventInit, FileEventGCBegin, FileEventDelete, FileEventGCCompleted}, FileStateObsolete},
		{[]FileEvent{FileEventInit, FileEventDelete}, FileStateObsolete},
	}
	for _, tc := range testCases {
		m := NewBlobFileMeta(1, 100, 50)
		require.Equal(t, FileStateNone, m.FileState())
		for _, e := range tc.events {
			require.NoError(t, m.FileStateTransit(e), "%v", tc.events)
		}
		require.Equal(t, tc.want, m.FileState(), "%v", tc.events)
	}
}

func TestFileStateTransitIllegal(t *testing.T) {
	testCases := []struct {
		events  []FileEvent
		illegal FileEvent
	}{
		{nil, FileEventGCBegin},
		{nil, FileEventDelete},
		{nil, FileEventFlushCompleted},
		{[]FileEvent{FileEventInit}, FileEventInit},
		{[]FileEvent{FileEventInit}, FileEventGCOutput},
		{[]FileEvent{FileEventInit}, FileEventGCCompleted},
		{[]FileEvent{FileEventInit, FileEventGCBegin}, FileEventGCBegin},
		{[]FileEvent{FileEventFlushOrCompactionOutput}, FileEventGCBegin},
		{[]FileEvent{FileEventInit, FileEventDelete}, FileEventDelete},
	}
	for _, tc := range testCases {
		m := NewBlobFileMeta(7, 100, 50)
		for _, e := range tc.events {
			require.NoError(t, m.FileStateTransit(e))
		}
		before := m.FileState()
		err := m.FileStateTransit(tc.illegal)
		require.Error(t, err, "%v then %s", tc.events, tc.illegal)
		require.True(t, errors.Is(err, base.ErrInconsistentFileState))
		require.True(t, errors.HasAssertionFailure(err))
		require.Equal(t, before, m.FileState())
	}
}

func TestBlobFileMetaLiveData(t *testing.T) {
	m := NewBlobFileMeta(3, 1000, 2000)
	require.Equal(t, uint64(1000), m.LiveDataSize())
	require.Equal(t, 0.0, m.GetDiscardableRatio())

	m.RemoveLiveData(250)
	require.Equal(t, uint64(750), m.LiveDataSize())
	require.InDelta(t, 0.25, m.GetDiscardableRatio(), 1e-9)

	m.AddLiveData(100)
	require.Equal(t, uint64(850), m.LiveDataSize())
	m.AddLiveData(1000)
	require.Equal(t, uint64(1000), m.LiveDataSize())

	empty := NewBlobFileMeta(4, 0, 0)
	require.Equal(t, 0.0, empty.GetDiscardableRatio())
}

func TestBlobFileMetaString(t *testing.T) {
	m := NewBlobFileMeta(12, 10<<20, 1<<20)
	require.Equal(t, "000012 size:[10485760 (10MiB)] live:[1048576 (1.0MiB)] none", m.String())
	require.NoError(t, m.FileStateTransit(FileEventInit))
	require.Equal(t, "000012 size:[10485760 (10MiB)] live:[1048576 (1.0MiB)] normal", m.String())
	require.Equal(t, "gc-completed", FileEventGCCompleted.String())
	require.Equal(t, "unknown", FileState(200).String())
}
