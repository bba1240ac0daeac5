// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"sync"

	"github.com/cockroachdb/redact"
	"github.com/titankv/titan/internal/base"
	"github.com/titankv/titan/internal/humanize"
	"github.com/titankv/titan/internal/invariants"
)

// FileState is the lifecycle state of a blob file.
type FileState uint8

const (
	// FileStateNone is the state of a file whose metadata has not been
	// initialized. The storage manager must never expose a file in this
	// state.
	FileStateNone FileState = iota
	// FileStateNormal files are live and eligible for GC.
	FileStateNormal
	// FileStatePendingLSM files were written by a flush or compaction whose
	// result is not yet installed.
	FileStatePendingLSM
	// FileStateBeingGC files are inputs of a running GC.
	FileStateBeingGC
	// FileStatePendingGC files were written by a GC whose result is not yet
	// installed.
	FileStatePendingGC
	// FileStateObsolete files have been collected or deleted.
	FileStateObsolete
)

var fileStateNames = [...]string{
	FileStateNone:       "none",
	FileStateNormal:     "normal",
	FileStatePendingLSM: "pending-lsm",
	FileStateBeingGC:    "being-gc",
	FileStatePendingGC:  "pending-gc",
	FileStateObsolete:   "obsolete",
}

// String implements fmt.Stringer.
func (s FileState) String() string {
	if int(s) < len(fileStateNames) {
		return fileStateNames[s]
	}
	return "unknown"
}

// SafeFormat implements redact.SafeFormatter.
func (s FileState) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(s.String()))
}

// FileEvent drives the transitions of a FileState.
type FileEvent uint8

const (
	// FileEventInit installs a file recovered from the manifest.
	FileEventInit FileEvent = iota
	// FileEventFlushOrCompactionOutput marks a file written by a flush or a
	// compaction.
	FileEventFlushOrCompactionOutput
	// FileEventFlushCompleted installs the outputs of a flush or compaction.
	FileEventFlushCompleted
	// FileEventGCOutput marks a file written by a GC.
	FileEventGCOutput
	// FileEventGCBegin marks a file picked as a GC input.
	FileEventGCBegin
	// FileEventGCCompleted retires GC inputs and installs GC outputs.
	FileEventGCCompleted
	// FileEventGCFailed returns GC inputs to service and drops GC outputs.
	FileEventGCFailed
	// FileEventDelete marks a file obsolete.
	FileEventDelete
)

var fileEventNames = [...]string{
	FileEventInit:                    "init",
	FileEventFlushOrCompactionOutput: "flush-or-compaction-output",
	FileEventFlushCompleted:          "flush-completed",
	FileEventGCOutput:                "gc-output",
	FileEventGCBegin:                 "gc-begin",
	FileEventGCCompleted:             "gc-completed",
	FileEventGCFailed:                "gc-failed",
	FileEventDelete:                  "delete",
}

// String implements fmt.Stringer.
func (e FileEvent) String() string {
	if int(e) < len(fileEventNames) {
		return fileEventNames[e]
	}
	return "unknown"
}

// SafeFormat implements redact.SafeFormatter.
func (e FileEvent) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(e.String()))
}

// BlobFileMeta describes a blob file. FileNum and FileSize are immutable; the
// state and the live data size may change concurrently and are read through
// accessors.
type BlobFileMeta struct {
	FileNum  base.FileNum
	FileSize uint64

	mu struct {
		sync.Mutex
		state        FileState
		liveDataSize uint64
	}
}

// NewBlobFileMeta returns the metadata of a blob file in FileStateNone. The
// caller moves it out of that state with FileStateTransit before exposing it.
func NewBlobFileMeta(fileNum base.FileNum, fileSize, liveDataSize uint64) *BlobFileMeta {
	m := &BlobFileMeta{FileNum: fileNum, FileSize: fileSize}
	m.mu.liveDataSize = min(liveDataSize, fileSize)
	return m
}

// FileState returns the current state of the file.
func (m *BlobFileMeta) FileState() FileState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mu.state
}

// LiveDataSize returns the number of bytes of the file still referenced.
func (m *BlobFileMeta) LiveDataSize() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mu.liveDataSize
}

// GetDiscardableRatio returns the fraction of the file that is no longer
// referenced. An empty file has nothing to discard.
func (m *BlobFileMeta) GetDiscardableRatio() float64 {
	if m.FileSize == 0 {
		return 0
	}
	live := m.LiveDataSize()
	return 1 - float64(live)/float64(m.FileSize)
}

// AddLiveData records n more referenced bytes, capped at the file size.
func (m *BlobFileMeta) AddLiveData(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mu.liveDataSize = min(m.mu.liveDataSize+n, m.FileSize)
}

// RemoveLiveData records that n referenced bytes were dropped.
func (m *BlobFileMeta) RemoveLiveData(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mu.liveDataSize = invariants.SafeSub(m.mu.liveDataSize, n)
}

// FileStateTransit applies event to the file state. An event that is not
// legal in the current state leaves the state unchanged and returns an
// assertion failure marked with base.ErrInconsistentFileState.
func (m *BlobFileMeta) FileStateTransit(event FileEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	from := m.mu.state
	to, ok := nextFileState(from, event)
	if !ok {
		return base.InconsistentFileStateErrorf("blob file %s: illegal event %s in state %s",
			m.FileNum, event, from)
	}
	m.mu.state = to
	return nil
}

func nextFileState(s FileState, e FileEvent) (FileState, bool) {
	switch e {
	case FileEventInit:
		if s == FileStateNone {
			return FileStateNormal, true
		}
	case FileEventFlushOrCompactionOutput:
		if s == FileStateNone {
			return FileStatePendingLSM, true
		}
	case FileEventFlushCompleted:
		// Files written by GC are installed by FileEventGCCompleted and keep
		// their state here.
		switch s {
		case FileStatePendingLSM:
			return FileStateNormal, true
		case FileStateNormal, FileStateBeingGC, FileStatePendingGC, FileStateObsolete:
			return s, true
		}
	case FileEventGCOutput:
		if s == FileStateNone {
			return FileStatePendingGC, true
		}
	case FileEventGCBegin:
		if s == FileStateNormal {
			return FileStateBeingGC, true
		}
	case FileEventGCCompleted:
		switch s {
		case FileStateBeingGC, FileStateObsolete:
			return FileStateObsolete, true
		case FileStatePendingGC:
			return FileStateNormal, true
		}
	case FileEventGCFailed:
		switch s {
		case FileStateBeingGC:
			return FileStateNormal, true
		case FileStatePendingGC, FileStateObsolete:
			return FileStateObsolete, true
		}
	case FileEventDelete:
		if s != FileStateNone && s != FileStateObsolete {
			return FileStateObsolete, true
		}
	}
	return s, false
}

// SafeFormat implements redact.SafeFormatter.
func (m *BlobFileMeta) SafeFormat(w redact.SafePrinter, _ rune) {
	m.mu.Lock()
	state, live := m.mu.state, m.mu.liveDataSize
	m.mu.Unlock()
	w.Printf("%s size:[%d (%s)] live:[%d (%s)] %s",
		m.FileNum, redact.Safe(m.FileSize), humanize.Bytes.Uint64(m.FileSize),
		redact.Safe(live), humanize.Bytes.Uint64(live), state)
}

// String implements fmt.Stringer.
func (m *BlobFileMeta) String() string {
	return redact.StringWithoutMarkers(m)
}
