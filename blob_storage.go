// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"cmp"
	"slices"
	"sync"
	"weak"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"
	"github.com/titankv/titan/internal/base"
)

// GCScore is the GC priority of a blob file: the fraction of its content that
// can be discarded, possibly boosted for small files.
type GCScore struct {
	FileNum base.FileNum
	Score   float64
}

// BlobStorage is the view of a column family's blob files consumed by the GC
// picker.
type BlobStorage interface {
	// ComputeGCScore recomputes the GC scores. It must be called before
	// GCScores.
	ComputeGCScore()
	// GCScores returns the scores computed by the last call to ComputeGCScore,
	// sorted by descending score. The caller must not modify the slice.
	GCScores() []GCScore
	// FindFile returns a weak reference to the metadata of a file. The
	// reference resolves to nil if the file is unknown or has since been
	// dropped.
	FindFile(fileNum base.FileNum) weak.Pointer[BlobFileMeta]
}

// MemBlobStorage is an in-memory BlobStorage. It owns the metadata of its
// files; references handed out by FindFile do not keep them alive.
type MemBlobStorage struct {
	cfOpts CFOptions

	mu struct {
		sync.Mutex
		files  *swiss.Map[base.FileNum, *BlobFileMeta]
		scores []GCScore
	}
}

var _ BlobStorage = (*MemBlobStorage)(nil)

// NewMemBlobStorage returns an empty MemBlobStorage scoring files with the
// given options.
func NewMemBlobStorage(cfOpts CFOptions) *MemBlobStorage {
	cfOpts.EnsureDefaults()
	s := &MemBlobStorage{cfOpts: cfOpts}
	s.mu.files = swiss.New[base.FileNum, *BlobFileMeta](0)
	return s
}

// AddBlobFile adds a file. Its state must have been initialized.
func (s *MemBlobStorage) AddBlobFile(m *BlobFileMeta) error {
	if m.FileState() == FileStateNone {
		return base.InconsistentFileStateErrorf("blob file %s added before initialization", m.FileNum)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mu.files.Get(m.FileNum); ok {
		return errors.Newf("titan: blob file %s already exists", m.FileNum)
	}
	s.mu.files.Put(m.FileNum, m)
	return nil
}

// RemoveBlobFile drops a file. It returns false if the file was not present.
func (s *MemBlobStorage) RemoveBlobFile(fileNum base.FileNum) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mu.files.Get(fileNum); !ok {
		return false
	}
	s.mu.files.Delete(fileNum)
	return true
}

// RemoveObsoleteFiles drops every file in FileStateObsolete and returns their
// numbers in ascending order.
func (s *MemBlobStorage) RemoveObsoleteFiles() []base.FileNum {
	s.mu.Lock()
	defer s.mu.Unlock()
	var obsolete []base.FileNum
	s.mu.files.All(func(fileNum base.FileNum, m *BlobFileMeta) bool {
		if m.FileState() == FileStateObsolete {
			obsolete = append(obsolete, fileNum)
		}
		return true
	})
	for _, fileNum := range obsolete {
		s.mu.files.Delete(fileNum)
	}
	slices.Sort(obsolete)
	return obsolete
}

// NumBlobFiles returns the number of files, obsolete ones included.
func (s *MemBlobStorage) NumBlobFiles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.files.Len()
}

// ComputeGCScore implements BlobStorage. Obsolete files are not scored. Files
// no larger than MergeSmallFileThreshold score at least
// BlobFileDiscardableRatio, so they are always merged but rank behind files
// with more garbage. Ties are broken by ascending file number.
func (s *MemBlobStorage) ComputeGCScore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make([]GCScore, 0, s.mu.files.Len())
	s.mu.files.All(func(fileNum base.FileNum, m *BlobFileMeta) bool {
		if m.FileState() == FileStateObsolete {
			return true
		}
		score := m.GetDiscardableRatio()
		if m.FileSize <= s.cfOpts.MergeSmallFileThreshold {
			score = max(score, s.cfOpts.BlobFileDiscardableRatio)
		}
		scores = append(scores, GCScore{FileNum: fileNum, Score: score})
		return true
	})
	slices.SortFunc(scores, func(a, b GCScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.FileNum, b.FileNum)
	})
	s.mu.scores = scores
}

// GCScores implements BlobStorage.
func (s *MemBlobStorage) GCScores() []GCScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mu.scores
}

// FindFile implements BlobStorage.
func (s *MemBlobStorage) FindFile(fileNum base.FileNum) weak.Pointer[BlobFileMeta] {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mu.files.Get(fileNum)
	if !ok {
		return weak.Pointer[BlobFileMeta]{}
	}
	return weak.Make(m)
}
