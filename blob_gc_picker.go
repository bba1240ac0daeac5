// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"context"

	"github.com/titankv/titan/internal/base"
	"github.com/titankv/titan/internal/humanize"
	"github.com/titankv/titan/internal/invariants"
)

// BlobGCPicker decides which blob files to collect.
type BlobGCPicker interface {
	// PickBlobGC returns the next GC task, or nil if no GC is worth running.
	// An error is returned only if the storage exposes inconsistent state.
	PickBlobGC(storage BlobStorage) (*BlobGC, error)
	// GCFinished returns true if no file currently needs GC.
	GCFinished(storage BlobStorage) bool
}

// BasicBlobGCPicker picks files by descending GC score. It keeps no state
// between calls: file states are read from the storage on every call and may
// change right after being read, so consumers of a task re-validate them (see
// BlobGC.MarkFilesBeingGC).
type BasicBlobGCPicker struct {
	opts   Options
	cfOpts CFOptions
	stats  *Stats
}

var _ BlobGCPicker = (*BasicBlobGCPicker)(nil)

// NewBasicBlobGCPicker returns a picker. opts may be nil, and so may stats.
func NewBasicBlobGCPicker(opts *Options, cfOpts CFOptions, stats *Stats) *BasicBlobGCPicker {
	p := &BasicBlobGCPicker{cfOpts: cfOpts, stats: stats}
	if opts != nil {
		p.opts = *opts
	}
	p.opts.EnsureDefaults()
	p.cfOpts.EnsureDefaults()
	return p
}

// PickBlobGC implements BlobGCPicker.
//
// Files are batched in score order until the batch reaches MaxGCBatchSize or
// its live data reaches BlobFileTargetSize. A batch holding a single file
// never closes on these bounds: a lone file above the bounds keeps
// accumulating inputs until a second file joins it. Once the batch is closed,
// the remaining eligible files are only measured to decide whether another
// cycle should follow.
func (p *BasicBlobGCPicker) PickBlobGC(storage BlobStorage) (*BlobGC, error) {
	ctx := context.TODO()
	logger := p.opts.Logger
	tracing := logger.IsTracingEnabled(ctx)

	var files []*BlobFileMeta
	var batchSize, estimateOutputSize, nextGCSize uint64
	var stopPicking, maybeContinueNextTime bool

	storage.ComputeGCScore()
	for _, score := range storage.GCScores() {
		if score.Score < p.cfOpts.BlobFileDiscardableRatio {
			break
		}
		f := storage.FindFile(score.FileNum).Value()
		ok, err := p.CheckBlobFile(f)
		if err != nil {
			return nil, err
		}
		if !ok {
			if f == nil {
				logger.Infof("blob file %s no need gc: not found", score.FileNum)
			} else {
				logger.Infof("blob file %s no need gc: %s", score.FileNum, f.FileState())
			}
			continue
		}
		if tracing {
			logger.Eventf(ctx, "blob file %s: score %.3f picking %t", f, score.Score, !stopPicking)
		}

		if !stopPicking {
			files = append(files, f)
			if f.FileSize <= p.cfOpts.MergeSmallFileThreshold {
				p.stats.RecordTick(TickerGCSmallFile, 1)
			} else {
				p.stats.RecordTick(TickerGCDiscardable, 1)
			}
			batchSize += f.FileSize
			estimateOutputSize += f.LiveDataSize()
			if batchSize >= p.cfOpts.MaxGCBatchSize || estimateOutputSize >= p.cfOpts.BlobFileTargetSize {
				if len(files) > 1 {
					stopPicking = true
				}
			}
			continue
		}

		nextGCSize += f.FileSize
		if nextGCSize > p.cfOpts.MinGCBatchSize {
			maybeContinueNextTime = true
			p.stats.RecordTick(TickerGCRemain, 1)
			logger.Infof("remain more than %s to be gc and trigger after this gc",
				humanize.Bytes.Uint64(nextGCSize))
			break
		}
	}
	if tracing {
		logger.Eventf(ctx, "got batch size %s, estimate output %s",
			humanize.Bytes.Uint64(batchSize), humanize.Bytes.Uint64(estimateOutputSize))
	}

	if len(files) == 0 ||
		(batchSize < p.cfOpts.MinGCBatchSize && estimateOutputSize < p.cfOpts.BlobFileTargetSize) {
		return nil, nil
	}
	// Rewriting a lone small file that is mostly live gains nothing.
	if len(files) == 1 &&
		files[0].FileSize <= p.cfOpts.MergeSmallFileThreshold &&
		files[0].GetDiscardableRatio() < p.cfOpts.BlobFileDiscardableRatio {
		return nil, nil
	}

	p.stats.RecordBatch(batchSize)
	return newBlobGC(files, p.cfOpts, maybeContinueNextTime), nil
}

// GCFinished implements BlobGCPicker. It is conservative: a file that is
// missing or not Normal counts as unfinished work.
func (p *BasicBlobGCPicker) GCFinished(storage BlobStorage) bool {
	storage.ComputeGCScore()
	for _, score := range storage.GCScores() {
		f := storage.FindFile(score.FileNum).Value()
		if f == nil || f.FileState() != FileStateNormal ||
			score.Score >= p.cfOpts.BlobFileDiscardableRatio {
			return false
		}
	}
	return true
}

// CheckBlobFile returns true if f can be picked. A file in FileStateNone
// means the storage exposed an uninitialized file: invariant builds panic,
// other builds return an error marked with base.ErrInconsistentFileState.
func (p *BasicBlobGCPicker) CheckBlobFile(f *BlobFileMeta) (bool, error) {
	if f == nil {
		return false, nil
	}
	switch f.FileState() {
	case FileStateNormal:
		return true, nil
	case FileStateNone:
		err := base.InconsistentFileStateErrorf("blob file %s is uninitialized", f.FileNum)
		if invariants.Enabled {
			panic(err)
		}
		return false, err
	default:
		return false, nil
	}
}
