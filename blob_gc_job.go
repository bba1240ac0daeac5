// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/tokenbucket"
	"github.com/titankv/titan/internal/humanize"
)

// BlobGCExecutor rewrites the live data of a GC task's inputs.
type BlobGCExecutor interface {
	Execute(ctx context.Context, gc *BlobGC) error
}

// BlobGCExecutorFunc adapts a function to a BlobGCExecutor.
type BlobGCExecutorFunc func(ctx context.Context, gc *BlobGC) error

// Execute implements BlobGCExecutor.
func (f BlobGCExecutorFunc) Execute(ctx context.Context, gc *BlobGC) error {
	return f(ctx, gc)
}

// RunStats summarizes a RunBlobGC invocation.
type RunStats struct {
	// Cycles is the number of tasks executed, failed ones included.
	Cycles int
	// FilesCollected and BytesCollected cover the inputs of successful tasks.
	FilesCollected int
	BytesCollected uint64
}

// RunBlobGC runs GC tasks until the picker finds no work, a task does not ask
// for a follow-up cycle, or ctx is canceled. Each task's inputs are marked
// FileStateBeingGC while it executes and released afterwards: obsolete if it
// succeeded and Normal otherwise. An executor error stops the loop and is
// returned.
func RunBlobGC(
	ctx context.Context, picker BlobGCPicker, storage BlobStorage, exec BlobGCExecutor, opts *Options,
) (RunStats, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.EnsureDefaults()
	if err := o.Validate(); err != nil {
		return RunStats{}, err
	}

	var limiter *tokenbucket.TokenBucket
	if r := o.GCBytesPerSec; r > 0 {
		limiter = &tokenbucket.TokenBucket{}
		limiter.Init(tokenbucket.TokensPerSecond(r), tokenbucket.Tokens(r))
	}

	var stats RunStats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		gc, err := picker.PickBlobGC(storage)
		if err != nil {
			return stats, err
		}
		if gc == nil {
			return stats, nil
		}
		if err := gc.MarkFilesBeingGC(); err != nil {
			// An input changed state after it was picked. The next pick no
			// longer sees it as eligible.
			o.Logger.Infof("blob gc: skipping %s: %v", gc, err)
			continue
		}
		if limiter != nil {
			if err := pace(ctx, limiter, gc.InputSize()); err != nil {
				return stats, errors.CombineErrors(err, gc.ReleaseGCFiles(false))
			}
		}

		start := time.Now()
		execErr := exec.Execute(ctx, gc)
		stats.Cycles++
		if err := gc.ReleaseGCFiles(execErr == nil); err != nil {
			return stats, errors.CombineErrors(execErr, err)
		}
		if execErr != nil {
			o.Logger.Errorf("blob gc: %s failed: %v", gc, execErr)
			return stats, execErr
		}
		stats.FilesCollected += len(gc.Inputs())
		stats.BytesCollected += gc.InputSize()
		o.Logger.Infof("blob gc: collected %s in %.1fs (total %s)",
			gc, time.Since(start).Seconds(), humanize.Bytes.Uint64(stats.BytesCollected))

		if !gc.MaybeContinueNextTime() {
			return stats, nil
		}
	}
}

// pace waits until n bytes worth of tokens are available.
func pace(ctx context.Context, limiter *tokenbucket.TokenBucket, n uint64) error {
	for {
		ok, d := limiter.TryToFulfill(tokenbucket.Tokens(n))
		if ok {
			return nil
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
