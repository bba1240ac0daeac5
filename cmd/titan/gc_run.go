// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/spf13/cobra"
	"github.com/titankv/titan"
	"github.com/titankv/titan/internal/base"
	"github.com/titankv/titan/internal/humanize"
)

const (
	minLatency = 10 * time.Microsecond
	maxLatency = 10 * time.Second
)

var gcRunConfig struct {
	files       int
	fileSize    int64
	bytesPerSec int64
	seed        uint64
	verbose     bool
}

var gcRunCmd = &cobra.Command{
	Use:   "gc-run",
	Short: "run blob GC over a synthetic set of blob files",
	Long: `
Create blob files with random live data sizes and run blob GC until the
picker finds no more work. Each task writes a single output file holding the
live data of its inputs.
`,
	Args: cobra.NoArgs,
	RunE: runGCRun,
}

func init() {
	gcRunCmd.Flags().IntVarP(
		&gcRunConfig.files, "files", "n", 1000, "number of blob files")
	gcRunCmd.Flags().Int64Var(
		&gcRunConfig.fileSize, "file-size", titan.DefaultBlobFileTargetSize, "size of each blob file")
	gcRunCmd.Flags().Int64Var(
		&gcRunConfig.bytesPerSec, "rate", 0, "GC input bytes per second (0, unlimited)")
	gcRunCmd.Flags().Uint64Var(
		&gcRunConfig.seed, "seed", 1, "random seed")
	gcRunCmd.Flags().BoolVarP(
		&gcRunConfig.verbose, "verbose", "v", false, "enable verbose event logging")
}

func clampLatency(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

func runGCRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var logger base.LoggerAndTracer = &base.LoggerWithNoopTracer{Logger: base.DefaultLogger}
	if gcRunConfig.verbose {
		logger = base.TracingLogger{Logger: base.DefaultLogger}
	}
	opts := &titan.Options{Logger: logger, GCBytesPerSec: gcRunConfig.bytesPerSec}
	cfOpts := titan.CFOptions{}
	cfOpts.EnsureDefaults()

	storage := titan.NewMemBlobStorage(cfOpts)
	rng := rand.New(rand.NewPCG(gcRunConfig.seed, 0))
	size := uint64(gcRunConfig.fileSize)
	var total, live uint64
	for i := 1; i <= gcRunConfig.files; i++ {
		m := titan.NewBlobFileMeta(base.FileNum(i), size, rng.Uint64N(size+1))
		if err := m.FileStateTransit(titan.FileEventInit); err != nil {
			return err
		}
		if err := storage.AddBlobFile(m); err != nil {
			return err
		}
		total += m.FileSize
		live += m.LiveDataSize()
	}
	fmt.Printf("%d blob files: %s, live %s\n", gcRunConfig.files,
		humanize.Bytes.Uint64(total), humanize.Bytes.Uint64(live))

	next := base.FileNum(gcRunConfig.files)
	hist := hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
	exec := titan.BlobGCExecutorFunc(func(ctx context.Context, gc *titan.BlobGC) error {
		start := time.Now()
		next++
		out := titan.NewBlobFileMeta(next, gc.EstimatedOutputSize(), gc.EstimatedOutputSize())
		if err := out.FileStateTransit(titan.FileEventGCOutput); err != nil {
			return err
		}
		if err := storage.AddBlobFile(out); err != nil {
			return err
		}
		if err := out.FileStateTransit(titan.FileEventGCCompleted); err != nil {
			return err
		}
		latency := clampLatency(time.Since(start), minLatency, maxLatency)
		return hist.RecordValue(latency.Nanoseconds())
	})

	stats := titan.NewStats(nil)
	picker := titan.NewBasicBlobGCPicker(opts, cfOpts, stats)
	start := time.Now()
	var run titan.RunStats
	for {
		r, err := titan.RunBlobGC(ctx, picker, storage, exec, opts)
		run.Cycles += r.Cycles
		run.FilesCollected += r.FilesCollected
		run.BytesCollected += r.BytesCollected
		if err != nil {
			return err
		}
		storage.RemoveObsoleteFiles()
		if r.Cycles == 0 || picker.GCFinished(storage) {
			break
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("%d cycles in %.1fs: collected %d files, %s\n", run.Cycles, elapsed.Seconds(),
		run.FilesCollected, humanize.Bytes.Uint64(run.BytesCollected))
	fmt.Printf("blob files left: %d\n", storage.NumBlobFiles())
	fmt.Printf("small files: %d, discardable files: %d, remain: %d\n",
		stats.TickerCount(titan.TickerGCSmallFile), stats.TickerCount(titan.TickerGCDiscardable),
		stats.TickerCount(titan.TickerGCRemain))
	if hist.TotalCount() > 0 {
		fmt.Printf("execute latency(ms): avg %.3f p50 %.3f p99 %.3f max %.3f\n",
			time.Duration(hist.Mean()).Seconds()*1000,
			time.Duration(hist.ValueAtQuantile(50)).Seconds()*1000,
			time.Duration(hist.ValueAtQuantile(99)).Seconds()*1000,
			time.Duration(hist.Max()).Seconds()*1000)
	}
	return nil
}
