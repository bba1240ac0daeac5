// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/titankv/titan/internal/humanize"
)

// BlobGC is a GC task: the blob files picked for collection and the options
// they were picked with. The task holds strong references to its inputs for
// as long as the caller keeps it.
type BlobGC struct {
	inputs                []*BlobFileMeta
	cfOpts                CFOptions
	maybeContinueNextTime bool
}

func newBlobGC(inputs []*BlobFileMeta, cfOpts CFOptions, maybeContinueNextTime bool) *BlobGC {
	return &BlobGC{
		inputs:                inputs,
		cfOpts:                cfOpts,
		maybeContinueNextTime: maybeContinueNextTime,
	}
}

// Inputs returns the files to collect, in pick order. The caller must not
// modify the slice.
func (gc *BlobGC) Inputs() []*BlobFileMeta {
	return gc.inputs
}

// CFOptions returns the options in effect when the task was picked.
func (gc *BlobGC) CFOptions() CFOptions {
	return gc.cfOpts
}

// MaybeContinueNextTime returns true if the picker left enough eligible files
// behind to justify another GC cycle right after this one.
func (gc *BlobGC) MaybeContinueNextTime() bool {
	return gc.maybeContinueNextTime
}

// InputSize returns the total size of the input files.
func (gc *BlobGC) InputSize() uint64 {
	var n uint64
	for _, f := range gc.inputs {
		n += f.FileSize
	}
	return n
}

// EstimatedOutputSize returns the total live data size of the input files.
func (gc *BlobGC) EstimatedOutputSize() uint64 {
	var n uint64
	for _, f := range gc.inputs {
		n += f.LiveDataSize()
	}
	return n
}

// MarkFilesBeingGC moves every input to FileStateBeingGC. If an input is no
// longer Normal, the inputs already marked are moved back and an error is
// returned.
func (gc *BlobGC) MarkFilesBeingGC() error {
	for i, f := range gc.inputs {
		if err := f.FileStateTransit(FileEventGCBegin); err != nil {
			for _, g := range gc.inputs[:i] {
				// Moving BeingGC back to Normal cannot fail.
				_ = g.FileStateTransit(FileEventGCFailed)
			}
			return errors.Wrapf(err, "titan: marking GC inputs")
		}
	}
	return nil
}

// ReleaseGCFiles ends the task. Inputs become obsolete if the GC succeeded and
// return to FileStateNormal otherwise. Every input is released even if some
// transition fails; the first error is returned.
func (gc *BlobGC) ReleaseGCFiles(succeeded bool) error {
	event := FileEventGCFailed
	if succeeded {
		event = FileEventGCCompleted
	}
	var firstErr error
	for _, f := range gc.inputs {
		if err := f.FileStateTransit(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SafeFormat implements redact.SafeFormatter.
func (gc *BlobGC) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("gc[")
	for i, f := range gc.inputs {
		if i > 0 {
			w.Printf(" ")
		}
		w.Print(f.FileNum)
	}
	w.Printf("] input:%s output:%s", humanize.Bytes.Uint64(gc.InputSize()),
		humanize.Bytes.Uint64(gc.EstimatedOutputSize()))
	if gc.maybeContinueNextTime {
		w.Printf(" continue")
	}
}

// String implements fmt.Stringer.
func (gc *BlobGC) String() string {
	return redact.StringWithoutMarkers(gc)
}
