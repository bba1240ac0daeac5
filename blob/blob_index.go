// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package blob defines locators for values stored in blob files.
package blob

import (
	"github.com/cockroachdb/redact"
	"github.com/titankv/titan/internal/base"
)

// Handle addresses a record within a blob file.
type Handle struct {
	Offset uint64
	Size   uint64
}

// BlobIndex locates a value stored in a blob file. It is what the key-value
// engine stores in place of a separated value.
type BlobIndex struct {
	FileNum base.FileNum
	Handle  Handle
}

// IsZero returns true if the index does not point at any value.
func (i BlobIndex) IsZero() bool {
	return i == BlobIndex{}
}

// SafeFormat implements redact.SafeFormatter.
func (i BlobIndex) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s@%d+%d", i.FileNum, redact.SafeUint(i.Handle.Offset), redact.SafeUint(i.Handle.Size))
}

// String implements fmt.Stringer.
func (i BlobIndex) String() string {
	return redact.StringWithoutMarkers(i)
}
