// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// ErrCorruption is a marker to indicate that data in a file (e.g. a
// serialized options file) is corrupted.
var ErrCorruption = errors.New("titan: corruption")

// ErrInconsistentFileState is a marker for a blob file observed in a state
// the storage manager must never expose, such as an uninitialized file handed
// out as a GC candidate.
var ErrInconsistentFileState = errors.New("titan: inconsistent blob file state")

// CorruptionErrorf formats according to a format specifier and returns
// the string as an error value that is marked as a corruption error.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruption)
}

// InconsistentFileStateErrorf returns an assertion failure marked with
// ErrInconsistentFileState.
func InconsistentFileStateErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), ErrInconsistentFileState)
}
