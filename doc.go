// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package titan implements blob file garbage collection for a key-value store
// that keeps large values in separate blob files.
//
// BasicBlobGCPicker reads the GC scores of a BlobStorage and selects batches
// of blob files worth rewriting. RunBlobGC drives the picker in a loop, marks
// the picked files while an executor rewrites them, and releases them when
// the executor returns. Resemblance detection for delta-encoding new values
// lives in the fingerprint package and is configured through CFOptions.
package titan
