// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package blob

import (
	"testing"

	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func TestBlobIndexFormat(t *testing.T) {
	i := BlobIndex{FileNum: 3, Handle: Handle{Offset: 4, Size: 128}}
	require.Equal(t, "000003@4+128", i.String())
	// File numbers and offsets carry no user data and are never redacted.
	require.Equal(t, redact.RedactableString("000003@4+128"), redact.Sprint(i))
	require.False(t, i.IsZero())
	require.True(t, BlobIndex{}.IsZero())
}
