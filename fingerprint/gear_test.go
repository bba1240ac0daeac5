// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fingerprint

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGearTable(t *testing.T) {
	seen := make(map[uint64]byte, len(gearTable))
	var ones int
	for i := 0; i < 256; i++ {
		v := Gear(byte(i))
		require.Equal(t, gearTable[i], v)
		prev, dup := seen[v]
		require.False(t, dup, "bytes %d and %d share a gear value", prev, i)
		seen[v] = byte(i)
		ones += bits.OnesCount64(v)
	}
	// Roughly half of the bits are set.
	require.InDelta(t, 256*32, ones, 256*2)
}
