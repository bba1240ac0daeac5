// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fingerprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRabinHash(t *testing.T) {
	require.Equal(t, uint64(0), RabinHash(nil))
	require.Equal(t, uint64(7), RabinHash([]uint64{7}))
	require.Equal(t, uint64(1+2*100007), RabinHash([]uint64{1, 2}))
	require.Equal(t, uint64(1+2*100007+3*100007*100007), RabinHash([]uint64{1, 2, 3}))
	// Arithmetic wraps modulo 2^64.
	require.Equal(t, uint64(100006), RabinHash([]uint64{math.MaxUint64, 1}))
}

func TestRabinHashOrderSensitive(t *testing.T) {
	for _, tc := range [][2]uint64{{1, 2}, {0, 1}, {math.MaxUint32, 42}, {1 << 63, 3}} {
		a, b := tc[0], tc[1]
		require.NotEqual(t, RabinHash([]uint64{a, b}), RabinHash([]uint64{b, a}), "a=%d b=%d", a, b)
	}
}
