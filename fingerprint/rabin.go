// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fingerprint

import "math/bits"

// rabinBase is the polynomial base used to mix features into a super-feature.
const rabinBase = 100007

// RabinHash folds vec into a single value by evaluating the polynomial
// vec[0] + vec[1]*b + vec[2]*b^2 + ... modulo 2^64, with b = 100007. The
// result depends on the order of vec.
func RabinHash(vec []uint64) uint64 {
	var res uint64
	pow := uint64(1)
	for _, x := range vec {
		// Only the low word of each 128-bit product survives the reduction
		// modulo 2^64.
		_, lo := bits.Mul64(x, pow)
		res += lo
		_, pow = bits.Mul64(pow, rabinBase)
	}
	return res
}
