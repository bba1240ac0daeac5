// Copyright 2023 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package humanize

import (
	"fmt"
	"math"

	"github.com/cockroachdb/redact"
)

type config struct {
	base   uint64
	suffix []string
}

// Bytes produces human readable representations of byte values in IEC units.
var Bytes = config{1024, []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}}

// Int64 produces a human readable representation of the value.
func (c *config) Int64(s int64) redact.SafeString {
	if s < 0 {
		return redact.SafeString("-" + string(c.Uint64(uint64(-s))))
	}
	return c.Uint64(uint64(s))
}

// Uint64 produces a human readable representation of the value.
func (c *config) Uint64(s uint64) redact.SafeString {
	if s < 10 {
		return redact.SafeString(fmt.Sprintf("%d%s", s, c.suffix[0]))
	}
	e, div := 0, uint64(1)
	for e+1 < len(c.suffix) && s/div >= c.base {
		div *= c.base
		e++
	}
	val := math.Floor(float64(s)/float64(div)*10+0.5) / 10
	f := "%.0f%s"
	if val < 10 {
		f = "%.1f%s"
	}
	return redact.SafeString(fmt.Sprintf(f, val, c.suffix[e]))
}
