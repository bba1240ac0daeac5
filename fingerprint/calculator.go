// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package fingerprint

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Features is a super-feature vector. Two values resemble each other if their
// Features agree in at least one slot.
type Features []uint64

// Config holds the parameters of a Calculator.
type Config struct {
	// FeatureNum is the number of independent hash families (features)
	// sketched over the sample points of a value.
	FeatureNum int
	// ShiftBits is the left shift applied to the rolling accumulator before
	// each byte is added.
	ShiftBits int
	// SuperFeatureNum is the number of super-features each value is reduced
	// to. It must not exceed FeatureNum; the last super-feature absorbs the
	// remainder when it does not divide FeatureNum.
	SuperFeatureNum int
	// Mask selects sample points: a position is sampled when the rolling
	// accumulator ANDed with Mask is zero.
	Mask uint64
	// Mi and Ai are the per-feature coefficients of the sample transform
	// (Mi[j]*fp + Ai[j]) mod 2^32. Both must have FeatureNum entries.
	Mi, Ai []uint64
}

// Default calculator parameters. The mask samples roughly one position in
// eight.
const (
	DefaultFeatureNum      = 12
	DefaultShiftBits       = 1
	DefaultSuperFeatureNum = 3
	DefaultMask            = 0x0000_0700_0000_0000
)

var defaultMi = []uint64{
	0x95c0a541, 0x4f5dd70b, 0x927fca4f, 0x5b8b363b,
	0x55ceaaeb, 0xd944106d, 0x1517e7d1, 0x0d8106a3,
	0xd4b9b6d5, 0xf41311f7, 0xa5b5368b, 0xc72eada5,
}

var defaultAi = []uint64{
	0xf899af91, 0xfa1fb4ba, 0xf2b86df9, 0x54c98203,
	0x0685bd1c, 0x516865d9, 0xf01ae61c, 0x14dcd9b5,
	0x50465480, 0xc17f6ad1, 0x4a961c07, 0x4a06dfb1,
}

// DefaultConfig returns the default calculator configuration.
func DefaultConfig() Config {
	return Config{
		FeatureNum:      DefaultFeatureNum,
		ShiftBits:       DefaultShiftBits,
		SuperFeatureNum: DefaultSuperFeatureNum,
		Mask:            DefaultMask,
		Mi:              append([]uint64(nil), defaultMi...),
		Ai:              append([]uint64(nil), defaultAi...),
	}
}

// Validate checks that the configuration describes a usable Calculator.
func (c Config) Validate() error {
	switch {
	case c.FeatureNum <= 0:
		return errors.Newf("fingerprint: feature num must be positive, got %d", c.FeatureNum)
	case c.SuperFeatureNum <= 0 || c.SuperFeatureNum > c.FeatureNum:
		return errors.Newf("fingerprint: super feature num must be in [1, %d], got %d",
			c.FeatureNum, c.SuperFeatureNum)
	case c.ShiftBits < 0 || c.ShiftBits > 63:
		return errors.Newf("fingerprint: shift bits must be in [0, 63], got %d", c.ShiftBits)
	case len(c.Mi) != c.FeatureNum || len(c.Ai) != c.FeatureNum:
		return errors.Newf("fingerprint: expected %d mi and ai coefficients, got %d and %d",
			c.FeatureNum, len(c.Mi), len(c.Ai))
	}
	return nil
}

// Calculator computes super-feature vectors. It holds no mutable state and is
// safe for concurrent use.
type Calculator struct {
	featureNum      int
	shiftBits       uint
	superFeatureNum int
	mask            uint64
	mi, ai          []uint64
}

// NewCalculator returns a Calculator for the given configuration.
func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{
		featureNum:      cfg.FeatureNum,
		shiftBits:       uint(cfg.ShiftBits),
		superFeatureNum: cfg.SuperFeatureNum,
		mask:            cfg.Mask,
		mi:              append([]uint64(nil), cfg.Mi...),
		ai:              append([]uint64(nil), cfg.Ai...),
	}, nil
}

// SuperFeatureNum returns the length of the vectors returned by CalculateFP.
func (c *Calculator) SuperFeatureNum() int {
	return c.superFeatureNum
}

// CalculateFP returns the super-feature vector of value. Identical inputs
// always produce identical vectors. An input without sample points (for
// example an empty one) yields the super-features of an all-zero feature
// vector.
func (c *Calculator) CalculateFP(value []byte) Features {
	features := make([]uint64, c.featureNum)
	var fp uint64
	for _, b := range value {
		fp = (fp << c.shiftBits) + Gear(b)
		if fp&c.mask != 0 {
			continue
		}
		for j := range features {
			// mod 2^32: the low 32 bits of the full product are exactly
			// the low 32 bits of the wrapped 64-bit product.
			tmp := (c.mi[j]*fp + c.ai[j]) & (1<<32 - 1)
			if features[j] < tmp {
				features[j] = tmp
			}
		}
	}
	return c.superFeatures(features)
}

// superFeatures partitions features into c.superFeatureNum contiguous groups
// and mixes each group into one value.
func (c *Calculator) superFeatures(features []uint64) Features {
	result := make(Features, c.superFeatureNum)
	influence := c.featureNum / c.superFeatureNum
	for i := range result {
		start, end := i*influence, (i+1)*influence
		if i == c.superFeatureNum-1 {
			end = c.featureNum
		}
		result[i] = RabinHash(features[start:end])
	}
	return result
}

// String implements fmt.Stringer.
func (c *Calculator) String() string {
	return fmt.Sprintf("feature_num: %d, super_feature_num: %d, shiftbits: %d, mask: %#x",
		c.featureNum, c.superFeatureNum, c.shiftBits, c.mask)
}
