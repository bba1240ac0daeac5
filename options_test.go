// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
	"github.com/titankv/titan/fingerprint"
	"github.com/titankv/titan/internal/base"
)

func TestCFOptionsDefaults(t *testing.T) {
	var o CFOptions
	o.EnsureDefaults()
	require.NoError(t, o.Validate())
	require.Equal(t, 0.5, o.BlobFileDiscardableRatio)
	require.Equal(t, uint64(8<<20), o.MergeSmallFileThreshold)
	require.Equal(t, uint64(1<<30), o.MaxGCBatchSize)
	require.Equal(t, uint64(128<<20), o.MinGCBatchSize)
	require.Equal(t, uint64(256<<20), o.BlobFileTargetSize)
	require.Equal(t, fingerprint.DefaultConfig(), o.FingerprintConfig())
	require.Equal(t, 4, o.FPMaxMatch)
	require.Equal(t, 1<<20, o.FPIndexMaxSize)

	// Explicit values are kept.
	o = CFOptions{BlobFileDiscardableRatio: 0.25, FPMaxMatch: 9}
	o.EnsureDefaults()
	require.Equal(t, 0.25, o.BlobFileDiscardableRatio)
	require.Equal(t, 9, o.FPMaxMatch)
}

func TestCFOptionsParseRoundTrip(t *testing.T) {
	o := CFOptions{
		BlobFileDiscardableRatio: 0.35,
		MergeSmallFileThreshold:  1 << 20,
		MaxGCBatchSize:           64 << 20,
		MinGCBatchSize:           16 << 20,
		BlobFileTargetSize:       32 << 20,
		FPFeatureNum:             4,
		FPShiftBits:              2,
		FPSuperFeatureNum:        2,
		FPMask:                   0xff00,
		FPMi:                     []uint64{1, 2, 3, 4},
		FPAi:                     []uint64{5, 6, 7, 0xdeadbeef},
		FPMaxMatch:               2,
		FPIndexMaxSize:           100,
	}
	require.NoError(t, o.Validate())

	var parsed CFOptions
	require.NoError(t, parsed.Parse(o.String()))
	if diff := pretty.Diff(o, parsed); diff != nil {
		t.Fatalf("unexpected diff:\n%s", strings.Join(diff, "\n"))
	}

	var defaults CFOptions
	defaults.EnsureDefaults()
	parsed = CFOptions{}
	require.NoError(t, parsed.Parse(defaults.String()))
	if diff := pretty.Diff(defaults, parsed); diff != nil {
		t.Fatalf("unexpected diff:\n%s", strings.Join(diff, "\n"))
	}
}

func TestCFOptionsString(t *testing.T) {
	o := CFOptions{
		BlobFileDiscardableRatio: 0.5,
		MergeSmallFileThreshold:  8,
		MaxGCBatchSize:           100,
		MinGCBatchSize:           10,
		BlobFileTargetSize:       50,
		FPFeatureNum:             2,
		FPShiftBits:              1,
		FPSuperFeatureNum:        1,
		FPMask:                   0x700,
		FPMi:                     []uint64{1, 2},
		FPAi:                     []uint64{3, 4},
		FPMaxMatch:               4,
		FPIndexMaxSize:           16,
	}
	const expected = `[CFOptions]
  blob_file_discardable_ratio=0.5
  merge_small_file_threshold=8
  max_gc_batch_size=100
  min_gc_batch_size=10
  blob_file_target_size=50

[Fingerprint]
  feature_num=2
  shift_bits=1
  super_feature_num=1
  mask=0x700
  mi=0x1,0x2
  ai=0x3,0x4
  max_match=4
  index_max_size=16
`
	require.Equal(t, expected, o.String())
}

func TestCFOptionsParseErrors(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"[CFOptions]\n  bogus=1\n", "unknown option: CFOptions.bogus"},
		{"[Fingerprint]\n  bogus=1\n", "unknown option: Fingerprint.bogus"},
		{"[Level 0]\n  block_size=1\n", "unknown section"},
		{"[CFOptions]\n  max_gc_batch_size\n", "invalid key=value syntax"},
		{"max_gc_batch_size=1\n", "outside of a section"},
		{"[CFOptions]\n  max_gc_batch_size=ten\n", "invalid value for CFOptions.max_gc_batch_size"},
		{"[Fingerprint]\n  mi=1,x\n", "invalid value for Fingerprint.mi"},
	}
	for _, tc := range testCases {
		var o CFOptions
		err := o.Parse(tc.input)
		require.Error(t, err, tc.input)
		require.Contains(t, err.Error(), tc.want)
	}

	var o CFOptions
	err := o.Parse("[CFOptions]\n  max_gc_batch_size\n")
	require.True(t, errors.Is(err, base.ErrCorruption))

	// Comments and blank lines are ignored.
	require.NoError(t, o.Parse("; comment\n# another\n\n[CFOptions]\n  min_gc_batch_size=0x10\n"))
	require.Equal(t, uint64(16), o.MinGCBatchSize)
}

func TestCFOptionsValidate(t *testing.T) {
	testCases := []struct {
		mutate func(*CFOptions)
		want   string
	}{
		{func(o *CFOptions) { o.BlobFileDiscardableRatio = 1.5 }, "BlobFileDiscardableRatio"},
		{func(o *CFOptions) { o.MinGCBatchSize = 2 << 30 }, "MinGCBatchSize (2.0GiB) must be <= MaxGCBatchSize (1.0GiB)"},
		{func(o *CFOptions) { o.FPMaxMatch = -1 }, "FPMaxMatch"},
		{func(o *CFOptions) { o.FPIndexMaxSize = -1 }, "FPIndexMaxSize"},
		{func(o *CFOptions) { o.FPSuperFeatureNum = 20 }, "super feature num"},
		{func(o *CFOptions) { o.FPMi = o.FPMi[:3] }, "mi and ai coefficients"},
	}
	for _, tc := range testCases {
		var o CFOptions
		o.EnsureDefaults()
		tc.mutate(&o)
		err := o.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), tc.want)
	}

	// A custom feature count needs its own coefficients.
	o := CFOptions{FPFeatureNum: 6}
	o.EnsureDefaults()
	require.Error(t, o.Validate())
}

func TestOptionsParse(t *testing.T) {
	o := Options{GCBytesPerSec: 4 << 20}
	require.Equal(t, "[Options]\n  gc_bytes_per_sec=4194304\n", o.String())

	var parsed Options
	require.NoError(t, parsed.Parse(o.String()))
	require.Equal(t, o, parsed)

	require.Error(t, parsed.Parse("[Options]\n  cache_size=1\n"))
	require.Error(t, parsed.Parse("[CFOptions]\n  max_gc_batch_size=1\n"))

	parsed.EnsureDefaults()
	require.NotNil(t, parsed.Logger)
	require.NoError(t, parsed.Validate())
	parsed.GCBytesPerSec = -1
	require.Error(t, parsed.Validate())
}

func TestParseOptions(t *testing.T) {
	o := Options{GCBytesPerSec: 1 << 20}
	var cf CFOptions
	cf.EnsureDefaults()
	cf.FPMaxMatch = 7

	var parsedOpts Options
	var parsedCF CFOptions
	require.NoError(t, ParseOptions(o.String()+"\n"+cf.String(), &parsedOpts, &parsedCF))
	require.Equal(t, o, parsedOpts)
	if diff := pretty.Diff(cf, parsedCF); diff != nil {
		t.Fatalf("unexpected diff:\n%s", strings.Join(diff, "\n"))
	}

	require.Error(t, ParseOptions("[Bogus]\n  x=1\n", &parsedOpts, &parsedCF))
}

func TestCFOptionsNewFPIndex(t *testing.T) {
	var o CFOptions
	o.EnsureDefaults()
	o.FPIndexMaxSize = 10
	idx, err := o.NewFPIndex(nil)
	require.NoError(t, err)
	require.Equal(t, "max_size: 10, max_match: 4, feature_num: 12, super_feature_num: 3, shiftbits: 1, mask: 0x70000000000",
		idx.String())

	o.FPMaxMatch = 0
	_, err = o.NewFPIndex(nil)
	require.Error(t, err)
}
