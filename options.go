// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package titan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/titankv/titan/fingerprint"
	"github.com/titankv/titan/internal/base"
	"github.com/titankv/titan/internal/humanize"
)

// Default CFOptions values.
const (
	DefaultBlobFileDiscardableRatio = 0.5
	DefaultMergeSmallFileThreshold  = 8 << 20   // 8 MiB
	DefaultMaxGCBatchSize           = 1 << 30   // 1 GiB
	DefaultMinGCBatchSize           = 128 << 20 // 128 MiB
	DefaultBlobFileTargetSize       = 256 << 20 // 256 MiB
	DefaultFPMaxMatch               = 4
	DefaultFPIndexMaxSize           = 1 << 20
)

// Options holds the options shared by every column family.
type Options struct {
	// Logger is used for diagnostic messages and, when tracing is enabled, for
	// per-file GC decisions. Defaults to base.DefaultLogger without tracing.
	Logger base.LoggerAndTracer

	// GCBytesPerSec paces RunBlobGC: each batch waits until its input size
	// worth of tokens is available. Zero disables pacing.
	GCBytesPerSec int64
}

// EnsureDefaults fills in default values for unset fields.
func (o *Options) EnsureDefaults() {
	if o.Logger == nil {
		o.Logger = &base.LoggerWithNoopTracer{Logger: base.DefaultLogger}
	}
}

// Validate verifies that the options are mutually consistent.
func (o *Options) Validate() error {
	if o.GCBytesPerSec < 0 {
		return errors.Newf("GCBytesPerSec (%d) must be >= 0", o.GCBytesPerSec)
	}
	return nil
}

// CFOptions holds the blob GC and fingerprinting options of a column family.
type CFOptions struct {
	// BlobFileDiscardableRatio is the GC score a file needs to be picked.
	BlobFileDiscardableRatio float64
	// MergeSmallFileThreshold is the size at or below which a file is
	// considered small and merged regardless of its garbage.
	MergeSmallFileThreshold uint64
	// MaxGCBatchSize bounds the total input size of a GC batch. A batch with
	// a single file keeps accumulating past this bound.
	MaxGCBatchSize uint64
	// MinGCBatchSize is the input size below which a batch is not worth
	// running, unless its estimated output fills a blob file.
	MinGCBatchSize uint64
	// BlobFileTargetSize is the target size of the files written by GC.
	BlobFileTargetSize uint64

	// FPFeatureNum, FPShiftBits, FPSuperFeatureNum, FPMask, FPMi and FPAi
	// configure the fingerprint calculator. See fingerprint.Config.
	FPFeatureNum      int
	FPShiftBits       int
	FPSuperFeatureNum int
	FPMask            uint64
	FPMi, FPAi        []uint64
	// FPMaxMatch bounds the records returned per resemblance query.
	FPMaxMatch int
	// FPIndexMaxSize bounds the number of records in the resemblance index.
	FPIndexMaxSize int
}

// EnsureDefaults fills in default values for unset fields.
func (o *CFOptions) EnsureDefaults() {
	if o.BlobFileDiscardableRatio == 0 {
		o.BlobFileDiscardableRatio = DefaultBlobFileDiscardableRatio
	}
	if o.MergeSmallFileThreshold == 0 {
		o.MergeSmallFileThreshold = DefaultMergeSmallFileThreshold
	}
	if o.MaxGCBatchSize == 0 {
		o.MaxGCBatchSize = DefaultMaxGCBatchSize
	}
	if o.MinGCBatchSize == 0 {
		o.MinGCBatchSize = DefaultMinGCBatchSize
	}
	if o.BlobFileTargetSize == 0 {
		o.BlobFileTargetSize = DefaultBlobFileTargetSize
	}
	// The default coefficients only fit the default feature count.
	def := fingerprint.DefaultConfig()
	if o.FPFeatureNum == 0 {
		o.FPFeatureNum = def.FeatureNum
	}
	if o.FPShiftBits == 0 {
		o.FPShiftBits = def.ShiftBits
	}
	if o.FPSuperFeatureNum == 0 {
		o.FPSuperFeatureNum = def.SuperFeatureNum
	}
	if o.FPMask == 0 {
		o.FPMask = def.Mask
	}
	if o.FPMi == nil && o.FPFeatureNum == def.FeatureNum {
		o.FPMi = def.Mi
	}
	if o.FPAi == nil && o.FPFeatureNum == def.FeatureNum {
		o.FPAi = def.Ai
	}
	if o.FPMaxMatch == 0 {
		o.FPMaxMatch = DefaultFPMaxMatch
	}
	if o.FPIndexMaxSize == 0 {
		o.FPIndexMaxSize = DefaultFPIndexMaxSize
	}
}

// Validate verifies that the options are mutually consistent. It presumes
// EnsureDefaults has been called.
func (o *CFOptions) Validate() error {
	var buf strings.Builder
	if o.BlobFileDiscardableRatio < 0 || o.BlobFileDiscardableRatio > 1 {
		fmt.Fprintf(&buf, "BlobFileDiscardableRatio (%f) must be in [0, 1]\n", o.BlobFileDiscardableRatio)
	}
	if o.MinGCBatchSize > o.MaxGCBatchSize {
		fmt.Fprintf(&buf, "MinGCBatchSize (%s) must be <= MaxGCBatchSize (%s)\n",
			humanize.Bytes.Uint64(o.MinGCBatchSize), humanize.Bytes.Uint64(o.MaxGCBatchSize))
	}
	if o.FPMaxMatch <= 0 {
		fmt.Fprintf(&buf, "FPMaxMatch (%d) must be > 0\n", o.FPMaxMatch)
	}
	if o.FPIndexMaxSize < 0 {
		fmt.Fprintf(&buf, "FPIndexMaxSize (%d) must be >= 0\n", o.FPIndexMaxSize)
	}
	if err := o.FingerprintConfig().Validate(); err != nil {
		fmt.Fprintf(&buf, "%s\n", err)
	}
	if buf.Len() == 0 {
		return nil
	}
	return errors.New(buf.String())
}

// FingerprintConfig returns the fingerprint calculator configuration.
func (o *CFOptions) FingerprintConfig() fingerprint.Config {
	return fingerprint.Config{
		FeatureNum:      o.FPFeatureNum,
		ShiftBits:       o.FPShiftBits,
		SuperFeatureNum: o.FPSuperFeatureNum,
		Mask:            o.FPMask,
		Mi:              o.FPMi,
		Ai:              o.FPAi,
	}
}

// NewFPIndex returns a resemblance index configured by the options.
func (o *CFOptions) NewFPIndex(logger base.LoggerAndTracer) (*fingerprint.Index, error) {
	return fingerprint.NewIndex(fingerprint.IndexOptions{
		MaxSize:    o.FPIndexMaxSize,
		MaxMatch:   o.FPMaxMatch,
		Calculator: o.FingerprintConfig(),
		Logger:     logger,
	})
}

// String returns a textual representation of the options that Parse accepts.
func (o *CFOptions) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "[CFOptions]\n")
	fmt.Fprintf(&buf, "  blob_file_discardable_ratio=%s\n",
		strconv.FormatFloat(o.BlobFileDiscardableRatio, 'g', -1, 64))
	fmt.Fprintf(&buf, "  merge_small_file_threshold=%d\n", o.MergeSmallFileThreshold)
	fmt.Fprintf(&buf, "  max_gc_batch_size=%d\n", o.MaxGCBatchSize)
	fmt.Fprintf(&buf, "  min_gc_batch_size=%d\n", o.MinGCBatchSize)
	fmt.Fprintf(&buf, "  blob_file_target_size=%d\n", o.BlobFileTargetSize)
	fmt.Fprintf(&buf, "\n[Fingerprint]\n")
	fmt.Fprintf(&buf, "  feature_num=%d\n", o.FPFeatureNum)
	fmt.Fprintf(&buf, "  shift_bits=%d\n", o.FPShiftBits)
	fmt.Fprintf(&buf, "  super_feature_num=%d\n", o.FPSuperFeatureNum)
	fmt.Fprintf(&buf, "  mask=%#x\n", o.FPMask)
	fmt.Fprintf(&buf, "  mi=%s\n", formatUint64s(o.FPMi))
	fmt.Fprintf(&buf, "  ai=%s\n", formatUint64s(o.FPAi))
	fmt.Fprintf(&buf, "  max_match=%d\n", o.FPMaxMatch)
	fmt.Fprintf(&buf, "  index_max_size=%d\n", o.FPIndexMaxSize)
	return buf.String()
}

// Parse parses options in the format produced by String. Sections other than
// [CFOptions] and [Fingerprint] and unknown keys are rejected.
func (o *CFOptions) Parse(s string) error {
	return parseOptions(s, func(section, key, value string) error {
		var err error
		switch section {
		case "CFOptions":
			switch key {
			case "blob_file_discardable_ratio":
				o.BlobFileDiscardableRatio, err = strconv.ParseFloat(value, 64)
			case "merge_small_file_threshold":
				o.MergeSmallFileThreshold, err = strconv.ParseUint(value, 0, 64)
			case "max_gc_batch_size":
				o.MaxGCBatchSize, err = strconv.ParseUint(value, 0, 64)
			case "min_gc_batch_size":
				o.MinGCBatchSize, err = strconv.ParseUint(value, 0, 64)
			case "blob_file_target_size":
				o.BlobFileTargetSize, err = strconv.ParseUint(value, 0, 64)
			default:
				return unknownOption(section, key)
			}
		case "Fingerprint":
			switch key {
			case "feature_num":
				o.FPFeatureNum, err = strconv.Atoi(value)
			case "shift_bits":
				o.FPShiftBits, err = strconv.Atoi(value)
			case "super_feature_num":
				o.FPSuperFeatureNum, err = strconv.Atoi(value)
			case "mask":
				o.FPMask, err = strconv.ParseUint(value, 0, 64)
			case "mi":
				o.FPMi, err = parseUint64s(value)
			case "ai":
				o.FPAi, err = parseUint64s(value)
			case "max_match":
				o.FPMaxMatch, err = strconv.Atoi(value)
			case "index_max_size":
				o.FPIndexMaxSize, err = strconv.Atoi(value)
			default:
				return unknownOption(section, key)
			}
		default:
			return errors.Errorf("titan: unknown section: %q", errors.Safe(section))
		}
		if err != nil {
			return errors.Wrapf(err, "titan: invalid value for %s.%s", errors.Safe(section), errors.Safe(key))
		}
		return nil
	})
}

// String returns a textual representation of the options that Parse accepts.
// The logger is not serialized.
func (o *Options) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "[Options]\n")
	fmt.Fprintf(&buf, "  gc_bytes_per_sec=%d\n", o.GCBytesPerSec)
	return buf.String()
}

// Parse parses options in the format produced by String.
func (o *Options) Parse(s string) error {
	return parseOptions(s, func(section, key, value string) error {
		if section != "Options" {
			return errors.Errorf("titan: unknown section: %q", errors.Safe(section))
		}
		switch key {
		case "gc_bytes_per_sec":
			var err error
			o.GCBytesPerSec, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "titan: invalid value for %s.%s", errors.Safe(section), errors.Safe(key))
			}
			return nil
		default:
			return unknownOption(section, key)
		}
	})
}

// ParseOptions parses a combined options file holding an [Options] section
// followed by the [CFOptions] and [Fingerprint] sections, as written by
// concatenating Options.String and CFOptions.String.
func ParseOptions(s string, opts *Options, cfOpts *CFOptions) error {
	var dbPart, cfPart strings.Builder
	cur := &dbPart
	err := parseOptions(s, func(section, key, value string) error {
		// Sections are re-emitted for the section-specific parsers.
		switch section {
		case "Options":
			cur = &dbPart
		default:
			cur = &cfPart
		}
		fmt.Fprintf(cur, "[%s]\n%s=%s\n", section, key, value)
		return nil
	})
	if err != nil {
		return err
	}
	if err := opts.Parse(dbPart.String()); err != nil {
		return err
	}
	return cfOpts.Parse(cfPart.String())
}

func unknownOption(section, key string) error {
	return errors.Errorf("titan: unknown option: %s.%s", errors.Safe(section), errors.Safe(key))
}

// parseOptions splits s into sections and key=value pairs, calling
// visitKeyValue for each pair. Blank lines and lines starting with ';' or '#'
// are skipped.
func parseOptions(s string, visitKeyValue func(section, key, value string) error) error {
	var section string
	for len(s) > 0 {
		var line string
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			line, s = s[:i], s[i+1:]
		} else {
			line, s = s, ""
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == ';' || line[0] == '#' {
			continue
		}
		n := len(line)
		if line[0] == '[' && line[n-1] == ']' {
			section = line[1 : n-1]
			continue
		}

		pos := strings.Index(line, "=")
		if pos < 0 {
			const maxLen = 50
			if len(line) > maxLen {
				line = line[:maxLen-3] + "..."
			}
			return base.CorruptionErrorf("invalid key=value syntax: %q", errors.Safe(line))
		}
		if section == "" {
			return base.CorruptionErrorf("key=value outside of a section: %q", errors.Safe(line))
		}
		key := strings.TrimSpace(line[:pos])
		value := strings.TrimSpace(line[pos+1:])
		if err := visitKeyValue(section, key, value); err != nil {
			return err
		}
	}
	return nil
}

func formatUint64s(vals []uint64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%#x", v)
	}
	return strings.Join(parts, ",")
}

func parseUint64s(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vals := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 0, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
