// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cespare/xxhash/v2"
	"github.com/spf13/cobra"
	"github.com/titankv/titan/blob"
	"github.com/titankv/titan/fingerprint"
	"github.com/titankv/titan/internal/base"
	"github.com/titankv/titan/internal/humanize"
)

// fpT implements the fingerprint tools.
type fpT struct {
	FP      *cobra.Command
	Similar *cobra.Command

	t *T
}

func newFP(t *T) *fpT {
	f := &fpT{t: t}
	f.FP = &cobra.Command{
		Use:   "fp <files>",
		Short: "print the super-features of files",
		Long: `
Print the super-features of each file, computed with the fingerprint
parameters of the --options file.
`,
		Args: cobra.MinimumNArgs(1),
		Run:  f.runFP,
	}
	f.Similar = &cobra.Command{
		Use:   "similar <files>",
		Short: "find resembling files",
		Long: `
Feed the files, in order, through a resemblance index as a write path would:
each file is first queried against the files indexed so far and then indexed
itself. Matched files are claimed by the query and leave the index. Files with
identical contents are reported separately.
`,
		Args: cobra.MinimumNArgs(1),
		Run:  f.runSimilar,
	}
	return f
}

func (f *fpT) runFP(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	_, cfOpts, err := f.t.loadOptions()
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	calc, err := fingerprint.NewCalculator(cfOpts.FingerprintConfig())
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}

	type result struct {
		size     int
		features fingerprint.Features
	}
	results, err := readFiles(context.Background(), args, func(_ string, data []byte) result {
		return result{size: len(data), features: calc.CalculateFP(data)}
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}

	header := []string{"file", "size"}
	for i := 0; i < calc.SuperFeatureNum(); i++ {
		header = append(header, fmt.Sprintf("sf%d", i))
	}
	tbl := newTable(stdout, header...)
	for i, r := range results {
		row := []string{args[i], string(humanize.Bytes.Int64(int64(r.size)))}
		for _, sf := range r.features {
			row = append(row, fmt.Sprintf("%d", sf))
		}
		tbl.Append(row)
	}
	tbl.Render()
}

func (f *fpT) runSimilar(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	_, cfOpts, err := f.t.loadOptions()
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	logBuf, logger := f.t.newLogger()
	defer func() { fmt.Fprint(stderr, logBuf.String()) }()

	idx, err := cfOpts.NewFPIndex(logger)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	contents, err := readFiles(context.Background(), args, func(_ string, data []byte) []byte {
		return data
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}

	hist := hdrhistogram.New(0, int64(cfOpts.FPMaxMatch), 1)
	seen := make(map[uint64]string, len(args))
	tbl := newTable(stdout, "file", "size", "matches", "duplicate of")
	for i, path := range args {
		data := contents[i]
		dup := "-"
		sum := xxhash.Sum64(data)
		if prev, ok := seen[sum]; ok {
			dup = prev
		} else {
			seen[sum] = path
		}

		records := idx.FindSimilarRecords(path, data)
		if err := hist.RecordValue(int64(len(records))); err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
			return
		}
		matches := "-"
		if len(records) > 0 {
			keys := make([]string, len(records))
			for j, r := range records {
				keys[j] = r.Key
			}
			matches = strings.Join(keys, ",")
		}
		// Each file is laid out in its own blob file.
		loc := blob.BlobIndex{
			FileNum: base.FileNum(i + 1),
			Handle:  blob.Handle{Size: uint64(len(data))},
		}
		idx.AddRecord(path, idx.CalculateFP(data), loc)
		tbl.Append([]string{path, string(humanize.Bytes.Int64(int64(len(data)))), matches, dup})
	}
	tbl.Render()

	fmt.Fprintf(stdout, "matches per file: mean %.2f p50 %d p99 %d max %d\n",
		hist.Mean(), hist.ValueAtPercentile(50), hist.ValueAtPercentile(99), hist.Max())
	fmt.Fprintf(stdout, "%s\n", idx.GetFPInfo())
}
