// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/titankv/titan"
	"github.com/titankv/titan/internal/base"
	"github.com/titankv/titan/internal/humanize"
)

// gcT implements the blob GC tools.
type gcT struct {
	Pick *cobra.Command

	t *T
}

func newGC(t *T) *gcT {
	g := &gcT{t: t}
	g.Pick = &cobra.Command{
		Use:   "gc-pick <file-list>",
		Short: "run the blob GC picker over a list of blob files",
		Long: `
Run the blob GC picker over the blob files described by <file-list> and print
the scores, the picked task and whether GC is finished. Each line of the list
describes a file:

  <file-num> <size> <live-size> [state]

where state is one of normal (the default), being-gc, pending-gc, pending-lsm
or obsolete. Blank lines and lines starting with '#' are ignored.
`,
		Args: cobra.ExactArgs(1),
		Run:  g.runPick,
	}
	return g
}

var stateEvents = map[string][]titan.FileEvent{
	"normal":      {titan.FileEventInit},
	"being-gc":    {titan.FileEventInit, titan.FileEventGCBegin},
	"pending-gc":  {titan.FileEventGCOutput},
	"pending-lsm": {titan.FileEventFlushOrCompactionOutput},
	"obsolete":    {titan.FileEventInit, titan.FileEventDelete},
}

// parseFileList parses the lines of a gc-pick file list.
func parseFileList(s string) ([]*titan.BlobFileMeta, error) {
	var files []*titan.BlobFileMeta
	for line := range crstrings.LinesSeq(s) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || len(fields) > 4 {
			return nil, errors.Newf("malformed line %q", line)
		}
		var nums [3]uint64
		for i := range nums {
			v, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %q", line)
			}
			nums[i] = v
		}
		state := "normal"
		if len(fields) == 4 {
			state = fields[3]
		}
		events, ok := stateEvents[state]
		if !ok {
			return nil, errors.Newf("unknown state %q", state)
		}
		m := titan.NewBlobFileMeta(base.FileNum(nums[0]), nums[1], nums[2])
		for _, e := range events {
			if err := m.FileStateTransit(e); err != nil {
				return nil, err
			}
		}
		files = append(files, m)
	}
	return files, nil
}

func (g *gcT) runPick(cmd *cobra.Command, args []string) {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	opts, cfOpts, err := g.t.loadOptions()
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	files, err := parseFileList(string(data))
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", args[0], err)
		return
	}

	storage := titan.NewMemBlobStorage(cfOpts)
	for _, f := range files {
		if err := storage.AddBlobFile(f); err != nil {
			fmt.Fprintf(stderr, "%s\n", err)
			return
		}
	}
	logBuf, logger := g.t.newLogger()
	opts.Logger = logger
	stats := titan.NewStats(nil)
	picker := titan.NewBasicBlobGCPicker(&opts, cfOpts, stats)

	storage.ComputeGCScore()
	tbl := newTable(stdout, "file", "size", "live", "state", "score")
	for _, score := range storage.GCScores() {
		f := storage.FindFile(score.FileNum).Value()
		if f == nil {
			continue
		}
		tbl.Append([]string{
			f.FileNum.String(),
			string(humanize.Bytes.Uint64(f.FileSize)),
			string(humanize.Bytes.Uint64(f.LiveDataSize())),
			f.FileState().String(),
			strconv.FormatFloat(score.Score, 'f', 3, 64),
		})
	}
	tbl.Render()

	gc, err := picker.PickBlobGC(storage)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	if gc == nil {
		fmt.Fprintf(stdout, "no gc\n")
	} else {
		fmt.Fprintf(stdout, "%s\n", gc)
	}
	fmt.Fprintf(stdout, "small files: %d, discardable files: %d, remain: %d\n",
		stats.TickerCount(titan.TickerGCSmallFile), stats.TickerCount(titan.TickerGCDiscardable),
		stats.TickerCount(titan.TickerGCRemain))
	fmt.Fprintf(stdout, "gc finished: %t\n", picker.GCFinished(storage))
	fmt.Fprint(stderr, logBuf.String())
}
