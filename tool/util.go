// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/titankv/titan/internal/base"
	"golang.org/x/sync/errgroup"
)

// readFiles reads the given files concurrently, calling fn on each content
// from the reading goroutine. Results are indexed like paths.
func readFiles[T any](
	ctx context.Context, paths []string, fn func(path string, data []byte) T,
) ([]T, error) {
	results := make([]T, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = fn(path, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader(header)
	tbl.SetAutoWrapText(false)
	return tbl
}

// newLogger returns a logger buffering messages until they are flushed to
// the command's stderr. With verbose set, trace events are buffered too.
func (t *T) newLogger() (*base.InMemLogger, base.LoggerAndTracer) {
	buf := &base.InMemLogger{}
	if t.verbose {
		return buf, base.TracingLogger{Logger: buf}
	}
	return buf, &base.LoggerWithNoopTracer{Logger: buf}
}
