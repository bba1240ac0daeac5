// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/titankv/titan"
)

// T is the container for all of the introspection tools.
type T struct {
	Commands []*cobra.Command
	fp       *fpT
	gc       *gcT

	// optionsPath is the --options flag shared by every command.
	optionsPath string
	verbose     bool
}

// New creates a new introspection tool.
func New() *T {
	t := &T{}
	t.fp = newFP(t)
	t.gc = newGC(t)
	t.Commands = []*cobra.Command{
		t.fp.FP,
		t.fp.Similar,
		t.gc.Pick,
	}
	for _, cmd := range t.Commands {
		cmd.Flags().StringVar(
			&t.optionsPath, "options", "", "options file with [Options], [CFOptions] and [Fingerprint] sections")
		cmd.Flags().BoolVarP(
			&t.verbose, "verbose", "v", false, "print trace events")
	}
	return t
}

// loadOptions returns the options read from the --options file, with
// defaults filled in.
func (t *T) loadOptions() (titan.Options, titan.CFOptions, error) {
	var opts titan.Options
	var cfOpts titan.CFOptions
	if t.optionsPath != "" {
		data, err := os.ReadFile(t.optionsPath)
		if err != nil {
			return opts, cfOpts, err
		}
		if err := titan.ParseOptions(string(data), &opts, &cfOpts); err != nil {
			return opts, cfOpts, errors.Wrapf(err, "%s", t.optionsPath)
		}
	}
	opts.EnsureDefaults()
	cfOpts.EnsureDefaults()
	if err := opts.Validate(); err != nil {
		return opts, cfOpts, err
	}
	return opts, cfOpts, cfOpts.Validate()
}
