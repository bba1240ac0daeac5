// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/titankv/titan/tool"
)

var rootCmd = &cobra.Command{
	Use:   "titan [command] (flags)",
	Short: "titan blob GC and resemblance introspection tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(tool.New().Commands...)
	rootCmd.AddCommand(gcRunCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
