// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const (
	textFox = "The quick brown fox jumps over the lazy dog while the blob store keeps large values\n" +
		"in append-only files that are rewritten by garbage collection once enough of their\n" +
		"contents has become stale, and the resemblance index remembers recent values."
	textLorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor\n" +
		"incididunt ut labore et dolore magna aliqua. Ut enim ad minim veniam, quis nostrud\n" +
		"exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat."
)

func writeTestFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

// runTool runs the tool with the given arguments and returns stdout and
// stderr.
func runTool(t *testing.T, args ...string) (string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := &cobra.Command{}
	c.AddCommand(New().Commands...)
	c.SetArgs(args)
	c.SetOut(&stdout)
	c.SetErr(&stderr)
	require.NoError(t, c.Execute())
	return stdout.String(), stderr.String()
}

func TestFP(t *testing.T) {
	dir := t.TempDir()
	fox := writeTestFile(t, dir, "fox.txt", textFox)
	empty := writeTestFile(t, dir, "empty.txt", "")

	stdout, stderr := runTool(t, "fp", fox, empty)
	require.Empty(t, stderr)
	require.Contains(t, stdout, "SF2")
	for _, sf := range []string{"2132105753143142357", "12865948403710662707", "2017844679717858816"} {
		require.Contains(t, stdout, sf)
	}
	require.Contains(t, stdout, "244B")
	foxLine := strings.Index(stdout, fox)
	emptyLine := strings.Index(stdout, empty)
	require.True(t, foxLine >= 0 && emptyLine > foxLine, "rows follow argument order:\n%s", stdout)

	_, stderr = runTool(t, "fp", filepath.Join(dir, "missing.txt"))
	require.Contains(t, stderr, "missing.txt")
}

func TestFPOptions(t *testing.T) {
	dir := t.TempDir()
	fox := writeTestFile(t, dir, "fox.txt", textFox)
	options := writeTestFile(t, dir, "OPTIONS", `
[Fingerprint]
  feature_num=4
  super_feature_num=4
  mi=1,2,3,4
  ai=5,6,7,8
`)
	stdout, stderr := runTool(t, "fp", "--options", options, fox)
	require.Empty(t, stderr)
	require.Contains(t, stdout, "SF3")
	require.NotContains(t, stdout, "2132105753143142357")

	bad := writeTestFile(t, dir, "BAD", "[Fingerprint]\n  feature_num=4\n")
	_, stderr = runTool(t, "fp", "--options", bad, fox)
	require.Contains(t, stderr, "mi and ai coefficients")
}

func TestSimilar(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.txt", textFox)
	b := writeTestFile(t, dir, "b.txt", strings.Replace(textFox, "values.", "records.", 1))
	c := writeTestFile(t, dir, "c.txt", textLorem)
	d := writeTestFile(t, dir, "d.txt", textFox)

	stdout, stderr := runTool(t, "similar", a, b, c, d)
	require.Empty(t, stderr)

	row := func(path string) string {
		for _, line := range strings.Split(stdout, "\n") {
			if strings.Contains(line, path+" ") {
				return line
			}
		}
		t.Fatalf("no row for %s:\n%s", path, stdout)
		return ""
	}
	// b resembles a and claims it, so d, a copy of a, only resembles b.
	require.Contains(t, row(b), a)
	require.NotContains(t, row(c), a)
	require.Contains(t, row(d), b)
	require.Contains(t, row(d), a)
	require.NotContains(t, row(a), b)
	require.Contains(t, stdout, "matches per file: mean 0.50")
	require.Contains(t, stdout, "max 1")
	require.Contains(t, stdout, "ValidAddRecordCnt:4;ValidFindSimilarCnt:4;SuccessfulCnt:0;FoundRecordCnt:2")

	_, stderr = runTool(t, "similar", "--verbose", a, b)
	require.Contains(t, stderr, "fp index: add")
	require.Contains(t, stderr, "fp index: find")
}

func TestGCPick(t *testing.T) {
	dir := t.TempDir()
	list := writeTestFile(t, dir, "files", `
# num size live [state]
1 10485760 1048576
2 10485760 2097152
3 10485760 9961472
4 10485760 0 being-gc
5 10485760 0 obsolete
`)
	options := writeTestFile(t, dir, "OPTIONS", `
[Options]
  gc_bytes_per_sec=0

[CFOptions]
  blob_file_discardable_ratio=0.3
  max_gc_batch_size=15728640
  min_gc_batch_size=5242880
`)
	stdout, stderr := runTool(t, "gc-pick", "--options", options, list)
	require.Contains(t, stdout, "gc[000001 000002] input:20MiB output:3.0MiB\n")
	require.Contains(t, stdout, "small files: 0, discardable files: 2, remain: 0\n")
	require.Contains(t, stdout, "gc finished: false\n")
	require.Contains(t, stdout, "being-gc")
	require.NotContains(t, stdout, "000005")
	require.Equal(t, "blob file 000004 no need gc: being-gc\n", stderr)

	bad := writeTestFile(t, dir, "bad", "1 2\n")
	_, stderr = runTool(t, "gc-pick", bad)
	require.Contains(t, stderr, "malformed line")

	unknown := writeTestFile(t, dir, "unknown", "1 2 3 zombie\n")
	_, stderr = runTool(t, "gc-pick", unknown)
	require.Contains(t, stderr, `unknown state "zombie"`)
}
