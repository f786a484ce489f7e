// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/diff"
	"github.com/tfctl/ncdiff/internal/meta"
	"github.com/tfctl/ncdiff/internal/output"
)

var (
	oldSnap = filepath.Join("..", "ncdu", "testdata", "old.json")
	newSnap = filepath.Join("..", "ncdu", "testdata", "new.json")
)

// run executes ncdiff with args against a clean config and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	saved := config.Config
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = saved })
	t.Setenv("NO_COLOR", "1")

	var out bytes.Buffer
	full := append([]string{"ncdiff"}, args...)
	app := NewApp(meta.Meta{
		Args:    full,
		Context: context.Background(),
		Stdin:   strings.NewReader(stdin),
		Stdout:  &out,
	})
	err := app.Run(context.Background(), full)
	return out.String(), err
}

func decode(t *testing.T, s string) []output.Record {
	t.Helper()
	var records []output.Record
	require.NoError(t, json.Unmarshal([]byte(s), &records), s)
	return records
}

func names(records []output.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestDiff_JSON(t *testing.T) {
	out, err := run(t, "", "diff", "-o", "json", oldSnap, newSnap)
	require.NoError(t, err)

	records := decode(t, out)
	require.Len(t, records, 1)
	root := records[0]
	assert.Equal(t, "/srv", root.Path)
	assert.Equal(t, "modified", root.Status)
	assert.Equal(t, int64(-100), root.Delta)
	assert.ElementsMatch(t, []string{"a.txt", "logs", "cache", "b.txt"}, names(root.Children))

	// Default depth resolves only the first level.
	for _, c := range root.Children {
		assert.Empty(t, c.Children, c.Name)
	}
}

func TestDiff_Depth(t *testing.T) {
	out, err := run(t, "", "diff", "-o", "json", "--depth", "2", oldSnap, newSnap)
	require.NoError(t, err)

	records := decode(t, out)
	for _, c := range records[0].Children {
		switch c.Name {
		case "logs":
			assert.ElementsMatch(t, []string{"app.log", "old.log"}, names(c.Children))
		case "cache":
			assert.Equal(t, []string{"blob"}, names(c.Children))
		}
	}
}

func TestDiff_Eager(t *testing.T) {
	out, err := run(t, "", "diff", "-o", "json", "--eager", oldSnap, newSnap)
	require.NoError(t, err)

	records := decode(t, out)
	root := records[0]
	assert.Equal(t, []string{"a.txt", "logs", "cache", "b.txt"}, names(root.Children))
	assert.Equal(t, []string{"blob"}, names(root.Children[2].Children))
	assert.Equal(t, "removed", root.Children[2].Status)
}

func TestDiff_Path(t *testing.T) {
	for _, eager := range []bool{false, true} {
		args := []string{"diff", "-o", "json", "--path", "/srv/logs"}
		if eager {
			args = append(args, "--eager")
		}
		out, err := run(t, "", append(args, oldSnap, newSnap)...)
		require.NoError(t, err, "eager=%t", eager)

		records := decode(t, out)
		require.Len(t, records, 1)
		assert.Equal(t, "/srv/logs", records[0].Path)
		assert.ElementsMatch(t, []string{"app.log", "old.log"}, names(records[0].Children))
	}
}

func TestDiff_PathNotFound(t *testing.T) {
	for _, at := range []string{"/srv/nope", "/elsewhere", "/srv/a.txt/x"} {
		_, err := run(t, "", "diff", "--path", at, oldSnap, newSnap)
		assert.ErrorIs(t, err, diff.ErrNotFound, at)

		_, err = run(t, "", "diff", "--eager", "--path", at, oldSnap, newSnap)
		assert.ErrorIs(t, err, diff.ErrNotFound, at)
	}
}

func TestDiff_Text(t *testing.T) {
	out, err := run(t, "", "diff", "--titles", "--color=false", oldSnap, newSnap)
	require.NoError(t, err)

	assert.Contains(t, out, "DELTA")
	assert.Contains(t, out, "logs/")
	assert.Contains(t, out, "b.txt")
	assert.NotContains(t, out, "\x1b[")
}

func TestDiff_Changed(t *testing.T) {
	out, err := run(t, "", "diff", "-o", "json", "--changed", "--eager", oldSnap, oldSnap)
	require.NoError(t, err)
	assert.Empty(t, decode(t, out))

	// Unresolved directories cannot be shown to be equal, so they stay.
	out, err = run(t, "", "diff", "-o", "json", "--changed", oldSnap, oldSnap)
	require.NoError(t, err)
	records := decode(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, "unchanged", records[0].Status)
	assert.ElementsMatch(t, []string{"logs", "cache"}, names(records[0].Children))
}

func TestDiff_Stdin(t *testing.T) {
	body, err := os.ReadFile(oldSnap)
	require.NoError(t, err)

	out, err := run(t, string(body), "diff", "-o", "json", "-", newSnap)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), decode(t, out)[0].Delta)
}

func TestDiff_Directory(t *testing.T) {
	dir := t.TempDir()
	for src, dst := range map[string]string{oldSnap: "2023-11-14.json", newSnap: "2023-11-15.json"} {
		body, err := os.ReadFile(src)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, dst), body, 0o600))
	}

	out, err := run(t, "", "diff", "-o", "json", dir)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), decode(t, out)[0].Delta)
}

func TestDiff_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"one snapshot", []string{"diff", oldSnap}},
		{"missing file", []string{"diff", oldSnap, "nope.json"}},
		{"bad output", []string{"diff", "-o", "xml", oldSnap, newSnap}},
		{"bad aggr", []string{"diff", "--aggr", "bogus", oldSnap, newSnap}},
		{"negative depth", []string{"diff", "--depth=-1", oldSnap, newSnap}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestInfo(t *testing.T) {
	out, err := run(t, "", "info", oldSnap, newSnap)
	require.NoError(t, err)

	assert.Regexp(t, `\[0\] .*old\.json: format 1\.1`, out)
	assert.Regexp(t, `\[1\] .*new\.json: format 1\.1`, out)
	assert.Contains(t, out, "timestamp")

	out, err = run(t, "", "info", oldSnap, oldSnap)
	require.NoError(t, err)
	assert.Contains(t, out, "The info headers are identical.")
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _ncdiff ncdiff")

	out, err = run(t, "", "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef ncdiff")

	t.Setenv("SHELL", "/bin/fish")
	_, err = run(t, "", "completion")
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, FlagValidators("json", OutputValidator))
	assert.Error(t, FlagValidators("xml", OutputValidator))
	assert.NoError(t, FlagValidators("computed", AggrValidator))
	assert.Error(t, FlagValidators("bogus", AggrValidator))
	assert.NoError(t, FlagValidators(0, DepthValidator))
	assert.Error(t, FlagValidators(-1, DepthValidator))
}

func TestGetMeta(t *testing.T) {
	assert.Equal(t, meta.Meta{}, GetMeta(nil))
	assert.Equal(t, meta.Meta{}, GetMeta(&cli.Command{Metadata: map[string]any{"meta": 1}}))

	m := meta.Meta{StartingDir: "/x"}
	assert.Equal(t, "/x", GetMeta(&cli.Command{Metadata: map[string]any{"meta": m}}).StartingDir)
}

func TestNewApp_SortedFlags(t *testing.T) {
	app := NewApp(meta.Meta{})
	for _, cmd := range app.Commands {
		for i := 1; i < len(cmd.Flags); i++ {
			assert.LessOrEqual(t, cmd.Flags[i-1].Names()[0], cmd.Flags[i].Names()[0], cmd.Name)
		}
	}
}

func TestDiff_Filter(t *testing.T) {
	out, err := run(t, "", "diff", "-o", "json", "--depth", "2", "-f", "status=removed", oldSnap, newSnap)
	require.NoError(t, err)

	records := decode(t, out)
	require.Len(t, records, 1)
	assert.ElementsMatch(t, []string{"logs", "cache"}, names(records[0].Children))
}
