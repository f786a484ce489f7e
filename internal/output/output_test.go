// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/diff"
	"github.com/tfctl/ncdiff/internal/ncdu"
)

func fixtureTree(t *testing.T) *diff.DiffTree {
	t.Helper()
	a, err := ncdu.ParseFile(filepath.Join("..", "ncdu", "testdata", "old.json"))
	require.NoError(t, err)
	b, err := ncdu.ParseFile(filepath.Join("..", "ncdu", "testdata", "new.json"))
	require.NoError(t, err)
	tree, err := diff.CalcDiff(a, b, aggr.ModeStored)
	require.NoError(t, err)
	return tree
}

func names(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestNewRecords(t *testing.T) {
	tree := fixtureTree(t)

	records := NewRecords(tree.Roots, Options{})
	require.Len(t, records, 1)

	root := records[0]
	assert.Equal(t, "/srv", root.Path)
	assert.Equal(t, "dir", root.Kind)
	assert.Equal(t, "modified", root.Status)
	assert.Equal(t, int64(-100), root.Delta)
	assert.Equal(t, int64(28772), root.Old.Size)
	assert.Equal(t, int64(28672), root.New.Size)
	assert.Equal(t, int64(6), root.Old.Items)
	assert.Equal(t, int64(4), root.New.Items)
	assert.Equal(t, []string{"a.txt", "logs", "cache", "b.txt"}, names(root.Children))

	cache := root.Children[2]
	assert.Equal(t, "removed", cache.Status)
	assert.Nil(t, cache.New)
	assert.Equal(t, "/srv/cache", cache.Path)
	assert.Equal(t, []string{"blob"}, names(cache.Children))

	created := root.Children[3]
	assert.Equal(t, "created", created.Status)
	assert.Nil(t, created.Old)
}

func TestNewRecords_Apparent(t *testing.T) {
	tree := fixtureTree(t)

	records := NewRecords(tree.Roots, Options{Apparent: true})
	aTxt := records[0].Children[0]
	assert.Equal(t, int64(100), aTxt.Old.Size)
	assert.Equal(t, int64(150), aTxt.New.Size)
	assert.Equal(t, int64(50), aTxt.Delta)
}

func TestNewRecords_Changed(t *testing.T) {
	a, err := ncdu.Parse([]byte(`[1,1,{"progver":"1.14.2"},
[{"name":"r","dsize":1},{"name":"same","dsize":10},{"name":"grew","dsize":10}]]`))
	require.NoError(t, err)
	b, err := ncdu.Parse([]byte(`[1,1,{"progver":"1.14.2"},
[{"name":"r","dsize":1},{"name":"same","dsize":10},{"name":"grew","dsize":20}]]`))
	require.NoError(t, err)
	tree, err := diff.CalcDiff(a, b, aggr.ModeStored)
	require.NoError(t, err)

	all := NewRecords(tree.Roots, Options{})
	assert.Equal(t, []string{"same", "grew"}, names(all[0].Children))

	changed := NewRecords(tree.Roots, Options{Changed: true})
	assert.Equal(t, []string{"grew"}, names(changed[0].Children))
}

func TestNewRecords_ChangedRename(t *testing.T) {
	a, err := ncdu.Parse([]byte(`[1,1,{"progver":"1.14.2"},
[{"name":"r","dsize":1},[{"name":"d","dsize":1},{"name":"a","dsize":100}],{"name":"same","dsize":10}]]`))
	require.NoError(t, err)
	b, err := ncdu.Parse([]byte(`[1,1,{"progver":"1.14.2"},
[{"name":"r","dsize":1},[{"name":"d","dsize":1},{"name":"b","dsize":100}],{"name":"same","dsize":10}]]`))
	require.NoError(t, err)
	tree, err := diff.CalcDiff(a, b, aggr.ModeStored)
	require.NoError(t, err)

	all := NewRecords(tree.Roots, Options{})
	require.Len(t, all, 1)
	assert.Equal(t, "unchanged", all[0].Status)

	changed := NewRecords(tree.Roots, Options{Changed: true})
	require.Len(t, changed, 1)
	assert.Equal(t, "unchanged", changed[0].Status)
	require.Equal(t, []string{"d"}, names(changed[0].Children))

	d := changed[0].Children[0]
	assert.Equal(t, "unchanged", d.Status)
	assert.Equal(t, []string{"a", "b"}, names(d.Children))
	assert.Equal(t, "removed", d.Children[0].Status)
	assert.Equal(t, "created", d.Children[1].Status)
}

func TestSortRecords(t *testing.T) {
	testData := []Record{
		{Name: "zebra", Delta: 3, Status: "created"},
		{Name: "Alpha", Delta: 1, Status: "removed"},
		{Name: "beta", Delta: 2, Status: "created", Children: []Record{{Name: "y"}, {Name: "x"}}},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{name: "ascending by name", spec: "name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by name", spec: "-name", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "ascending by delta", spec: "delta", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "descending by delta", spec: "-delta", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "case sensitive", spec: "!name", wantOrder: []string{"Alpha", "beta", "zebra"}},
		{name: "multiple fields", spec: "status,-delta", wantOrder: []string{"zebra", "beta", "Alpha"}},
		{name: "unknown field", spec: "bogus", wantOrder: []string{"zebra", "Alpha", "beta"}},
		{name: "empty spec", spec: "", wantOrder: []string{"zebra", "Alpha", "beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]Record, len(testData))
			copy(data, testData)
			SortRecords(data, tt.spec)
			assert.Equal(t, tt.wantOrder, names(data))
		})
	}

	t.Run("recurses", func(t *testing.T) {
		data := []Record{{Name: "p", Children: []Record{{Name: "y"}, {Name: "x"}}}}
		SortRecords(data, "name")
		assert.Equal(t, []string{"x", "y"}, names(data[0].Children))
	})
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "0 B", FormatDelta(0))
	assert.Equal(t, "+4.0 KiB", FormatDelta(4096))
	assert.Equal(t, "-100 B", FormatDelta(-100))
	assert.Equal(t, "-", FormatSize(nil))
	assert.Equal(t, "12 KiB", FormatSize(&Sizes{Size: 12288}))
}

func TestSpit_JSON(t *testing.T) {
	tree := fixtureTree(t)
	var buf bytes.Buffer

	require.NoError(t, Spit(&buf, tree.Roots, Options{Format: "json"}))

	var got []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, []string{"a.txt", "logs", "cache", "b.txt"}, names(got[0].Children))
	assert.Equal(t, int64(-12288), got[0].Children[2].Delta)
}

func TestSpit_YAML(t *testing.T) {
	tree := fixtureTree(t)
	var buf bytes.Buffer

	require.NoError(t, Spit(&buf, tree.Roots, Options{Format: "yaml", Sort: "-delta"}))

	var got []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "/srv", got[0]["name"])

	children, ok := got[0]["children"].([]interface{})
	require.True(t, ok)
	first := children[0].(map[interface{}]interface{})
	assert.Equal(t, "logs", first["name"], "ties keep tree order")
}

func TestSpit_Text(t *testing.T) {
	tree := fixtureTree(t)
	var buf bytes.Buffer

	require.NoError(t, Spit(&buf, tree.Roots, Options{Titles: true, Padding: 2}))
	out := buf.String()

	assert.Contains(t, out, "DELTA")
	assert.Contains(t, out, "-100 B")
	assert.Contains(t, out, "/srv/")
	assert.Contains(t, out, "  logs/")
	assert.Contains(t, out, "    app.log")
	assert.Contains(t, out, "+8.0 KiB")
	assert.Equal(t, 8, strings.Count(strings.TrimSpace(out), "\n"), "title plus one line per node")
}

func TestSpit_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Spit(&buf, nil, Options{}))
	assert.Empty(t, buf.String())
}

func TestInfoDiff(t *testing.T) {
	a, err := ncdu.Parse([]byte(`[1,1,{"progname":"ncdu","progver":"1.14.2","timestamp":1700000000},{"name":"r"}]`),
		ncdu.WithSource("a.json"))
	require.NoError(t, err)
	b, err := ncdu.Parse([]byte(`[1,2,{"progname":"ncdu","progver":"1.15","timestamp":1700086400},{"name":"r"}]`),
		ncdu.WithSource("b.json"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, InfoDiff(&buf, a, b, false))
	out := buf.String()
	assert.Contains(t, out, "[0] a.json: format 1.1, ncdu 1.14.2, 2023-11-14T22:13:20Z")
	assert.Contains(t, out, "[1] b.json: format 1.2, ncdu 1.15")
	assert.Contains(t, out, "1 warning(s)")
	assert.Contains(t, out, `"progver": "1.14.2"`)
	assert.Contains(t, out, `"progver": "1.15"`)

	buf.Reset()
	require.NoError(t, InfoDiff(&buf, a, a, false))
	assert.Contains(t, buf.String(), "identical")
}

func TestHeader_NoTimestamp(t *testing.T) {
	snap, err := ncdu.Parse([]byte(`[1,0,{"progver":"1.14.2"},{"name":"r"}]`), ncdu.WithSource("x"))
	require.NoError(t, err)
	assert.Equal(t, "x: format 1.0, ncdu 1.14.2, unknown time, 1 items, 0 warning(s)", Header(snap))
}

func TestFilterRecords(t *testing.T) {
	records := NewRecords(fixtureTree(t).Roots, Options{})

	removed := FilterRecords(records, "status=removed")
	require.Len(t, removed, 1)
	assert.Equal(t, []string{"logs", "cache"}, names(removed[0].Children))
	assert.Equal(t, []string{"old.log"}, names(removed[0].Children[0].Children))
	assert.Equal(t, []string{"blob"}, names(removed[0].Children[1].Children))

	grown := FilterRecords(records, "kind=file,delta>0")
	require.Len(t, grown, 1)
	assert.Equal(t, []string{"a.txt", "logs", "b.txt"}, names(grown[0].Children))
	assert.Equal(t, []string{"app.log"}, names(grown[0].Children[1].Children))

	existed := FilterRecords(records, "kind=file,old>0,delta>0")
	assert.Equal(t, []string{"a.txt", "logs"}, names(existed[0].Children))

	assert.Empty(t, FilterRecords(records, "name=nothing"))
	assert.Equal(t, records, FilterRecords(records, ""))

	// The input is left alone.
	assert.Equal(t, []string{"a.txt", "logs", "cache", "b.txt"}, names(records[0].Children))
}

func TestSpit_Filter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Spit(&buf, fixtureTree(t).Roots, Options{Format: "json", Filter: "status=created"}))

	var records []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, []string{"b.txt"}, names(records[0].Children))
}
