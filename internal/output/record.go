// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/diff"
)

// Options control what is rendered and how.
type Options struct {
	Format   string // text, json or yaml
	Apparent bool   // apparent sizes instead of disk usage
	Changed  bool   // drop unchanged nodes
	Color    bool
	Titles   bool
	Padding  int
	Sort     string // sibling sort spec, see SortRecords
	Filter   string // record filter spec, see FilterRecords
}

// Sizes is one side of a record.
type Sizes struct {
	Size  int64 `json:"size" yaml:"size"`
	Items int64 `json:"items" yaml:"items"`
	Files int64 `json:"files" yaml:"files"`
	Dirs  int64 `json:"dirs" yaml:"dirs"`
}

// Record is the rendered form of a diff node.
type Record struct {
	Name     string   `json:"name" yaml:"name"`
	Path     string   `json:"path" yaml:"path"`
	Kind     string   `json:"kind" yaml:"kind"`
	Status   string   `json:"status" yaml:"status"`
	Old      *Sizes   `json:"old,omitempty" yaml:"old,omitempty"`
	New      *Sizes   `json:"new,omitempty" yaml:"new,omitempty"`
	Delta    int64    `json:"delta" yaml:"delta"`
	Children []Record `json:"children,omitempty" yaml:"children,omitempty"`

	depth  int
	status diff.Status
}

// NewRecords converts the resolved part of a diff tree. Unresolved levels are
// left out. With opts.Changed, an unchanged node is kept only when something
// below it is kept or when it is a directory that is not resolved yet.
func NewRecords(nodes []*diff.DiffNode, opts Options) []Record {
	records := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		var children []Record
		if n.Resolved() {
			children = NewRecords(n.Children(), opts)
		}
		if opts.Changed && n.Status() == diff.Unchanged && len(children) == 0 &&
			(n.Resolved() || !n.IsExpandable()) {
			continue
		}

		r := Record{
			Name:   n.Name(),
			Path:   n.Path().String(),
			Kind:   n.Kind().String(),
			Status: n.Status().String(),
			Old:    sizes(n.Aggr0(), opts.Apparent),
			New:    sizes(n.Aggr1(), opts.Apparent),
			Delta:  n.Delta(),
			depth:  n.Depth(),
			status: n.Status(),
		}
		if opts.Apparent {
			r.Delta = n.AsizeDelta()
		}
		if len(children) > 0 {
			r.Children = children
		}
		records = append(records, r)
	}
	return records
}

func sizes(a *aggr.Aggregation, apparent bool) *Sizes {
	if a == nil {
		return nil
	}
	s := &Sizes{Size: a.Dsize, Items: a.ItemCount, Files: a.FileCount, Dirs: a.DirCount}
	if apparent {
		s.Size = a.Asize
	}
	return s
}

// flatten lists records in pre-order.
func flatten(records []Record) []Record {
	var out []Record
	for _, r := range records {
		out = append(out, r)
		out = append(out, flatten(r.Children)...)
	}
	return out
}
