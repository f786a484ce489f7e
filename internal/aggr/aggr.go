// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aggr

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tfctl/ncdiff/internal/ncdu"
)

// ErrMixedAggregation is returned when two sides of one diff are bound to
// different aggregation modes.
var ErrMixedAggregation = errors.New("mixed aggregation modes")

// Aggregation is the rollup of one node's subtree.
//
//   - ChildCount: direct entries.
//   - ItemCount: all entries below the node.
//   - FileCount: non-directory entries below the node. A file counts itself.
//   - DirCount: directories below the node.
//   - Asize, Dsize: own sizes plus all descendants.
type Aggregation struct {
	ChildCount int64 `json:"children" yaml:"children"`
	ItemCount  int64 `json:"items" yaml:"items"`
	FileCount  int64 `json:"files" yaml:"files"`
	DirCount   int64 `json:"dirs" yaml:"dirs"`
	Asize      int64 `json:"asize" yaml:"asize"`
	Dsize      int64 `json:"dsize" yaml:"dsize"`
}

// Mode selects where aggregations come from.
type Mode int

const (
	ModeStored Mode = iota
	ModeComputed
)

func (m Mode) String() string {
	switch m {
	case ModeStored:
		return "stored"
	case ModeComputed:
		return "computed"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a flag or config value into a Mode. Empty selects
// ModeStored.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stored":
		return ModeStored, nil
	case "computed":
		return ModeComputed, nil
	default:
		return 0, fmt.Errorf("unknown aggregation mode %q: must be one of [stored computed]", s)
	}
}

// Aggregator returns the rollup of a snapshot node.
type Aggregator interface {
	Aggregate(n *ncdu.Node) Aggregation
	Mode() Mode
}

// New returns an Aggregator of the given mode for the nodes of snap.
func New(mode Mode, snap *ncdu.Snapshot) Aggregator {
	if mode == ModeComputed {
		return NewComputed()
	}
	return NewStored(snap)
}

// Check returns ErrMixedAggregation unless all aggregators share one Mode.
func Check(aggs ...Aggregator) error {
	if len(aggs) == 0 {
		return nil
	}
	for _, a := range aggs[1:] {
		if a.Mode() != aggs[0].Mode() {
			return fmt.Errorf("%w: %s and %s", ErrMixedAggregation, aggs[0].Mode(), a.Mode())
		}
	}
	return nil
}

// leaf is the rollup of a node without looking at its children.
func leaf(n *ncdu.Node) Aggregation {
	a := Aggregation{Asize: n.Entry.Asize, Dsize: n.Entry.Dsize}
	if !n.IsDir() {
		a.FileCount = 1
	}
	return a
}

// add folds a child's rollup into its parent's.
func (a *Aggregation) add(child *ncdu.Node, c Aggregation) {
	a.ChildCount++
	a.ItemCount += c.ItemCount + 1
	a.FileCount += c.FileCount
	a.DirCount += c.DirCount
	if child.IsDir() {
		a.DirCount++
	}
	a.Asize += c.Asize
	a.Dsize += c.Dsize
}

// Of computes the rollup of n without any caching.
func Of(n *ncdu.Node) Aggregation {
	a := leaf(n)
	for _, c := range n.Children {
		a.add(c, Of(c))
	}
	return a
}

// Stored serves rollups from a table filled in one pass over a snapshot.
type Stored struct {
	table map[*ncdu.Node]Aggregation
}

// NewStored builds the table for every node of snap.
func NewStored(snap *ncdu.Snapshot) *Stored {
	s := &Stored{table: make(map[*ncdu.Node]Aggregation, snap.Len())}
	if snap.Root != nil {
		s.fill(snap.Root)
	}
	return s
}

func (s *Stored) fill(n *ncdu.Node) Aggregation {
	a := leaf(n)
	for _, c := range n.Children {
		a.add(c, s.fill(c))
	}
	s.table[n] = a
	return a
}

// Aggregate returns the stored rollup. It panics for a node of another
// snapshot, since that means sides were crossed.
func (s *Stored) Aggregate(n *ncdu.Node) Aggregation {
	a, ok := s.table[n]
	if !ok {
		panic(fmt.Sprintf("aggr: node %d (%s) is not part of the stored snapshot", n.ID, n.Name))
	}
	return a
}

func (s *Stored) Mode() Mode { return ModeStored }

// Computed recomputes rollups bottom-up and memoizes them. It is safe for
// concurrent use.
type Computed struct {
	mu   sync.Mutex
	memo map[*ncdu.Node]Aggregation
}

func NewComputed() *Computed {
	return &Computed{memo: make(map[*ncdu.Node]Aggregation)}
}

func (c *Computed) Aggregate(n *ncdu.Node) Aggregation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compute(n)
}

func (c *Computed) compute(n *ncdu.Node) Aggregation {
	if a, ok := c.memo[n]; ok {
		return a
	}
	a := leaf(n)
	for _, child := range n.Children {
		a.add(child, c.compute(child))
	}
	c.memo[n] = a
	return a
}

func (c *Computed) Mode() Mode { return ModeComputed }
