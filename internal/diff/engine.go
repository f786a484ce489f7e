// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/ncdu"
)

// pair is one row of a matched level. At most one side is nil.
type pair struct {
	side0, side1 *ncdu.Node
}

// match pairs two sibling lists by exact name. The result keeps a's order,
// followed by the entries only found in b, in b's order.
func match(a, b []*ncdu.Node) []pair {
	byName := make(map[string]*ncdu.Node, len(b))
	for _, n := range b {
		if _, dup := byName[n.Name]; !dup {
			byName[n.Name] = n
		}
	}

	pairs := make([]pair, 0, len(a)+len(b))
	matched := make(map[*ncdu.Node]struct{}, len(b))
	for _, n := range a {
		m, ok := byName[n.Name]
		if ok {
			delete(byName, n.Name)
			matched[m] = struct{}{}
		}
		pairs = append(pairs, pair{side0: n, side1: m})
	}
	for _, n := range b {
		if _, ok := matched[n]; !ok {
			pairs = append(pairs, pair{side1: n})
		}
	}
	return pairs
}

func childrenOf(n *ncdu.Node) []*ncdu.Node {
	if n == nil {
		return nil
	}
	return n.Children
}

func aggrOf(a aggr.Aggregator, n *ncdu.Node) *aggr.Aggregation {
	if n == nil {
		return nil
	}
	v := a.Aggregate(n)
	return &v
}

// builder carries the state of one eager diff.
type builder struct {
	arena      *arena
	agg0, agg1 aggr.Aggregator
}

func (b *builder) level(parent int, side0, side1 []*ncdu.Node) []*DiffNode {
	pairs := match(side0, side1)
	out := make([]*DiffNode, 0, len(pairs))
	for _, p := range pairs {
		n := newNode(b.arena, parent, p.side0, p.side1, aggrOf(b.agg0, p.side0), aggrOf(b.agg1, p.side1))
		kids := b.level(n.self, childrenOf(p.side0), childrenOf(p.side1))
		n.children.Store(&kids)
		out = append(out, n)
	}
	return out
}

// DiffChildren fully diffs two sibling lists. Matched and removed entries come
// first in a's order, created entries follow in b's order. Every returned node
// is resolved all the way down.
func DiffChildren(a, b []*ncdu.Node, agg0, agg1 aggr.Aggregator) []*DiffNode {
	bld := &builder{arena: &arena{}, agg0: agg0, agg1: agg1}
	return bld.level(noParent, a, b)
}

// DiffTree is the result of an eager diff of two snapshots.
type DiffTree struct {
	Roots []*DiffNode
	Mode  aggr.Mode

	index map[string]*DiffNode
}

// CalcDiff diffs two snapshots completely, aggregating both sides in mode.
func CalcDiff(a, b *ncdu.Snapshot, mode aggr.Mode) (*DiffTree, error) {
	if err := checkSnapshots(a, b); err != nil {
		return nil, err
	}
	return CalcDiffWith(a, b, aggr.New(mode, a), aggr.New(mode, b))
}

// CalcDiffWith diffs two snapshots with caller supplied aggregators, which
// must share one mode.
func CalcDiffWith(a, b *ncdu.Snapshot, agg0, agg1 aggr.Aggregator) (*DiffTree, error) {
	if err := checkSnapshots(a, b); err != nil {
		return nil, err
	}
	if err := aggr.Check(agg0, agg1); err != nil {
		return nil, err
	}

	roots := DiffChildren([]*ncdu.Node{a.Root}, []*ncdu.Node{b.Root}, agg0, agg1)
	index, err := indexNodes(roots)
	if err != nil {
		return nil, err
	}

	log.Debugf("diffed %s and %s: nodes=%d", a.Source, b.Source, len(index))
	return &DiffTree{Roots: roots, Mode: agg0.Mode(), index: index}, nil
}

func checkSnapshots(a, b *ncdu.Snapshot) error {
	if a == nil || b == nil || a.Root == nil || b.Root == nil {
		return errors.New("cannot diff an empty snapshot")
	}
	return nil
}

// indexNodes keys every resolved node below roots by identity.
func indexNodes(roots []*DiffNode) (map[string]*DiffNode, error) {
	index := make(map[string]*DiffNode)
	var err error
	walk(roots, func(n *DiffNode) bool {
		key := n.Key()
		if _, exists := index[key]; exists {
			err = fmt.Errorf("%w: %s at %s", ErrDuplicateIdentity, key, n.Path())
			return false
		}
		index[key] = n
		return true
	})
	return index, err
}

// Len returns the number of nodes in the tree.
func (t *DiffTree) Len() int {
	return len(t.index)
}

// ByKey returns the node with the given identity.
func (t *DiffTree) ByKey(key string) (*DiffNode, bool) {
	n, ok := t.index[key]
	return n, ok
}

// Lookup returns the node at p.
func (t *DiffTree) Lookup(p Path) (*DiffNode, error) {
	return lookup(t.Roots, p)
}

// Walk visits every node in pre-order until fn returns false.
func (t *DiffTree) Walk(fn func(*DiffNode) bool) {
	walk(t.Roots, fn)
}

// walk visits resolved nodes in pre-order. Unresolved subtrees are skipped.
func walk(nodes []*DiffNode, fn func(*DiffNode) bool) bool {
	for _, n := range nodes {
		if !fn(n) {
			return false
		}
		if c := n.children.Load(); c != nil {
			if !walk(*c, fn) {
				return false
			}
		}
	}
	return true
}
