// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/log"
	"github.com/tfctl/ncdiff/internal/ncdu"
)

// expandWorkers bounds the concurrent resolves of ExpandTo.
const expandWorkers = 8

// Forest is a lazily resolved diff owned by one session. Only the roots exist
// up front. Deeper levels are fetched on demand and cached on their parent.
type Forest struct {
	fetcher Fetcher
	arena   *arena
	roots   []*DiffNode
	flight  singleflight.Group

	mu    sync.Mutex
	index map[string]*DiffNode
}

// NewForest fetches the top level through fetcher and returns a forest whose
// roots are unresolved.
func NewForest(ctx context.Context, fetcher Fetcher) (*Forest, error) {
	side0, side1, err := fetcher.FetchChildren(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roots: %w", err)
	}

	f := &Forest{
		fetcher: fetcher,
		arena:   &arena{},
		index:   make(map[string]*DiffNode),
	}
	roots := f.level(noParent, side0, side1)
	if err := f.register(roots); err != nil {
		return nil, err
	}
	f.roots = roots
	return f, nil
}

// Roots returns the top level nodes.
func (f *Forest) Roots() []*DiffNode {
	return f.roots
}

// Len returns the number of nodes materialized so far.
func (f *Forest) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.index)
}

// ByKey returns the materialized node with the given identity.
func (f *Forest) ByKey(key string) (*DiffNode, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.index[key]
	return n, ok
}

// Lookup returns the node at p. Every ancestor on p must be resolved.
func (f *Forest) Lookup(p Path) (*DiffNode, error) {
	return lookup(f.roots, p)
}

// Walk visits the resolved part of the forest in pre-order until fn returns
// false.
func (f *Forest) Walk(fn func(*DiffNode) bool) {
	walk(f.roots, fn)
}

// Resolve returns the children of n, fetching and matching one level the first
// time. Concurrent calls for one node share a single fetch, which is not
// cancelled with any one caller's ctx. A failed fetch leaves n unresolved.
func (f *Forest) Resolve(ctx context.Context, n *DiffNode) ([]*DiffNode, error) {
	if n.forest != f {
		violate("node %q resolved through a foreign forest", n.Path())
	}
	if c := n.children.Load(); c != nil {
		return *c, nil
	}

	// The shared fetch outlives any one caller. Each caller stops waiting
	// when its own ctx is done.
	fctx := context.WithoutCancel(ctx)
	ch := f.flight.DoChan(n.Key(), func() (interface{}, error) {
		if c := n.children.Load(); c != nil {
			return *c, nil
		}

		p := n.Path()
		side0, side1, err := f.fetcher.FetchChildren(fctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch children of %s: %w", p, err)
		}

		kids := f.level(n.self, side0, side1)
		if err := f.register(kids); err != nil {
			return nil, err
		}
		if !n.children.CompareAndSwap(nil, &kids) {
			violate("children of %q published twice", p)
		}
		log.Debugf("resolved %s: children=%d", p, len(kids))
		return kids, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Tracef("shared resolve of %s", n.Key())
		}
		return res.Val.([]*DiffNode), nil
	}
}

// ExpandTo resolves every expandable node down to depth levels below the
// roots. A depth of zero leaves the forest as it is.
func (f *Forest) ExpandTo(ctx context.Context, depth int) error {
	level := f.roots
	for d := 0; d < depth && len(level) > 0; d++ {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(expandWorkers)

		results := make([][]*DiffNode, len(level))
		for i, n := range level {
			if !n.IsExpandable() {
				continue
			}
			g.Go(func() error {
				kids, err := f.Resolve(gctx, n)
				results[i] = kids
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var next []*DiffNode
		for _, r := range results {
			next = append(next, r...)
		}
		level = next
	}
	return nil
}

// level matches one fetched level without descending. Nodes that cannot have
// children start resolved.
func (f *Forest) level(parent int, side0, side1 []Entry) []*DiffNode {
	a, aggs0 := split(side0)
	b, aggs1 := split(side1)

	pairs := match(a, b)
	out := make([]*DiffNode, 0, len(pairs))
	for _, p := range pairs {
		n := newNode(f.arena, parent, p.side0, p.side1, aggs0[p.side0], aggs1[p.side1])
		n.forest = f
		if !n.IsExpandable() {
			empty := []*DiffNode{}
			n.children.Store(&empty)
		}
		out = append(out, n)
	}
	sortByDelta(out)
	return out
}

// register adds nodes to the identity index. Nothing is added when any key is
// already taken.
func (f *Forest) register(nodes []*DiffNode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		key := n.Key()
		_, taken := f.index[key]
		_, dup := seen[key]
		if taken || dup {
			return fmt.Errorf("%w: %s at %s", ErrDuplicateIdentity, key, n.Path())
		}
		seen[key] = struct{}{}
	}
	for _, n := range nodes {
		f.index[n.Key()] = n
	}
	return nil
}

func split(entries []Entry) ([]*ncdu.Node, map[*ncdu.Node]*aggr.Aggregation) {
	nodes := make([]*ncdu.Node, 0, len(entries))
	aggs := make(map[*ncdu.Node]*aggr.Aggregation, len(entries))
	for i := range entries {
		nodes = append(nodes, entries[i].Node)
		aggs[entries[i].Node] = &entries[i].Aggr
	}
	return nodes, aggs
}

// sortByDelta orders by disk size delta, largest first. Zero deltas go last.
// Equal deltas are ordered by name.
func sortByDelta(nodes []*DiffNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return lessDelta(nodes[i], nodes[j])
	})
}

func lessDelta(a, b *DiffNode) bool {
	da, db := a.Delta(), b.Delta()
	switch {
	case da == 0 && db != 0:
		return false
	case da != 0 && db == 0:
		return true
	case da != db:
		return da > db
	default:
		return a.Name() < b.Name()
	}
}
