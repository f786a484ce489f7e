// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/ncdu"
)

var (
	// ErrDuplicateIdentity is returned when two nodes of one tree share a Key.
	ErrDuplicateIdentity = errors.New("duplicate diff identity")
	// ErrNotFound is returned when a path does not lead to a resolved node.
	ErrNotFound = errors.New("diff node not found")
)

// InvariantViolation is the panic value used when a node is in a state that
// only a programming error can produce.
type InvariantViolation struct {
	Msg string
}

func (v InvariantViolation) Error() string {
	return "diff: invariant violation: " + v.Msg
}

func violate(format string, args ...interface{}) {
	panic(InvariantViolation{Msg: fmt.Sprintf(format, args...)})
}

// Status classifies a node.
type Status int

const (
	Unchanged Status = iota
	Modified
	Created
	Removed
)

func (s Status) String() string {
	switch s {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// Symbol is the one character marker used by renderers.
func (s Status) Symbol() string {
	switch s {
	case Modified:
		return "~"
	case Created:
		return "+"
	case Removed:
		return "-"
	default:
		return "="
	}
}

const noParent = -1

// absentID stands in for a missing side in a node Key.
const absentID = "-"

// arena owns nothing; it maps node indexes to nodes so that children can
// refer to their parent without holding it.
type arena struct {
	mu    sync.RWMutex
	nodes []*DiffNode
}

func (a *arena) add(n *DiffNode) {
	a.mu.Lock()
	n.self = len(a.nodes)
	a.nodes = append(a.nodes, n)
	a.mu.Unlock()
}

func (a *arena) at(i int) *DiffNode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.nodes[i]
}

// DiffNode pairs up to one snapshot node from each side.
type DiffNode struct {
	side0, side1 *ncdu.Node
	aggr0, aggr1 *aggr.Aggregation

	arena  *arena
	self   int
	parent int
	forest *Forest

	// nil until resolved. A resolved node with no children holds an empty
	// slice.
	children atomic.Pointer[[]*DiffNode]
}

func newNode(a *arena, parent int, side0, side1 *ncdu.Node, agg0, agg1 *aggr.Aggregation) *DiffNode {
	if side0 == nil && side1 == nil {
		violate("diff node with both sides absent")
	}
	n := &DiffNode{side0: side0, side1: side1, aggr0: agg0, aggr1: agg1, arena: a, parent: parent}
	a.add(n)
	return n
}

func (n *DiffNode) either() *ncdu.Node {
	if n.side0 != nil {
		return n.side0
	}
	return n.side1
}

// Name returns the entry name, read from whichever side is present.
func (n *DiffNode) Name() string { return n.either().Name }

// Kind returns the kind of the first present side.
func (n *DiffNode) Kind() ncdu.Kind { return n.either().Kind }

// Depth returns the depth below the snapshot root.
func (n *DiffNode) Depth() int { return n.either().Depth }

// Side0 returns the node of the first snapshot, or nil.
func (n *DiffNode) Side0() *ncdu.Node { return n.side0 }

// Side1 returns the node of the second snapshot, or nil.
func (n *DiffNode) Side1() *ncdu.Node { return n.side1 }

// Aggr0 returns the first side's rollup, or nil when the side is absent.
func (n *DiffNode) Aggr0() *aggr.Aggregation { return n.aggr0 }

// Aggr1 returns the second side's rollup, or nil when the side is absent.
func (n *DiffNode) Aggr1() *aggr.Aggregation { return n.aggr1 }

// WasCreated reports whether the entry only exists in the second snapshot.
func (n *DiffNode) WasCreated() bool { return n.side0 == nil }

// WasRemoved reports whether the entry only exists in the first snapshot.
func (n *DiffNode) WasRemoved() bool { return n.side1 == nil }

// IsExpandable reports whether either side is a directory.
func (n *DiffNode) IsExpandable() bool {
	return (n.side0 != nil && n.side0.IsDir()) || (n.side1 != nil && n.side1.IsDir())
}

// Key is the node identity within one tree: "id0|id1" with "-" for an absent
// side.
func (n *DiffNode) Key() string {
	id := func(s *ncdu.Node) string {
		if s == nil {
			return absentID
		}
		return strconv.Itoa(s.ID)
	}
	return id(n.side0) + "|" + id(n.side1)
}

// Delta is the disk size change from the first to the second side. An absent
// side counts as zero.
func (n *DiffNode) Delta() int64 {
	return dsize(n.aggr1) - dsize(n.aggr0)
}

// AsizeDelta is the apparent size change, absent sides counting as zero.
func (n *DiffNode) AsizeDelta() int64 {
	var a0, a1 int64
	if n.aggr0 != nil {
		a0 = n.aggr0.Asize
	}
	if n.aggr1 != nil {
		a1 = n.aggr1.Asize
	}
	return a1 - a0
}

func dsize(a *aggr.Aggregation) int64 {
	if a == nil {
		return 0
	}
	return a.Dsize
}

// Status classifies the node. A node present on both sides is Modified when
// its kind or any rollup field differs.
func (n *DiffNode) Status() Status {
	switch {
	case n.WasCreated():
		return Created
	case n.WasRemoved():
		return Removed
	case n.side0.Kind != n.side1.Kind:
		return Modified
	case n.aggr0 != nil && n.aggr1 != nil && *n.aggr0 != *n.aggr1:
		return Modified
	default:
		return Unchanged
	}
}

// HasChanges reports whether n or any resolved node below it is not
// Unchanged. A directory that is not resolved yet counts as changed: equal
// rollups do not rule out a rename inside it.
func (n *DiffNode) HasChanges() bool {
	if n.Status() != Unchanged {
		return true
	}
	c := n.children.Load()
	if c == nil {
		return n.IsExpandable()
	}
	for _, k := range *c {
		if k.HasChanges() {
			return true
		}
	}
	return false
}

// Resolved reports whether the children slot has been filled.
func (n *DiffNode) Resolved() bool {
	return n.children.Load() != nil
}

// Children returns the resolved children. Calling it on an unresolved node is
// a programming error and panics.
func (n *DiffNode) Children() []*DiffNode {
	c := n.children.Load()
	if c == nil {
		violate("children of %q read before resolution", n.Path().String())
	}
	return *c
}

// ResolveChildren returns the children, resolving them through the owning
// forest on first use. Nodes of an eager tree are always resolved.
func (n *DiffNode) ResolveChildren(ctx context.Context) ([]*DiffNode, error) {
	if c := n.children.Load(); c != nil {
		return *c, nil
	}
	if n.forest == nil {
		violate("unresolved node %q has no forest", n.Path().String())
	}
	return n.forest.Resolve(ctx, n)
}

// Parent returns the parent node, or nil for a root.
func (n *DiffNode) Parent() *DiffNode {
	if n.parent == noParent {
		return nil
	}
	return n.arena.at(n.parent)
}

// Path walks the parent links up to the root and returns the names, root
// first.
func (n *DiffNode) Path() Path {
	var rev []string
	for cur := n; cur != nil; cur = cur.Parent() {
		rev = append(rev, cur.Name())
	}
	p := make(Path, len(rev))
	for i, name := range rev {
		p[len(rev)-1-i] = name
	}
	return p
}
