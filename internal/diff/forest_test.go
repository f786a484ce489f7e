// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/ncdu"
)

var errBoom = errors.New("backend unavailable")

// countingFetcher counts fetches per path and can hold them until gate is
// closed or fail them while fail is set.
type countingFetcher struct {
	inner Fetcher
	gate  chan struct{}
	fail  atomic.Bool

	mu    sync.Mutex
	calls map[string]int
}

func newCountingFetcher(inner Fetcher) *countingFetcher {
	return &countingFetcher{inner: inner, calls: map[string]int{}}
}

func (c *countingFetcher) FetchChildren(ctx context.Context, p Path) ([]Entry, []Entry, error) {
	c.mu.Lock()
	c.calls[p.String()]++
	c.mu.Unlock()

	if c.gate != nil {
		<-c.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if c.fail.Load() && len(p) > 0 {
		return nil, nil, errBoom
	}
	return c.inner.FetchChildren(ctx, p)
}

func (c *countingFetcher) count(p string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[p]
}

func fixtureFetcher(t *testing.T) *countingFetcher {
	t.Helper()
	return newCountingFetcher(NewSnapshotFetcher(
		StaticProvider{Snap: loadFixture(t, "old.json")},
		StaticProvider{Snap: loadFixture(t, "new.json")},
		aggr.ModeStored,
	))
}

func docFetcher(t *testing.T, a, b string) *countingFetcher {
	t.Helper()
	return newCountingFetcher(NewSnapshotFetcher(
		StaticProvider{Snap: parseDoc(t, a)},
		StaticProvider{Snap: parseDoc(t, b)},
		aggr.ModeComputed,
	))
}

func TestNewForest_RootsUnresolved(t *testing.T) {
	cf := fixtureFetcher(t)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)

	require.Len(t, f.Roots(), 1)
	root := f.Roots()[0]
	assert.Equal(t, "/srv", root.Name())
	assert.False(t, root.Resolved())
	assert.Nil(t, root.Parent())
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, 1, cf.count(""))
	assert.Equal(t, 0, cf.count("/srv"))
}

func TestForest_ResolveOrdersByDelta(t *testing.T) {
	f, err := NewForest(context.Background(), fixtureFetcher(t))
	require.NoError(t, err)

	kids, err := f.Resolve(context.Background(), f.Roots()[0])
	require.NoError(t, err)

	// logs and b.txt both grew by 4096 and tie on name.
	assert.Equal(t, []string{"b.txt", "logs", "a.txt", "cache"}, names(kids))
	assert.Equal(t, 5, f.Len())

	for _, k := range kids {
		assert.Equal(t, k.IsExpandable(), !k.Resolved(), k.Name())
		assert.Same(t, f.Roots()[0], k.Parent())
	}
}

// TestForest_ZeroDeltaTail verifies zero deltas trail the rest by name.
func TestForest_ZeroDeltaTail(t *testing.T) {
	cf := docFetcher(t,
		`[1,1,{"progver":"1.14.2"},[{"name":"r"},
			{"name":"y","dsize":5},{"name":"x","dsize":10},{"name":"z","dsize":5},{"name":"w","dsize":1}]]`,
		`[1,1,{"progver":"1.14.2"},[{"name":"r"},
			{"name":"v"},{"name":"x","dsize":10},{"name":"y","dsize":5},{"name":"z","dsize":20},{"name":"w"}]]`,
	)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)

	kids, err := f.Roots()[0].ResolveChildren(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "w", "v", "x", "y"}, names(kids))

	seenZero := false
	for i, k := range kids {
		if k.Delta() == 0 {
			seenZero = true
			if i > 0 && kids[i-1].Delta() == 0 {
				assert.Less(t, kids[i-1].Name(), k.Name())
			}
			continue
		}
		assert.False(t, seenZero, "non-zero delta after the zero group")
		if i > 0 {
			assert.GreaterOrEqual(t, kids[i-1].Delta(), k.Delta())
		}
	}
}

func TestForest_ResolveIdempotent(t *testing.T) {
	cf := fixtureFetcher(t)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)
	root := f.Roots()[0]

	first, err := f.Resolve(context.Background(), root)
	require.NoError(t, err)
	second, err := root.ResolveChildren(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, first, root.Children())
	assert.Equal(t, 1, cf.count("/srv"))
}

func TestForest_ResolveConcurrent(t *testing.T) {
	cf := fixtureFetcher(t)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)
	root := f.Roots()[0]

	cf.gate = make(chan struct{})
	const callers = 16
	results := make([][]*DiffNode, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kids, err := f.Resolve(context.Background(), root)
			assert.NoError(t, err)
			results[i] = kids
		}()
	}
	close(cf.gate)
	wg.Wait()

	assert.Equal(t, 1, cf.count("/srv"))
	for _, r := range results {
		require.Len(t, r, 4)
		assert.Same(t, results[0][0], r[0])
	}
	assert.Equal(t, 5, f.Len())
}

func TestForest_ResolveCallerCancelled(t *testing.T) {
	cf := fixtureFetcher(t)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)
	root := f.Roots()[0]

	cf.gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := f.Resolve(ctx, root)
		first <- err
	}()
	require.Eventually(t, func() bool { return cf.count("/srv") == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	second := make(chan error, 1)
	var kids []*DiffNode
	go func() {
		var err error
		kids, err = f.Resolve(context.Background(), root)
		second <- err
	}()
	close(cf.gate)

	require.NoError(t, <-second)
	assert.Len(t, kids, 4)
	assert.True(t, root.Resolved())
	assert.Equal(t, 1, cf.count("/srv"))
}

func TestHasChanges(t *testing.T) {
	a := `[1,1,{"progver":"1.14.2"},
[{"name":"r","dsize":1},[{"name":"d","dsize":1},{"name":"a","dsize":100}],{"name":"same","dsize":10}]]`
	b := `[1,1,{"progver":"1.14.2"},
[{"name":"r","dsize":1},[{"name":"d","dsize":1},{"name":"b","dsize":100}],{"name":"same","dsize":10}]]`

	f, err := NewForest(context.Background(), docFetcher(t, a, b))
	require.NoError(t, err)
	root := f.Roots()[0]
	assert.True(t, root.HasChanges(), "unresolved directory")

	kids, err := f.Resolve(context.Background(), root)
	require.NoError(t, err)
	require.Equal(t, []string{"d", "same"}, names(kids))
	d, same := kids[0], kids[1]
	assert.Equal(t, Unchanged, d.Status())
	assert.False(t, same.HasChanges())
	assert.True(t, root.HasChanges())

	_, err = f.Resolve(context.Background(), d)
	require.NoError(t, err)
	assert.True(t, d.HasChanges(), "rename below d")

	tree, err := CalcDiff(parseDoc(t, a), parseDoc(t, a), aggr.ModeComputed)
	require.NoError(t, err)
	assert.False(t, tree.Roots[0].HasChanges())
}

func TestForest_FetchErrorNotCached(t *testing.T) {
	cf := fixtureFetcher(t)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)
	root := f.Roots()[0]

	cf.fail.Store(true)
	_, err = f.Resolve(context.Background(), root)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, root.Resolved())
	assert.Equal(t, 1, f.Len())

	cf.fail.Store(false)
	kids, err := f.Resolve(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, kids, 4)
	assert.Equal(t, 2, cf.count("/srv"))
}

func TestNewForest_FetchError(t *testing.T) {
	_, err := NewForest(context.Background(), NewSnapshotFetcher(
		failingProvider{},
		StaticProvider{Snap: loadFixture(t, "new.json")},
		aggr.ModeStored,
	))
	assert.ErrorIs(t, err, errBoom)
}

type failingProvider struct{}

func (failingProvider) Snapshot(context.Context) (*ncdu.Snapshot, error) {
	return nil, errBoom
}

func TestForest_ExpandTo(t *testing.T) {
	cf := fixtureFetcher(t)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)

	require.NoError(t, f.ExpandTo(context.Background(), 0))
	assert.False(t, f.Roots()[0].Resolved())

	require.NoError(t, f.ExpandTo(context.Background(), 1))
	logs, err := f.Lookup(Path{"/srv", "logs"})
	require.NoError(t, err)
	assert.False(t, logs.Resolved())

	require.NoError(t, f.ExpandTo(context.Background(), 5))
	assert.True(t, logs.Resolved())
	assert.Equal(t, 8, f.Len())

	for _, p := range []string{"", "/srv", "/srv/logs", "/srv/cache"} {
		assert.Equal(t, 1, cf.count(p), p)
	}
	assert.Equal(t, 0, cf.count("/srv/a.txt"))

	// Created and removed subtrees are fetched against an empty side.
	blob, err := f.Lookup(Path{"/srv", "cache", "blob"})
	require.NoError(t, err)
	assert.True(t, blob.WasRemoved())
	assert.Equal(t, int64(-8192), blob.Delta())
}

func TestForest_ExpandToError(t *testing.T) {
	cf := fixtureFetcher(t)
	f, err := NewForest(context.Background(), cf)
	require.NoError(t, err)

	cf.fail.Store(true)
	assert.ErrorIs(t, f.ExpandTo(context.Background(), 2), errBoom)
}

func TestForest_LookupRoundTrip(t *testing.T) {
	f, err := NewForest(context.Background(), fixtureFetcher(t))
	require.NoError(t, err)
	require.NoError(t, f.ExpandTo(context.Background(), 5))

	count := 0
	f.Walk(func(n *DiffNode) bool {
		count++
		got, err := f.Lookup(n.Path())
		require.NoError(t, err)
		assert.Same(t, n, got)

		byKey, ok := f.ByKey(n.Key())
		require.True(t, ok)
		assert.Same(t, n, byKey)
		return true
	})
	assert.Equal(t, f.Len(), count)
}

func TestForest_LookupUnresolved(t *testing.T) {
	f, err := NewForest(context.Background(), fixtureFetcher(t))
	require.NoError(t, err)

	_, err = f.Lookup(Path{"/srv", "logs"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Lookup(Path{"/elsewhere"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForest_ForeignNode(t *testing.T) {
	f1, err := NewForest(context.Background(), fixtureFetcher(t))
	require.NoError(t, err)
	f2, err := NewForest(context.Background(), fixtureFetcher(t))
	require.NoError(t, err)

	v, ok := recoverViolation(func() {
		_, _ = f2.Resolve(context.Background(), f1.Roots()[0])
	})
	require.True(t, ok)
	assert.Contains(t, v.Error(), "foreign forest")
}

// TestForest_MatchesEager verifies both strategies pair the same entries.
func TestForest_MatchesEager(t *testing.T) {
	a, b := loadFixture(t, "old.json"), loadFixture(t, "new.json")
	tree, err := CalcDiff(a, b, aggr.ModeComputed)
	require.NoError(t, err)

	f, err := NewForest(context.Background(), NewSnapshotFetcher(StaticProvider{Snap: a}, StaticProvider{Snap: b}, aggr.ModeComputed))
	require.NoError(t, err)
	require.NoError(t, f.ExpandTo(context.Background(), 10))

	assert.Equal(t, tree.Len(), f.Len())
	tree.Walk(func(n *DiffNode) bool {
		lazy, ok := f.ByKey(n.Key())
		require.True(t, ok, n.Key())
		assert.Equal(t, n.Path(), lazy.Path())
		assert.Equal(t, n.Status(), lazy.Status())
		assert.Equal(t, n.Delta(), lazy.Delta())
		return true
	})
}
