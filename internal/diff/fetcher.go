// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"context"
	"fmt"
	"sync"

	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/ncdu"
)

// Entry is one child as served by a Fetcher, with its rollup.
type Entry struct {
	Node *ncdu.Node
	Aggr aggr.Aggregation
}

// Fetcher serves one level of both snapshots. An empty path asks for the
// roots. A side that has nothing at p returns no entries.
type Fetcher interface {
	FetchChildren(ctx context.Context, p Path) (side0, side1 []Entry, err error)
}

// SnapshotProvider hands out a parsed snapshot, loading it on first use.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (*ncdu.Snapshot, error)
}

// SnapshotFetcher serves levels by walking two snapshots by name.
type SnapshotFetcher struct {
	Side0, Side1 SnapshotProvider
	Mode         aggr.Mode

	mu   sync.Mutex
	aggs map[*ncdu.Snapshot]aggr.Aggregator
}

// NewSnapshotFetcher returns a fetcher over the two providers.
func NewSnapshotFetcher(side0, side1 SnapshotProvider, mode aggr.Mode) *SnapshotFetcher {
	return &SnapshotFetcher{Side0: side0, Side1: side1, Mode: mode}
}

func (f *SnapshotFetcher) FetchChildren(ctx context.Context, p Path) ([]Entry, []Entry, error) {
	side0, err := f.side(ctx, f.Side0, p)
	if err != nil {
		return nil, nil, fmt.Errorf("side 0: %w", err)
	}
	side1, err := f.side(ctx, f.Side1, p)
	if err != nil {
		return nil, nil, fmt.Errorf("side 1: %w", err)
	}
	return side0, side1, nil
}

func (f *SnapshotFetcher) side(ctx context.Context, prov SnapshotProvider, p Path) ([]Entry, error) {
	snap, err := prov.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var nodes []*ncdu.Node
	if len(p) == 0 {
		nodes = []*ncdu.Node{snap.Root}
	} else if n, ok := snap.Find(p); ok {
		nodes = n.Children
	}

	agg := f.aggregator(snap)
	entries := make([]Entry, 0, len(nodes))
	for _, n := range nodes {
		entries = append(entries, Entry{Node: n, Aggr: agg.Aggregate(n)})
	}
	return entries, nil
}

func (f *SnapshotFetcher) aggregator(snap *ncdu.Snapshot) aggr.Aggregator {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aggs == nil {
		f.aggs = make(map[*ncdu.Snapshot]aggr.Aggregator, 2)
	}
	a, ok := f.aggs[snap]
	if !ok {
		a = aggr.New(f.Mode, snap)
		f.aggs[snap] = a
	}
	return a
}

// StaticProvider serves an already parsed snapshot.
type StaticProvider struct {
	Snap *ncdu.Snapshot
}

func (s StaticProvider) Snapshot(context.Context) (*ncdu.Snapshot, error) {
	return s.Snap, nil
}
