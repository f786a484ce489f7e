// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tfctl/ncdiff/internal/log"
	"github.com/tfctl/ncdiff/internal/ncdu"
)

// Factory builds the Source for a spec.
type Factory func(ctx context.Context, spec string, settings Settings) (Source, error)

// Loader loads and parses snapshots, once per spec. Concurrent requests for
// the same spec share one load. Failed loads are retried on the next request.
type Loader struct {
	settings  Settings
	parseOpts []ncdu.Option
	factory   Factory

	flight singleflight.Group
	mu     sync.Mutex
	done   map[string]*ncdu.Snapshot
}

type LoaderOption = func(l *Loader)

// NewLoader returns a Loader configured by options.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{
		factory: NewSource,
		done:    map[string]*ncdu.Snapshot{},
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func WithSettings(settings Settings) LoaderOption {
	return func(l *Loader) {
		l.settings = settings
	}
}

// WithParseOptions passes opts to every parse.
func WithParseOptions(opts ...ncdu.Option) LoaderOption {
	return func(l *Loader) {
		l.parseOpts = append(l.parseOpts, opts...)
	}
}

func WithSourceFactory(f Factory) LoaderOption {
	return func(l *Loader) {
		if f != nil {
			l.factory = f
		}
	}
}

// Load returns the parsed snapshot for spec.
func (l *Loader) Load(ctx context.Context, spec string) (*ncdu.Snapshot, error) {
	if snap, ok := l.cached(spec); ok {
		return snap, nil
	}

	v, err, shared := l.flight.Do(spec, func() (any, error) {
		if snap, ok := l.cached(spec); ok {
			return snap, nil
		}

		src, err := l.factory(ctx, spec, l.settings)
		if err != nil {
			return nil, err
		}

		data, err := src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", src, err)
		}

		opts := append([]ncdu.Option{ncdu.WithSource(src.String())}, l.parseOpts...)
		snap, err := ncdu.Parse(data, opts...)
		if err != nil {
			return nil, err
		}
		log.Debugf("loaded %s (%s): nodes=%d warnings=%d", src, src.Type(), snap.Len(), len(snap.Warnings))

		l.mu.Lock()
		l.done[spec] = snap
		l.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Tracef("shared load of %s", spec)
	}
	return v.(*ncdu.Snapshot), nil
}

func (l *Loader) cached(spec string) (*ncdu.Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap, ok := l.done[spec]
	return snap, ok
}

// Handle is a lazy reference to one spec's snapshot.
type Handle struct {
	loader *Loader
	Spec   string
}

// Handle returns a lazy reference to spec. Nothing is loaded until Snapshot
// is called.
func (l *Loader) Handle(spec string) Handle {
	return Handle{loader: l, Spec: spec}
}

func (h Handle) Snapshot(ctx context.Context) (*ncdu.Snapshot, error) {
	return h.loader.Load(ctx, h.Spec)
}
