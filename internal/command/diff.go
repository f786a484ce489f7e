// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/diff"
	"github.com/tfctl/ncdiff/internal/meta"
	"github.com/tfctl/ncdiff/internal/output"
)

// diffCommandAction renders the difference between two snapshots. By default
// the tree is resolved lazily down to --depth; --eager diffs everything up
// front and keeps snapshot order.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.SetNamespace("diff")

	snaps, err := resolveSnapshots(ctx, cmd)
	if err != nil {
		return err
	}
	opts := outputOptions(cmd)
	depth := int(cmd.Int("depth"))

	var nodes []*diff.DiffNode
	if cmd.Bool("eager") {
		nodes, err = eagerNodes(ctx, snaps, cmd.String("path"))
	} else {
		nodes, err = lazyNodes(ctx, snaps, cmd.String("path"), depth)
	}
	if err != nil {
		return err
	}

	return output.Spit(stdout(m), nodes, opts)
}

func eagerNodes(ctx context.Context, snaps *snapshots, at string) ([]*diff.DiffNode, error) {
	a, b, err := snaps.loadBoth(ctx)
	if err != nil {
		return nil, err
	}

	tree, err := diff.CalcDiff(a, b, snaps.mode)
	if err != nil {
		return nil, err
	}
	log.Debugf("eager diff: nodes=%d", tree.Len())

	if at == "" {
		return tree.Roots, nil
	}
	p, err := diff.ParsePath(rootNames(tree.Roots), at)
	if err != nil {
		return nil, reportNotFound(err, diff.Path{at})
	}
	n, err := tree.Lookup(p)
	if err != nil {
		return nil, reportNotFound(err, p)
	}
	return []*diff.DiffNode{n}, nil
}

func lazyNodes(ctx context.Context, snaps *snapshots, at string, depth int) ([]*diff.DiffNode, error) {
	forest, err := snaps.forest(ctx)
	if err != nil {
		return nil, err
	}

	if at == "" {
		if err := forest.ExpandTo(ctx, depth); err != nil {
			return nil, err
		}
		log.Debugf("lazy diff: depth=%d nodes=%d", depth, forest.Len())
		return forest.Roots(), nil
	}

	p, err := diff.ParsePath(rootNames(forest.Roots()), at)
	if err != nil {
		return nil, reportNotFound(err, diff.Path{at})
	}
	n, err := focus(ctx, forest, p)
	if err != nil {
		return nil, reportNotFound(err, p)
	}
	if err := expandBelow(ctx, n, depth); err != nil {
		return nil, err
	}
	return []*diff.DiffNode{n}, nil
}

// focus resolves every level above p and returns the node at p.
func focus(ctx context.Context, forest *diff.Forest, p diff.Path) (*diff.DiffNode, error) {
	for i := 1; i < len(p); i++ {
		n, err := forest.Lookup(p[:i])
		if err != nil {
			return nil, err
		}
		if !n.IsExpandable() {
			return nil, fmt.Errorf("%w: %s is not a directory", diff.ErrNotFound, p[:i])
		}
		if _, err := forest.Resolve(ctx, n); err != nil {
			return nil, err
		}
	}
	return forest.Lookup(p)
}

// expandBelow resolves depth levels under n.
func expandBelow(ctx context.Context, n *diff.DiffNode, depth int) error {
	if depth <= 0 || !n.IsExpandable() {
		return nil
	}
	kids, err := n.ResolveChildren(ctx)
	if err != nil {
		return err
	}
	for _, k := range kids {
		if err := expandBelow(ctx, k, depth-1); err != nil {
			return err
		}
	}
	return nil
}

func rootNames(roots []*diff.DiffNode) []string {
	names := make([]string, 0, len(roots))
	for _, r := range roots {
		names = append(names, r.Name())
	}
	return names
}

// diffCommandBuilder constructs the cli.Command for "diff".
func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "show what changed between two snapshots",
		UsageText: "ncdiff diff OLD NEW [options]\nncdiff diff DIR [options]\nncdiff diff s3://bucket/key [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(append([]cli.Flag{
			&cli.IntFlag{
				Name:    "depth",
				Aliases: []string{"d"},
				Usage:   "levels to expand below the roots or --path",
				Value:   1,
				Validator: func(value int) error {
					return FlagValidators(value, DepthValidator)
				},
			},
			&cli.BoolFlag{
				Name:  "eager",
				Usage: "diff the whole tree up front, in snapshot order",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "only show the subtree at this path",
			},
		}, NewRenderFlags("diff", meta.Config.Source)...), NewGlobalFlags("diff", meta.Config.Source)...),
		Action: diffCommandAction,
	}
}
