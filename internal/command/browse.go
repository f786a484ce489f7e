// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/ncdiff/internal/browse"
	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/meta"
	"github.com/tfctl/ncdiff/internal/output"
)

// browseCommandAction opens the interactive tree over a lazy diff.
func browseCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.SetNamespace("browse")

	snaps, err := resolveSnapshots(ctx, cmd)
	if err != nil {
		return err
	}
	forest, err := snaps.forest(ctx)
	if err != nil {
		return err
	}

	opts := output.Options{
		Apparent: cmd.Bool("apparent"),
		Changed:  cmd.Bool("changed"),
	}
	return browse.Run(ctx, forest, snaps.title(), opts)
}

// browseCommandBuilder constructs the cli.Command for "browse".
func browseCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "explore the difference between two snapshots interactively",
		UsageText: "ncdiff browse OLD NEW [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "apparent",
				Usage: "show apparent sizes instead of disk usage",
			},
			&cli.BoolFlag{
				Name:  "changed",
				Usage: "hide entries that did not change",
			},
		}, NewGlobalFlags("browse", meta.Config.Source)...),
		Action: browseCommandAction,
	}
}
