// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/meta"
	"github.com/tfctl/ncdiff/internal/output"
)

// infoCommandAction compares the headers of two snapshots.
func infoCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	config.SetNamespace("info")

	snaps, err := resolveSnapshots(ctx, cmd)
	if err != nil {
		return err
	}
	a, b, err := snaps.loadBoth(ctx)
	if err != nil {
		return err
	}

	return output.InfoDiff(stdout(m), a, b, colorEnabled(cmd))
}

// infoCommandBuilder constructs the cli.Command for "info".
func infoCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "compare snapshot headers",
		UsageText: "ncdiff info OLD NEW [options]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  NewGlobalFlags("info", meta.Config.Source),
		Action: infoCommandAction,
	}
}
