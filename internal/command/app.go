// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the ncdiff
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	if _, err := config.Load(); err != nil {
		log.Debugf("config not loaded: %v", err)
	}
	config.SetNamespace(ns)

	return NewApp(meta.Meta{
		Args:        args,
		Config:      config.Config,
		Context:     ctx,
		StartingDir: sd,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
	}), nil
}

// NewApp builds the command tree around meta.
func NewApp(meta meta.Meta) *cli.Command {
	app := &cli.Command{
		Name:   "ncdiff",
		Usage:  "compare ncdu snapshots",
		Writer: meta.Stdout,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "ncdiff version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		browseCommandBuilder(meta),
		diffCommandBuilder(meta),
		infoCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
