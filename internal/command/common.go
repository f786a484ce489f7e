// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/tfctl/ncdiff/internal/aggr"
	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/diff"
	"github.com/tfctl/ncdiff/internal/meta"
	"github.com/tfctl/ncdiff/internal/ncdu"
	"github.com/tfctl/ncdiff/internal/output"
	"github.com/tfctl/ncdiff/internal/source"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// stdout is where results go, os.Stdout unless meta says otherwise.
func stdout(m meta.Meta) io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// snapshots carries what every command needs to reach the two snapshots.
type snapshots struct {
	loader       *source.Loader
	older, newer string
	mode         aggr.Mode
}

// NewSettings gathers the source settings from flags and meta.
func NewSettings(cmd *cli.Command) source.Settings {
	m := GetMeta(cmd)
	stdin := m.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	return source.Settings{
		Region:   cmd.String("region"),
		Profile:  cmd.String("profile"),
		Endpoint: cmd.String("endpoint"),
		Stdin:    stdin,
	}
}

// NewLoader returns a loader honoring the configured ncdu version and the
// configured plus --ignore paths.
func NewLoader(cmd *cli.Command, settings source.Settings) *source.Loader {
	progver, _ := config.GetString("progver")
	ignore, _ := config.GetStringSlice("ignore")
	ignore = append(ignore, cmd.StringSlice("ignore")...)
	log.Debugf("NewLoader: progver=%q ignore=%v", progver, ignore)

	return source.NewLoader(
		source.WithSettings(settings),
		source.WithParseOptions(
			ncdu.WithProgver(progver),
			ncdu.WithIgnorePaths(ignore...),
		),
	)
}

// resolveSnapshots expands the positional arguments into the pair of specs
// to compare.
func resolveSnapshots(ctx context.Context, cmd *cli.Command) (*snapshots, error) {
	mode, err := aggr.ParseMode(cmd.String("aggr"))
	if err != nil {
		return nil, err
	}

	settings := NewSettings(cmd)
	specs, err := source.ExpandSpecs(ctx, cmd.Args().Slice(), settings)
	if err != nil {
		return nil, err
	}
	older, newer, err := source.Pair(specs)
	if err != nil {
		return nil, err
	}

	return &snapshots{
		loader: NewLoader(cmd, settings),
		older:  older,
		newer:  newer,
		mode:   mode,
	}, nil
}

// loadBoth loads both snapshots concurrently.
func (s *snapshots) loadBoth(ctx context.Context) (*ncdu.Snapshot, *ncdu.Snapshot, error) {
	var a, b *ncdu.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a, err = s.loader.Load(gctx, s.older)
		return err
	})
	g.Go(func() (err error) {
		b, err = s.loader.Load(gctx, s.newer)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// forest starts a lazy diff over the two snapshots.
func (s *snapshots) forest(ctx context.Context) (*diff.Forest, error) {
	fetcher := diff.NewSnapshotFetcher(s.loader.Handle(s.older), s.loader.Handle(s.newer), s.mode)
	return diff.NewForest(ctx, fetcher)
}

func (s *snapshots) title() string {
	return fmt.Sprintf("%s → %s", s.older, s.newer)
}

// outputOptions maps the render flags.
func outputOptions(cmd *cli.Command) output.Options {
	return output.Options{
		Format:   cmd.String("output"),
		Apparent: cmd.Bool("apparent"),
		Changed:  cmd.Bool("changed"),
		Color:    colorEnabled(cmd),
		Titles:   cmd.Bool("titles"),
		Padding:  int(cmd.Int("padding")),
		Sort:     cmd.String("sort"),
		Filter:   cmd.String("filter"),
	}
}

// colorEnabled honors an explicit --color. Otherwise color is on when stdout
// is a terminal and NO_COLOR is unset.
func colorEnabled(cmd *cli.Command) bool {
	if cmd.IsSet("color") {
		return cmd.Bool("color")
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f, ok := stdout(GetMeta(cmd)).(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// reportNotFound logs a failed path lookup at error level before it is
// returned to the caller.
func reportNotFound(err error, p diff.Path) error {
	if errors.Is(err, diff.ErrNotFound) {
		log.Errorf("no such path in either snapshot: %s", p)
	}
	return err
}
