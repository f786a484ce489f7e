// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/tfctl/ncdiff/internal/source/local"
)

// ExpandSpecs turns command line arguments into snapshot specs. A directory
// becomes the *.json files below it. A lone S3 argument without a version
// becomes its two newest versions, older first. Everything else passes
// through.
func ExpandSpecs(ctx context.Context, args []string, settings Settings) ([]string, error) {
	if len(args) == 1 && IsS3(args[0]) {
		return expandS3(ctx, args[0], settings)
	}

	var specs []string
	for _, arg := range args {
		if arg == StdinSpec || IsS3(arg) {
			specs = append(specs, arg)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			specs = append(specs, arg)
			continue
		}

		found, err := local.FindSnapshots(arg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, found...)
	}

	log.Debugf("ExpandSpecs: %v => %v", args, specs)
	return specs, nil
}

func expandS3(ctx context.Context, spec string, settings Settings) ([]string, error) {
	src, err := newS3(ctx, spec, settings)
	if err != nil {
		return nil, err
	}
	if src.VersionID != "" {
		return []string{spec}, nil
	}

	versions, err := src.Versions(ctx)
	if err != nil {
		return nil, err
	}
	if len(versions) < 2 {
		return nil, fmt.Errorf("%s has %d version(s), need at least 2", spec, len(versions))
	}

	return []string{
		src.WithVersion(versions[1].ID).String(),
		src.WithVersion(versions[0].ID).String(),
	}, nil
}

// Pair picks the two specs to compare: the first and the last.
func Pair(specs []string) (string, string, error) {
	if len(specs) < 2 {
		return "", "", fmt.Errorf("need two snapshots to compare, found %d", len(specs))
	}
	if len(specs) > 2 {
		log.Infof("comparing %s with %s, skipping %d snapshot(s) in between", specs[0], specs[len(specs)-1], len(specs)-2)
	}
	return specs[0], specs[len(specs)-1], nil
}
