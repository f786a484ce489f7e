// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"io"
	"strings"

	"github.com/tfctl/ncdiff/internal/source/local"
	"github.com/tfctl/ncdiff/internal/source/s3"
)

// StdinSpec reads a snapshot from standard input.
const StdinSpec = "-"

// Source produces the raw bytes of one ncdu export.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
	String() string
	Type() string
}

// Settings are shared by every source built for a run.
type Settings struct {
	Region   string
	Profile  string
	Endpoint string

	// Stdin backs the "-" spec.
	Stdin io.Reader

	// S3Client replaces the client built from the AWS config chain.
	S3Client s3.API
}

// IsS3 reports whether spec names an S3 object.
func IsS3(spec string) bool {
	return strings.HasPrefix(spec, "s3://")
}

// NewSource returns the Source for spec.
func NewSource(ctx context.Context, spec string, settings Settings) (Source, error) {
	switch {
	case spec == StdinSpec:
		src, err := local.NewSourceLocal(ctx, local.FromReader("stdin", settings.Stdin))
		if err != nil {
			return nil, err
		}
		return src, nil
	case IsS3(spec):
		src, err := newS3(ctx, spec, settings)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		src, err := local.NewSourceLocal(ctx, local.FromPath(spec))
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

func newS3(ctx context.Context, spec string, settings Settings) (*s3.SourceS3, error) {
	return s3.NewSourceS3(ctx,
		s3.FromURL(spec),
		s3.WithRegion(settings.Region),
		s3.WithProfile(settings.Profile),
		s3.WithEndpoint(settings.Endpoint),
		s3.WithClient(settings.S3Client),
	)
}
