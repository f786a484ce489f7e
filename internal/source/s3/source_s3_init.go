// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"
)

type SourceS3Option = func(ctx context.Context, src *SourceS3) error

// NewSourceS3 returns a SourceS3 configured by options. Bucket and key are
// required, usually through FromURL.
func NewSourceS3(ctx context.Context, options ...SourceS3Option) (*SourceS3, error) {
	src := &SourceS3{}

	for _, opt := range options {
		if err := opt(ctx, src); err != nil {
			return nil, err
		}
	}

	if src.Bucket == "" || src.Key == "" {
		return nil, errors.New("s3 source needs a bucket and a key")
	}

	log.Debugf("NewSourceS3: %s region=%s endpoint=%s", src, src.Region, src.Endpoint)
	return src, nil
}

// FromURL takes bucket, key and version from an s3://bucket/key[?versionId=v]
// URL.
func FromURL(raw string) SourceS3Option {
	return func(ctx context.Context, src *SourceS3) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid s3 url %q: %w", raw, err)
		}
		if u.Scheme != "s3" {
			return fmt.Errorf("invalid s3 url %q: scheme must be s3", raw)
		}

		src.Bucket = u.Host
		src.Key = strings.TrimPrefix(u.Path, "/")
		src.VersionID = u.Query().Get("versionId")
		return nil
	}
}

func WithRegion(region string) SourceS3Option {
	return func(ctx context.Context, src *SourceS3) error {
		if region != "" {
			src.Region = region
		}
		return nil
	}
}

func WithProfile(profile string) SourceS3Option {
	return func(ctx context.Context, src *SourceS3) error {
		if profile != "" {
			src.Profile = profile
		}
		return nil
	}
}

// WithEndpoint targets an S3 compatible service instead of AWS.
func WithEndpoint(endpoint string) SourceS3Option {
	return func(ctx context.Context, src *SourceS3) error {
		if endpoint != "" {
			src.Endpoint = endpoint
		}
		return nil
	}
}

// WithClient uses api instead of building a client from the AWS config
// chain.
func WithClient(api API) SourceS3Option {
	return func(ctx context.Context, src *SourceS3) error {
		if api != nil {
			src.client = api
		}
		return nil
	}
}
