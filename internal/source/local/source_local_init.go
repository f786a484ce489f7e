// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type SourceLocalOption = func(ctx context.Context, src *SourceLocal) error

// NewSourceLocal returns a SourceLocal configured by options.
func NewSourceLocal(ctx context.Context, options ...SourceLocalOption) (*SourceLocal, error) {
	src := &SourceLocal{}

	for _, opt := range options {
		if err := opt(ctx, src); err != nil {
			return nil, err
		}
	}

	if src.Path == "" && src.Reader == nil {
		return nil, errors.New("local source needs a path or a reader")
	}
	return src, nil
}

// FromPath reads the snapshot at path, made absolute against the working
// directory. The file must exist.
func FromPath(path string) SourceLocalOption {
	return func(ctx context.Context, src *SourceLocal) error {
		if filepath.IsAbs(path) {
			src.Path = path
		} else {
			cwd, _ := os.Getwd()
			src.Path = filepath.Join(cwd, path)
		}

		info, err := os.Stat(src.Path)
		if err != nil {
			return fmt.Errorf("failed to stat snapshot: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("snapshot %s is a directory", src.Path)
		}
		return nil
	}
}

// FromReader reads the snapshot from r, reporting it as name.
func FromReader(name string, r io.Reader) SourceLocalOption {
	return func(ctx context.Context, src *SourceLocal) error {
		if r == nil {
			return fmt.Errorf("no reader for %s", name)
		}
		src.Name = name
		src.Reader = r
		return nil
	}
}
