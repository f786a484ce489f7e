// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
)

// SourceLocal is a snapshot read from a file or, when Reader is set, from a
// stream.
type SourceLocal struct {
	Path   string
	Name   string
	Reader io.Reader
}

// Load returns the raw snapshot. A stream can only be loaded once.
func (src *SourceLocal) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if src.Reader != nil {
		data, err := io.ReadAll(src.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", src.Name, err)
		}
		log.Debugf("read %s: bytes=%d", src.Name, len(data))
		return data, nil
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	log.Debugf("read %s: bytes=%d", src.Path, len(data))
	return data, nil
}

func (src *SourceLocal) String() string {
	if src.Reader != nil {
		return src.Name
	}
	return src.Path
}

func (src *SourceLocal) Type() string {
	if src.Reader != nil {
		return "stdin"
	}
	return "local"
}

// FindSnapshots walks dir and returns every *.json file below it in lexical
// order.
func FindSnapshots(dir string) ([]string, error) {
	var found []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	log.Debugf("found %d snapshot(s) in %s", len(found), dir)
	return found, nil
}
