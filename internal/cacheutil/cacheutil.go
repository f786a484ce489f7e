// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tfctl/ncdiff/internal/log"
)

const (
	// DirEnvVar overrides the cache location.
	DirEnvVar = "NCDIFF_CACHE_DIR"
	// EnabledEnvVar turns the cache off when set to "0" or "false".
	EnabledEnvVar = "NCDIFF_CACHE"
)

// Key addresses one immutable remote object. Only objects that can never
// change under the same key, such as a versioned S3 object, belong in the
// cache.
type Key struct {
	Scheme  string
	Bucket  string
	Object  string
	Version string
}

func (k Key) String() string {
	return fmt.Sprintf("%s://%s/%s?versionId=%s", k.Scheme, k.Bucket, k.Object, k.Version)
}

// subdirs lays entries out by scheme and bucket. Object keys are hashed
// together with the version so that odd characters never reach the
// filesystem.
func (k Key) subdirs() []string {
	return []string{k.Scheme, k.Bucket}
}

// Entry is a cached object on disk.
type Entry struct {
	Key        Key
	EncodedKey string
	Path       string
	Data       []byte
}

// Dir resolves the base cache directory.
// Precedence:
//  1. NCDIFF_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/ncdiff
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv(DirEnvVar); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "ncdiff"), true
	}
	return "", false
}

// Enabled returns true unless NCDIFF_CACHE explicitly disables it.
func Enabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(EnabledEnvVar)))
	return v != "0" && v != "false"
}

// EntryPath returns where the entry for k lives and whether it exists.
func EntryPath(k Key) (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	p := filepath.Join(append(append([]string{base}, k.subdirs()...), encodeKey(k))...)
	if _, err := os.Stat(p); err == nil {
		return p, true
	}
	return p, false
}

// Read returns the cached entry for k.
func Read(k Key) (*Entry, bool) {
	if !Enabled() {
		return nil, false
	}
	p, ok := EntryPath(k)
	if !ok {
		return nil, false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		log.Debugf("cache read failed: key=%s err=%v", k, err)
		return nil, false
	}
	log.Debugf("cache hit: key=%s bytes=%d", k, len(b))
	return &Entry{Key: k, EncodedKey: encodeKey(k), Path: p, Data: b}, true
}

// Write stores data for k. The entry appears atomically so that concurrent
// runs never read a partial snapshot.
func Write(k Key, data []byte) error {
	if !Enabled() {
		return nil
	}
	base, ok := Dir()
	if !ok {
		return nil
	}

	dir := filepath.Join(append([]string{base}, k.subdirs()...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil { //nolint:mnd
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, encodeKey(k))); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}

	log.Debugf("cache write: key=%s bytes=%d", k, len(data))
	return nil
}

// Purge removes entries older than hours. A non-positive value disables
// purging.
func Purge(hours int) error {
	if hours <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}

	base, ok := Dir()
	if !ok {
		return nil
	}

	maxAge := time.Duration(hours) * time.Hour
	err := filepath.Walk(base, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return nil
			}
			return walkErr
		}
		// A concurrent purge may have removed the file already.
		if info == nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err == nil {
				log.Debugf("removed cache file %s", path)
			} else {
				log.WithError(err).Warnf("failed to remove cache file %s", path)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

func encodeKey(k Key) string {
	h := sha256.Sum256([]byte(k.Object + "\x00" + k.Version))
	return hex.EncodeToString(h[:])
}
