// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"github.com/tfctl/ncdiff/internal/cacheutil"
	"github.com/tfctl/ncdiff/internal/config"
)

func cacheKey(src *SourceS3) cacheutil.Key {
	return cacheutil.Key{Scheme: "s3", Bucket: src.Bucket, Object: src.Key, Version: src.VersionID}
}

// CacheReader reads the cached body of a versioned object. Unversioned reads
// always miss since the current version can change.
func CacheReader(src *SourceS3) (*cacheutil.Entry, bool) {
	if src.VersionID == "" {
		return nil, false
	}
	return cacheutil.Read(cacheKey(src))
}

// CacheWriter stores the body of a versioned object. Unversioned bodies are
// not stored.
func CacheWriter(src *SourceS3, data []byte) error {
	if src.VersionID == "" {
		return nil
	}
	return cacheutil.Write(cacheKey(src), data)
}

// PurgeCache drops entries older than the configured cache.clean hours.
func PurgeCache() error {
	cleanHours, _ := config.GetInt("cache.clean")
	return cacheutil.Purge(cleanHours)
}
