// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package s3 reads snapshots stored as S3 objects. Versioned reads are cached
// on disk through cacheutil since a version never changes.
package s3
