// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package source turns snapshot specs into parsed ncdu snapshots. A spec is
// "-" for stdin, a local path, or an s3://bucket/key URL with an optional
// versionId query. Directories and unversioned S3 keys expand into several
// specs through ExpandSpecs.
//
// Loader memoizes parsed snapshots per spec for the lifetime of one run.
package source
