// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aws builds AWS SDK v2 configuration and S3 clients for snapshot
// sources stored in S3 or an S3 compatible service.
package aws
