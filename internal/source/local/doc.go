// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package local reads snapshots from the filesystem or from a stream such as
// stdin.
package local
