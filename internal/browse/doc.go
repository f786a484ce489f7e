// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package browse is an interactive viewer for a lazily resolved diff forest.
// A directory's children are fetched the first time it is expanded, off the
// UI goroutine.
package browse
