// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package aggr computes per-node rollups (counts and sizes) over snapshot
// subtrees.
//
// Two Aggregators produce the same numbers from different sources:
//   - Stored reads a table built in a single bottom-up pass when a snapshot is
//     first aggregated. This is the preferred mode.
//   - Computed recomputes a subtree on demand and memoizes the result.
//
// One diff must use a single Mode for both of its sides.
package aggr
