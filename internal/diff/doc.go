// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package diff pairs the entries of two snapshots by sibling name and builds a
// diff tree annotating each entry as created, removed or present on both
// sides.
//
// There are two ways to get a tree:
//   - CalcDiff matches both snapshots completely and returns a DiffTree whose
//     children keep the first snapshot's order followed by entries that only
//     exist in the second.
//   - A Forest starts with the roots only and resolves one level at a time
//     through a Fetcher. Resolved levels are sorted by disk size delta. This is
//     what interactive consumers use.
//
// Nodes are addressed externally by Path, the names from the root down, since
// snapshot IDs differ between the two sides.
package diff
