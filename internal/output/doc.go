// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output renders diff trees as a table, JSON or YAML, and compares
// snapshot headers. Only resolved levels are rendered; callers expand the
// tree first.
package output
