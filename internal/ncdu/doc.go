// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package ncdu parses ncdu JSON exports into an in-memory tree.
//
// An export is a four element array:
//
//	[majorver, minorver, {"progname": ..., "progver": ..., "timestamp": ...}, root]
//
// The root, and every entry below it, is either an object (a file) or an array
// (a directory). A directory array holds the directory's own object first,
// followed by its children. See https://dev.yorhel.nl/ncdu/jsonfmt.
//
// Parsing assigns every kept entry an ID in pre-order, starting at 1 for the
// root. IDs are only meaningful within one Snapshot.
package ncdu
