// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects diff records with --filter expressions.
//
// Expressions have the form key<op>target and are joined with a comma, or
// with the value of NCDIFF_FILTER_DELIM when a target must contain commas.
//
// Operators (each may be negated with a leading '!'):
//
//   - = : equal
//   - ~ : equal, ignoring case
//   - ^ : prefix
//   - @ : contains
//   - / : regular expression
//   - < : less than
//   - > : greater than
//
// String keys (name, path, kind, status) compare as strings. Size keys
// (delta, old, new) compare numerically and accept units, so "delta>1MiB"
// and "delta<-4k" both work.
//
// Examples:
//
//   - "status=created" : only entries that appeared
//   - "status!=unchanged,delta>100MB" : growth above 100 MB
//   - "name/\.log$" : log files
//
// The caller decides what a Candidate is; see output.FilterRecords.
package filters
