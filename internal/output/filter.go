// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"github.com/apex/log"

	"github.com/tfctl/ncdiff/internal/filters"
)

// Field implements filters.Candidate. Unlike sorting, a missing side has no
// size at all, so "old>0" never matches a created entry.
func (r Record) Field(key string) (any, bool) {
	switch key {
	case "old":
		if r.Old == nil {
			return nil, true
		}
	case "new":
		if r.New == nil {
			return nil, true
		}
	}
	return r.field(key)
}

// FilterRecords keeps the records matching spec (see package filters) plus
// their ancestors, so every match stays reachable in the tree.
func FilterRecords(records []Record, spec string) []Record {
	fs := filters.BuildFilters(spec)
	if len(fs) == 0 {
		return records
	}
	log.Debugf("FilterRecords: filters=%v", fs)
	return filterRecords(records, fs)
}

func filterRecords(records []Record, fs []filters.Filter) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		r.Children = filterRecords(r.Children, fs)
		if len(r.Children) > 0 || filters.Match(r, fs) {
			out = append(out, r)
		}
	}
	return out
}
