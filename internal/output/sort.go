// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"sort"
	"strings"

	"github.com/apex/log"
)

// SortRecords reorders every sibling level by spec, a comma separated list of
// fields (name, path, kind, status, delta, old, new). A leading "-" sorts a
// field descending, a leading "!" compares strings case sensitively. An empty
// spec keeps the tree's own order.
func SortRecords(records []Record, spec string) {
	if spec == "" {
		return
	}
	fields := strings.Split(spec, ",")

	sort.SliceStable(records, func(one, two int) bool {
		for _, field := range fields {
			ascending := true
			if strings.HasPrefix(field, "-") {
				field = strings.TrimPrefix(field, "-")
				ascending = false
			}

			caseSensitive := false
			if strings.HasPrefix(field, "!") {
				field = strings.TrimPrefix(field, "!")
				caseSensitive = true
			}

			oneValue, ok := records[one].field(field)
			if !ok {
				log.Debugf("SortRecords: unknown field %q", field)
				continue
			}
			twoValue, _ := records[two].field(field)

			oneInt, oneOk := oneValue.(int64)
			twoInt, twoOk := twoValue.(int64)
			if oneOk && twoOk {
				if oneInt != twoInt {
					if ascending {
						return oneInt < twoInt
					}
					return oneInt > twoInt
				}
				continue
			}

			oneStr, _ := oneValue.(string)
			twoStr, _ := twoValue.(string)
			if !caseSensitive {
				oneStr = strings.ToLower(oneStr)
				twoStr = strings.ToLower(twoStr)
			}

			if oneStr != twoStr {
				if ascending {
					return oneStr < twoStr
				}
				return oneStr > twoStr
			}
		}
		return false
	})

	for i := range records {
		SortRecords(records[i].Children, spec)
	}
}

func (r Record) field(name string) (interface{}, bool) {
	switch name {
	case "name":
		return r.Name, true
	case "path":
		return r.Path, true
	case "kind":
		return r.Kind, true
	case "status":
		return r.Status, true
	case "delta":
		return r.Delta, true
	case "old":
		return sizeOf(r.Old), true
	case "new":
		return sizeOf(r.New), true
	}
	return nil, false
}

func sizeOf(s *Sizes) int64 {
	if s == nil {
		return 0
	}
	return s.Size
}
