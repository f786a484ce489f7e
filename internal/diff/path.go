// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package diff

import (
	"fmt"
	"strings"
)

// Path names a node from the root down. Index 0 is the root's own name.
type Path []string

// String joins the names with "/", collapsing the separator after an
// absolute root name.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	root := strings.TrimSuffix(p[0], "/")
	if len(p) == 1 {
		return p[0]
	}
	return root + "/" + strings.Join(p[1:], "/")
}

// Child returns a copy of p extended by name.
func (p Path) Child(name string) Path {
	c := make(Path, len(p), len(p)+1)
	copy(c, p)
	return append(c, name)
}

// ParsePath is the inverse of Path.String for a tree with the given root
// names. The longest root name that prefixes s wins.
func ParsePath(rootNames []string, s string) (Path, error) {
	var best string
	for _, r := range rootNames {
		prefix := strings.TrimSuffix(r, "/")
		if (s == r || s == prefix || strings.HasPrefix(s, prefix+"/")) && len(r) > len(best) {
			best = r
		}
	}
	if best == "" {
		return nil, fmt.Errorf("%w: no root for %q", ErrNotFound, s)
	}

	p := Path{best}
	rest := strings.TrimPrefix(strings.TrimPrefix(s, strings.TrimSuffix(best, "/")), "/")
	for _, name := range strings.Split(rest, "/") {
		if name != "" {
			p = append(p, name)
		}
	}
	return p, nil
}

// lookup scans resolved levels for each name of p in turn.
func lookup(roots []*DiffNode, p Path) (*DiffNode, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	level := roots
	var cur *DiffNode
	for i, name := range p {
		if i > 0 {
			c := cur.children.Load()
			if c == nil {
				return nil, fmt.Errorf("%w: %q is not resolved", ErrNotFound, p[:i].String())
			}
			level = *c
		}
		cur = nil
		for _, cand := range level {
			if cand.Name() == name {
				cur = cand
				break
			}
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: no %q below %q", ErrNotFound, name, p[:i].String())
		}
	}
	return cur, nil
}
