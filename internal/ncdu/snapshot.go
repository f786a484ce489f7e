// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ncdu

import (
	"fmt"
	"time"
)

// Meta is the info object of an export.
type Meta struct {
	Progname  string `json:"progname" yaml:"progname"`
	Progver   string `json:"progver" yaml:"progver"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// Time returns the export timestamp, or the zero time when absent.
func (m Meta) Time() time.Time {
	if m.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(m.Timestamp, 0)
}

// Snapshot is one parsed export. It is immutable once Parse returns.
type Snapshot struct {
	Source   string
	Major    int64
	Minor    int64
	Meta     Meta
	Info     []byte // raw info object, as found in the export
	Root     *Node
	Warnings []SchemaWarning

	byID map[int]*Node
}

// Len returns the number of nodes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.byID)
}

// Node returns the node with the given pre-order ID.
func (s *Snapshot) Node(id int) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Find walks the snapshot by name. names[0] must be the root's own name.
func (s *Snapshot) Find(names []string) (*Node, bool) {
	if s.Root == nil || len(names) == 0 || names[0] != s.Root.Name {
		return nil, false
	}
	cur := s.Root
	for _, name := range names[1:] {
		if cur = cur.Child(name); cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// Walk visits every node in pre-order until fn returns false.
func (s *Snapshot) Walk(fn func(*Node) bool) {
	var iter func(*Node) bool
	iter = func(n *Node) bool {
		if !fn(n) {
			return false
		}
		for _, c := range n.Children {
			if !iter(c) {
				return false
			}
		}
		return true
	}
	if s.Root != nil {
		iter(s.Root)
	}
}

// index builds the ID lookup table and rejects colliding IDs.
func (s *Snapshot) index() error {
	s.byID = make(map[int]*Node)
	var err error
	s.Walk(func(n *Node) bool {
		if _, exists := s.byID[n.ID]; exists {
			err = fmt.Errorf("%w: %s: id %d already exists", ErrDuplicateID, s.Source, n.ID)
			return false
		}
		s.byID[n.ID] = n
		return true
	})
	return err
}
