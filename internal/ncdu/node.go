// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ncdu

// Kind distinguishes files from directories. Anything that is not a directory
// in the export (regular files, symlinks, devices) is a file.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// Entry holds the raw per-entry fields of an export.
type Entry struct {
	Name      string `json:"name" yaml:"name"`
	Asize     int64  `json:"asize" yaml:"asize"`
	Dsize     int64  `json:"dsize" yaml:"dsize"`
	Dev       uint64 `json:"dev,omitempty" yaml:"dev,omitempty"`
	Ino       uint64 `json:"ino,omitempty" yaml:"ino,omitempty"`
	Notreg    bool   `json:"notreg,omitempty" yaml:"notreg,omitempty"`
	Hlnkc     bool   `json:"hlnkc,omitempty" yaml:"hlnkc,omitempty"`
	ReadError bool   `json:"read_error,omitempty" yaml:"read_error,omitempty"`
	Excluded  string `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// Node is one element of a parsed snapshot tree. A Node owns its Children;
// there is no link back to the parent.
type Node struct {
	ID       int
	Name     string
	Kind     Kind
	Depth    int
	Entry    Entry
	Children []*Node
}

// IsDir reports whether the node was a directory in the export.
func (n *Node) IsDir() bool {
	return n.Kind == KindDir
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
