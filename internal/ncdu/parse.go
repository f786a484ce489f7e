// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ncdu

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// DefaultProgver is the ncdu version exports are expected to come from.
const DefaultProgver = "1.14.2"

// ErrDuplicateID is returned when two nodes of one snapshot share an ID.
var ErrDuplicateID = errors.New("duplicate node id")

// ErrMalformed is returned when an export cannot be interpreted at all.
var ErrMalformed = errors.New("malformed ncdu export")

// SchemaWarning describes an export that deviates from the expected format but
// can still be parsed.
type SchemaWarning struct {
	Source string
	Msg    string
}

func (w SchemaWarning) Error() string {
	if w.Source == "" {
		return w.Msg
	}
	return fmt.Sprintf("%s: %s", w.Source, w.Msg)
}

// options holds parse-time overrides.
type options struct {
	source  string
	progver string
	ignore  map[string]struct{}
}

// Option customizes Parse.
type Option func(*options)

// WithSource names the export in warnings and on the resulting Snapshot.
func WithSource(source string) Option {
	return func(o *options) { o.source = source }
}

// WithProgver overrides the expected ncdu version. An empty value keeps the
// default.
func WithProgver(progver string) Option {
	return func(o *options) {
		if progver != "" {
			o.progver = progver
		}
	}
}

// WithIgnorePaths drops entries, and everything below them, whose full path
// (root name joined with the names below it) matches one of paths.
func WithIgnorePaths(paths ...string) Option {
	return func(o *options) {
		for _, p := range paths {
			if p != "" {
				o.ignore[path.Clean(p)] = struct{}{}
			}
		}
	}
}

// ParseFile reads and parses the export at fpath.
func ParseFile(fpath string, opts ...Option) (*Snapshot, error) {
	buf, err := os.ReadFile(fpath)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return Parse(buf, append([]Option{WithSource(fpath)}, opts...)...)
}

// Parse converts a raw export into a Snapshot. Format deviations that do not
// prevent parsing are logged and recorded on Snapshot.Warnings.
func Parse(buf []byte, opts ...Option) (*Snapshot, error) {
	o := options{progver: DefaultProgver, ignore: map[string]struct{}{}}
	for _, opt := range opts {
		opt(&o)
	}

	if !gjson.ValidBytes(buf) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", ErrMalformed, o.source)
	}

	doc := gjson.ParseBytes(buf)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: %s: expected array at top level", ErrMalformed, o.source)
	}
	parts := doc.Array()
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %s: expected 4-element array at top level, got %d element(s)",
			ErrMalformed, o.source, len(parts))
	}

	snap := &Snapshot{
		Source: o.source,
		Major:  parts[0].Int(),
		Minor:  parts[1].Int(),
		Info:   []byte(parts[2].Raw),
	}

	warn := func(format string, args ...interface{}) {
		w := SchemaWarning{Source: o.source, Msg: fmt.Sprintf(format, args...)}
		log.Warn(w.Error())
		snap.Warnings = append(snap.Warnings, w)
	}

	if parts[0].Type != gjson.Number || parts[1].Type != gjson.Number {
		warn("expected numeric format version, got %s.%s", parts[0].Raw, parts[1].Raw)
	} else if snap.Major != 1 {
		warn("expected format version 1.x, got %d.%d", snap.Major, snap.Minor)
	}

	info := parts[2]
	if !info.IsObject() {
		warn("expected 3rd element to be an object, got %s", info.Type)
	} else {
		snap.Meta = Meta{
			Progname:  info.Get("progname").String(),
			Progver:   info.Get("progver").String(),
			Timestamp: info.Get("timestamp").Int(),
		}
		if !info.Get("progver").Exists() {
			warn("expected 3rd element to have a 'progver' property")
		} else if snap.Meta.Progver != o.progver {
			warn("expected ncdu v%s, got v%s", o.progver, snap.Meta.Progver)
		}
	}

	p := parser{opts: &o, warn: warn}
	root, err := p.group(parts[3], 0, 0, "")
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("%w: %s: root entry is ignored", ErrMalformed, o.source)
	}
	snap.Root = root

	if err := snap.index(); err != nil {
		return nil, err
	}

	log.Debugf("parsed %s: nodes=%d warnings=%d", o.source, len(snap.byID), len(snap.Warnings))
	return snap, nil
}

// parser carries the pre-order ID counter across the recursion.
type parser struct {
	opts   *options
	warn   func(format string, args ...interface{})
	lastID int
}

func (p *parser) isIgnored(fpath string) bool {
	_, ok := p.opts.ignore[fpath]
	return ok
}

// group parses one entry (file object or directory array). A nil node with a
// nil error means the entry was ignored.
func (p *parser) group(raw gjson.Result, depth int, curDev uint64, curPath string) (*Node, error) {
	if raw.IsArray() {
		items := raw.Array()
		if len(items) == 0 || !items[0].IsObject() {
			return nil, fmt.Errorf("%w: %s: expected object as directory head at %q",
				ErrMalformed, p.opts.source, curPath)
		}

		entry, err := p.entry(items[0], curDev)
		if err != nil {
			return nil, err
		}
		dirPath := joinPath(curPath, entry.Name)
		if p.isIgnored(dirPath) {
			log.Debugf("ignoring %s", dirPath)
			return nil, nil
		}

		p.lastID++
		dir := &Node{
			ID:       p.lastID,
			Name:     entry.Name,
			Kind:     KindDir,
			Depth:    depth,
			Entry:    entry,
			Children: make([]*Node, 0, len(items)-1),
		}
		for _, item := range items[1:] {
			child, err := p.group(item, depth+1, entry.Dev, dirPath)
			if err != nil {
				return nil, err
			}
			if child != nil {
				dir.Children = append(dir.Children, child)
			}
		}
		p.checkSiblings(dir, dirPath)
		return dir, nil
	}

	if !raw.IsObject() {
		return nil, fmt.Errorf("%w: %s: expected object or array below %q, got %s",
			ErrMalformed, p.opts.source, curPath, raw.Type)
	}

	entry, err := p.entry(raw, curDev)
	if err != nil {
		return nil, err
	}
	if p.isIgnored(joinPath(curPath, entry.Name)) {
		log.Debugf("ignoring %s", joinPath(curPath, entry.Name))
		return nil, nil
	}

	p.lastID++
	return &Node{
		ID:    p.lastID,
		Name:  entry.Name,
		Kind:  KindFile,
		Depth: depth,
		Entry: entry,
	}, nil
}

// checkSiblings warns about names that occur more than once in dir. Lookups by
// path only ever reach the first of them.
func (p *parser) checkSiblings(dir *Node, dirPath string) {
	seen := make(map[string]bool, len(dir.Children))
	for _, c := range dir.Children {
		if seen[c.Name] {
			p.warn("duplicate name %q in %q; only the first is reachable by path", c.Name, dirPath)
			continue
		}
		seen[c.Name] = true
	}
}

// entry decodes a single info object. A missing dev is inherited from the
// enclosing directory.
func (p *parser) entry(raw gjson.Result, curDev uint64) (Entry, error) {
	name := raw.Get("name")
	if !name.Exists() {
		return Entry{}, fmt.Errorf("%w: %s: entry without name: %s", ErrMalformed, p.opts.source, raw.Raw)
	}

	e := Entry{
		Name:      name.String(),
		Asize:     raw.Get("asize").Int(),
		Dsize:     raw.Get("dsize").Int(),
		Dev:       raw.Get("dev").Uint(),
		Ino:       raw.Get("ino").Uint(),
		Notreg:    raw.Get("notreg").Bool(),
		Hlnkc:     raw.Get("hlnkc").Bool(),
		ReadError: raw.Get("read_error").Bool(),
		Excluded:  raw.Get("excluded").String(),
	}
	if e.Dev == 0 {
		e.Dev = curDev
	}
	return e, nil
}

// joinPath appends name to the slash separated parent path. Root names are
// usually absolute already.
func joinPath(parent, name string) string {
	if parent == "" {
		return path.Clean(name)
	}
	return path.Join(parent, name)
}
