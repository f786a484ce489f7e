// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/tfctl/ncdiff/internal/ncdu"
)

// InfoDiff writes both snapshots' headers followed by a diff of their info
// objects. If w is nil, os.Stdout is used.
func InfoDiff(w io.Writer, a, b *ncdu.Snapshot, color bool) error {
	if w == nil {
		w = os.Stdout
	}

	for i, snap := range []*ncdu.Snapshot{a, b} {
		fmt.Fprintf(w, "[%d] %s\n", i, Header(snap))
	}
	fmt.Fprintln(w)

	infoA, infoB := infoObject(a), infoObject(b)
	delta, err := gojsondiff.New().Compare(infoA, infoB)
	if err != nil {
		return fmt.Errorf("failed to compare info: %w", err)
	}
	log.Debugf("InfoDiff: modified=%t", delta.Modified())

	if !delta.Modified() {
		fmt.Fprintln(w, "The info headers are identical.")
		return nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(infoA, &jdoc); err != nil {
		return fmt.Errorf("failed to unmarshal info: %w", err)
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       color,
	}
	diffString, err := formatter.NewAsciiFormatter(jdoc, config).Format(delta)
	if err != nil {
		return err
	}

	fmt.Fprint(w, diffString)
	return nil
}

// Header summarizes a snapshot on one line.
func Header(snap *ncdu.Snapshot) string {
	when := "unknown time"
	if t := snap.Meta.Time(); !t.IsZero() {
		when = fmt.Sprintf("%s (%s)", t.UTC().Format("2006-01-02T15:04:05Z"), humanize.Time(t))
	}

	prog := snap.Meta.Progname
	if prog == "" {
		prog = "ncdu"
	}

	return fmt.Sprintf("%s: format %d.%d, %s %s, %s, %s items, %d warning(s)",
		snap.Source, snap.Major, snap.Minor, prog, snap.Meta.Progver, when,
		humanize.Comma(int64(snap.Len())), len(snap.Warnings))
}

// infoObject returns the raw info object, or an empty object when the export
// has none.
func infoObject(snap *ncdu.Snapshot) []byte {
	if len(snap.Info) == 0 || snap.Info[0] != '{' {
		return []byte("{}")
	}
	return snap.Info
}
