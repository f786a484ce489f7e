// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/ncdiff/internal/config"
	"github.com/tfctl/ncdiff/internal/diff"
)

// Spit renders the resolved part of the tree below nodes to w in the format
// named by opts. If w is nil, os.Stdout is used.
func Spit(w io.Writer, nodes []*diff.DiffNode, opts Options) error {
	if w == nil {
		w = os.Stdout
	}

	records := FilterRecords(NewRecords(nodes, opts), opts.Filter)
	SortRecords(records, opts.Sort)

	switch opts.Format {
	case "json":
		jsonOutput, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(records)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(yamlOutput)
		return err
	default:
		TableWriter(records, opts, w)
		return nil
	}
}

// TableWriter renders records one per line, indented by depth, honoring
// color, titles and padding options. If w is nil, os.Stdout is used.
func TableWriter(records []Record, opts Options, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	flat := flatten(records)
	if len(flat) == 0 {
		log.Debug("TableWriter: nothing to render")
		return
	}

	var (
		headerStyle = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle   = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		numStyle    = cellStyle.Align(lipgloss.Right)
		statusStyle = map[diff.Status]lipgloss.Style{}
	)

	if opts.Color {
		colors := getColors("colors")
		headerStyle = headerStyle.Bold(true).Foreground(colors.title)
		statusStyle[diff.Created] = lipgloss.NewStyle().Foreground(colors.created)
		statusStyle[diff.Removed] = lipgloss.NewStyle().Foreground(colors.removed)
		statusStyle[diff.Modified] = lipgloss.NewStyle().Foreground(colors.modified)
	}

	base := flat[0].depth
	for _, r := range flat {
		base = min(base, r.depth)
	}

	rows := make([][]string, 0, len(flat))
	for _, r := range flat {
		name := r.Name
		if r.Kind == "dir" && !strings.HasSuffix(name, "/") {
			name += "/"
		}
		rows = append(rows, []string{
			r.status.Symbol(),
			FormatDelta(r.Delta),
			FormatSize(r.Old),
			FormatSize(r.New),
			strings.Repeat("  ", r.depth-base) + name,
		})
	}

	pad := opts.Padding
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case col >= 1 && col <= 3:
				style = numStyle
			default:
				style = cellStyle
			}

			if row != table.HeaderRow && row < len(flat) {
				if s, ok := statusStyle[flat[row].status]; ok {
					style = style.Inherit(s)
				}
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Headers().
		Rows(rows...)

	if opts.Titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers("ST", "DELTA", "OLD", "NEW", "NAME").BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

// FormatSize renders one side's size, "-" when the side is absent.
func FormatSize(s *Sizes) string {
	if s == nil {
		return "-"
	}
	return humanize.IBytes(uint64(max(s.Size, 0)))
}

// FormatDelta renders a signed size change.
func FormatDelta(d int64) string {
	switch {
	case d > 0:
		return "+" + humanize.IBytes(uint64(d))
	case d < 0:
		return "-" + humanize.IBytes(uint64(-d))
	default:
		return "0 B"
	}
}

type palette struct {
	title, created, removed, modified color.Color
}

// getColors returns configured color values for table rendering. Defaults
// are picked by terminal background so output stays readable on light and
// dark themes.
func getColors(key string) palette {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	return palette{
		title:    resolveColor(key+".title", "#b08800", "#f6be00"),
		created:  resolveColor(key+".created", "#1a7f37", "#3fb950"),
		removed:  resolveColor(key+".removed", "#cf222e", "#f85149"),
		modified: resolveColor(key+".modified", "#0088a0", "#00c8f0"),
	}
}
