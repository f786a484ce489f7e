// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tfctl/ncdiff/internal/diff"
	"github.com/tfctl/ncdiff/internal/output"
)

// Run shows forest until the user quits.
func Run(ctx context.Context, forest *diff.Forest, title string, opts output.Options) error {
	p := tea.NewProgram(New(ctx, forest, title, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// resolvedMsg reports a finished expansion. The node is found again by key.
type resolvedMsg struct {
	key  string
	path diff.Path
	err  error
}

type row struct {
	node  *diff.DiffNode
	depth int
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx    context.Context
	forest *diff.Forest
	title  string
	opts   output.Options

	rows     []row
	cursor   int
	offset   int
	height   int
	expanded map[string]bool
	loading  map[string]bool
	err      error

	help help.Model
}

// New returns a browser over forest. Roots are expanded by Init.
func New(ctx context.Context, forest *diff.Forest, title string, opts output.Options) Model {
	m := Model{
		ctx:      ctx,
		forest:   forest,
		title:    title,
		opts:     opts,
		height:   20,
		expanded: map[string]bool{},
		loading:  map[string]bool{},
		help:     help.New(),
	}
	m.rebuild()
	return m
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.forest.Roots() {
		if n.IsExpandable() {
			m.expanded[n.Key()] = true
			cmds = append(cmds, m.resolve(n))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-4, 1)
		m.help.Width = msg.Width
		m.scroll()

	case resolvedMsg:
		delete(m.loading, msg.key)
		err := msg.err
		if _, ok := m.forest.ByKey(msg.key); !ok {
			err = fmt.Errorf("%w: %s (%s)", diff.ErrNotFound, msg.path, msg.key)
			log.Errorf("resolved node is missing from the forest: %v", err)
		}
		if err != nil {
			m.err = err
			delete(m.expanded, msg.key)
		}
		m.rebuild()

	case tea.KeyMsg:
		m.err = nil
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Top):
			m.cursor = 0
		case key.Matches(msg, keys.Bottom):
			m.cursor = max(len(m.rows)-1, 0)
		case key.Matches(msg, keys.Expand):
			cmd := m.expand()
			return m, cmd
		case key.Matches(msg, keys.Collapse):
			m.collapse()
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		m.scroll()
	}
	return m, nil
}

// expand opens the node under the cursor, fetching its children when they are
// not resolved yet.
func (m *Model) expand() tea.Cmd {
	n := m.current()
	if n == nil || !n.IsExpandable() {
		return nil
	}

	k := n.Key()
	m.expanded[k] = true
	if n.Resolved() {
		m.rebuild()
		return nil
	}
	if m.loading[k] {
		return nil
	}
	return m.resolve(n)
}

func (m *Model) resolve(n *diff.DiffNode) tea.Cmd {
	ctx, forest, k, p := m.ctx, m.forest, n.Key(), n.Path()
	m.loading[k] = true
	return func() tea.Msg {
		_, err := forest.Resolve(ctx, n)
		return resolvedMsg{key: k, path: p, err: err}
	}
}

// collapse closes the node under the cursor, or moves to its parent when it
// is already closed.
func (m *Model) collapse() {
	n := m.current()
	if n == nil {
		return
	}
	if m.expanded[n.Key()] {
		delete(m.expanded, n.Key())
		m.rebuild()
		return
	}
	if parent := n.Parent(); parent != nil {
		for i, r := range m.rows {
			if r.node == parent {
				m.cursor = i
				break
			}
		}
	}
}

func (m *Model) current() *diff.DiffNode {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

// rebuild recomputes the visible rows, keeping the cursor on the same node.
func (m *Model) rebuild() {
	cur := m.current()

	m.rows = m.rows[:0]
	m.add(m.forest.Roots(), 0)

	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	for i, r := range m.rows {
		if r.node == cur {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *Model) add(nodes []*diff.DiffNode, depth int) {
	for _, n := range nodes {
		if m.opts.Changed && !n.HasChanges() {
			continue
		}
		m.rows = append(m.rows, row{node: n, depth: depth})
		if m.expanded[n.Key()] && n.Resolved() {
			m.add(n.Children(), depth+1)
		}
	}
}

func (m *Model) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	createdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	modifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		line := m.line(m.rows[i])
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) line(r row) string {
	n := r.node

	marker := "  "
	switch {
	case m.loading[n.Key()]:
		marker = "… "
	case n.IsExpandable() && m.expanded[n.Key()]:
		marker = "▾ "
	case n.IsExpandable():
		marker = "▸ "
	}

	delta := n.Delta()
	if m.opts.Apparent {
		delta = n.AsizeDelta()
	}

	text := fmt.Sprintf("%s %10s %10s %10s  %s%s%s",
		n.Status().Symbol(),
		output.FormatDelta(delta),
		size(n, 0, m.opts.Apparent),
		size(n, 1, m.opts.Apparent),
		strings.Repeat("  ", r.depth), marker, n.Name())

	switch n.Status() {
	case diff.Created:
		return createdStyle.Render(text)
	case diff.Removed:
		return removedStyle.Render(text)
	case diff.Modified:
		return modifiedStyle.Render(text)
	}
	return text
}

func size(n *diff.DiffNode, side int, apparent bool) string {
	a := n.Aggr0()
	if side == 1 {
		a = n.Aggr1()
	}
	if a == nil {
		return output.FormatSize(nil)
	}
	s := &output.Sizes{Size: a.Dsize}
	if apparent {
		s.Size = a.Asize
	}
	return output.FormatSize(s)
}
