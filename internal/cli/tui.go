package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/flowscope/flowscope/pkg/flow"
)

// Tree styles
var (
	treeSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeNodeStyle      = lipgloss.NewStyle().Foreground(colorWhite)
	treeContainerStyle = lipgloss.NewStyle().Foreground(colorGreen)
	treeDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ExploreModel - Interactive hierarchy browser
// =============================================================================

// RenderStats summarizes one pipeline run for the footer line.
type RenderStats struct {
	Elements int
	Edges    int
	Cached   bool
	Err      error
}

// RenderFunc runs the layout and convert stages for the given snapshot.
// The explore model calls it after every collapse toggle.
type RenderFunc func(flow.Snapshot) RenderStats

// renderDoneMsg delivers pipeline results back to the model.
type renderDoneMsg RenderStats

// treeRow is one visible line in the hierarchy view.
type treeRow struct {
	ID        string
	Label     string
	Depth     int
	Container bool
	Collapsed bool
	Badge     int // direct child count, shown for collapsed containers
}

// ExploreModel is the bubbletea model for browsing a snapshot's hierarchy.
// Enter or space toggles the collapse state of the container under the
// cursor; nodes inside collapsed containers disappear from the tree exactly
// as they would from a render.
type ExploreModel struct {
	Snapshot flow.Snapshot
	Rows     []treeRow
	Cursor   int
	Height   int
	Offset   int

	// Render, when set, re-runs the pipeline after each toggle; the result
	// appears in the footer.
	Render RenderFunc
	Stats  *RenderStats
}

// NewExploreModel creates an explore model for the given snapshot.
func NewExploreModel(s flow.Snapshot) ExploreModel {
	return ExploreModel{
		Snapshot: s.Clone(),
		Rows:     buildTreeRows(s),
		Height:   20,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return m.renderCmd()
}

// renderCmd runs the pipeline off the update loop and reports back.
func (m ExploreModel) renderCmd() tea.Cmd {
	if m.Render == nil {
		return nil
	}
	render, snapshot := m.Render, m.Snapshot.Clone()
	return func() tea.Msg {
		return renderDoneMsg(render(snapshot))
	}
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			var toggled bool
			m, toggled = m.toggleCursor()
			if toggled {
				m.Stats = nil
				return m, m.renderCmd()
			}
		}
	case renderDoneMsg:
		stats := RenderStats(msg)
		m.Stats = &stats
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// toggleCursor flips the collapse state of the container under the cursor
// and rebuilds the visible rows. Nodes are ignored.
func (m ExploreModel) toggleCursor() (ExploreModel, bool) {
	if m.Cursor >= len(m.Rows) {
		return m, false
	}
	row := m.Rows[m.Cursor]
	if !row.Container {
		return m, false
	}

	for i := range m.Snapshot.Containers {
		if m.Snapshot.Containers[i].ID == row.ID {
			m.Snapshot.Containers[i].Collapsed = !m.Snapshot.Containers[i].Collapsed
			break
		}
	}
	m.Rows = buildTreeRows(m.Snapshot)
	if m.Cursor >= len(m.Rows) {
		m.Cursor = len(m.Rows) - 1
	}
	return m, true
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore Hierarchy"))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ navigate  ⏎/space toggle container  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		indent := strings.Repeat("  ", row.Depth)
		var line string
		switch {
		case row.Container && row.Collapsed:
			line = fmt.Sprintf("%s%s▸ %s %s", cursor, indent, row.Label,
				treeDimStyle.Render(fmt.Sprintf("(%d)", row.Badge)))
		case row.Container:
			line = fmt.Sprintf("%s%s▾ %s", cursor, indent, row.Label)
		default:
			line = fmt.Sprintf("%s%s· %s", cursor, indent, row.Label)
		}

		switch {
		case i == m.Cursor:
			b.WriteString(treeSelectedStyle.Render(line))
		case row.Container:
			b.WriteString(treeContainerStyle.Render(line))
		default:
			b.WriteString(treeNodeStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("  %d of %d nodes visible",
		len(m.Snapshot.VisibleNodes()), m.Snapshot.NodeCount())))
	b.WriteString(m.statsLine())

	return b.String()
}

// statsLine formats the footer for the last pipeline run.
func (m ExploreModel) statsLine() string {
	switch {
	case m.Render == nil:
		return ""
	case m.Stats == nil:
		return treeDimStyle.Render("  · rendering…")
	case m.Stats.Err != nil:
		return "  " + StyleWarning.Render(fmt.Sprintf("render failed: %v", m.Stats.Err))
	default:
		status := iconFresh
		if m.Stats.Cached {
			status = iconCached
		}
		return treeDimStyle.Render(fmt.Sprintf("  · %d elements, %d edges (%s)",
			m.Stats.Elements, m.Stats.Edges, status))
	}
}

// =============================================================================
// Tree Construction
// =============================================================================

// buildTreeRows flattens the hierarchy into display rows, depth first in
// snapshot order. Children of collapsed containers are omitted; hidden nodes
// never appear.
func buildTreeRows(s flow.Snapshot) []treeRow {
	childContainers := map[string][]flow.Container{}
	childNodes := map[string][]flow.Node{}
	known := map[string]bool{}
	for _, c := range s.Containers {
		known[c.ID] = true
	}

	for _, c := range s.Containers {
		parent := c.Parent
		if !known[parent] {
			parent = ""
		}
		childContainers[parent] = append(childContainers[parent], c)
	}
	for _, n := range s.Nodes {
		if n.Hidden {
			continue
		}
		parent := n.Parent
		if !known[parent] {
			parent = ""
		}
		childNodes[parent] = append(childNodes[parent], n)
	}

	var rows []treeRow
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, c := range childContainers[parent] {
			rows = append(rows, treeRow{
				ID:        c.ID,
				Label:     c.DisplayLabel(),
				Depth:     depth,
				Container: true,
				Collapsed: c.Collapsed,
				Badge:     len(c.Children),
			})
			if !c.Collapsed {
				walk(c.ID, depth+1)
			}
		}
		for _, n := range childNodes[parent] {
			rows = append(rows, treeRow{
				ID:    n.ID,
				Label: n.DisplayLabel(),
				Depth: depth,
			})
		}
	}
	walk("", 0)
	return rows
}
