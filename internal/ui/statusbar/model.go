// Package statusbar draws the one-line footer of the pager: the source
// tabs on the left and the load status on the right.
package statusbar

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/ingest/internal/report"
)

const (
	barBG   = lipgloss.Color("#333333")
	dimFG   = lipgloss.Color("#AAAAAA")
	lightFG = lipgloss.Color("#FFFFFF")
)

var (
	fill = lipgloss.NewStyle().Background(barBG)

	tabOn = lipgloss.NewStyle().
		Background(report.Accent).
		Foreground(lightFG).
		Bold(true).
		Padding(0, 1)

	tabOff = lipgloss.NewStyle().
		Background(lipgloss.Color("#555555")).
		Foreground(lipgloss.Color("#CCCCCC")).
		Padding(0, 1)

	info = lipgloss.NewStyle().
		Background(barBG).
		Foreground(dimFG).
		Padding(0, 1)

	failure = info.
		Background(lipgloss.Color("#8B0000")).
		Foreground(lightFG).
		Bold(true)
)

// Model is the footer state. It never handles input itself.
type Model struct {
	width   int
	tabs    []string
	active  int
	status  string
	isError bool
	busy    string
}

// New creates a status bar with one tab per label.
func New(tabs []string) Model {
	return Model{tabs: tabs}
}

func (m *Model) SetSize(w int)      { m.width = w }
func (m *Model) SetActive(i int)    { m.active = i }
func (m *Model) SetBusy(ind string) { m.busy = ind }

// SetStatus sets the right-hand message; errors are drawn in red.
func (m *Model) SetStatus(text string, isError bool) {
	m.status = text
	m.isError = isError
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the bar. When the tabs do not fit next to the status, only
// the active tab is shown with its position.
func (m Model) View() string {
	right := m.rightSide()
	left := m.allTabs()
	if m.width > 0 && lipgloss.Width(left)+lipgloss.Width(right) > m.width {
		left = m.activeTab()
	}
	if m.width > 0 && lipgloss.Width(left)+lipgloss.Width(right) > m.width {
		room := max(m.width-lipgloss.Width(left), 0)
		right = lipgloss.NewStyle().MaxWidth(room).Render(right)
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, fill.Width(gap).Render(""), right)
}

func (m Model) allTabs() string {
	var s string
	for i, label := range m.tabs {
		if i == m.active {
			s += tabOn.Render(label)
		} else {
			s += tabOff.Render(label)
		}
	}
	return s
}

func (m Model) activeTab() string {
	if m.active < 0 || m.active >= len(m.tabs) {
		return ""
	}
	return tabOn.Render(fmt.Sprintf("%s %d/%d", m.tabs[m.active], m.active+1, len(m.tabs)))
}

func (m Model) rightSide() string {
	var s string
	if m.busy != "" {
		s += info.Render(m.busy)
	}
	switch {
	case m.status == "":
	case m.isError:
		s += failure.Render(m.status)
	default:
		s += info.Render(m.status)
	}
	return s
}
