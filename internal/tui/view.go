package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/lenslet/lens/internal/core/styles"
	"github.com/lenslet/lens/internal/review"
)

// layout is the per-frame split of the terminal area. Panel widths include
// their borders.
type layout struct {
	sidebarW int // 0 when the sidebar is hidden
	diffW    int
	contentH int // rows inside the panel borders
	searchH  int
}

func (m Model) layout() layout {
	searchH := 0
	if m.state == stateSearching {
		searchH = 1
	}
	contentH := m.height - 1 - searchH - 2
	if contentH < 1 {
		contentH = 1
	}

	sidebarW := 0
	if m.session.ShowSidebar {
		sidebarW = m.width * 30 / 100
		if sidebarW < 20 {
			sidebarW = 20
		}
		if sidebarW > 44 {
			sidebarW = 44
		}
	}
	return layout{sidebarW: sidebarW, diffW: m.width - sidebarW, contentH: contentH, searchH: searchH}
}

// diffHeight is the number of diff rows the viewport can show, excluding
// the file header.
func (m Model) diffHeight() int {
	h := m.layout().contentH - 1
	if h < 1 {
		h = 1
	}
	return h
}

// sidebarHeight is the number of tree rows the sidebar can show, excluding
// its title.
func (m Model) sidebarHeight() int {
	return m.diffHeight()
}

func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	ly := m.layout()
	var panels []string
	if ly.sidebarW > 0 {
		panels = append(panels, m.panelBorder(review.PanelSidebar).Render(
			renderSidebar(m.session, m.counts, ly.sidebarW-2, ly.contentH)))
	}
	panels = append(panels, m.panelBorder(review.PanelDiff).Render(
		renderDiffPanel(m.session, m.counts, ly.diffW-2, ly.contentH)))

	sections := []string{lipgloss.JoinHorizontal(lipgloss.Top, panels...)}
	if ly.searchH > 0 {
		sections = append(sections, m.searchbar.View())
	}
	sections = append(sections, m.statusBar())
	screen := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch m.state {
	case statePicker:
		screen = m.picker.View(m.width, m.height)
	case stateHelp:
		screen = renderHelp(m.width, m.height)
	case stateExplain:
		screen = m.explainModal.View(m.width, m.height)
	case stateAnnotating:
		screen = m.annotate.View(m.width, m.height)
	}

	v := tea.NewView(screen)
	v.AltScreen = true
	return v
}

func (m Model) panelBorder(panel review.Panel) lipgloss.Style {
	if m.session.Focus == panel {
		return styles.FocusedBorderStyle
	}
	return styles.BlurredBorderStyle
}

func (m Model) statusBar() string {
	s := m.session

	left := styles.StatusModeStyle.Render(" " + s.BackendName + " ")
	left += styles.StatusBranchStyle.Render(" " + m.reviewContext() + " ")
	if m.flash != "" {
		left += styles.StatusHelpStyle.Render(" " + m.flash)
	}

	var right string
	if s.Search.HasQuery() {
		pos := "-"
		if i, ok := s.Search.CurrentIndex(); ok {
			pos = fmt.Sprint(i + 1)
		}
		right += styles.StatusBranchStyle.Render(fmt.Sprintf(" %s/%d %q ", pos, s.Search.MatchCount(), s.Search.Query))
	}
	if n := len(s.Annotations()); n > 0 {
		right += styles.StatusBranchStyle.Render(fmt.Sprintf(" %d notes ", n))
	}
	right += styles.StatusHelpStyle.Render(" ? help  q quit ")

	gap := m.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 0 {
		gap = 0
	}
	bar := left + strings.Repeat(" ", gap) + right
	return styles.StatusBarStyle.Width(m.width).Render(bar)
}

// reviewContext names what the session compares, shown in the status bar.
func (m Model) reviewContext() string {
	s := m.session
	if commit, ok := s.CurrentCommit(); ok {
		return fmt.Sprintf("commit %d/%d %s", s.CurrentCommitIndex()+1, len(s.StackedCommits()), commit.ShortID)
	}
	if s.DiffRef != "" {
		return s.DiffRef
	}
	return "working tree"
}
