package tui

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/lenslet/lens/internal/core/styles"
	"github.com/lenslet/lens/internal/review"
)

// markers shown in the one-column gutter before the old pane.
const (
	markerAnnotated = "●"
	markerFocused   = "▸"
)

// renderDiffPanel draws the side-by-side view into a width x height block:
// a one-line file header, the sticky scope overlay, then paired rows.
func renderDiffPanel(s *review.Session, counts []FileCounts, width, height int) string {
	file, ok := s.CurrentDiff()
	if !ok {
		empty := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			styles.ModalHelpStyle.Render("no changes"))
		return empty
	}

	lines := make([]string, 0, height)
	lines = append(lines, diffHeader(s, file, counts, width))

	sticky := stickyBlock(s)
	rowsHeight := height - 1 - len(sticky)
	if rowsHeight < 1 {
		sticky = nil
		rowsHeight = height - 1
	}

	numWidth := lineNumberWidth(file)
	for _, sl := range sticky {
		lines = append(lines, renderStickyRow(sl, numWidth, width))
	}

	rows := s.VisibleRows(rowsHeight)
	gutters := hunkGutters(s)
	for i, row := range rows {
		lines = append(lines, renderDiffRow(s, row, s.Scroll+i, gutters, numWidth, width))
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func diffHeader(s *review.Session, file review.FileDiff, counts []FileCounts, width int) string {
	runs := []styledRun{
		{" " + styles.IconForFile(file.Filename) + " " + file.Filename, styles.PanelTitleStyle},
	}
	if i := s.CurrentFile(); i >= 0 && i < len(counts) {
		runs = append(runs,
			styledRun{fmt.Sprintf("  +%d", counts[i].Added), styles.AddCountStyle},
			styledRun{fmt.Sprintf(" -%d", counts[i].Removed), styles.DelCountStyle},
		)
	}
	if s.IsViewed(s.CurrentFile()) {
		runs = append(runs, styledRun{"  " + styles.IconViewed, styles.TreeViewedStyle})
	}
	runs = append(runs, styledRun{fmt.Sprintf("  %d/%d", s.CurrentFile()+1, s.FileCount()), styles.ModalHelpStyle})
	return renderRuns(runs, 0, width, lipgloss.NewStyle())
}

// stickyBlock reconstructs the enclosing scopes for the first visible
// new-side line. The overlay replaces the top rows of the viewport.
func stickyBlock(s *review.Session) []review.StickyLine {
	if !s.Settings.Sticky.Enabled || s.Scroll == 0 {
		return nil
	}
	line := firstVisibleNewLine(s)
	if line == 0 {
		return nil
	}
	return s.ScopesAt(line)
}

func firstVisibleNewLine(s *review.Session) int {
	rows := s.Rows()
	for i := s.Scroll; i < len(rows); i++ {
		if rows[i].New != nil {
			return rows[i].New.Number
		}
	}
	return 0
}

func renderStickyRow(sl review.StickyLine, numWidth, width int) string {
	text := fmt.Sprintf(" %*d %s%s", numWidth, sl.Number, strings.Repeat(" ", sl.Indent), sl.Text)
	return renderRuns([]styledRun{{text, styles.StickyLineStyle}}, 0, width, styles.StickyLineStyle)
}

// hunkGutters maps hunk start row indexes to their gutter marker.
func hunkGutters(s *review.Session) map[int]string {
	gutters := make(map[int]string)
	hunks := s.Hunks()
	if focused, ok := s.FocusedHunk(); ok && focused < len(hunks) {
		gutters[hunks[focused]] = markerFocused
	}
	for _, a := range s.Annotations() {
		if a.FileIndex == s.CurrentFile() && a.HunkIndex < len(hunks) {
			gutters[hunks[a.HunkIndex]] = markerAnnotated
		}
	}
	return gutters
}

func renderDiffRow(s *review.Session, row review.DiffLine, rowIndex int, gutters map[int]string, numWidth, width int) string {
	marker := gutters[rowIndex]
	if marker == "" {
		marker = " "
	}
	gutter := styles.PanelTitleStyle.Render(marker)

	if s.Fullscreen != review.FullscreenNone {
		panel := review.MatchOld
		if s.Fullscreen == review.FullscreenNew {
			panel = review.MatchNew
		}
		return gutter + renderPane(s, row, rowIndex, panel, numWidth, width-1)
	}

	oldWidth := (width - 2) / 2
	newWidth := width - 2 - oldWidth
	divider := styles.DividerStyle.Render("│")
	return gutter +
		renderPane(s, row, rowIndex, review.MatchOld, numWidth, oldWidth) +
		divider +
		renderPane(s, row, rowIndex, review.MatchNew, numWidth, newWidth)
}

// renderPane draws one half of a row: the line number gutter, then the
// text with inline emphasis or search highlighting.
func renderPane(s *review.Session, row review.DiffLine, rowIndex int, panel review.MatchPanel, numWidth, width int) string {
	side, segments := row.Old, row.OldSegments
	if panel == review.MatchNew {
		side, segments = row.New, row.NewSegments
	}
	if side == nil {
		blank := strings.Repeat(" ", numWidth+2)
		fill := strings.Repeat("╱", max(width-numWidth-2, 0))
		return blank + styles.DiffPlaceholderStyle.Render(fill)
	}

	numStyle, textStyle, emphStyle := paneStyles(row.Type, panel)
	num := fmt.Sprintf(" %*d ", numWidth, side.Number)

	textWidth := width - numWidth - 2
	runs := textRuns(s, side, segments, rowIndex, panel, textStyle, emphStyle)
	return numStyle.Render(num) + renderRuns(runs, s.HScroll, textWidth, textStyle)
}

func paneStyles(typ review.ChangeType, panel review.MatchPanel) (num, text, emph lipgloss.Style) {
	switch {
	case typ == review.ChangeEqual:
		return styles.LineNumberStyle, styles.DiffContextStyle, styles.DiffContextStyle
	case panel == review.MatchOld:
		return styles.LineNumberRemovedStyle, styles.DiffRemovedStyle, styles.DiffRemovedEmphStyle
	default:
		return styles.LineNumberAddedStyle, styles.DiffAddedStyle, styles.DiffAddedEmphStyle
	}
}

// textRuns splits a side's text into styled fragments. Search matches take
// precedence over word-level emphasis.
func textRuns(s *review.Session, side *review.Side, segments []review.InlineSegment, rowIndex int, panel review.MatchPanel, textStyle, emphStyle lipgloss.Style) []styledRun {
	if s.Search.HasQuery() {
		if matches := s.Search.MatchesForLine(rowIndex, panel); len(matches) > 0 {
			return matchRuns(side.Text, matches, textStyle)
		}
	}
	if len(segments) > 0 {
		runs := make([]styledRun, 0, len(segments))
		for _, seg := range segments {
			style := textStyle
			if seg.Emphasized {
				style = emphStyle
			}
			runs = append(runs, styledRun{seg.Text, style})
		}
		return runs
	}
	return []styledRun{{side.Text, textStyle}}
}

// matchRuns carves the text at match boundaries. Match offsets index the
// same string, so byte slicing is safe.
func matchRuns(text string, matches []review.LineMatch, base lipgloss.Style) []styledRun {
	var runs []styledRun
	pos := 0
	for _, m := range matches {
		if m.Start < pos || m.End > len(text) {
			continue
		}
		if m.Start > pos {
			runs = append(runs, styledRun{text[pos:m.Start], base})
		}
		style := styles.SearchMatchStyle
		if m.Current {
			style = styles.SearchCurrentStyle
		}
		runs = append(runs, styledRun{text[m.Start:m.End], style})
		pos = m.End
	}
	if pos < len(text) {
		runs = append(runs, styledRun{text[pos:], base})
	}
	return runs
}

func lineNumberWidth(file review.FileDiff) int {
	lines := strings.Count(file.OldContent, "\n")
	if n := strings.Count(file.NewContent, "\n"); n > lines {
		lines = n
	}
	width := len(fmt.Sprint(lines + 1))
	if width < 3 {
		width = 3
	}
	return width
}
