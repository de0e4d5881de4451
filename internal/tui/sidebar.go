package tui

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/lenslet/lens/internal/core/styles"
	"github.com/lenslet/lens/internal/review"
)

// FileCounts are the added and removed line totals shown next to a file.
type FileCounts struct {
	Added   int
	Removed int
}

// countFiles pairs every file once and tallies its changed rows. Modified
// rows count on both sides.
func countFiles(files []review.FileDiff, tabWidth int) []FileCounts {
	counts := make([]FileCounts, len(files))
	for i, f := range files {
		for _, row := range review.SideBySide(f.OldContent, f.NewContent, tabWidth) {
			switch row.Type {
			case review.ChangeInsert:
				counts[i].Added++
			case review.ChangeDelete:
				counts[i].Removed++
			case review.ChangeModified:
				counts[i].Added++
				counts[i].Removed++
			}
		}
	}
	return counts
}

// renderSidebar draws the file tree into a width x height block.
func renderSidebar(s *review.Session, counts []FileCounts, width, height int) string {
	lines := make([]string, 0, height)

	title := fmt.Sprintf(" Files %d/%d viewed", s.ViewedCount(), s.FileCount())
	lines = append(lines, padRow(styles.SidebarTitleStyle.Render(title), width))

	visible := s.VisibleItems()
	items := s.Items()
	rowsHeight := height - 1

	top := s.SidebarScroll
	if top > len(visible)-rowsHeight {
		top = len(visible) - rowsHeight
	}
	if top < 0 {
		top = 0
	}

	for pos := top; pos < top+rowsHeight && pos < len(visible); pos++ {
		item := items[visible[pos]]
		selected := pos == s.SidebarSelected()
		lines = append(lines, renderTreeRow(s, item, counts, selected, s.SidebarHScroll, width))
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func renderTreeRow(s *review.Session, item review.SidebarItem, counts []FileCounts, selected bool, hscroll, width int) string {
	base := styles.TreeFileStyle
	if item.IsDir {
		base = styles.TreeDirStyle
	}
	if selected {
		base = styles.TreeSelectedStyle
	}

	indent := strings.Repeat("  ", item.Depth)
	var runs []styledRun
	if item.IsDir {
		icon := styles.IconFolderOpen
		if s.Collapsed(item.Path) {
			icon = styles.IconFolderClosed
		}
		runs = append(runs, styledRun{indent + icon + " " + item.Name + "/", base})
		if s.DirAllViewed(item.Path) {
			runs = append(runs, styledRun{" " + styles.IconViewed, styles.TreeViewedStyle})
		}
	} else {
		name := base
		if s.IsViewed(item.FileIndex) && !selected {
			name = styles.TreeViewedStyle
		}
		runs = append(runs, styledRun{indent + styles.IconForFile(item.Path) + " " + item.Name, name})
		runs = append(runs, statusRuns(item, counts)...)
		if s.IsViewed(item.FileIndex) {
			runs = append(runs, styledRun{" " + styles.IconViewed, styles.TreeViewedStyle})
		}
	}

	pad := lipgloss.NewStyle()
	if selected {
		pad = styles.TreeSelectedStyle
	}
	return renderRuns(runs, hscroll, width, pad)
}

func statusRuns(item review.SidebarItem, counts []FileCounts) []styledRun {
	switch item.Status {
	case review.StatusAdded, review.StatusDeleted:
		style := styles.AddCountStyle
		if item.Status == review.StatusDeleted {
			style = styles.DelCountStyle
		}
		return []styledRun{{" " + item.Status.Symbol(), style}}
	}
	if item.FileIndex < 0 || item.FileIndex >= len(counts) {
		return nil
	}
	c := counts[item.FileIndex]
	return []styledRun{
		{fmt.Sprintf(" +%d", c.Added), styles.AddCountStyle},
		{fmt.Sprintf(" -%d", c.Removed), styles.DelCountStyle},
	}
}
