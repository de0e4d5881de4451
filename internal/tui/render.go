package tui

import (
	"strings"
	"unicode/utf8"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// styledRun is a fragment of one display row with its own style. Rows are
// assembled as run sequences so horizontal scrolling and truncation can be
// applied before any escape codes exist.
type styledRun struct {
	text  string
	style lipgloss.Style
}

// renderRuns renders a row left-shifted by hscroll runes, truncated and
// padded to width. Padding goes through pad so background fills stay
// continuous on colored rows.
func renderRuns(runs []styledRun, hscroll, width int, pad lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	skip := hscroll
	used := 0
	for _, run := range runs {
		text := run.text
		if skip > 0 {
			n := utf8.RuneCountInString(text)
			if n <= skip {
				skip -= n
				continue
			}
			text = string([]rune(text)[skip:])
			skip = 0
		}
		if used >= width {
			break
		}
		if w := ansi.StringWidth(text); used+w > width {
			text = ansi.Truncate(text, width-used, "")
		}
		rendered := run.style.Render(text)
		used += ansi.StringWidth(rendered)
		b.WriteString(rendered)
	}
	if used < width {
		b.WriteString(pad.Render(strings.Repeat(" ", width-used)))
	}
	return b.String()
}

// padRow truncates or pads a plain string to width without styling.
func padRow(s string, width int) string {
	if w := ansi.StringWidth(s); w > width {
		return ansi.Truncate(s, width, "")
	} else if w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
