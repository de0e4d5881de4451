package tui

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/lenslet/lens/internal/core/styles"
)

type helpEntry struct {
	keys string
	desc string
}

// helpEntries is the full key reference shown by the help modal. Order is
// display order.
var helpEntries = []helpEntry{
	{"j/k", "scroll down/up"},
	{"h/l", "scroll left/right"},
	{"ctrl+d/ctrl+u", "half page down/up"},
	{"pgdn/pgup", "page down/up"},
	{"g/G", "jump to top/bottom"},
	{"ctrl+j/ctrl+k", "next/previous file"},
	{"{/}", "previous/next hunk"},
	{"1/2", "focus sidebar/diff"},
	{"tab", "toggle sidebar"},
	{"f", "cycle fullscreen pane"},
	{"enter", "open selected file or fold directory"},
	{"space", "mark viewed, jump to next unviewed"},
	{"/", "search"},
	{"n/N", "next/previous match"},
	{"ctrl+p", "file picker"},
	{"c", "annotate focused hunk"},
	{"x", "explain change with assistant"},
	{"e", "open file in $EDITOR"},
	{"y", "yank file path"},
	{"r", "reload"},
	{"J/K", "next/previous commit (range review)"},
	{"?", "help"},
	{"q", "quit"},
}

// renderHelp draws the key reference centered in the given area.
func renderHelp(width, height int) string {
	keyWidth := 0
	for _, e := range helpEntries {
		if len(e.keys) > keyWidth {
			keyWidth = len(e.keys)
		}
	}

	lines := make([]string, 0, len(helpEntries)+3)
	lines = append(lines, styles.ModalTitleStyle.Render("Keys"), "")
	for _, e := range helpEntries {
		key := styles.PanelTitleStyle.Render(fmt.Sprintf("%*s", keyWidth, e.keys))
		lines = append(lines, key+"  "+e.desc)
	}
	lines = append(lines, "", styles.ModalHelpStyle.Render("esc close"))

	modal := styles.ModalStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
