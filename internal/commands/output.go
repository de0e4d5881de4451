package commands

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/lenslet/lens/internal/core/styles"
)

const maxRenderWidth = 100

// renderMarkdown renders assistant output for stdout. Non-terminal output
// and render failures fall back to the raw text.
func renderMarkdown(text string) string {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return text
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		width = 80
	}
	if width > maxRenderWidth {
		width = maxRenderWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
