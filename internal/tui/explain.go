package tui

import (
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/lenslet/lens/internal/core/styles"
)

// ExplainModal shows the assistant's take on the current file's change,
// rendered as markdown once the response arrives.
type ExplainModal struct {
	viewport  viewport.Model
	spinner   spinner.Model
	title     string
	wrapWidth int
	loading   bool
	errText   string
}

func NewExplainModal(title string, width, height int) ExplainModal {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.PanelTitleStyle

	w, h := explainModalSize(width, height)
	vp := viewport.New(
		viewport.WithWidth(w-4),
		viewport.WithHeight(h-6),
	)

	return ExplainModal{
		viewport:  vp,
		spinner:   sp,
		title:     title,
		wrapWidth: w - 4,
		loading:   true,
	}
}

func explainModalSize(width, height int) (int, int) {
	w := width - 8
	if w > 96 {
		w = 96
	}
	if w < 30 {
		w = 30
	}
	h := height - 4
	if h < 8 {
		h = 8
	}
	return w, h
}

// SetResult swaps the spinner for the rendered response. Markdown that
// fails to render is shown raw.
func (m *ExplainModal) SetResult(text string, err error) {
	m.loading = false
	if err != nil {
		m.errText = err.Error()
		return
	}
	m.viewport.SetContent(renderMarkdown(text, m.wrapWidth))
	m.viewport.GotoTop()
}

func renderMarkdown(text string, width int) string {
	style := styles.GlamourStyle()
	noMargin := uint(0)
	style.Document.Margin = &noMargin

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Debug().Err(err).Msg("markdown renderer unavailable, showing raw text")
		return text
	}
	rendered, err := renderer.Render(text)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed, showing raw text")
		return text
	}
	return strings.TrimSpace(rendered)
}

func (m ExplainModal) Update(msg tea.Msg) (ExplainModal, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m ExplainModal) View(width, height int) string {
	w, h := explainModalSize(width, height)

	var body string
	switch {
	case m.loading:
		body = lipgloss.JoinHorizontal(lipgloss.Left, m.spinner.View(), " asking the assistant...")
	case m.errText != "":
		body = styles.ErrorStyle.Render("error: " + m.errText)
	default:
		body = m.viewport.View()
	}

	content := strings.Join([]string{
		styles.ModalTitleStyle.Render(m.title),
		"",
		body,
		"",
		styles.ModalHelpStyle.Render("j/k scroll  esc close"),
	}, "\n")

	modal := styles.ModalStyle.Width(w).Height(h).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
