package tui

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/lenslet/lens/internal/core/styles"
)

// Searchbar is the one-line input shown while a search query is typed.
// Match bookkeeping lives in the review session; this only owns the text
// entry widget.
type Searchbar struct {
	input textinput.Model
}

func NewSearchbar() Searchbar {
	ti := textinput.New()
	ti.Placeholder = "search"
	ti.CharLimit = 200
	return Searchbar{input: ti}
}

// Open clears any previous query and focuses the input.
func (s *Searchbar) Open() {
	s.input.SetValue("")
	s.input.Focus()
}

// Close blurs and clears the input.
func (s *Searchbar) Close() {
	s.input.Blur()
	s.input.SetValue("")
}

// Value returns the query typed so far.
func (s Searchbar) Value() string {
	return s.input.Value()
}

func (s Searchbar) Update(msg tea.Msg) (Searchbar, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s Searchbar) View() string {
	return styles.StatusModeStyle.Render(" "+styles.IconSearch+" ") + s.input.View()
}
