package tui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/sahilm/fuzzy"

	"github.com/lenslet/lens/internal/core/styles"
)

// PickerItem is one selectable row of a picker modal.
type PickerItem struct {
	Label string // matched against the query and displayed
	Hint  string // dimmed context shown after the label
	Value int    // caller payload, typically an index
}

// pickerSource adapts items to the fuzzy matcher.
type pickerSource []PickerItem

func (s pickerSource) String(i int) string { return s[i].Label }
func (s pickerSource) Len() int            { return len(s) }

type pickerRow struct {
	item    PickerItem
	matched map[int]bool // byte offsets of the label hit by the query
}

// Picker is a fuzzy-filtered list modal. The parent model owns navigation
// and selection keys; typing is delegated to Update, which refilters.
type Picker struct {
	title  string
	items  []PickerItem
	rows   []pickerRow
	input  textinput.Model
	cursor int
}

func NewPicker(title string, items []PickerItem) Picker {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.CharLimit = 200
	ti.Focus()
	p := Picker{title: title, items: items, input: ti}
	p.refilter()
	return p
}

// Move shifts the cursor by delta, clamped to the filtered rows.
func (p *Picker) Move(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.rows) {
		p.cursor = len(p.rows) - 1
	}
}

// Selected returns the item under the cursor.
func (p Picker) Selected() (PickerItem, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return PickerItem{}, false
	}
	return p.rows[p.cursor].item, true
}

func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.refilter()
	}
	return p, cmd
}

// refilter rebuilds the row list for the current query. An empty query
// keeps the caller's item order; otherwise rows follow match rank.
func (p *Picker) refilter() {
	query := p.input.Value()
	p.cursor = 0
	p.rows = p.rows[:0]
	if query == "" {
		for _, it := range p.items {
			p.rows = append(p.rows, pickerRow{item: it})
		}
		return
	}
	for _, m := range fuzzy.FindFrom(query, pickerSource(p.items)) {
		matched := make(map[int]bool, len(m.MatchedIndexes))
		for _, idx := range m.MatchedIndexes {
			matched[idx] = true
		}
		p.rows = append(p.rows, pickerRow{item: p.items[m.Index], matched: matched})
	}
}

// View renders the picker centered in the given area.
func (p Picker) View(width, height int) string {
	modalWidth := width * 2 / 3
	if modalWidth > 72 {
		modalWidth = 72
	}
	if modalWidth < 30 {
		modalWidth = 30
	}
	listHeight := height - 9
	if listHeight > len(p.rows) {
		listHeight = len(p.rows)
	}
	if listHeight < 1 {
		listHeight = 1
	}

	top := 0
	if p.cursor >= listHeight {
		top = p.cursor - listHeight + 1
	}

	lines := make([]string, 0, listHeight+3)
	lines = append(lines, styles.ModalTitleStyle.Render(p.title), p.input.View(), "")
	for i := top; i < top+listHeight && i < len(p.rows); i++ {
		lines = append(lines, p.renderRow(p.rows[i], i == p.cursor, modalWidth-4))
	}
	if len(p.rows) == 0 {
		lines = append(lines, styles.ModalHelpStyle.Render("no matches"))
	}
	lines = append(lines, "", styles.ModalHelpStyle.Render("↑/↓ move  enter select  esc cancel"))

	modal := styles.ModalStyle.Width(modalWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}

func (p Picker) renderRow(row pickerRow, current bool, width int) string {
	base := styles.TreeFileStyle
	if current {
		base = styles.TreeSelectedStyle
	}

	var b strings.Builder
	if current {
		b.WriteString(base.Render("> "))
	} else {
		b.WriteString("  ")
	}
	for i, r := range row.item.Label {
		if row.matched[i] {
			b.WriteString(styles.PickerMatchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	if row.item.Hint != "" {
		b.WriteString(styles.ModalHelpStyle.Render("  " + row.item.Hint))
	}
	return padRow(b.String(), width)
}
