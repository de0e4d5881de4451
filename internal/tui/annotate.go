package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/lenslet/lens/internal/core/styles"
	"github.com/lenslet/lens/internal/review"
)

// AnnotateModal edits the note attached to one hunk. Saving with empty
// text removes an existing note.
type AnnotateModal struct {
	editor    textarea.Model
	filename  string
	fileIndex int
	hunkIndex int
	startLine int
	endLine   int
}

// NewAnnotateModal opens an editor for the focused hunk, prefilled with
// any existing note.
func NewAnnotateModal(s *review.Session, fileIndex, hunkIndex int) AnnotateModal {
	ta := textarea.New()
	ta.Placeholder = "note for this hunk"
	ta.Focus()

	m := AnnotateModal{editor: ta, fileIndex: fileIndex, hunkIndex: hunkIndex}
	if f, ok := s.CurrentDiff(); ok {
		m.filename = f.Filename
	}
	m.startLine, m.endLine = hunkLineRange(s.Rows(), s.Hunks(), hunkIndex)
	if existing, ok := s.Annotation(fileIndex, hunkIndex); ok {
		m.editor.SetValue(existing.Content)
	}
	return m
}

// hunkLineRange walks a hunk's rows and returns the span of new-file line
// numbers it covers, falling back to old-file numbers for pure deletions.
func hunkLineRange(rows []review.DiffLine, hunks []int, hunkIndex int) (int, int) {
	if hunkIndex < 0 || hunkIndex >= len(hunks) {
		return 0, 0
	}
	start, end := 0, 0
	for i := hunks[hunkIndex]; i < len(rows) && rows[i].Type != review.ChangeEqual; i++ {
		num := 0
		if rows[i].New != nil {
			num = rows[i].New.Number
		} else if rows[i].Old != nil {
			num = rows[i].Old.Number
		}
		if num == 0 {
			continue
		}
		if start == 0 || num < start {
			start = num
		}
		if num > end {
			end = num
		}
	}
	return start, end
}

// Annotation materializes the edited note. ok is false when the text is
// empty and the note should be removed instead.
func (m AnnotateModal) Annotation() (review.HunkAnnotation, bool) {
	content := strings.TrimSpace(m.editor.Value())
	if content == "" {
		return review.HunkAnnotation{}, false
	}
	return review.HunkAnnotation{
		FileIndex: m.fileIndex,
		HunkIndex: m.hunkIndex,
		Content:   content,
		StartLine: m.startLine,
		EndLine:   m.endLine,
		Filename:  m.filename,
	}, true
}

func (m AnnotateModal) Update(msg tea.Msg) (AnnotateModal, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m AnnotateModal) View(width, height int) string {
	modalWidth := width * 2 / 3
	if modalWidth > 76 {
		modalWidth = 76
	}
	if modalWidth < 30 {
		modalWidth = 30
	}

	title := fmt.Sprintf("Annotate %s:%d-%d", m.filename, m.startLine, m.endLine)
	content := strings.Join([]string{
		styles.ModalTitleStyle.Render(title),
		"",
		m.editor.View(),
		"",
		styles.ModalHelpStyle.Render("ctrl+s save  esc cancel"),
	}, "\n")

	modal := styles.ModalStyle.Width(modalWidth).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
