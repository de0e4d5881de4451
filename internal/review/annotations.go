package review

import (
	"fmt"
	"strings"
)

// Hunks with more rows than this export without their diff body so the
// output stays readable.
const maxExportDiffLines = 5

// HunkAnnotation is a note attached to one hunk of one file, identified by
// file and hunk index. StartLine and EndLine are new-file line numbers kept
// for display when the hunk itself can no longer be computed.
type HunkAnnotation struct {
	FileIndex int
	HunkIndex int
	Content   string
	StartLine int
	EndLine   int
	Filename  string
}

// Annotations returns all annotations in creation order.
func (s *Session) Annotations() []HunkAnnotation {
	return s.annotations
}

// Annotation returns the annotation on the given hunk, if any.
func (s *Session) Annotation(fileIndex, hunkIndex int) (HunkAnnotation, bool) {
	for _, a := range s.annotations {
		if a.FileIndex == fileIndex && a.HunkIndex == hunkIndex {
			return a, true
		}
	}
	return HunkAnnotation{}, false
}

// SetAnnotation adds the annotation, replacing any existing one on the
// same hunk.
func (s *Session) SetAnnotation(a HunkAnnotation) {
	for i, existing := range s.annotations {
		if existing.FileIndex == a.FileIndex && existing.HunkIndex == a.HunkIndex {
			s.annotations[i] = a
			return
		}
	}
	s.annotations = append(s.annotations, a)
}

// RemoveAnnotation deletes the annotation on the given hunk.
func (s *Session) RemoveAnnotation(fileIndex, hunkIndex int) {
	kept := s.annotations[:0]
	for _, a := range s.annotations {
		if a.FileIndex != fileIndex || a.HunkIndex != hunkIndex {
			kept = append(kept, a)
		}
	}
	s.annotations = kept
}

// ExportAnnotations renders all annotations as markdown, each with its
// location, the hunk body when it is short enough, and the note.
func (s *Session) ExportAnnotations() string {
	var b strings.Builder
	if s.DiffRef != "" {
		fmt.Fprintf(&b, "# Annotations for diff: %s\n\n", s.DiffRef)
	}
	parts := make([]string, 0, len(s.annotations))
	for _, a := range s.annotations {
		parts = append(parts, s.formatAnnotation(a))
	}
	b.WriteString(strings.Join(parts, "\n"))
	return b.String()
}

func (s *Session) formatAnnotation(a HunkAnnotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s", a.Filename)

	ex, ok := s.hunkExcerpt(a.FileIndex, a.HunkIndex)
	switch {
	case ok && ex.newStart > 0:
		if ex.newStart == ex.newEnd {
			fmt.Fprintf(&b, ":L%d", ex.newStart)
		} else {
			fmt.Fprintf(&b, ":L%d-%d", ex.newStart, ex.newEnd)
		}
	case ok && ex.oldStart > 0:
		// Pure deletion: the lines only exist in the base revision.
		base := s.baseRefLabel()
		if ex.oldStart == ex.oldEnd {
			fmt.Fprintf(&b, " (deleted from %s:L%d)", base, ex.oldStart)
		} else {
			fmt.Fprintf(&b, " (deleted from %s:L%d-%d)", base, ex.oldStart, ex.oldEnd)
		}
	default:
		fmt.Fprintf(&b, ":L%d-%d", a.StartLine, a.EndLine)
	}
	b.WriteByte('\n')

	if ok {
		if n := strings.Count(ex.lines, "\n"); n > 0 && n <= maxExportDiffLines {
			b.WriteString("```diff\n")
			b.WriteString(ex.lines)
			b.WriteString("```\n")
		}
	}

	fmt.Fprintf(&b, "**Note:** %s\n", a.Content)
	return b.String()
}

func (s *Session) baseRefLabel() string {
	if s.DiffRef == "" {
		return "base"
	}
	if base, _, ok := strings.Cut(s.DiffRef, "..."); ok {
		return base
	}
	if base, _, ok := strings.Cut(s.DiffRef, ".."); ok {
		return base
	}
	return s.DiffRef
}

// hunkExcerpt is the body of one hunk as "+"/"-" lines plus the line
// ranges it covers on each side; a zero start means the hunk has no lines
// on that side.
type hunkExcerpt struct {
	oldStart, oldEnd int
	newStart, newEnd int
	lines            string
}

func (s *Session) hunkExcerpt(fileIndex, hunkIndex int) (hunkExcerpt, bool) {
	if fileIndex >= len(s.files) {
		return hunkExcerpt{}, false
	}
	rows := s.rowsFor(fileIndex)
	hunks := HunkStarts(rows)
	if hunkIndex >= len(hunks) {
		return hunkExcerpt{}, false
	}
	start := hunks[hunkIndex]
	end := len(rows)
	if hunkIndex+1 < len(hunks) {
		end = hunks[hunkIndex+1]
	}

	var ex hunkExcerpt
	var b strings.Builder
	for _, row := range rows[start:end] {
		if row.Type == ChangeEqual {
			continue
		}
		if row.Old != nil && row.Type != ChangeInsert {
			fmt.Fprintf(&b, "- %s\n", row.Old.Text)
			if ex.oldStart == 0 {
				ex.oldStart = row.Old.Number
			}
			ex.oldEnd = row.Old.Number
		}
		if row.New != nil && row.Type != ChangeDelete {
			fmt.Fprintf(&b, "+ %s\n", row.New.Text)
			if ex.newStart == 0 {
				ex.newStart = row.New.Number
			}
			ex.newEnd = row.New.Number
		}
	}
	ex.lines = b.String()
	return ex, true
}

// rowsFor returns the pairing for any file, reusing the cache when it is
// the active one.
func (s *Session) rowsFor(fileIndex int) []DiffLine {
	if fileIndex == s.currentFile {
		return s.rows
	}
	f := s.files[fileIndex]
	return SideBySide(f.OldContent, f.NewContent, s.Settings.TabWidth)
}
