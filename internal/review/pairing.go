package review

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

// ChangeType classifies a paired diff row.
type ChangeType int

const (
	ChangeEqual ChangeType = iota
	ChangeModified
	ChangeDelete
	ChangeInsert
)

func (t ChangeType) String() string {
	switch t {
	case ChangeModified:
		return "modified"
	case ChangeDelete:
		return "delete"
	case ChangeInsert:
		return "insert"
	default:
		return "equal"
	}
}

// Side is one half of a paired diff row: a 1-based line number in its file
// and the display text, tabs expanded and trailing whitespace removed.
type Side struct {
	Number int
	Text   string
}

// DiffLine is a single row of the side-by-side view. Old is nil on rows the
// old file has no line for, New likewise. OldSegments and NewSegments carry
// word-level emphasis for Modified rows whose sides are similar enough;
// both are nil otherwise.
type DiffLine struct {
	Old         *Side
	New         *Side
	Type        ChangeType
	OldSegments []InlineSegment
	NewSegments []InlineSegment
}

// SideBySide pairs two file contents into display rows. Equal runs emit one
// row per line with both sides numbered. A run of deletions followed by a
// run of insertions is paired positionally: row i shows deletion i beside
// insertion i, and the shorter run pads with an empty slot instead of
// reflowing, so an N-line block replaced by an M-line block stays
// vertically aligned. Insertions with no preceding deletions emit
// Insert-only rows.
func SideBySide(oldText, newText string, tabWidth int) []DiffLine {
	oldLines := splitLinesKeepEnds(oldText)
	newLines := splitLinesKeepEnds(newText)
	matcher := difflib.NewMatcherWithJunk(oldLines, newLines, false, nil)

	var rows []DiffLine
	oldNum, newNum := 1, 1
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; k < op.I2-op.I1; k++ {
				text := displayText(oldLines[op.I1+k], tabWidth)
				rows = append(rows, DiffLine{
					Old:  &Side{Number: oldNum, Text: text},
					New:  &Side{Number: newNum, Text: text},
					Type: ChangeEqual,
				})
				oldNum++
				newNum++
			}
		case 'r', 'd':
			deletions := make([]Side, 0, op.I2-op.I1)
			for _, raw := range oldLines[op.I1:op.I2] {
				deletions = append(deletions, Side{Number: oldNum, Text: displayText(raw, tabWidth)})
				oldNum++
			}
			var insertions []Side
			if op.Tag == 'r' {
				insertions = make([]Side, 0, op.J2-op.J1)
				for _, raw := range newLines[op.J1:op.J2] {
					insertions = append(insertions, Side{Number: newNum, Text: displayText(raw, tabWidth)})
					newNum++
				}
			}
			rows = append(rows, pairRuns(deletions, insertions)...)
		case 'i':
			for _, raw := range newLines[op.J1:op.J2] {
				rows = append(rows, DiffLine{
					New:  &Side{Number: newNum, Text: displayText(raw, tabWidth)},
					Type: ChangeInsert,
				})
				newNum++
			}
		}
	}
	return rows
}

func pairRuns(deletions, insertions []Side) []DiffLine {
	rows := make([]DiffLine, 0, max(len(deletions), len(insertions)))
	for j := 0; j < len(deletions) || j < len(insertions); j++ {
		var row DiffLine
		if j < len(deletions) {
			d := deletions[j]
			row.Old = &d
		}
		if j < len(insertions) {
			ins := insertions[j]
			row.New = &ins
		}
		switch {
		case row.Old != nil && row.New != nil:
			row.Type = ChangeModified
			row.OldSegments, row.NewSegments = wordDiff(row.Old.Text, row.New.Text)
		case row.Old != nil:
			row.Type = ChangeDelete
		default:
			row.Type = ChangeInsert
		}
		rows = append(rows, row)
	}
	return rows
}

func displayText(raw string, tabWidth int) string {
	return expandTabs(strings.TrimRightFunc(raw, unicode.IsSpace), tabWidth)
}

func expandTabs(text string, tabWidth int) string {
	if strings.IndexByte(text, '\t') < 0 {
		return text
	}
	return strings.ReplaceAll(text, "\t", strings.Repeat(" ", tabWidth))
}

// splitLinesKeepEnds splits text into lines, each keeping its terminator,
// so the diff can tell "a" from "a\n" at the end of a file.
func splitLinesKeepEnds(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i+1])
		text = text[i+1:]
	}
	return lines
}
