package vcs

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of unchanged lines kept around each change,
// matching git's default.
const contextLines = 3

// FileChange carries the before and after contents of one path. A nil side
// means the file does not exist at that revision.
type FileChange struct {
	Path string
	Old  *string
	New  *string
}

// FormatUnified renders changes as a git-style unified diff. It is the diff
// synthesis path for backends that expose file contents but no patch
// command, and it never fails: unreadable content is the caller's problem,
// identical content produces no entry.
func FormatUnified(changes []FileChange) string {
	var b strings.Builder
	for _, c := range changes {
		formatDiffEntry(&b, c)
	}
	return b.String()
}

func formatDiffEntry(b *strings.Builder, c FileChange) {
	switch {
	case c.Old == nil && c.New != nil:
		fmt.Fprintf(b, "diff --git a/%s b/%s\n", c.Path, c.Path)
		b.WriteString("new file mode 100644\n")
		b.WriteString("--- /dev/null\n")
		fmt.Fprintf(b, "+++ b/%s\n", c.Path)
		b.WriteString(formatHunks("", *c.New))
	case c.Old != nil && c.New == nil:
		fmt.Fprintf(b, "diff --git a/%s b/%s\n", c.Path, c.Path)
		b.WriteString("deleted file mode 100644\n")
		fmt.Fprintf(b, "--- a/%s\n", c.Path)
		b.WriteString("+++ /dev/null\n")
		b.WriteString(formatHunks(*c.Old, ""))
	case c.Old != nil && c.New != nil && *c.Old != *c.New:
		fmt.Fprintf(b, "diff --git a/%s b/%s\n", c.Path, c.Path)
		fmt.Fprintf(b, "--- a/%s\n", c.Path)
		fmt.Fprintf(b, "+++ b/%s\n", c.Path)
		b.WriteString(formatHunks(*c.Old, *c.New))
	}
}

// formatHunks builds the @@-hunk body for one file from a line-level diff.
// Hunks keep up to contextLines of context on each side; a matching run
// longer than twice that closes the current hunk. Line numbers in headers
// are 1-based, with 0 for an empty side.
func formatHunks(oldText, newText string) string {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)
	// Autojunk treats popular lines as noise, which mangles diffs of files
	// with many repeated blank or brace lines.
	opcodes := difflib.NewMatcherWithJunk(oldLines, newLines, false, nil).GetOpCodes()

	var out strings.Builder
	var pending strings.Builder
	var hunkOldStart, hunkNewStart int
	var hunkOldCount, hunkNewCount int
	inHunk := false

	flush := func() {
		fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n", hunkOldStart, hunkOldCount, hunkNewStart, hunkNewCount)
		out.WriteString(pending.String())
		pending.Reset()
		inHunk = false
	}

	for _, op := range opcodes {
		if op.Tag == 'e' {
			if inHunk {
				run := oldLines[op.I1:op.I2]
				for _, line := range run[:min(contextLines, len(run))] {
					pending.WriteString(" " + line + "\n")
					hunkOldCount++
					hunkNewCount++
				}
				if len(run) > contextLines*2 {
					flush()
				}
			}
			continue
		}

		if !inHunk {
			inHunk = true
			hunkOldStart = max(op.I1-contextLines, 0) + 1
			hunkNewStart = max(op.J1-contextLines, 0) + 1
			hunkOldCount = 0
			hunkNewCount = 0
			for _, line := range oldLines[max(op.I1-contextLines, 0):op.I1] {
				pending.WriteString(" " + line + "\n")
				hunkOldCount++
				hunkNewCount++
			}
		}
		for _, line := range oldLines[op.I1:op.I2] {
			pending.WriteString("-" + line + "\n")
			hunkOldCount++
		}
		for _, line := range newLines[op.J1:op.J2] {
			pending.WriteString("+" + line + "\n")
			hunkNewCount++
		}
	}
	if inHunk {
		flush()
	}

	// Changes the line diff cannot see, such as a missing trailing
	// newline, still need to show up somehow: emit the whole file.
	if out.Len() == 0 && oldText != newText {
		oldStart, newStart := 1, 1
		if len(oldLines) == 0 {
			oldStart = 0
		}
		if len(newLines) == 0 {
			newStart = 0
		}
		fmt.Fprintf(&out, "@@ -%d,%d +%d,%d @@\n", oldStart, len(oldLines), newStart, len(newLines))
		for _, line := range oldLines {
			out.WriteString("-" + line + "\n")
		}
		for _, line := range newLines {
			out.WriteString("+" + line + "\n")
		}
	}
	return out.String()
}

// splitLines splits on newlines without producing a phantom empty line for
// a trailing newline, and strips the \r of CRLF endings.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	finalNewline := strings.HasSuffix(s, "\n")
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		if i < len(lines)-1 || finalNewline {
			lines[i] = strings.TrimSuffix(line, "\r")
		}
	}
	return lines
}
