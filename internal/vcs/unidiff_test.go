package vcs

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestFormatUnifiedModified(t *testing.T) {
	old := "one\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nnine\nten\n"
	updated := strings.Replace(old, "five", "FIVE", 1)

	got := FormatUnified([]FileChange{{Path: "f.txt", Old: &old, New: &updated}})

	want := strings.Join([]string{
		"diff --git a/f.txt b/f.txt",
		"--- a/f.txt",
		"+++ b/f.txt",
		"@@ -2,7 +2,7 @@",
		" two",
		" three",
		" four",
		"-five",
		"+FIVE",
		" six",
		" seven",
		" eight",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatUnifiedChangeAtFirstLine(t *testing.T) {
	old := "alpha\nbeta\ngamma\n"
	updated := "ALPHA\nbeta\ngamma\n"

	got := FormatUnified([]FileChange{{Path: "f", Old: &old, New: &updated}})

	assert.Contains(t, got, "@@ -1,3 +1,3 @@\n")
	assert.Contains(t, got, "-alpha\n+ALPHA\n")
}

func TestFormatUnifiedAddedFile(t *testing.T) {
	got := FormatUnified([]FileChange{{Path: "f", New: strptr("a\nb\n")}})

	want := "diff --git a/f b/f\n" +
		"new file mode 100644\n" +
		"--- /dev/null\n" +
		"+++ b/f\n" +
		"@@ -1,0 +1,2 @@\n" +
		"+a\n" +
		"+b\n"
	assert.Equal(t, want, got)
}

func TestFormatUnifiedDeletedFile(t *testing.T) {
	got := FormatUnified([]FileChange{{Path: "f", Old: strptr("a\nb\n")}})

	want := "diff --git a/f b/f\n" +
		"deleted file mode 100644\n" +
		"--- a/f\n" +
		"+++ /dev/null\n" +
		"@@ -1,2 +1,0 @@\n" +
		"-a\n" +
		"-b\n"
	assert.Equal(t, want, got)
}

func TestFormatUnifiedAddedEmptyFile(t *testing.T) {
	got := FormatUnified([]FileChange{{Path: "f", New: strptr("")}})

	// Headers only: an empty file has no hunk.
	want := "diff --git a/f b/f\n" +
		"new file mode 100644\n" +
		"--- /dev/null\n" +
		"+++ b/f\n"
	assert.Equal(t, want, got)
}

func TestFormatUnifiedIdenticalContent(t *testing.T) {
	same := "a\nb\n"
	assert.Empty(t, FormatUnified([]FileChange{{Path: "f", Old: &same, New: &same}}))
	assert.Empty(t, FormatUnified([]FileChange{{Path: "f", Old: strptr(""), New: strptr("")}}))
}

func TestFormatHunksBridgesShortGaps(t *testing.T) {
	lines := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("line%d", i)
		}
		return out
	}

	// Two changes separated by four unchanged lines stay in one hunk.
	near := lines(10)
	old := strings.Join(near, "\n") + "\n"
	near[0] = "changed0"
	near[5] = "changed5"
	updated := strings.Join(near, "\n") + "\n"
	got := formatHunks(old, updated)
	assert.Equal(t, 1, strings.Count(got, "@@ -"))

	// Seven unchanged lines between changes split the hunks.
	far := lines(12)
	old = strings.Join(far, "\n") + "\n"
	far[0] = "changed0"
	far[8] = "changed8"
	updated = strings.Join(far, "\n") + "\n"
	got = formatHunks(old, updated)
	assert.Equal(t, 2, strings.Count(got, "@@ -"))
}

func TestFormatHunksLeadingContextClamped(t *testing.T) {
	// A change at line N opens its hunk at max(N-3, 1).
	base := make([]string, 10)
	for i := range base {
		base[i] = fmt.Sprintf("line%d", i+1)
	}
	old := strings.Join(base, "\n") + "\n"

	for n := 1; n <= 10; n++ {
		changed := make([]string, len(base))
		copy(changed, base)
		changed[n-1] = "changed"
		got := formatHunks(old, strings.Join(changed, "\n")+"\n")

		header := ""
		for _, line := range strings.Split(got, "\n") {
			if strings.HasPrefix(line, "@@ ") {
				header = line
				break
			}
		}
		require.NotEmpty(t, header, "line %d", n)

		var oldStart, oldCount, newStart, newCount int
		_, err := fmt.Sscanf(header, "@@ -%d,%d +%d,%d @@", &oldStart, &oldCount, &newStart, &newCount)
		require.NoError(t, err, "line %d header %q", n, header)
		assert.Equal(t, max(n-3, 1), oldStart, "line %d", n)
	}
}

func TestFormatHunksTrailingNewlineOnlyChange(t *testing.T) {
	// The line diff sees identical lines; the whole-file fallback still
	// reports the change.
	got := formatHunks("a", "a\n")
	assert.Equal(t, "@@ -1,1 +1,1 @@\n-a\n+a\n", got)
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "no trailing newline", in: "a", want: []string{"a"}},
		{name: "trailing newline", in: "a\n", want: []string{"a"}},
		{name: "blank line kept", in: "a\n\n", want: []string{"a", ""}},
		{name: "lone newline", in: "\n", want: []string{""}},
		{name: "crlf", in: "a\r\nb\n", want: []string{"a", "b"}},
		{name: "crlf no trailing", in: "a\r\nb", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.in))
		})
	}
}
