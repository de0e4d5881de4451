package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAnnotationReplacesSameHunk(t *testing.T) {
	s := NewSession([]FileDiff{modifiedFile("a.go", 5, 1)}, DefaultSettings())

	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 0, Content: "first", Filename: "a.go"})
	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 0, Content: "second", Filename: "a.go"})

	require.Len(t, s.Annotations(), 1)
	a, ok := s.Annotation(0, 0)
	require.True(t, ok)
	assert.Equal(t, "second", a.Content)
}

func TestRemoveAnnotation(t *testing.T) {
	s := NewSession([]FileDiff{modifiedFile("a.go", 10, 1, 5)}, DefaultSettings())

	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 0, Content: "one", Filename: "a.go"})
	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 1, Content: "two", Filename: "a.go"})

	s.RemoveAnnotation(0, 0)

	require.Len(t, s.Annotations(), 1)
	_, ok := s.Annotation(0, 0)
	assert.False(t, ok)
	a, ok := s.Annotation(0, 1)
	require.True(t, ok)
	assert.Equal(t, "two", a.Content)
}

func TestExportAnnotationModifiedHunk(t *testing.T) {
	s := NewSession([]FileDiff{{
		Filename:   "pkg/parse.go",
		OldContent: "a\nb\nc\n",
		NewContent: "a\nX\nc\n",
	}}, DefaultSettings())

	s.SetAnnotation(HunkAnnotation{
		FileIndex: 0,
		HunkIndex: 0,
		Content:   "why did this change?",
		Filename:  "pkg/parse.go",
	})

	want := "## pkg/parse.go:L2\n" +
		"```diff\n" +
		"- b\n" +
		"+ X\n" +
		"```\n" +
		"**Note:** why did this change?\n"
	assert.Equal(t, want, s.ExportAnnotations())
}

func TestExportAnnotationRangeAndHeader(t *testing.T) {
	s := NewSession([]FileDiff{{
		Filename:   "a.go",
		OldContent: "a\nb\nc\nd\n",
		NewContent: "a\nX\nY\nd\n",
	}}, DefaultSettings())
	s.DiffRef = "main..feature"

	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 0, Content: "note", Filename: "a.go"})

	out := s.ExportAnnotations()
	assert.Contains(t, out, "# Annotations for diff: main..feature\n\n")
	assert.Contains(t, out, "## a.go:L2-3\n")
}

func TestExportAnnotationDeletedHunk(t *testing.T) {
	s := NewSession([]FileDiff{{
		Filename:   "a.go",
		OldContent: "a\nb\nc\n",
		NewContent: "a\nc\n",
	}}, DefaultSettings())

	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 0, Content: "gone", Filename: "a.go"})

	out := s.ExportAnnotations()
	assert.Contains(t, out, "## a.go (deleted from base:L2)\n")
	assert.Contains(t, out, "- b\n")

	// With a range reference the base side names the range start.
	s.DiffRef = "main...feature"
	out = s.ExportAnnotations()
	assert.Contains(t, out, "(deleted from main:L2)")
}

func TestExportAnnotationLongHunkOmitsBody(t *testing.T) {
	s := NewSession([]FileDiff{{
		Filename:   "a.go",
		OldContent: "a\nb\nc\nd\ne\nf\n",
		NewContent: "a\nU\nV\nW\nX\nf\n",
	}}, DefaultSettings())

	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 0, Content: "big", Filename: "a.go"})

	// Four modified rows excerpt to eight diff lines, past the budget.
	out := s.ExportAnnotations()
	assert.NotContains(t, out, "```diff")
	assert.Contains(t, out, "## a.go:L2-5\n")
	assert.Contains(t, out, "**Note:** big\n")
}

func TestExportAnnotationStaleHunkUsesStoredRange(t *testing.T) {
	s := NewSession([]FileDiff{modifiedFile("a.go", 5, 1)}, DefaultSettings())

	s.SetAnnotation(HunkAnnotation{
		FileIndex: 0,
		HunkIndex: 7, // no such hunk anymore
		Content:   "stale",
		StartLine: 10,
		EndLine:   12,
		Filename:  "a.go",
	})

	assert.Contains(t, s.ExportAnnotations(), "## a.go:L10-12\n")
}

func TestExportAnnotationsMultiple(t *testing.T) {
	s := NewSession([]FileDiff{
		{Filename: "a.go", OldContent: "a\nb\n", NewContent: "a\nX\n"},
		{Filename: "b.go", OldContent: "p\nq\n", NewContent: "p\nQ\n"},
	}, DefaultSettings())

	s.SetAnnotation(HunkAnnotation{FileIndex: 0, HunkIndex: 0, Content: "one", Filename: "a.go"})
	s.SetAnnotation(HunkAnnotation{FileIndex: 1, HunkIndex: 0, Content: "two", Filename: "b.go"})

	out := s.ExportAnnotations()

	// The second file is not the active one; its hunk is recomputed for
	// the excerpt.
	assert.Contains(t, out, "## a.go:L2\n")
	assert.Contains(t, out, "## b.go:L2\n")
	assert.Contains(t, out, "+ Q\n")
	assert.Len(t, s.Annotations(), 2)
}
