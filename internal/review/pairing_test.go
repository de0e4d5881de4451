package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideBySideEqualFiles(t *testing.T) {
	text := "package main\n\nfunc main() {}\n"

	rows := SideBySide(text, text, 4)

	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, ChangeEqual, row.Type)
		require.NotNil(t, row.Old)
		require.NotNil(t, row.New)
		assert.Equal(t, i+1, row.Old.Number)
		assert.Equal(t, i+1, row.New.Number)
		assert.Equal(t, row.Old.Text, row.New.Text)
	}
}

func TestSideBySideReplacePairsPositionally(t *testing.T) {
	rows := SideBySide("a\nb\n", "x\n", 4)

	require.Len(t, rows, 2)

	assert.Equal(t, ChangeModified, rows[0].Type)
	require.NotNil(t, rows[0].Old)
	require.NotNil(t, rows[0].New)
	assert.Equal(t, 1, rows[0].Old.Number)
	assert.Equal(t, "a", rows[0].Old.Text)
	assert.Equal(t, 1, rows[0].New.Number)
	assert.Equal(t, "x", rows[0].New.Text)

	// The replaced run is longer on the old side, so the second row has
	// nothing to pair against.
	assert.Equal(t, ChangeDelete, rows[1].Type)
	require.NotNil(t, rows[1].Old)
	assert.Equal(t, 2, rows[1].Old.Number)
	assert.Equal(t, "b", rows[1].Old.Text)
	assert.Nil(t, rows[1].New)
}

func TestSideBySideReplaceLongerNewSide(t *testing.T) {
	rows := SideBySide("a\n", "x\ny\n", 4)

	require.Len(t, rows, 2)
	assert.Equal(t, ChangeModified, rows[0].Type)
	assert.Equal(t, ChangeInsert, rows[1].Type)
	assert.Nil(t, rows[1].Old)
	require.NotNil(t, rows[1].New)
	assert.Equal(t, 2, rows[1].New.Number)
	assert.Equal(t, "y", rows[1].New.Text)
}

func TestSideBySideInsertBetweenEqualLines(t *testing.T) {
	rows := SideBySide("a\nb\n", "a\nx\nb\n", 4)

	require.Len(t, rows, 3)
	assert.Equal(t, ChangeEqual, rows[0].Type)

	assert.Equal(t, ChangeInsert, rows[1].Type)
	assert.Nil(t, rows[1].Old)
	require.NotNil(t, rows[1].New)
	assert.Equal(t, 2, rows[1].New.Number)
	assert.Equal(t, "x", rows[1].New.Text)

	// Old numbering continues unbroken past the inserted row.
	assert.Equal(t, ChangeEqual, rows[2].Type)
	require.NotNil(t, rows[2].Old)
	assert.Equal(t, 2, rows[2].Old.Number)
	assert.Equal(t, 3, rows[2].New.Number)
}

func TestSideBySideDeleteBetweenEqualLines(t *testing.T) {
	rows := SideBySide("a\nx\nb\n", "a\nb\n", 4)

	require.Len(t, rows, 3)
	assert.Equal(t, ChangeEqual, rows[0].Type)

	assert.Equal(t, ChangeDelete, rows[1].Type)
	require.NotNil(t, rows[1].Old)
	assert.Equal(t, 2, rows[1].Old.Number)
	assert.Nil(t, rows[1].New)

	assert.Equal(t, ChangeEqual, rows[2].Type)
	assert.Equal(t, 3, rows[2].Old.Number)
	assert.Equal(t, 2, rows[2].New.Number)
}

func TestSideBySideMissingTrailingNewline(t *testing.T) {
	// "a" and "a\n" are different physical lines even though they display
	// identically once the terminator is stripped.
	rows := SideBySide("a", "a\n", 4)

	require.Len(t, rows, 1)
	assert.Equal(t, ChangeModified, rows[0].Type)
	assert.Equal(t, "a", rows[0].Old.Text)
	assert.Equal(t, "a", rows[0].New.Text)
}

func TestSideBySideEmptySides(t *testing.T) {
	tests := []struct {
		name     string
		old      string
		new      string
		wantRows int
		wantType ChangeType
	}{
		{name: "both empty", old: "", new: "", wantRows: 0},
		{name: "added file", old: "", new: "a\nb\n", wantRows: 2, wantType: ChangeInsert},
		{name: "deleted file", old: "a\nb\n", new: "", wantRows: 2, wantType: ChangeDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := SideBySide(tt.old, tt.new, 4)
			require.Len(t, rows, tt.wantRows)
			for _, row := range rows {
				assert.Equal(t, tt.wantType, row.Type)
			}
		})
	}
}

func TestSideBySideDisplayText(t *testing.T) {
	rows := SideBySide("\tindented   \n", "\tindented\n", 4)

	// Trailing whitespace is stripped before comparison output, and tabs
	// expand to the configured width.
	require.Len(t, rows, 1)
	assert.Equal(t, ChangeModified, rows[0].Type)
	assert.Equal(t, "    indented", rows[0].Old.Text)
	assert.Equal(t, "    indented", rows[0].New.Text)
}

func TestSideBySidePairingIsTotal(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
	}{
		{name: "disjoint", old: "a\nb\nc\n", new: "x\ny\n"},
		{name: "interleaved", old: "a\nb\nc\nd\n", new: "a\nx\nc\ny\nz\n"},
		{name: "append", old: "a\n", new: "a\nb\nc\n"},
		{name: "truncate", old: "a\nb\nc\n", new: "a\n"},
		{name: "no terminator", old: "a\nb", new: "b\na"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := SideBySide(tt.old, tt.new, 4)

			var oldSeen, newSeen int
			for _, row := range rows {
				require.False(t, row.Old == nil && row.New == nil)
				if row.Old != nil {
					oldSeen++
					assert.Equal(t, oldSeen, row.Old.Number)
				}
				if row.New != nil {
					newSeen++
					assert.Equal(t, newSeen, row.New.Number)
				}
			}
			assert.Equal(t, len(splitLinesKeepEnds(tt.old)), oldSeen)
			assert.Equal(t, len(splitLinesKeepEnds(tt.new)), newSeen)
		})
	}
}

func rowsOf(types ...ChangeType) []DiffLine {
	rows := make([]DiffLine, len(types))
	for i, ct := range types {
		rows[i] = DiffLine{Type: ct}
	}
	return rows
}

func TestHunkStarts(t *testing.T) {
	tests := []struct {
		name string
		rows []DiffLine
		want []int
	}{
		{name: "empty", rows: nil, want: nil},
		{name: "all equal", rows: rowsOf(ChangeEqual, ChangeEqual), want: nil},
		{
			name: "two hunks",
			rows: rowsOf(ChangeEqual, ChangeInsert, ChangeInsert, ChangeEqual, ChangeDelete, ChangeEqual),
			want: []int{1, 4},
		},
		{
			name: "starts with change",
			rows: rowsOf(ChangeDelete, ChangeEqual, ChangeInsert),
			want: []int{0, 2},
		},
		{
			name: "single hunk spans mixed change types",
			rows: rowsOf(ChangeEqual, ChangeModified, ChangeDelete, ChangeInsert),
			want: []int{1},
		},
		{
			name: "all changed",
			rows: rowsOf(ChangeModified, ChangeModified),
			want: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HunkStarts(tt.rows))
		})
	}
}
