package review

// HunkStarts returns the row index of each hunk in a paired sequence. A hunk
// is a maximal run of non-Equal rows; hunk navigation jumps between these.
func HunkStarts(rows []DiffLine) []int {
	var starts []int
	inHunk := false
	for i, row := range rows {
		if row.Type != ChangeEqual {
			if !inHunk {
				starts = append(starts, i)
				inHunk = true
			}
		} else {
			inHunk = false
		}
	}
	return starts
}
