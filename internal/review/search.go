package review

import "strings"

// SearchDirection is the direction matches are walked in.
type SearchDirection int

const (
	SearchForward SearchDirection = iota
	SearchBackward
)

// SearchMode tracks whether the search bar is accepting input.
type SearchMode int

const (
	SearchInactive SearchMode = iota
	SearchInputForward
	SearchInputBackward
)

// MatchPanel tags which side of the view a match was found in.
type MatchPanel int

const (
	MatchOld MatchPanel = iota
	MatchNew
)

// SearchMatch locates one occurrence of the query: a row index, the byte
// range within that side's text, and the panel it is in.
type SearchMatch struct {
	Line  int
	Start int
	End   int
	Panel MatchPanel
}

// LineMatch is a match projected onto one rendered line.
type LineMatch struct {
	Start   int
	End     int
	Current bool
}

// SearchState holds the query, the materialized match list over the active
// file's rows, and which match is current. The current match is identified
// by position and panel, not list index, so it survives a rebuild.
type SearchState struct {
	Mode      SearchMode
	Query     string
	Direction SearchDirection

	matches []SearchMatch
	current int // index into matches, -1 when none
}

// NewSearchState returns an inactive search with no current match.
func NewSearchState() SearchState {
	return SearchState{current: -1}
}

// StartForward opens the search bar for a forward search.
func (s *SearchState) StartForward() {
	s.Mode = SearchInputForward
	s.reset()
}

// StartBackward opens the search bar for a backward search.
func (s *SearchState) StartBackward() {
	s.Mode = SearchInputBackward
	s.reset()
}

// Cancel closes the search bar and drops the query and matches.
func (s *SearchState) Cancel() {
	s.Mode = SearchInactive
	s.reset()
}

// Clear drops the query and matches but leaves the mode alone.
func (s *SearchState) Clear() {
	s.reset()
}

func (s *SearchState) reset() {
	s.Query = ""
	s.matches = nil
	s.current = -1
}

// Confirm leaves input mode, committing the direction the bar was opened
// with when a query was entered.
func (s *SearchState) Confirm() {
	if s.Query != "" {
		switch s.Mode {
		case SearchInputForward:
			s.Direction = SearchForward
		case SearchInputBackward:
			s.Direction = SearchBackward
		}
	}
	s.Mode = SearchInactive
}

// Active reports whether the search bar is accepting input.
func (s *SearchState) Active() bool {
	return s.Mode != SearchInactive
}

// HasQuery reports whether a query is set.
func (s *SearchState) HasQuery() bool {
	return s.Query != ""
}

// UpdateMatches rebuilds the match list over rows, case-insensitively, in
// both panels except the one a fullscreen mode hides. The current match is
// re-identified by (line, start, end, panel); if it no longer exists, the
// nearest match at or after its previous line becomes current.
func (s *SearchState) UpdateMatches(rows []DiffLine, fullscreen Fullscreen) {
	if s.Query == "" {
		s.matches = nil
		s.current = -1
		return
	}

	var prev *SearchMatch
	if s.current >= 0 && s.current < len(s.matches) {
		m := s.matches[s.current]
		prev = &m
	}

	s.matches = nil
	queryLower := strings.ToLower(s.Query)
	queryLen := len(s.Query)

	for i, row := range rows {
		if fullscreen != FullscreenNew && row.Old != nil {
			s.appendMatches(row.Old.Text, queryLower, queryLen, i, MatchOld)
		}
		if fullscreen != FullscreenOld && row.New != nil {
			s.appendMatches(row.New.Text, queryLower, queryLen, i, MatchNew)
		}
	}

	s.current = -1
	if prev == nil {
		return
	}
	for i, m := range s.matches {
		if m == *prev {
			s.current = i
			return
		}
	}
	if len(s.matches) == 0 {
		return
	}
	s.current = 0
	for i, m := range s.matches {
		if m.Line >= prev.Line {
			s.current = i
			return
		}
	}
}

func (s *SearchState) appendMatches(text, queryLower string, queryLen, line int, panel MatchPanel) {
	textLower := strings.ToLower(text)
	start := 0
	for {
		pos := strings.Index(textLower[start:], queryLower)
		if pos < 0 {
			return
		}
		abs := start + pos
		s.matches = append(s.matches, SearchMatch{
			Line:  line,
			Start: abs,
			End:   abs + queryLen,
			Panel: panel,
		})
		start = abs + 1
	}
}

// FindNext advances to the next match, wrapping, and returns its row.
func (s *SearchState) FindNext() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	next := max(s.current, 0) + 1
	if next >= len(s.matches) {
		next = 0
	}
	s.current = next
	return s.matches[next].Line, true
}

// FindPrev steps back to the previous match, wrapping, and returns its row.
func (s *SearchState) FindPrev() (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	prev := max(s.current, 0) - 1
	if prev < 0 {
		prev = len(s.matches) - 1
	}
	s.current = prev
	return s.matches[prev].Line, true
}

// JumpToFirstMatch selects the first match at or after scroll when
// searching forward, or the last match at or before scroll when searching
// backward, and returns its row.
func (s *SearchState) JumpToFirstMatch(scroll int) (int, bool) {
	if len(s.matches) == 0 {
		return 0, false
	}
	idx := 0
	switch s.Direction {
	case SearchForward:
		for i, m := range s.matches {
			if m.Line >= scroll {
				idx = i
				break
			}
		}
	case SearchBackward:
		idx = len(s.matches) - 1
		for i := len(s.matches) - 1; i >= 0; i-- {
			if s.matches[i].Line <= scroll {
				idx = i
				break
			}
		}
	}
	s.current = idx
	return s.matches[idx].Line, true
}

// MatchCount returns the number of matches.
func (s *SearchState) MatchCount() int {
	return len(s.matches)
}

// CurrentMatch returns the current match, if any.
func (s *SearchState) CurrentMatch() (SearchMatch, bool) {
	if s.current < 0 || s.current >= len(s.matches) {
		return SearchMatch{}, false
	}
	return s.matches[s.current], true
}

// CurrentIndex returns the current match's position in the list, for the
// "n/total" indicator.
func (s *SearchState) CurrentIndex() (int, bool) {
	if s.current < 0 || s.current >= len(s.matches) {
		return 0, false
	}
	return s.current, true
}

// MatchesForLine returns the matches on one rendered line of one panel.
func (s *SearchState) MatchesForLine(line int, panel MatchPanel) []LineMatch {
	var out []LineMatch
	for i, m := range s.matches {
		if m.Line == line && m.Panel == panel {
			out = append(out, LineMatch{Start: m.Start, End: m.End, Current: i == s.current})
		}
	}
	return out
}
