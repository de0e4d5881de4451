// Package review holds the state of an interactive code review session:
// the changed-file set, the side-by-side pairing of the active file, hunk
// and search navigation, viewed-file tracking, and the sidebar tree
// projection. The state is owned by a single goroutine; rendering reads it
// through pure queries.
package review

import (
	"strings"

	"github.com/lenslet/lens/internal/vcs"
)

// Panel identifies which pane owns keyboard focus.
type Panel int

const (
	PanelSidebar Panel = iota
	PanelDiff
)

// Fullscreen selects showing both panels or only one side.
type Fullscreen int

const (
	FullscreenNone Fullscreen = iota
	FullscreenOld
	FullscreenNew
)

// Settings are the per-session display knobs.
type Settings struct {
	TabWidth int
	Sticky   StickyConfig
	// Scope overrides the enclosing-scope provider; nil uses the
	// keyword heuristic.
	Scope ScopeProviderFunc
}

// DefaultSettings returns the settings used when no configuration is given.
func DefaultSettings() Settings {
	return Settings{TabWidth: 4, Sticky: DefaultStickyConfig()}
}

// Scroll lands this many rows above the first hunk so some leading context
// is visible.
const hunkLeadIn = 5

// Session is the whole navigation state of one review. Fields that carry
// invariants (the file set, the tree projection, viewed tracking, the
// cached pairing) are private and changed through methods; plain scroll
// and focus state is exported for the input loop to drive directly.
type Session struct {
	Scroll         int
	HScroll        int
	SidebarScroll  int
	SidebarHScroll int
	Focus          Panel
	ShowSidebar    bool
	Fullscreen     Fullscreen
	Settings       Settings
	Search         SearchState

	// BackendName and DiffRef are display context: which VCS the session
	// reads from and the reference argument the review was opened with
	// ("" for the working tree).
	BackendName string
	DiffRef     string

	files           []FileDiff
	items           []SidebarItem
	visible         []int
	collapsed       map[string]bool
	currentFile     int
	sidebarSelected int
	viewed          map[int]bool
	focusedHunk     int // index into hunks, -1 when the file has none

	rows  []DiffLine
	hunks []int

	annotations []HunkAnnotation

	stacked        bool
	stackedCommits []vcs.StackedCommitInfo
	currentCommit  int
	// Viewed filenames per commit id, saved when navigating away and
	// restored when navigating back.
	stackedViewed map[string]map[string]bool
}

// NewSession builds a session over the loaded files, selecting the first
// file and scrolling to just before its first hunk.
func NewSession(files []FileDiff, settings Settings) *Session {
	s := &Session{
		Focus:         PanelDiff,
		ShowSidebar:   true,
		Settings:      settings,
		Search:        NewSearchState(),
		collapsed:     make(map[string]bool),
		viewed:        make(map[int]bool),
		stackedViewed: make(map[string]map[string]bool),
		focusedHunk:   -1,
	}
	s.setFiles(files)
	return s
}

// setFiles swaps in a file set and points the session at the first visible
// file, with scroll at its first hunk.
func (s *Session) setFiles(files []FileDiff) {
	s.files = files
	s.items = BuildTree(files)
	s.visible = visibleIndices(s.items, s.collapsed)
	s.sidebarSelected = s.firstVisibleFilePos()
	s.currentFile = 0
	if pos := s.sidebarSelected; pos < len(s.visible) {
		if it := s.items[s.visible[pos]]; !it.IsDir {
			s.currentFile = it.FileIndex
		}
	}
	s.refreshRows()
	s.scrollToFirstHunk()
	s.HScroll = 0
}

// refreshRows recomputes the cached pairing and hunk list for the current
// file and rebuilds search matches over it.
func (s *Session) refreshRows() {
	if len(s.files) == 0 || s.currentFile >= len(s.files) {
		s.rows = nil
		s.hunks = nil
		s.Search.UpdateMatches(nil, s.Fullscreen)
		return
	}
	f := s.files[s.currentFile]
	s.rows = SideBySide(f.OldContent, f.NewContent, s.Settings.TabWidth)
	s.hunks = HunkStarts(s.rows)
	s.Search.UpdateMatches(s.rows, s.Fullscreen)
}

func (s *Session) scrollToFirstHunk() {
	if len(s.hunks) == 0 {
		s.Scroll = 0
		s.focusedHunk = -1
		return
	}
	s.Scroll = max(s.hunks[0]-hunkLeadIn, 0)
	s.focusedHunk = 0
}

func (s *Session) firstVisibleFilePos() int {
	for pos, idx := range s.visible {
		if !s.items[idx].IsDir {
			return pos
		}
	}
	return 0
}

// Rows returns the paired rows of the active file.
func (s *Session) Rows() []DiffLine {
	return s.rows
}

// Hunks returns the row index of each hunk in the active file.
func (s *Session) Hunks() []int {
	return s.hunks
}

// VisibleRows returns the slice of rows the viewport shows at the current
// scroll for the given content height. Pure; the renderer calls it each
// frame.
func (s *Session) VisibleRows(height int) []DiffLine {
	if height <= 0 || s.Scroll >= len(s.rows) {
		return nil
	}
	end := min(s.Scroll+height, len(s.rows))
	return s.rows[s.Scroll:end]
}

// MaxScroll is the largest useful scroll offset for the active file.
func (s *Session) MaxScroll() int {
	return max(len(s.rows)-1, 0)
}

// Files returns the loaded file set.
func (s *Session) Files() []FileDiff {
	return s.files
}

// FileCount returns the number of files under review.
func (s *Session) FileCount() int {
	return len(s.files)
}

// CurrentFile returns the index of the active file.
func (s *Session) CurrentFile() int {
	return s.currentFile
}

// CurrentDiff returns the active file, if any.
func (s *Session) CurrentDiff() (FileDiff, bool) {
	if len(s.files) == 0 || s.currentFile >= len(s.files) {
		return FileDiff{}, false
	}
	return s.files[s.currentFile], true
}

// SelectFile makes file i active, recomputes its pairing, and resets
// scroll to just before its first hunk and horizontal scroll to zero.
func (s *Session) SelectFile(i int) {
	if i < 0 || i >= len(s.files) {
		return
	}
	s.currentFile = i
	s.Fullscreen = FullscreenNone
	s.refreshRows()
	s.scrollToFirstHunk()
	s.HScroll = 0
}

// Reload swaps in a freshly loaded file set, preserving by filename the
// current selection, scroll (clamped), and viewed membership. Filenames in
// changed had their content touched, so their viewed flag is cleared.
// Annotations reference stale row indices and are dropped.
func (s *Session) Reload(files []FileDiff, changed map[string]bool) {
	var oldFilename string
	if f, ok := s.CurrentDiff(); ok {
		oldFilename = f.Filename
	}
	oldScroll, oldHScroll := s.Scroll, s.HScroll

	viewedNames := s.viewedFilenames()
	for name := range changed {
		delete(viewedNames, name)
	}

	s.files = files
	s.items = BuildTree(files)
	s.visible = visibleIndices(s.items, s.collapsed)
	s.annotations = nil

	s.viewed = make(map[int]bool)
	for i, f := range s.files {
		if viewedNames[f.Filename] {
			s.viewed[i] = true
		}
	}

	s.currentFile = 0
	if oldFilename != "" {
		for i, f := range s.files {
			if f.Filename == oldFilename {
				s.currentFile = i
				break
			}
		}
	}
	if s.currentFile >= len(s.files) && len(s.files) > 0 {
		s.currentFile = len(s.files) - 1
	}
	s.selectSidebarRowForCurrentFile()

	s.refreshRows()
	if len(s.files) > 0 {
		maxScroll := max(len(s.rows)-10, 0)
		s.Scroll = min(oldScroll, maxScroll)
		s.HScroll = oldHScroll
	}
	if s.focusedHunk >= len(s.hunks) {
		s.focusedHunk = len(s.hunks) - 1
	}
}

func (s *Session) viewedFilenames() map[string]bool {
	names := make(map[string]bool, len(s.viewed))
	for idx := range s.viewed {
		if idx < len(s.files) {
			names[s.files[idx].Filename] = true
		}
	}
	return names
}

func (s *Session) selectSidebarRowForCurrentFile() {
	for pos, idx := range s.visible {
		if it := s.items[idx]; !it.IsDir && it.FileIndex == s.currentFile {
			s.sidebarSelected = pos
			return
		}
	}
	s.sidebarSelected = s.firstVisibleFilePos()
}

// Items returns all tree rows, hidden ones included.
func (s *Session) Items() []SidebarItem {
	return s.items
}

// VisibleItems returns indices into Items of the rows the collapse set
// leaves visible, in display order.
func (s *Session) VisibleItems() []int {
	return s.visible
}

// SidebarSelected returns the selection as a position in VisibleItems.
func (s *Session) SidebarSelected() int {
	return s.sidebarSelected
}

// MoveSidebarSelection moves the selection by delta visible rows, clamped.
func (s *Session) MoveSidebarSelection(delta int) {
	if len(s.visible) == 0 {
		return
	}
	s.sidebarSelected = min(max(s.sidebarSelected+delta, 0), len(s.visible)-1)
}

// SelectedItem returns the tree row under the sidebar cursor.
func (s *Session) SelectedItem() (SidebarItem, bool) {
	if s.sidebarSelected >= len(s.visible) {
		return SidebarItem{}, false
	}
	return s.items[s.visible[s.sidebarSelected]], true
}

// Collapsed reports whether the directory is collapsed.
func (s *Session) Collapsed(path string) bool {
	return s.collapsed[path]
}

// ToggleDirectory flips a directory's collapsed state and recomputes the
// visible projection. If the selected row ends up hidden, the nearest
// visible ancestor is selected instead.
func (s *Session) ToggleDirectory(path string) {
	if s.collapsed[path] {
		delete(s.collapsed, path)
	} else {
		s.collapsed[path] = true
	}

	prior := -1
	if s.sidebarSelected < len(s.visible) {
		prior = s.visible[s.sidebarSelected]
	}
	s.visible = visibleIndices(s.items, s.collapsed)

	if prior < 0 {
		s.sidebarSelected = 0
		return
	}
	for pos, idx := range s.visible {
		if idx == prior {
			s.sidebarSelected = pos
			return
		}
	}
	s.selectNearestVisibleAncestor(s.items[prior].Path)
}

func (s *Session) selectNearestVisibleAncestor(path string) {
	for {
		idx := strings.LastIndexByte(path, '/')
		if idx < 0 {
			s.sidebarSelected = 0
			return
		}
		path = path[:idx]
		for pos, itemIdx := range s.visible {
			if it := s.items[itemIdx]; it.IsDir && it.Path == path {
				s.sidebarSelected = pos
				return
			}
		}
	}
}

// IsViewed reports whether file i is marked reviewed.
func (s *Session) IsViewed(i int) bool {
	return s.viewed[i]
}

// ToggleViewed flips the reviewed mark on file i.
func (s *Session) ToggleViewed(i int) {
	if i < 0 || i >= len(s.files) {
		return
	}
	if s.viewed[i] {
		delete(s.viewed, i)
	} else {
		s.viewed[i] = true
	}
}

// ViewedCount returns how many files are marked reviewed.
func (s *Session) ViewedCount() int {
	return len(s.viewed)
}

// NextUnviewedFile returns the first visible file after the current one,
// wrapping, that is not marked reviewed.
func (s *Session) NextUnviewedFile() (int, bool) {
	var order []int
	for _, idx := range s.visible {
		if it := s.items[idx]; !it.IsDir {
			order = append(order, it.FileIndex)
		}
	}
	if len(order) == 0 {
		return 0, false
	}
	at := 0
	for i, fi := range order {
		if fi == s.currentFile {
			at = i
			break
		}
	}
	for step := 1; step <= len(order); step++ {
		fi := order[(at+step)%len(order)]
		if !s.viewed[fi] {
			return fi, true
		}
	}
	return 0, false
}

// DirAllViewed reports whether the directory has file rows and every one
// of them is marked reviewed.
func (s *Session) DirAllViewed(dir string) bool {
	prefix := dir + "/"
	found := false
	for _, it := range s.items {
		if it.IsDir || !strings.HasPrefix(it.Path, prefix) {
			continue
		}
		found = true
		if !s.viewed[it.FileIndex] {
			return false
		}
	}
	return found
}

// FocusedHunk returns the index of the focused hunk, if any.
func (s *Session) FocusedHunk() (int, bool) {
	if s.focusedHunk < 0 || s.focusedHunk >= len(s.hunks) {
		return 0, false
	}
	return s.focusedHunk, true
}

// FocusNextHunk advances hunk focus and returns the hunk's row index.
func (s *Session) FocusNextHunk() (int, bool) {
	if len(s.hunks) == 0 {
		return 0, false
	}
	if s.focusedHunk < len(s.hunks)-1 {
		s.focusedHunk++
	}
	return s.hunks[s.focusedHunk], true
}

// FocusPrevHunk steps hunk focus back and returns the hunk's row index.
func (s *Session) FocusPrevHunk() (int, bool) {
	if len(s.hunks) == 0 {
		return 0, false
	}
	if s.focusedHunk > 0 {
		s.focusedHunk--
	}
	return s.hunks[max(s.focusedHunk, 0)], true
}

// AdjustScrollToLine moves scroll only when line falls outside a margin
// band near the top or bottom of the content area, and returns the new
// scroll.
func AdjustScrollToLine(line, scroll, visibleHeight, maxScroll int) int {
	const margin = 10
	content := max(visibleHeight-2, 0)

	newScroll := scroll
	if line < scroll+margin {
		newScroll = max(line-margin, 0)
	} else if line >= scroll+max(content-margin, 0) {
		newScroll = max(line-max(max(content-margin, 0)-1, 0), 0)
	}
	return min(newScroll, maxScroll)
}

// AdjustScrollForHunk is AdjustScrollToLine with a deeper bottom margin so
// a focused hunk keeps trailing context visible.
func AdjustScrollForHunk(hunkLine, scroll, visibleHeight, maxScroll int) int {
	const (
		topMargin    = 5
		bottomMargin = 25
	)
	content := max(visibleHeight-2, 0)

	if hunkLine < scroll+topMargin {
		return min(max(hunkLine-topMargin, 0), maxScroll)
	}
	if hunkLine >= scroll+max(content-bottomMargin, 0) {
		return min(max(hunkLine-max(max(content-bottomMargin, 0)-1, 0), 0), maxScroll)
	}
	return scroll
}

// InitStackedMode seeds stacked navigation with an ordered commit list and
// selects the first commit.
func (s *Session) InitStackedMode(commits []vcs.StackedCommitInfo) {
	s.stacked = true
	s.stackedCommits = commits
	s.currentCommit = 0
}

// StackedMode reports whether the session reviews a range commit by commit.
func (s *Session) StackedMode() bool {
	return s.stacked
}

// StackedCommits returns the ordered commit list.
func (s *Session) StackedCommits() []vcs.StackedCommitInfo {
	return s.stackedCommits
}

// CurrentCommitIndex returns the position of the commit under review.
func (s *Session) CurrentCommitIndex() int {
	return s.currentCommit
}

// CurrentCommit returns the commit under review in stacked mode.
func (s *Session) CurrentCommit() (vcs.StackedCommitInfo, bool) {
	if !s.stacked || s.currentCommit >= len(s.stackedCommits) {
		return vcs.StackedCommitInfo{}, false
	}
	return s.stackedCommits[s.currentCommit], true
}

// SaveStackedViewed snapshots the viewed set under the current commit's id.
func (s *Session) SaveStackedViewed() {
	commit, ok := s.CurrentCommit()
	if !ok {
		return
	}
	s.stackedViewed[commit.CommitID] = s.viewedFilenames()
}

// LoadStackedViewed replaces the viewed set with the one saved for the
// current commit, or clears it when none was saved.
func (s *Session) LoadStackedViewed() {
	commit, ok := s.CurrentCommit()
	if !ok {
		return
	}
	s.viewed = make(map[int]bool)
	saved := s.stackedViewed[commit.CommitID]
	for i, f := range s.files {
		if saved[f.Filename] {
			s.viewed[i] = true
		}
	}
}

// SwitchCommit saves the outgoing commit's viewed set, swaps in the given
// commit's files, and restores that commit's saved viewed set.
func (s *Session) SwitchCommit(index int, files []FileDiff) {
	if !s.stacked || index < 0 || index >= len(s.stackedCommits) {
		return
	}
	s.SaveStackedViewed()
	s.currentCommit = index
	s.setFiles(files)
	s.LoadStackedViewed()
}
