package tui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"

	"github.com/lenslet/lens/internal/review"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m.handleTick()
	case explainDoneMsg:
		m.explainModal.SetResult(msg.text, msg.err)
		return m, nil
	case editorDoneMsg:
		return m.handleEditorDone(msg)
	case spinner.TickMsg:
		if m.state == stateExplain {
			var cmd tea.Cmd
			m.explainModal, cmd = m.explainModal.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.flash != "" && time.Since(m.flashSet) > flashDuration {
		m.flash = ""
	}
	if paths := m.drainWatcher(); len(paths) > 0 {
		changed := make(map[string]bool, len(paths))
		for _, p := range paths {
			changed[p] = true
		}
		m.reload(changed)
	}
	return m, tick()
}

// drainWatcher collects every change set the watcher has delivered since
// the last tick without blocking.
func (m *Model) drainWatcher() []string {
	if m.watcher == nil {
		return nil
	}
	var paths []string
	for {
		select {
		case ev := <-m.watcher.Events():
			paths = append(paths, ev.Paths...)
		default:
			return paths
		}
	}
}

func (m Model) handleEditorDone(msg editorDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setFlash("editor: " + msg.err.Error())
		return m, nil
	}
	// Watcherless sessions still want edits reflected; commit reviews
	// compare immutable revisions and skip the round trip.
	if m.loadOpts.Reference == nil {
		m.reload(nil)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	switch m.state {
	case stateSearching:
		return m.handleSearchKey(msg)
	case statePicker:
		return m.handlePickerKey(msg)
	case stateHelp:
		return m.handleHelpKey(msg)
	case stateExplain:
		return m.handleExplainKey(msg)
	case stateAnnotating:
		return m.handleAnnotateKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "1":
		s.Focus = review.PanelSidebar
	case "2":
		s.Focus = review.PanelDiff
	case "tab":
		s.ShowSidebar = !s.ShowSidebar
		if !s.ShowSidebar {
			s.Focus = review.PanelDiff
		}

	case "j", "down":
		m.scrollBy(1)
	case "k", "up":
		m.scrollBy(-1)
	case "ctrl+d":
		m.scrollBy(m.diffHeight() / 2)
	case "ctrl+u":
		m.scrollBy(-m.diffHeight() / 2)
	case "pgdown":
		m.scrollBy(20)
	case "pgup":
		m.scrollBy(-20)
	case "g":
		m.scrollTo(0)
	case "G":
		m.scrollTo(len(s.VisibleItems()) + len(s.Rows()))

	case "h":
		m.hscrollBy(-4)
	case "l":
		m.hscrollBy(4)

	case "ctrl+j":
		m.selectFile(s.CurrentFile() + 1)
	case "ctrl+k":
		m.selectFile(s.CurrentFile() - 1)

	case "enter":
		m.openSelected()
	case "space":
		m.toggleViewed()

	case "{":
		if line, ok := s.FocusPrevHunk(); ok {
			s.Scroll = review.AdjustScrollForHunk(line, s.Scroll, m.diffHeight(), s.MaxScroll())
		}
	case "}":
		if line, ok := s.FocusNextHunk(); ok {
			s.Scroll = review.AdjustScrollForHunk(line, s.Scroll, m.diffHeight(), s.MaxScroll())
		}

	case "f":
		m.cycleFullscreen()

	case "/":
		m.state = stateSearching
		m.searchbar.Open()
		s.Search.StartForward()
	case "n":
		if line, ok := s.Search.FindNext(); ok {
			s.Scroll = review.AdjustScrollToLine(line, s.Scroll, m.diffHeight(), s.MaxScroll())
		}
	case "N":
		if line, ok := s.Search.FindPrev(); ok {
			s.Scroll = review.AdjustScrollToLine(line, s.Scroll, m.diffHeight(), s.MaxScroll())
		}
	case "esc":
		if s.Search.HasQuery() {
			s.Search.Clear()
		}

	case "ctrl+p":
		m.state = statePicker
		m.picker = NewPicker("Open file", m.fileItems())

	case "r":
		m.reload(nil)
		m.setFlash("reloaded")

	case "y":
		m.yankFilename()
	case "e":
		return m, m.openEditor()

	case "c":
		if hunk, ok := s.FocusedHunk(); ok {
			m.annotate = NewAnnotateModal(s, s.CurrentFile(), hunk)
			m.state = stateAnnotating
		} else {
			m.setFlash("no hunk to annotate")
		}
	case "x":
		return m.openExplain()

	case "J":
		m.switchCommit(1)
	case "K":
		m.switchCommit(-1)

	case "?":
		m.state = stateHelp
	}
	return m, nil
}

// scrollBy moves the focused panel by delta rows.
func (m *Model) scrollBy(delta int) {
	s := m.session
	if s.Focus == review.PanelSidebar {
		s.MoveSidebarSelection(delta)
		m.followSidebarSelection()
		return
	}
	s.Scroll = clamp(s.Scroll+delta, 0, s.MaxScroll())
}

// scrollTo jumps the focused panel: 0 means top, anything past the end
// clamps to the bottom.
func (m *Model) scrollTo(pos int) {
	s := m.session
	if s.Focus == review.PanelSidebar {
		s.MoveSidebarSelection(pos - s.SidebarSelected())
		m.followSidebarSelection()
		return
	}
	s.Scroll = clamp(pos, 0, s.MaxScroll())
}

func (m *Model) hscrollBy(delta int) {
	s := m.session
	if s.Focus == review.PanelSidebar {
		s.SidebarHScroll = clamp(s.SidebarHScroll+delta, 0, 400)
		return
	}
	s.HScroll = clamp(s.HScroll+delta, 0, 4000)
}

// followSidebarSelection keeps the selected tree row inside the sidebar
// viewport.
func (m *Model) followSidebarSelection() {
	s := m.session
	height := m.sidebarHeight()
	maxScroll := len(s.VisibleItems()) - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	s.SidebarScroll = review.AdjustScrollToLine(s.SidebarSelected(), s.SidebarScroll, height, maxScroll)
}

func (m *Model) selectFile(index int) {
	m.session.SelectFile(index)
	m.syncSidebarToCurrentFile()
	m.refreshSearch()
}

// syncSidebarToCurrentFile moves the tree selection to the active file's
// row when it is visible.
func (m *Model) syncSidebarToCurrentFile() {
	s := m.session
	items := s.Items()
	for pos, idx := range s.VisibleItems() {
		if it := items[idx]; !it.IsDir && it.FileIndex == s.CurrentFile() {
			s.MoveSidebarSelection(pos - s.SidebarSelected())
			m.followSidebarSelection()
			return
		}
	}
}

// openSelected acts on the sidebar selection: directories fold, files load
// into the diff panel.
func (m *Model) openSelected() {
	s := m.session
	if s.Focus != review.PanelSidebar {
		return
	}
	item, ok := s.SelectedItem()
	if !ok {
		return
	}
	if item.IsDir {
		s.ToggleDirectory(item.Path)
		m.followSidebarSelection()
		return
	}
	m.selectFile(item.FileIndex)
	s.Focus = review.PanelDiff
}

// toggleViewed flips the viewed mark and advances to the next unviewed
// file, wrapping around the end of the list.
func (m *Model) toggleViewed() {
	s := m.session
	target := s.CurrentFile()
	if s.Focus == review.PanelSidebar {
		if item, ok := s.SelectedItem(); ok && !item.IsDir {
			target = item.FileIndex
		}
	}
	s.ToggleViewed(target)
	if next, ok := s.NextUnviewedFile(); ok {
		m.selectFile(next)
	}
}

func (m *Model) cycleFullscreen() {
	s := m.session
	switch s.Fullscreen {
	case review.FullscreenNone:
		s.Fullscreen = review.FullscreenNew
	case review.FullscreenNew:
		s.Fullscreen = review.FullscreenOld
	default:
		s.Fullscreen = review.FullscreenNone
	}
	m.refreshSearch()
}

func (m *Model) fileItems() []PickerItem {
	files := m.session.Files()
	items := make([]PickerItem, 0, len(files))
	for i, f := range files {
		hint := f.Status.Symbol()
		if i < len(m.counts) {
			hint = fmt.Sprintf("%s +%d -%d", hint, m.counts[i].Added, m.counts[i].Removed)
		}
		items = append(items, PickerItem{Label: f.Filename, Hint: hint, Value: i})
	}
	return items
}

func (m *Model) yankFilename() {
	file, ok := m.session.CurrentDiff()
	if !ok {
		return
	}
	if err := clipboard.WriteAll(file.Filename); err != nil {
		m.setFlash("yank failed: " + err.Error())
		return
	}
	m.setFlash("yanked " + file.Filename)
}

func (m Model) openEditor() tea.Cmd {
	file, ok := m.session.CurrentDiff()
	if !ok {
		return nil
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	c := exec.Command(editor, filepath.Join(m.root, filepath.FromSlash(file.Filename)))
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

func (m Model) openExplain() (tea.Model, tea.Cmd) {
	if m.explain == nil {
		m.setFlash("assistant not configured")
		return m, nil
	}
	file, ok := m.session.CurrentDiff()
	if !ok {
		return m, nil
	}
	m.explainModal = NewExplainModal("Explain "+file.Filename, m.width, m.height)
	m.state = stateExplain

	explain, ctx := m.explain, m.ctx
	ask := func() tea.Msg {
		text, err := explain(ctx, file)
		return explainDoneMsg{text: text, err: err}
	}
	return m, tea.Batch(ask, m.explainModal.spinner.Tick)
}

// switchCommit moves stacked-range review to an adjacent commit.
func (m *Model) switchCommit(delta int) {
	s := m.session
	if !s.StackedMode() {
		return
	}
	index := s.CurrentCommitIndex() + delta
	commits := s.StackedCommits()
	if index < 0 || index >= len(commits) || m.loader == nil {
		return
	}
	files, err := m.loader.LoadCommit(m.ctx, commits[index].CommitID, m.loadOpts.Files)
	if err != nil {
		m.setFlash("load commit failed: " + err.Error())
		return
	}
	s.SwitchCommit(index, files)
	m.counts = countFiles(files, s.Settings.TabWidth)
	m.refreshSearch()
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch msg.String() {
	case "esc":
		s.Search.Cancel()
		m.searchbar.Close()
		m.state = stateNormal
		return m, nil
	case "enter":
		s.Search.Confirm()
		m.searchbar.Close()
		m.state = stateNormal
		if line, ok := s.Search.JumpToFirstMatch(s.Scroll); ok {
			s.Scroll = review.AdjustScrollToLine(line, s.Scroll, m.diffHeight(), s.MaxScroll())
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.searchbar, cmd = m.searchbar.Update(msg)
	s.Search.Query = m.searchbar.Value()
	s.Search.UpdateMatches(s.Rows(), s.Fullscreen)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateNormal
		return m, nil
	case "enter":
		if item, ok := m.picker.Selected(); ok {
			m.selectFile(item.Value)
			m.session.Focus = review.PanelDiff
		}
		m.state = stateNormal
		return m, nil
	case "up", "ctrl+k":
		m.picker.Move(-1)
		return m, nil
	case "down", "ctrl+j":
		m.picker.Move(1)
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		m.state = stateNormal
	}
	return m, nil
}

func (m Model) handleExplainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.state = stateNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.explainModal, cmd = m.explainModal.Update(msg)
	return m, cmd
}

func (m Model) handleAnnotateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateNormal
		return m, nil
	case "ctrl+s":
		if a, ok := m.annotate.Annotation(); ok {
			m.session.SetAnnotation(a)
			m.setFlash("annotation saved")
		} else {
			m.session.RemoveAnnotation(m.annotate.fileIndex, m.annotate.hunkIndex)
			m.setFlash("annotation removed")
		}
		m.state = stateNormal
		return m, nil
	}
	var cmd tea.Cmd
	m.annotate, cmd = m.annotate.Update(msg)
	return m, cmd
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
