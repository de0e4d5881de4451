// Package tui is the interactive review surface: a Bubble Tea program
// with a file tree sidebar and a side-by-side diff view over a review
// session. All session state lives in internal/review; this package owns
// input routing and rendering only.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/lenslet/lens/internal/review"
	"github.com/lenslet/lens/internal/watch"
)

// ExplainFunc produces the assistant's explanation for one file's change.
type ExplainFunc func(ctx context.Context, file review.FileDiff) (string, error)

// Options configure a review TUI run.
type Options struct {
	Session *review.Session
	// Loader feeds reloads and stacked navigation; nil disables both
	// (pull request reviews have no local loader).
	Loader      *review.Loader
	LoadOptions review.LoadOptions
	// Watcher feeds live reloads; nil disables them.
	Watcher *watch.Watcher
	// Root is the repository root, used to resolve editor paths.
	Root string
	// Explain backs the assistant modal; nil disables it.
	Explain ExplainFunc
}

// uiState selects which surface owns the keyboard.
type uiState int

const (
	stateNormal uiState = iota
	stateSearching
	statePicker
	stateHelp
	stateExplain
	stateAnnotating
)

// flashDuration is how long a transient status message stays visible.
const flashDuration = 3 * time.Second

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	session  *review.Session
	loader   *review.Loader
	loadOpts review.LoadOptions
	watcher  *watch.Watcher
	root     string
	explain  ExplainFunc

	state        uiState
	searchbar    Searchbar
	picker       Picker
	annotate     AnnotateModal
	explainModal ExplainModal

	counts []FileCounts

	width    int
	height   int
	flash    string
	flashSet time.Time
	quitting bool
}

// New builds the root model over a prepared session.
func New(ctx context.Context, opts Options) Model {
	return Model{
		ctx:       ctx,
		session:   opts.Session,
		loader:    opts.Loader,
		loadOpts:  opts.LoadOptions,
		watcher:   opts.Watcher,
		root:      opts.Root,
		explain:   opts.Explain,
		searchbar: NewSearchbar(),
		counts:    countFiles(opts.Session.Files(), opts.Session.Settings.TabWidth),
		width:     80,
		height:    24,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Run drives the review TUI until the user quits. The final session state,
// annotations included, stays visible to the caller through opts.Session.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(ctx, opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// setFlash shows a transient message in the status bar.
func (m *Model) setFlash(text string) {
	m.flash = text
	m.flashSet = time.Now()
}

// reload fetches a fresh file set and swaps it into the session. Load
// failures keep the prior state and surface in the status bar.
func (m *Model) reload(changed map[string]bool) {
	files, err := m.loadFiles()
	if err != nil {
		m.setFlash("reload failed: " + err.Error())
		return
	}
	m.session.Reload(files, changed)
	m.counts = countFiles(files, m.session.Settings.TabWidth)
	m.refreshSearch()
}

func (m *Model) loadFiles() ([]review.FileDiff, error) {
	if m.loader == nil {
		// Pull request reviews have no local loader behind them.
		return nil, errors.New("reload unavailable for this review")
	}
	if commit, ok := m.session.CurrentCommit(); ok {
		return m.loader.LoadCommit(m.ctx, commit.CommitID, m.loadOpts.Files)
	}
	return m.loader.Load(m.ctx, m.loadOpts)
}

// refreshSearch rebuilds match positions against the current rows.
func (m *Model) refreshSearch() {
	if m.session.Search.HasQuery() {
		m.session.Search.UpdateMatches(m.session.Rows(), m.session.Fullscreen)
	}
}
