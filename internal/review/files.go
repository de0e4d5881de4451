package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/internal/vcs"
)

// Content fetches per load run on this many goroutines at once.
const fetchConcurrency = 8

// FileStatus classifies a file within the comparison.
type FileStatus int

const (
	StatusModified FileStatus = iota
	StatusAdded
	StatusDeleted
)

// Symbol returns the one-letter sidebar marker.
func (s FileStatus) Symbol() string {
	switch s {
	case StatusAdded:
		return "A"
	case StatusDeleted:
		return "D"
	default:
		return "M"
	}
}

// FileDiff is one reviewed file with full contents of both sides.
type FileDiff struct {
	Filename   string
	OldContent string
	NewContent string
	Status     FileStatus
}

// RefsKind discriminates what a review session compares.
type RefsKind int

const (
	// RefsWorkingTree compares uncommitted changes against the working
	// copy's parent.
	RefsWorkingTree RefsKind = iota
	// RefsSingle compares one commit against its parent.
	RefsSingle
	// RefsRange compares two resolved endpoints.
	RefsRange
)

// Refs are the comparison endpoints after range and merge-base handling.
type Refs struct {
	Kind RefsKind
	Ref  string // RefsSingle
	From string // RefsRange
	To   string // RefsRange
	// Staged limits a working-tree comparison to the index.
	Staged bool
}

// LoadOptions select what to review.
type LoadOptions struct {
	// Reference is the parsed revision argument; nil reviews the
	// working tree.
	Reference *vcs.RevisionReference
	// Staged limits a working-tree review to staged changes. Ignored
	// when Reference is set or the backend has no staging area.
	Staged bool
	// Files restricts the review to these paths when non-empty.
	Files []string
}

// Loader reads changed files and their contents from a VCS backend.
type Loader struct {
	backend vcs.Backend
	log     zerolog.Logger
}

// NewLoader returns a loader over the backend.
func NewLoader(backend vcs.Backend) *Loader {
	return &Loader{
		backend: backend,
		log:     logging.Component("review.loader"),
	}
}

// Resolve maps a parsed reference to comparison endpoints. A three-dot
// range resolves its start to the merge base; when the histories are
// unrelated the range start itself is used.
func (l *Loader) Resolve(ctx context.Context, ref *vcs.RevisionReference) Refs {
	if ref == nil {
		return Refs{Kind: RefsWorkingTree}
	}
	switch ref.Kind {
	case vcs.RefRange:
		return Refs{Kind: RefsRange, From: ref.From, To: ref.To}
	case vcs.RefTripleDot:
		from, err := l.backend.MergeBase(ctx, ref.From, ref.To)
		if err != nil {
			l.log.Debug().Ctx(ctx).Str("from", ref.From).Str("to", ref.To).
				Msg("no merge base, comparing from range start")
			from = ref.From
		}
		return Refs{Kind: RefsRange, From: from, To: ref.To}
	default:
		return Refs{Kind: RefsSingle, Ref: ref.Single}
	}
}

// Load lists the changed files for the comparison and fetches both sides
// of each. Denylisted paths are dropped regardless of which backend
// produced the list.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) ([]FileDiff, error) {
	refs := l.Resolve(ctx, opts.Reference)
	if refs.Kind == RefsWorkingTree {
		refs.Staged = opts.Staged
	}
	return l.loadRefs(ctx, refs, opts.Files)
}

// LoadCommit fetches the diffs of a single commit against its parent, for
// stacked navigation.
func (l *Loader) LoadCommit(ctx context.Context, commitID string, filter []string) ([]FileDiff, error) {
	return l.loadRefs(ctx, Refs{Kind: RefsSingle, Ref: commitID}, filter)
}

func (l *Loader) loadRefs(ctx context.Context, refs Refs, filter []string) ([]FileDiff, error) {
	start := time.Now()
	names, err := l.changedFiles(ctx, refs, filter)
	if err != nil {
		return nil, err
	}
	diffs, err := l.fetchAll(ctx, refs, names)
	if err != nil {
		return nil, err
	}
	l.log.Debug().Ctx(ctx).Int("files", len(diffs)).Dur("elapsed", time.Since(start)).
		Msg("loaded file diffs")
	return diffs, nil
}

func (l *Loader) changedFiles(ctx context.Context, refs Refs, filter []string) ([]string, error) {
	var (
		files []string
		err   error
	)
	switch refs.Kind {
	case RefsSingle:
		files, err = l.backend.ChangedFiles(ctx, refs.Ref)
	case RefsRange:
		files, err = l.backend.RangeChangedFiles(ctx, refs.From, refs.To)
	case RefsWorkingTree:
		if refs.Staged {
			files, err = l.backend.StagedFiles(ctx)
		} else {
			files, err = l.backend.WorkingTreeChangedFiles(ctx)
		}
	}
	if err != nil {
		return nil, err
	}

	kept := files[:0]
	for _, f := range files {
		if vcs.Excluded(f) {
			continue
		}
		kept = append(kept, f)
	}
	if len(filter) == 0 {
		return kept, nil
	}

	want := make(map[string]bool, len(filter))
	for _, f := range filter {
		want[f] = true
	}
	selected := kept[:0]
	for _, f := range kept {
		if want[f] {
			selected = append(selected, f)
		}
	}
	return selected, nil
}

func (l *Loader) fetchAll(ctx context.Context, refs Refs, names []string) ([]FileDiff, error) {
	var oldRef string
	switch refs.Kind {
	case RefsSingle:
		r, err := l.backend.ParentRefOrEmpty(ctx, refs.Ref)
		if err != nil {
			return nil, err
		}
		oldRef = r
	case RefsRange:
		oldRef = refs.From
	default:
		oldRef = l.backend.WorkingCopyParentRef()
	}

	diffs := make([]FileDiff, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, name := range names {
		g.Go(func() error {
			oldContent, err := l.contentAt(gctx, oldRef, name)
			if err != nil {
				return err
			}
			var newContent string
			switch refs.Kind {
			case RefsWorkingTree:
				if refs.Staged {
					newContent, err = l.stagedContent(gctx, name)
				} else {
					newContent, err = l.workingTreeContent(name)
				}
			case RefsRange:
				newContent, err = l.contentAt(gctx, refs.To, name)
			default:
				newContent, err = l.contentAt(gctx, refs.Ref, name)
			}
			if err != nil {
				return err
			}
			diffs[i] = FileDiff{
				Filename:   name,
				OldContent: oldContent,
				NewContent: newContent,
				Status:     statusOf(oldContent, newContent),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return diffs, nil
}

// contentAt reads one side of a file. A file missing at the ref is normal,
// the path was added later or deleted earlier, and reads as empty; real
// command failures propagate.
func (l *Loader) contentAt(ctx context.Context, ref, path string) (string, error) {
	content, err := l.backend.FileContent(ctx, ref, path)
	if err != nil {
		if errors.Is(err, vcs.ErrFileNotFound) || errors.Is(err, vcs.ErrInvalidRef) {
			return "", nil
		}
		return "", err
	}
	return content, nil
}

func (l *Loader) stagedContent(ctx context.Context, path string) (string, error) {
	content, err := l.backend.StagedContent(ctx, path)
	if err != nil {
		if errors.Is(err, vcs.ErrFileNotFound) {
			return "", nil
		}
		return "", err
	}
	return content, nil
}

func (l *Loader) workingTreeContent(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(l.backend.Root(), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func statusOf(oldContent, newContent string) FileStatus {
	switch {
	case oldContent == "" && newContent != "":
		return StatusAdded
	case oldContent != "" && newContent == "":
		return StatusDeleted
	default:
		return StatusModified
	}
}
