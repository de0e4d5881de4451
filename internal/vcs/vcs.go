// Package vcs abstracts the version control backends that diffs are read
// from. Two backends are supported: Git, which shells out to the git binary,
// and Jujutsu, which shells out to jj and synthesizes unified diffs from
// file contents because jj has no diff-tree equivalent.
package vcs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/lenslet/lens/pkg/executil"
)

// Kind identifies a backend implementation.
type Kind int

const (
	KindGit Kind = iota
	KindJujutsu
)

func (k Kind) String() string {
	if k == KindJujutsu {
		return "jj"
	}
	return "git"
}

// CommitInfo is the metadata and patch text for a single commit.
// ChangeID is only populated by the Jujutsu backend.
type CommitInfo struct {
	CommitID string
	ChangeID string
	Message  string
	Diff     string
	Author   string
	Date     string
}

// StackedCommitInfo identifies one commit inside a reviewed range.
type StackedCommitInfo struct {
	CommitID string
	ShortID  string
	ChangeID string
	Summary  string
}

// LogEntry is one row of the revision picker.
type LogEntry struct {
	CommitID string
	ShortID  string
	ChangeID string
	Refs     string
	Summary  string
	When     string
}

// Backend is the set of repository operations the review session needs.
// Implementations run subprocesses under the repository root and must be
// safe for sequential use from a single goroutine.
type Backend interface {
	// Name returns the backend kind for logging and display.
	Name() Kind

	// Root returns the absolute repository root directory.
	Root() string

	// WorkingCopySymbol is the ref that names the working copy in this
	// backend's syntax: "HEAD" for git, "@" for jj.
	WorkingCopySymbol() string

	// WorkingCopyParentRef is the ref the working tree is diffed against:
	// "HEAD" for git, "@-" for jj.
	WorkingCopyParentRef() string

	// Commit returns metadata and the full patch for a single revision.
	Commit(ctx context.Context, ref string) (CommitInfo, error)

	// WorkingTreeDiff returns the unified diff of uncommitted changes.
	// The staged flag limits git to the index; jj has no index and
	// ignores it.
	WorkingTreeDiff(ctx context.Context, staged bool) (string, error)

	// RangeDiff returns the unified diff between two revisions. When
	// threeDot is set the git backend diffs from the merge base; jj
	// compares the two trees directly either way.
	RangeDiff(ctx context.Context, from, to string, threeDot bool) (string, error)

	// ChangedFiles lists the paths touched by a single revision.
	ChangedFiles(ctx context.Context, ref string) ([]string, error)

	// RangeChangedFiles lists the paths that differ between two revisions.
	RangeChangedFiles(ctx context.Context, from, to string) ([]string, error)

	// WorkingTreeChangedFiles lists modified, staged, and untracked paths.
	WorkingTreeChangedFiles(ctx context.Context) ([]string, error)

	// StagedFiles lists the paths staged in the index. Jujutsu has no
	// staging area and reports its working-copy changes instead, so
	// staged reviews degrade to plain working-tree reviews there.
	StagedFiles(ctx context.Context) ([]string, error)

	// StagedContent returns the staged contents of path, or the working
	// copy contents for backends without a staging area. Missing paths
	// report ErrFileNotFound.
	StagedContent(ctx context.Context, path string) (string, error)

	// FileContent returns the contents of path at ref. A missing file
	// (added later, deleted earlier, or outside the tree) reports
	// ErrFileNotFound rather than a command failure.
	FileContent(ctx context.Context, ref, path string) (string, error)

	// CurrentBranch returns the checked-out branch or bookmark name, or
	// "" when detached or unnamed.
	CurrentBranch(ctx context.Context) (string, error)

	// ResolveRef validates ref and returns its canonical commit id.
	// Unknown refs report ErrInvalidRef.
	ResolveRef(ctx context.Context, ref string) (string, error)

	// MergeBase returns the closest common ancestor of two revisions.
	// Unrelated histories report an error; callers fall back to the
	// range start.
	MergeBase(ctx context.Context, a, b string) (string, error)

	// ParentRefOrEmpty returns a ref naming the parent of ref, or the
	// backend's empty-tree ref when ref has no parent, so that root
	// commits diff against nothing.
	ParentRefOrEmpty(ctx context.Context, ref string) (string, error)

	// CommitsInRange lists the commits reachable from to but not from,
	// oldest first, skipping commits that touch no files.
	CommitsInRange(ctx context.Context, from, to string) ([]StackedCommitInfo, error)

	// Log returns up to limit recent commits for the revision picker,
	// newest first.
	Log(ctx context.Context, limit int) ([]LogEntry, error)
}

// Detect walks upward from startDir looking for a repository marker and
// returns the backend kind along with the repository root. A .jj directory
// wins over .git so colocated repositories are treated as Jujutsu. Reaching
// the filesystem root without a marker reports ErrNotARepository.
func Detect(startDir string) (Kind, string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return KindGit, "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".jj")); err == nil && info.IsDir() {
			return KindJujutsu, dir, nil
		}
		// .git may be a plain file in linked worktrees, so existence
		// is enough here.
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return KindGit, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return KindGit, "", ErrNotARepository
		}
		dir = parent
	}
}

// Open detects the repository containing startDir and returns the matching
// backend.
func Open(startDir string, exec executil.Executor) (Backend, error) {
	kind, root, err := Detect(startDir)
	if err != nil {
		return nil, err
	}
	if kind == KindJujutsu {
		return NewJujutsu(root, exec), nil
	}
	return NewGit(root, exec), nil
}
