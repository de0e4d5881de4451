package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenslet/lens/internal/vcs"
)

// stubBackend serves canned file lists and per-ref contents.
type stubBackend struct {
	root        string
	singleFiles []string
	singleErr   error
	rangeFiles  []string
	wtFiles     []string
	stagedFiles []string
	staged      map[string]string            // path -> index content
	contents    map[string]map[string]string // ref -> path -> content
	contentErrs map[string]error             // "ref path" -> error
	parents     map[string]string
	mergeBase   string
	mergeErr    error
}

var _ vcs.Backend = (*stubBackend)(nil)

func (b *stubBackend) Name() vcs.Kind               { return vcs.KindGit }
func (b *stubBackend) Root() string                 { return b.root }
func (b *stubBackend) WorkingCopySymbol() string    { return "HEAD" }
func (b *stubBackend) WorkingCopyParentRef() string { return "HEAD" }

func (b *stubBackend) Commit(ctx context.Context, ref string) (vcs.CommitInfo, error) {
	return vcs.CommitInfo{CommitID: ref}, nil
}

func (b *stubBackend) WorkingTreeDiff(ctx context.Context, staged bool) (string, error) {
	return "", nil
}

func (b *stubBackend) RangeDiff(ctx context.Context, from, to string, threeDot bool) (string, error) {
	return "", nil
}

func (b *stubBackend) ChangedFiles(ctx context.Context, ref string) ([]string, error) {
	return b.singleFiles, b.singleErr
}

func (b *stubBackend) RangeChangedFiles(ctx context.Context, from, to string) ([]string, error) {
	return b.rangeFiles, nil
}

func (b *stubBackend) WorkingTreeChangedFiles(ctx context.Context) ([]string, error) {
	return b.wtFiles, nil
}

func (b *stubBackend) StagedFiles(ctx context.Context) ([]string, error) {
	return b.stagedFiles, nil
}

func (b *stubBackend) StagedContent(ctx context.Context, path string) (string, error) {
	content, ok := b.staged[path]
	if !ok {
		return "", vcs.ErrFileNotFound
	}
	return content, nil
}

func (b *stubBackend) FileContent(ctx context.Context, ref, path string) (string, error) {
	if err := b.contentErrs[ref+" "+path]; err != nil {
		return "", err
	}
	content, ok := b.contents[ref][path]
	if !ok {
		return "", vcs.ErrFileNotFound
	}
	return content, nil
}

func (b *stubBackend) CurrentBranch(ctx context.Context) (string, error) { return "main", nil }

func (b *stubBackend) ResolveRef(ctx context.Context, ref string) (string, error) { return ref, nil }

func (b *stubBackend) MergeBase(ctx context.Context, a, c string) (string, error) {
	return b.mergeBase, b.mergeErr
}

func (b *stubBackend) ParentRefOrEmpty(ctx context.Context, ref string) (string, error) {
	return b.parents[ref], nil
}

func (b *stubBackend) CommitsInRange(ctx context.Context, from, to string) ([]vcs.StackedCommitInfo, error) {
	return nil, nil
}

func (b *stubBackend) Log(ctx context.Context, limit int) ([]vcs.LogEntry, error) {
	return nil, nil
}

func singleRef(ref string) *vcs.RevisionReference {
	return &vcs.RevisionReference{Kind: vcs.RefSingle, Single: ref}
}

func TestLoaderSingleCommit(t *testing.T) {
	backend := &stubBackend{
		singleFiles: []string{"a.go", "package-lock.json", "b.go"},
		parents:     map[string]string{"abc": "abc^"},
		contents: map[string]map[string]string{
			"abc^": {"a.go": "old a\n"},
			"abc":  {"a.go": "new a\n", "b.go": "created\n"},
		},
	}
	loader := NewLoader(backend)

	diffs, err := loader.Load(context.Background(), LoadOptions{Reference: singleRef("abc")})
	require.NoError(t, err)

	// The lock file is denylisted and never fetched.
	require.Len(t, diffs, 2)

	assert.Equal(t, "a.go", diffs[0].Filename)
	assert.Equal(t, "old a\n", diffs[0].OldContent)
	assert.Equal(t, "new a\n", diffs[0].NewContent)
	assert.Equal(t, StatusModified, diffs[0].Status)

	// b.go does not exist in the parent, so it loads as an addition.
	assert.Equal(t, "b.go", diffs[1].Filename)
	assert.Equal(t, "", diffs[1].OldContent)
	assert.Equal(t, StatusAdded, diffs[1].Status)
}

func TestLoaderFileFilter(t *testing.T) {
	backend := &stubBackend{
		singleFiles: []string{"a.go", "b.go", "c.go"},
		parents:     map[string]string{"abc": "abc^"},
		contents: map[string]map[string]string{
			"abc^": {"b.go": "old\n"},
			"abc":  {"b.go": "new\n"},
		},
	}
	loader := NewLoader(backend)

	diffs, err := loader.Load(context.Background(), LoadOptions{
		Reference: singleRef("abc"),
		Files:     []string{"b.go"},
	})
	require.NoError(t, err)

	require.Len(t, diffs, 1)
	assert.Equal(t, "b.go", diffs[0].Filename)
}

func TestLoaderWorkingTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.txt"), []byte("working\n"), 0o644))

	backend := &stubBackend{
		root:    root,
		wtFiles: []string{"x.txt", "gone.txt"},
		contents: map[string]map[string]string{
			"HEAD": {"x.txt": "committed\n", "gone.txt": "was here\n"},
		},
	}
	loader := NewLoader(backend)

	diffs, err := loader.Load(context.Background(), LoadOptions{})
	require.NoError(t, err)

	require.Len(t, diffs, 2)
	assert.Equal(t, "committed\n", diffs[0].OldContent)
	assert.Equal(t, "working\n", diffs[0].NewContent)
	assert.Equal(t, StatusModified, diffs[0].Status)

	// Deleted from the working tree: the old side still reads.
	assert.Equal(t, "was here\n", diffs[1].OldContent)
	assert.Equal(t, "", diffs[1].NewContent)
	assert.Equal(t, StatusDeleted, diffs[1].Status)
}

func TestLoaderStaged(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.txt"), []byte("unstaged edit\n"), 0o644))

	backend := &stubBackend{
		root:        root,
		wtFiles:     []string{"x.txt", "untracked.txt"},
		stagedFiles: []string{"x.txt"},
		staged:      map[string]string{"x.txt": "staged\n"},
		contents: map[string]map[string]string{
			"HEAD": {"x.txt": "committed\n"},
		},
	}
	loader := NewLoader(backend)

	diffs, err := loader.Load(context.Background(), LoadOptions{Staged: true})
	require.NoError(t, err)

	// Only the staged path, with index content on the new side.
	require.Len(t, diffs, 1)
	assert.Equal(t, "x.txt", diffs[0].Filename)
	assert.Equal(t, "committed\n", diffs[0].OldContent)
	assert.Equal(t, "staged\n", diffs[0].NewContent)
}

func TestLoaderRangeEndpoints(t *testing.T) {
	backend := &stubBackend{
		rangeFiles: []string{"f.go"},
		contents: map[string]map[string]string{
			"v1": {"f.go": "one\n"},
			"v2": {"f.go": "two\n"},
		},
	}
	loader := NewLoader(backend)

	diffs, err := loader.Load(context.Background(), LoadOptions{
		Reference: &vcs.RevisionReference{Kind: vcs.RefRange, From: "v1", To: "v2"},
	})
	require.NoError(t, err)

	require.Len(t, diffs, 1)
	assert.Equal(t, "one\n", diffs[0].OldContent)
	assert.Equal(t, "two\n", diffs[0].NewContent)
}

func TestLoaderThreeDotResolvesMergeBase(t *testing.T) {
	backend := &stubBackend{
		mergeBase:  "base123",
		rangeFiles: []string{"f.go"},
		contents: map[string]map[string]string{
			"base123": {"f.go": "base\n"},
			"feat":    {"f.go": "feature\n"},
		},
	}
	loader := NewLoader(backend)

	ref := &vcs.RevisionReference{Kind: vcs.RefTripleDot, From: "main", To: "feat"}
	refs := loader.Resolve(context.Background(), ref)
	assert.Equal(t, RefsRange, refs.Kind)
	assert.Equal(t, "base123", refs.From)
	assert.Equal(t, "feat", refs.To)

	diffs, err := loader.Load(context.Background(), LoadOptions{Reference: ref})
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	assert.Equal(t, "base\n", diffs[0].OldContent)
	assert.Equal(t, "feature\n", diffs[0].NewContent)
}

func TestLoaderThreeDotFallsBackWithoutMergeBase(t *testing.T) {
	backend := &stubBackend{mergeErr: errors.New("unrelated histories")}
	loader := NewLoader(backend)

	refs := loader.Resolve(context.Background(), &vcs.RevisionReference{
		Kind: vcs.RefTripleDot, From: "main", To: "feat",
	})

	assert.Equal(t, RefsRange, refs.Kind)
	assert.Equal(t, "main", refs.From)
}

func TestLoaderResolveNilReference(t *testing.T) {
	loader := NewLoader(&stubBackend{})

	refs := loader.Resolve(context.Background(), nil)

	assert.Equal(t, RefsWorkingTree, refs.Kind)
}

func TestLoaderPropagatesListError(t *testing.T) {
	backend := &stubBackend{singleErr: errors.New("git exploded")}
	loader := NewLoader(backend)

	_, err := loader.Load(context.Background(), LoadOptions{Reference: singleRef("abc")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "git exploded")
}

func TestLoaderPropagatesContentError(t *testing.T) {
	backend := &stubBackend{
		singleFiles: []string{"a.go"},
		parents:     map[string]string{"abc": "abc^"},
		contentErrs: map[string]error{"abc^ a.go": errors.New("object store corrupt")},
	}
	loader := NewLoader(backend)

	_, err := loader.Load(context.Background(), LoadOptions{Reference: singleRef("abc")})

	// Only missing-file conditions read as empty; infrastructure failures
	// surface.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "object store corrupt")
}

func TestLoadCommit(t *testing.T) {
	backend := &stubBackend{
		singleFiles: []string{"a.go"},
		parents:     map[string]string{"deadbeef": "deadbeef^"},
		contents: map[string]map[string]string{
			"deadbeef^": {"a.go": "before\n"},
			"deadbeef":  {"a.go": "after\n"},
		},
	}
	loader := NewLoader(backend)

	diffs, err := loader.LoadCommit(context.Background(), "deadbeef", nil)
	require.NoError(t, err)

	require.Len(t, diffs, 1)
	assert.Equal(t, "before\n", diffs[0].OldContent)
	assert.Equal(t, "after\n", diffs[0].NewContent)
}

func TestFileStatusSymbol(t *testing.T) {
	assert.Equal(t, "M", StatusModified.Symbol())
	assert.Equal(t, "A", StatusAdded.Symbol())
	assert.Equal(t, "D", StatusDeleted.Symbol())
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want FileStatus
	}{
		{name: "added", old: "", new: "x\n", want: StatusAdded},
		{name: "deleted", old: "x\n", new: "", want: StatusDeleted},
		{name: "modified", old: "x\n", new: "y\n", want: StatusModified},
		{name: "both empty", old: "", new: "", want: StatusModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.old, tt.new))
		})
	}
}
