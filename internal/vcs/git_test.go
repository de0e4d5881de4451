package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/pkg/executil"
)

// recordedArgs returns the argument list of the first recorded invocation of
// the given subcommand.
func recordedArgs(re *executil.RecordingExecutor, sub string) []string {
	for _, c := range re.Commands {
		if len(c.Args) > 0 && c.Args[0] == sub {
			return c.Args
		}
	}
	return nil
}

func TestGitCommitParsesMetadata(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"cat-file":  []byte("commit\n"),
		"log":       []byte("abc123<<<FIELD>>>Ada Lovelace<<<FIELD>>>ada@example.com<<<FIELD>>>2024-03-01 10:00:00<<<MSG>>>Add parser\n\nHandles nested input.\n"),
		"diff-tree": []byte("diff --git a/main.go b/main.go\n"),
	}}
	g := NewGit("/repo", re)

	info, err := g.Commit(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", info.CommitID)
	assert.Empty(t, info.ChangeID)
	assert.Equal(t, "Ada Lovelace <ada@example.com>", info.Author)
	assert.Equal(t, "2024-03-01 10:00:00", info.Date)
	assert.Equal(t, "Add parser\n\nHandles nested input.", info.Message)
	assert.Equal(t, "diff --git a/main.go b/main.go\n", info.Diff)

	// The patch command carries the lock file exclusions.
	args := recordedArgs(re, "diff-tree")
	require.NotNil(t, args)
	assert.Contains(t, args, "--binary")
	assert.Contains(t, args, ":(exclude)package-lock.json")
	assert.Contains(t, args, ":(exclude)node_modules/**")
}

func TestGitCommitRejectsNonCommitObjects(t *testing.T) {
	// Annotated tags resolve with cat-file but are not commits.
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"cat-file": []byte("tag\n"),
	}}
	g := NewGit("/repo", re)

	_, err := g.Commit(context.Background(), "v1.0.0")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestGitRejectsFlagLikeRefBeforeSpawning(t *testing.T) {
	re := &executil.RecordingExecutor{}
	g := NewGit("/repo", re)

	_, err := g.Commit(context.Background(), "-rf")
	assert.ErrorIs(t, err, ErrInvalidRef)
	assert.Empty(t, re.Commands)
}

func TestGitInvalidRefOnLookupExit(t *testing.T) {
	re := &executil.RecordingExecutor{Errors: map[string]error{
		"cat-file": &exec.ExitError{},
	}}
	g := NewGit("/repo", re)

	_, err := g.ResolveRef(context.Background(), "nosuch")
	assert.ErrorIs(t, err, ErrInvalidRef)
	assert.True(t, Recoverable(err))
}

func TestGitLookupSpawnFailureIsFatal(t *testing.T) {
	re := &executil.RecordingExecutor{Errors: map[string]error{
		"cat-file": errors.New("exec git: executable file not found"),
	}}
	g := NewGit("/repo", re)

	_, err := g.ResolveRef(context.Background(), "main")
	require.Error(t, err)
	assert.False(t, Recoverable(err))

	var cmdErr *CommandError
	assert.ErrorAs(t, err, &cmdErr)
}

func TestGitFileContent(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"show": []byte("package main\n"),
	}}
	g := NewGit("/repo", re)

	content, err := g.FileContent(context.Background(), "abc", "main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", content)
	assert.Equal(t, []string{"show", "abc:main.go"}, recordedArgs(re, "show"))
}

func TestGitFileContentMissing(t *testing.T) {
	re := &executil.RecordingExecutor{Errors: map[string]error{
		"show": &exec.ExitError{},
	}}
	g := NewGit("/repo", re)

	_, err := g.FileContent(context.Background(), "abc", "gone.go")
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.True(t, Recoverable(err))
}

func TestGitChangedFilesSingleCommit(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"diff-tree": []byte("a.go\nb/c.go\n\n"),
	}}
	g := NewGit("/repo", re)

	files, err := g.ChangedFiles(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b/c.go"}, files)
	assert.Equal(t,
		[]string{"diff-tree", "--no-commit-id", "--name-only", "-r", "--root", "abc"},
		recordedArgs(re, "diff-tree"))
}

func TestGitChangedFilesRange(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"diff": []byte("x.go\n"),
	}}
	g := NewGit("/repo", re)

	files, err := g.ChangedFiles(context.Background(), "a...b")
	require.NoError(t, err)
	assert.Equal(t, []string{"x.go"}, files)
	assert.Equal(t, []string{"diff", "--name-only", "a", "b"}, recordedArgs(re, "diff"))
}

func TestGitWorkingTreeChangedFilesUnions(t *testing.T) {
	re := &executil.RecordingExecutor{
		Respond: func(dir, cmd string, args []string) ([]byte, error) {
			switch args[0] {
			case "diff":
				if args[1] == "--cached" {
					return []byte("staged.go\nshared.go\n"), nil
				}
				return []byte("modified.go\nshared.go\n"), nil
			case "ls-files":
				return []byte("untracked.go\n"), nil
			}
			return nil, nil
		},
	}
	g := NewGit("/repo", re)

	files, err := g.WorkingTreeChangedFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"modified.go", "shared.go", "staged.go", "untracked.go"}, files)
}

func TestGitRunCarriesContextLogFields(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel).Hook(logging.ContextHook{})
	t.Cleanup(func() { log.Logger = prev })

	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"diff":     []byte("x.go\n"),
		"ls-files": []byte(""),
	}}
	g := NewGit("/repo", re)

	ctx := logging.WithRef(logging.WithBackend(context.Background(), "git"), "main..feature")
	_, err := g.WorkingTreeChangedFiles(ctx)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"backend":"git"`)
	assert.Contains(t, out, `"ref":"main..feature"`)
}

func TestGitStagedFiles(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"diff": []byte("a.go\nb.go\n"),
	}}
	g := NewGit("/repo", re)

	files, err := g.StagedFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go"}, files)

	args := recordedArgs(re, "diff")
	assert.Contains(t, args, "--cached")
	assert.Contains(t, args, "--name-only")
}

func TestGitStagedContent(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"show": []byte("staged body\n"),
	}}
	g := NewGit("/repo", re)

	content, err := g.StagedContent(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Equal(t, "staged body\n", content)
	assert.Equal(t, []string{"show", ":0:a.go"}, recordedArgs(re, "show"))
}

func TestGitStagedContentMissing(t *testing.T) {
	re := &executil.RecordingExecutor{Errors: map[string]error{
		"show": &exec.ExitError{},
	}}
	g := NewGit("/repo", re)

	_, err := g.StagedContent(context.Background(), "gone.go")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestGitWorkingTreeDiffStaged(t *testing.T) {
	re := &executil.RecordingExecutor{}
	g := NewGit("/repo", re)

	_, err := g.WorkingTreeDiff(context.Background(), true)
	require.NoError(t, err)

	args := recordedArgs(re, "diff")
	assert.Equal(t, "--staged", args[1])
	assert.Contains(t, args, ":(exclude)Cargo.lock")
}

func TestGitRangeDiffThreeDot(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"cat-file": []byte("commit\n"),
	}}
	g := NewGit("/repo", re)

	_, err := g.RangeDiff(context.Background(), "a", "b", true)
	require.NoError(t, err)
	assert.Equal(t, "a...b", recordedArgs(re, "diff")[1])

	re.Reset()
	_, err = g.RangeDiff(context.Background(), "a", "b", false)
	require.NoError(t, err)
	assert.Equal(t, "a..b", recordedArgs(re, "diff")[1])
}

func TestGitParentRefOrEmpty(t *testing.T) {
	// Parent exists.
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"cat-file":  []byte("commit\n"),
		"rev-parse": []byte("def456\n"),
	}}
	g := NewGit("/repo", re)

	parent, err := g.ParentRefOrEmpty(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc^", parent)

	// Root commit: rev-parse --verify fails, fall back to the empty tree.
	re = &executil.RecordingExecutor{
		Outputs: map[string][]byte{"cat-file": []byte("commit\n")},
		Errors:  map[string]error{"rev-parse": &exec.ExitError{}},
	}
	g = NewGit("/repo", re)

	parent, err = g.ParentRefOrEmpty(context.Background(), "root0")
	require.NoError(t, err)
	assert.Equal(t, emptyTreeSHA, parent)
}

func TestGitCurrentBranch(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"rev-parse": []byte("feature/parser\n"),
	}}
	g := NewGit("/repo", re)

	branch, err := g.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "feature/parser", branch)

	// Detached HEAD reports no branch.
	re.Outputs["rev-parse"] = []byte("HEAD\n")
	branch, err = g.CurrentBranch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, branch)
}

func TestGitCommitsInRangeSkipsEmptyCommits(t *testing.T) {
	re := &executil.RecordingExecutor{
		Respond: func(dir, cmd string, args []string) ([]byte, error) {
			switch args[0] {
			case "cat-file":
				return []byte("commit\n"), nil
			case "log":
				return []byte("sha1\x00s1\x00first change\nsha2\x00s2\x00merge branch\n"), nil
			case "diff-tree":
				if strings.Contains(strings.Join(args, " "), "sha1") {
					return []byte("file.go\n"), nil
				}
				return nil, nil
			}
			return nil, nil
		},
	}
	g := NewGit("/repo", re)

	commits, err := g.CommitsInRange(context.Background(), "a", "b")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "sha1", commits[0].CommitID)
	assert.Equal(t, "s1", commits[0].ShortID)
	assert.Equal(t, "first change", commits[0].Summary)
}

func TestGitLogEntries(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"log": []byte("full1\x00ab1\x00 (HEAD -> main)\x00fix the thing\x002 hours ago\n" +
			"full2\x00ab2\x00\x00older change\x003 days ago\n"),
	}}
	g := NewGit("/repo", re)

	entries, err := g.Log(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "full1", entries[0].CommitID)
	assert.Equal(t, "ab1", entries[0].ShortID)
	assert.Equal(t, "HEAD -> main", entries[0].Refs)
	assert.Equal(t, "fix the thing", entries[0].Summary)
	assert.Equal(t, "2 hours ago", entries[0].When)
	assert.Empty(t, entries[1].Refs)

	assert.Contains(t, recordedArgs(re, "log"), "-n")
}

func TestGitWorkingCopySymbols(t *testing.T) {
	g := NewGit("/repo", &executil.RecordingExecutor{})
	assert.Equal(t, "HEAD", g.WorkingCopySymbol())
	assert.Equal(t, "HEAD", g.WorkingCopyParentRef())
	assert.Equal(t, KindGit, g.Name())
	assert.Equal(t, "/repo", g.Root())
}
