package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/vcs"
	"github.com/lenslet/lens/pkg/executil"
)

func TestBuildSubjectWorkingTree(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"diff": []byte("diff --git a/a.go b/a.go\n"),
	}}
	backend := vcs.NewGit("/repo", re)

	subject, err := buildSubject(context.Background(), backend, "", false)
	require.NoError(t, err)

	assert.Equal(t, ai.SubjectWorkingTree, subject.Kind)
	assert.Equal(t, "diff --git a/a.go b/a.go\n", subject.Diff)
	assert.False(t, subject.Staged)
}

func TestBuildSubjectStagedPassesFlag(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"diff": []byte("x\n"),
	}}
	backend := vcs.NewGit("/repo", re)

	subject, err := buildSubject(context.Background(), backend, "", true)
	require.NoError(t, err)

	assert.True(t, subject.Staged)
	assert.Contains(t, re.Commands[0].Args, "--staged")
}

func TestBuildSubjectCommit(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"cat-file":  []byte("commit\n"),
		"log":       []byte("abc<<<FIELD>>>Ada<<<FIELD>>>ada@x.io<<<FIELD>>>2024-01-01 09:00:00<<<MSG>>>msg\n"),
		"diff-tree": []byte("patch\n"),
	}}
	backend := vcs.NewGit("/repo", re)

	subject, err := buildSubject(context.Background(), backend, "abc", false)
	require.NoError(t, err)

	assert.Equal(t, ai.SubjectCommit, subject.Kind)
	require.NotNil(t, subject.Commit)
	assert.Equal(t, "abc", subject.Commit.CommitID)
	assert.Equal(t, "patch\n", subject.Diff)
}

func TestBuildSubjectRange(t *testing.T) {
	re := &executil.RecordingExecutor{Outputs: map[string][]byte{
		"cat-file": []byte("commit\n"),
		"diff":     []byte("range patch\n"),
	}}
	backend := vcs.NewGit("/repo", re)

	subject, err := buildSubject(context.Background(), backend, "v1..v2", false)
	require.NoError(t, err)

	assert.Equal(t, ai.SubjectRange, subject.Kind)
	assert.Equal(t, "v1", subject.From)
	assert.Equal(t, "v2", subject.To)
	assert.Equal(t, "range patch\n", subject.Diff)
}

func TestBuildSubjectBadRef(t *testing.T) {
	backend := vcs.NewGit("/repo", &executil.RecordingExecutor{})

	_, err := buildSubject(context.Background(), backend, "--upload-pack=evil", false)
	assert.ErrorIs(t, err, vcs.ErrInvalidRef)
}
