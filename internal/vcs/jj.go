package vcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/pkg/executil"
)

// jj template fragments. Field delimiters match the git backend so both
// parsers share helpers. Plain commit_id and change_id render the full ids;
// change ids come out in jj's reverse-hex alphabet, which is what users type.
const (
	jjCommitTemplate = `commit_id ++ "<<<FIELD>>>" ++ change_id ++ "<<<FIELD>>>" ++ author.name() ++ "<<<FIELD>>>" ++ author.email() ++ "<<<FIELD>>>" ++ author.timestamp().format("%Y-%m-%d %H:%M:%S") ++ "<<<FIELD>>>" ++ parents.map(|c| c.commit_id()).join(" ") ++ "<<<MSG>>>" ++ description`

	jjStackTemplate = `commit_id ++ "<<<FIELD>>>" ++ commit_id.short(12) ++ "<<<FIELD>>>" ++ change_id ++ "<<<FIELD>>>" ++ description.first_line() ++ "\n"`

	jjLogTemplate = `commit_id ++ "<<<FIELD>>>" ++ commit_id.short(12) ++ "<<<FIELD>>>" ++ change_id.short(12) ++ "<<<FIELD>>>" ++ local_bookmarks.join(",") ++ "<<<FIELD>>>" ++ description.first_line() ++ "<<<FIELD>>>" ++ committer.timestamp().ago() ++ "\n"`

	jjParentsTemplate = `parents.map(|c| c.commit_id()).join(" ")`
)

// Conflicted files materialize with git-style markers so the rest of the
// pipeline sees plain text instead of an error.
const jjMarkerConfig = "ui.conflict-marker-style=git"

// Jujutsu reads repository state through the jj command-line tool. jj has no
// patch-producing plumbing equivalent to git diff-tree, so diffs are
// synthesized from file contents with FormatUnified.
type Jujutsu struct {
	root string
	bin  string
	exec executil.Executor
	log  zerolog.Logger
}

// NewJujutsu returns a backend for the workspace rooted at root.
func NewJujutsu(root string, exec executil.Executor) *Jujutsu {
	return &Jujutsu{
		root: root,
		bin:  "jj",
		exec: exec,
		log:  logging.Component("vcs.jj"),
	}
}

func (j *Jujutsu) Name() Kind { return KindJujutsu }

func (j *Jujutsu) Root() string { return j.root }

func (j *Jujutsu) WorkingCopySymbol() string { return "@" }

func (j *Jujutsu) WorkingCopyParentRef() string { return "@-" }

func (j *Jujutsu) run(ctx context.Context, args ...string) (string, error) {
	j.log.Debug().Ctx(ctx).Strs("args", args).Msg("run jj")
	out, err := j.exec.Output(ctx, j.root, j.bin, args...)
	if err != nil {
		return "", &CommandError{Name: j.bin, Args: args, Err: err}
	}
	return string(out), nil
}

// detectGitSyntax recognizes git revision spellings and suggests the jj
// equivalent. Users switching between backends type HEAD out of habit.
func detectGitSyntax(ref string) (string, bool) {
	s := strings.TrimSpace(ref)
	if s == "HEAD" {
		return "@-", true
	}
	if s == "HEAD~" || s == "HEAD^" {
		return "@--", true
	}
	for _, prefix := range []string{"HEAD~", "HEAD^"} {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			if n, err := strconv.Atoi(rest); err == nil && n >= 0 {
				return "@" + strings.Repeat("-", n+1), true
			}
		}
	}
	return "", false
}

// refError classifies a failed revset lookup: git spellings get a hard error
// with the jj equivalent, anything else is a recoverable invalid ref.
func refError(ref string) error {
	if hint, ok := detectGitSyntax(ref); ok {
		return fmt.Errorf("'%s' is git syntax, use '%s' instead", ref, hint)
	}
	return invalidRef(ref, "not found")
}

// query runs a revset lookup, downgrading exit failures to a recoverable
// bad-ref error for revset. Spawn failures stay fatal.
func (j *Jujutsu) query(ctx context.Context, revset string, args ...string) (string, error) {
	revset = strings.TrimSpace(revset)
	if err := validateRefFormat(revset); err != nil {
		return "", err
	}
	out, err := j.exec.Output(ctx, j.root, j.bin, args...)
	if err != nil {
		if exitFailure(err) {
			return "", refError(revset)
		}
		return "", &CommandError{Name: j.bin, Args: args, Err: err}
	}
	return string(out), nil
}

// resolveFirst evaluates revset and returns the id of its first commit.
// Revsets that fail to parse or match nothing report through refError.
func (j *Jujutsu) resolveFirst(ctx context.Context, revset string) (string, error) {
	out, err := j.query(ctx, revset, "log", "-r", strings.TrimSpace(revset), "--no-graph", "-n", "1", "-T", `commit_id ++ "\n"`)
	if err != nil {
		return "", err
	}
	id, _, _ := strings.Cut(out, "\n")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", refError(revset)
	}
	return id, nil
}

// parentsOf returns the parent commit ids of the first commit of revset.
func (j *Jujutsu) parentsOf(ctx context.Context, revset string) ([]string, error) {
	out, err := j.query(ctx, revset, "log", "-r", strings.TrimSpace(revset), "--no-graph", "-n", "1", "-T", jjParentsTemplate)
	if err != nil {
		return nil, err
	}
	return strings.Fields(out), nil
}

func (j *Jujutsu) Commit(ctx context.Context, ref string) (CommitInfo, error) {
	ref = strings.TrimSpace(ref)
	out, err := j.query(ctx, ref, "log", "-r", ref, "--no-graph", "-n", "1", "-T", jjCommitTemplate)
	if err != nil {
		return CommitInfo{}, err
	}
	if out == "" {
		return CommitInfo{}, refError(ref)
	}

	header, message, ok := strings.Cut(out, msgSep)
	if !ok {
		return CommitInfo{}, fmt.Errorf("parse jj log output for %s: missing message delimiter", ref)
	}
	fields := strings.Split(header, fieldSep)
	if len(fields) < 6 {
		return CommitInfo{}, fmt.Errorf("parse jj log output for %s: expected 6 fields, got %d", ref, len(fields))
	}

	diff, err := j.synthesizeDiff(ctx, firstParentOrRoot(fields[5]), fields[0])
	if err != nil {
		return CommitInfo{}, err
	}

	return CommitInfo{
		CommitID: fields[0],
		ChangeID: fields[1],
		Message:  message,
		Diff:     diff,
		Author:   fields[2] + " <" + fields[3] + ">",
		Date:     fields[4],
	}, nil
}

// firstParentOrRoot picks the diff base for a commit: its first parent, or
// the empty root() commit when the commit is the root itself.
func firstParentOrRoot(parents string) string {
	if ids := strings.Fields(parents); len(ids) > 0 {
		return ids[0]
	}
	return "root()"
}

// synthesizeDiff builds a unified diff between two revisions from their
// changed paths and file contents. Content that cannot be read at one side,
// because the file is absent there or is not a regular file, renders as
// fully added or deleted; synthesis itself never fails.
func (j *Jujutsu) synthesizeDiff(ctx context.Context, from, to string) (string, error) {
	paths, err := j.summaryFiles(ctx, from, to)
	if err != nil {
		return "", err
	}
	changes := make([]FileChange, 0, len(paths))
	for _, path := range paths {
		changes = append(changes, FileChange{
			Path: path,
			Old:  j.contentOrNil(ctx, from, path),
			New:  j.contentOrNil(ctx, to, path),
		})
	}
	return FormatUnified(changes), nil
}

func (j *Jujutsu) contentOrNil(ctx context.Context, ref, path string) *string {
	content, err := j.FileContent(ctx, ref, path)
	if err != nil {
		return nil
	}
	return &content
}

// summaryFiles lists the paths that differ between two revisions, with the
// diff denylist applied.
func (j *Jujutsu) summaryFiles(ctx context.Context, from, to string) ([]string, error) {
	out, err := j.run(ctx, "diff", "--from", from, "--to", to, "--summary")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range splitNonEmptyLines(out) {
		paths = append(paths, summaryPaths(line)...)
	}
	return filterExcluded(paths), nil
}

// summaryPaths extracts the path(s) from one `jj diff --summary` line.
// Renames contribute both sides, copies only the destination.
func summaryPaths(line string) []string {
	status, rest, ok := strings.Cut(line, " ")
	if !ok || status == "" {
		return nil
	}
	switch status {
	case "R", "C":
		oldPath, newPath, found := expandRenamePath(rest)
		if !found {
			oldPath, newPath, found = strings.Cut(rest, " => ")
		}
		if found {
			if status == "C" {
				return []string{newPath}
			}
			return []string{oldPath, newPath}
		}
	}
	return []string{rest}
}

// expandRenamePath expands jj's "pre{old => new}post" rename rendering into
// the two full paths.
func expandRenamePath(s string) (string, string, bool) {
	open := strings.Index(s, "{")
	arrow := strings.Index(s, " => ")
	end := strings.Index(s, "}")
	if open == -1 || arrow == -1 || end == -1 || open > arrow || arrow > end {
		return "", "", false
	}
	pre, post := s[:open], s[end+1:]
	return pre + s[open+1:arrow] + post, pre + s[arrow+4:end] + post, true
}

func (j *Jujutsu) WorkingTreeDiff(ctx context.Context, staged bool) (string, error) {
	// jj has no index: the working copy is the @ commit, staged is
	// meaningless here.
	_ = staged
	info, err := j.Commit(ctx, "@")
	if err != nil {
		return "", err
	}
	return info.Diff, nil
}

func (j *Jujutsu) RangeDiff(ctx context.Context, from, to string, threeDot bool) (string, error) {
	// The two trees are compared directly; the three-dot merge-base form
	// is resolved by the caller before it reaches the backend.
	_ = threeDot
	fromID, err := j.resolveFirst(ctx, from)
	if err != nil {
		return "", err
	}
	toID, err := j.resolveFirst(ctx, to)
	if err != nil {
		return "", err
	}
	return j.synthesizeDiff(ctx, fromID, toID)
}

func (j *Jujutsu) ChangedFiles(ctx context.Context, ref string) ([]string, error) {
	parents, err := j.parentsOf(ctx, ref)
	if err != nil {
		return nil, err
	}
	base := "root()"
	if len(parents) > 0 {
		base = parents[0]
	}
	return j.summaryFiles(ctx, base, strings.TrimSpace(ref))
}

func (j *Jujutsu) RangeChangedFiles(ctx context.Context, from, to string) ([]string, error) {
	fromID, err := j.resolveFirst(ctx, from)
	if err != nil {
		return nil, err
	}
	toID, err := j.resolveFirst(ctx, to)
	if err != nil {
		return nil, err
	}
	return j.summaryFiles(ctx, fromID, toID)
}

func (j *Jujutsu) WorkingTreeChangedFiles(ctx context.Context) ([]string, error) {
	return j.ChangedFiles(ctx, "@")
}

// StagedFiles reports the working-copy changes: jj has no staging area.
func (j *Jujutsu) StagedFiles(ctx context.Context) ([]string, error) {
	return j.WorkingTreeChangedFiles(ctx)
}

func (j *Jujutsu) StagedContent(ctx context.Context, path string) (string, error) {
	return j.FileContent(ctx, "@", path)
}

func (j *Jujutsu) FileContent(ctx context.Context, ref, path string) (string, error) {
	ref = strings.TrimSpace(ref)
	if err := validateRefFormat(ref); err != nil {
		return "", err
	}
	args := []string{"file", "show", "-r", ref, "--config", jjMarkerConfig, "--", path}
	out, err := j.exec.Output(ctx, j.root, j.bin, args...)
	if err != nil {
		if exitFailure(err) {
			return "", fmt.Errorf("%w: %s at %s", ErrFileNotFound, path, ref)
		}
		return "", &CommandError{Name: j.bin, Args: args, Err: err}
	}
	return string(out), nil
}

func (j *Jujutsu) CurrentBranch(ctx context.Context) (string, error) {
	out, err := j.run(ctx, "log", "-r", "@", "--no-graph", "-n", "1", "-T", `local_bookmarks.join(" ")`)
	if err != nil {
		return "", err
	}
	if bookmarks := strings.Fields(out); len(bookmarks) > 0 {
		return bookmarks[0], nil
	}
	return "", nil
}

func (j *Jujutsu) ResolveRef(ctx context.Context, ref string) (string, error) {
	return j.resolveFirst(ctx, ref)
}

func (j *Jujutsu) MergeBase(ctx context.Context, a, b string) (string, error) {
	revset := fmt.Sprintf("heads(::(%s) & ::(%s))", strings.TrimSpace(a), strings.TrimSpace(b))
	return j.resolveFirst(ctx, revset)
}

func (j *Jujutsu) ParentRefOrEmpty(ctx context.Context, ref string) (string, error) {
	parents, err := j.parentsOf(ctx, ref)
	if err != nil {
		return "", err
	}
	if len(parents) == 0 {
		// Only root() has no parents; its tree is empty.
		return "root()", nil
	}
	return strings.TrimSpace(ref) + "-", nil
}

func (j *Jujutsu) CommitsInRange(ctx context.Context, from, to string) ([]StackedCommitInfo, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)

	// from::to is inclusive on both ends; subtracting from matches the
	// exclusive-start semantics of git's from..to.
	revset := fmt.Sprintf("(%s::%s) ~ (%s)", from, to, from)
	args := []string{"log", "-r", revset, "--no-graph", "-T", jjStackTemplate}
	out, err := j.exec.Output(ctx, j.root, j.bin, args...)
	if err != nil {
		if !exitFailure(err) {
			return nil, &CommandError{Name: j.bin, Args: args, Err: err}
		}
		if hint, ok := detectGitSyntax(from); ok {
			return nil, fmt.Errorf("'%s' is git syntax, use '%s' instead", from, hint)
		}
		if hint, ok := detectGitSyntax(to); ok {
			return nil, fmt.Errorf("'%s' is git syntax, use '%s' instead", to, hint)
		}
		return nil, invalidRef(from+".."+to, "invalid range")
	}

	var commits []StackedCommitInfo
	for _, line := range splitNonEmptyLines(string(out)) {
		fields := strings.Split(line, fieldSep)
		if len(fields) < 4 {
			continue
		}
		// Commits that touch no files have nothing to review.
		files, err := j.ChangedFiles(ctx, fields[0])
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		commits = append(commits, StackedCommitInfo{
			CommitID: fields[0],
			ShortID:  fields[1],
			ChangeID: fields[2],
			Summary:  fields[3],
		})
	}

	// jj log lists newest first; the stack reads oldest first.
	for i, k := 0, len(commits)-1; i < k; i, k = i+1, k-1 {
		commits[i], commits[k] = commits[k], commits[i]
	}
	return commits, nil
}

func (j *Jujutsu) Log(ctx context.Context, limit int) ([]LogEntry, error) {
	args := []string{"log", "-r", "all()", "--no-graph", "-T", jjLogTemplate}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	out, err := j.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	for _, line := range splitNonEmptyLines(out) {
		fields := strings.Split(line, fieldSep)
		if len(fields) < 6 {
			continue
		}
		entries = append(entries, LogEntry{
			CommitID: fields[0],
			ShortID:  fields[1],
			ChangeID: fields[2],
			Refs:     fields[3],
			Summary:  fields[4],
			When:     fields[5],
		})
	}
	return entries, nil
}
