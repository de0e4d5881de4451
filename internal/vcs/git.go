package vcs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/pkg/executil"
)

// Delimiters for single-call metadata parsing. Printable strings unlikely to
// appear in commit data; the message delimiter comes last because messages
// may contain anything.
const (
	fieldSep = "<<<FIELD>>>"
	msgSep   = "<<<MSG>>>"
)

const gitDateFormat = "format:%Y-%m-%d %H:%M:%S"

// emptyTreeSHA is the id of git's empty tree object. Root commits diff
// against it so they render as all-added files.
const emptyTreeSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Git reads repository state through the git command-line tool.
type Git struct {
	root string
	bin  string
	exec executil.Executor
	log  zerolog.Logger
}

// NewGit returns a backend for the repository rooted at root.
func NewGit(root string, exec executil.Executor) *Git {
	return &Git{
		root: root,
		bin:  "git",
		exec: exec,
		log:  logging.Component("vcs.git"),
	}
}

func (g *Git) Name() Kind { return KindGit }

func (g *Git) Root() string { return g.root }

func (g *Git) WorkingCopySymbol() string { return "HEAD" }

func (g *Git) WorkingCopyParentRef() string { return "HEAD" }

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	g.log.Debug().Ctx(ctx).Strs("args", args).Msg("run git")
	out, err := g.exec.Output(ctx, g.root, g.bin, args...)
	if err != nil {
		return "", &CommandError{Name: g.bin, Args: args, Err: err}
	}
	return string(out), nil
}

// isValidRef checks that ref names a commit object. A failed lookup or a
// non-commit object (blobs, trees, annotated tags) reports ErrInvalidRef
// rather than a command failure so callers can recover.
func (g *Git) isValidRef(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if err := validateRefFormat(ref); err != nil {
		return err
	}
	out, err := g.exec.Output(ctx, g.root, g.bin, "cat-file", "-t", ref)
	if err != nil {
		if exitFailure(err) {
			return invalidRef(ref, "")
		}
		return &CommandError{Name: g.bin, Args: []string{"cat-file", "-t", ref}, Err: err}
	}
	if strings.TrimSpace(string(out)) != "commit" {
		return invalidRef(ref, "")
	}
	return nil
}

func (g *Git) Commit(ctx context.Context, ref string) (CommitInfo, error) {
	ref = strings.TrimSpace(ref)
	if err := g.isValidRef(ctx, ref); err != nil {
		return CommitInfo{}, err
	}

	format := "%H" + fieldSep + "%an" + fieldSep + "%ae" + fieldSep + "%cd" + msgSep + "%B"
	out, err := g.run(ctx, "log", "--format="+format, "--date="+gitDateFormat, "-n", "1", ref)
	if err != nil {
		return CommitInfo{}, err
	}

	header, message, ok := strings.Cut(out, msgSep)
	if !ok {
		return CommitInfo{}, fmt.Errorf("parse git log output for %s: missing message delimiter", ref)
	}
	fields := strings.Split(header, fieldSep)
	if len(fields) < 4 {
		return CommitInfo{}, fmt.Errorf("parse git log output for %s: expected 4 fields, got %d", ref, len(fields))
	}

	// diff-tree rather than diff: it handles root commits and binary
	// markers the way the rest of the pipeline expects.
	diffArgs := []string{"diff-tree", "-p", "--root", "--binary", "--no-color", "--compact-summary", ref}
	diff, err := g.run(ctx, append(diffArgs, gitExcludePathspecs...)...)
	if err != nil {
		return CommitInfo{}, err
	}

	return CommitInfo{
		CommitID: fields[0],
		Message:  strings.TrimRight(message, "\n"),
		Diff:     diff,
		Author:   fields[1] + " <" + fields[2] + ">",
		Date:     fields[3],
	}, nil
}

func (g *Git) WorkingTreeDiff(ctx context.Context, staged bool) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--staged")
	}
	return g.run(ctx, append(args, gitExcludePathspecs...)...)
}

func (g *Git) RangeDiff(ctx context.Context, from, to string, threeDot bool) (string, error) {
	if err := g.isValidRef(ctx, from); err != nil {
		return "", err
	}
	if err := g.isValidRef(ctx, to); err != nil {
		return "", err
	}
	sep := ".."
	if threeDot {
		sep = "..."
	}
	args := []string{"diff", strings.TrimSpace(from) + sep + strings.TrimSpace(to)}
	return g.run(ctx, append(args, gitExcludePathspecs...)...)
}

func (g *Git) ChangedFiles(ctx context.Context, ref string) ([]string, error) {
	ref = strings.TrimSpace(ref)

	// Range forms are accepted here too so stacked entries and ranges
	// share a call path.
	if strings.Contains(ref, "..") {
		sep := ".."
		if strings.Contains(ref, "...") {
			sep = "..."
		}
		if parts := strings.Split(ref, sep); len(parts) == 2 {
			out, err := g.run(ctx, "diff", "--name-only", parts[0], parts[1])
			if err != nil {
				return nil, err
			}
			return splitNonEmptyLines(out), nil
		}
	}

	out, err := g.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", "--root", ref)
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

func (g *Git) RangeChangedFiles(ctx context.Context, from, to string) ([]string, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if err := g.isValidRef(ctx, from); err != nil {
		return nil, err
	}
	if err := g.isValidRef(ctx, to); err != nil {
		return nil, err
	}
	out, err := g.run(ctx, "diff", "--name-only", from, to)
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

func (g *Git) WorkingTreeChangedFiles(ctx context.Context) ([]string, error) {
	set := map[string]struct{}{}
	for _, args := range [][]string{
		{"diff", "--name-only", "HEAD"},
		{"diff", "--cached", "--name-only"},
		{"ls-files", "--others", "--exclude-standard"},
	} {
		out, err := g.run(ctx, args...)
		if err != nil {
			return nil, err
		}
		for _, line := range splitNonEmptyLines(out) {
			set[line] = struct{}{}
		}
	}
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func (g *Git) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

// StagedContent reads the stage-0 index entry for path.
func (g *Git) StagedContent(ctx context.Context, path string) (string, error) {
	out, err := g.exec.Output(ctx, g.root, g.bin, "show", ":0:"+path)
	if err != nil {
		if exitFailure(err) {
			return "", fmt.Errorf("%w: %s in index", ErrFileNotFound, path)
		}
		return "", &CommandError{Name: g.bin, Args: []string{"show", ":0:" + path}, Err: err}
	}
	return string(out), nil
}

func (g *Git) FileContent(ctx context.Context, ref, path string) (string, error) {
	ref = strings.TrimSpace(ref)
	if err := validateRefFormat(ref); err != nil {
		return "", err
	}
	out, err := g.exec.Output(ctx, g.root, g.bin, "show", ref+":"+path)
	if err != nil {
		if exitFailure(err) {
			return "", fmt.Errorf("%w: %s at %s", ErrFileNotFound, path, ref)
		}
		return "", &CommandError{Name: g.bin, Args: []string{"show", ref + ":" + path}, Err: err}
	}
	return string(out), nil
}

func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		// Detached HEAD.
		return "", nil
	}
	return branch, nil
}

func (g *Git) ResolveRef(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if err := g.isValidRef(ctx, ref); err != nil {
		return "", err
	}
	out, err := g.run(ctx, "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) MergeBase(ctx context.Context, a, b string) (string, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if err := g.isValidRef(ctx, a); err != nil {
		return "", err
	}
	if err := g.isValidRef(ctx, b); err != nil {
		return "", err
	}
	out, err := g.run(ctx, "merge-base", a, b)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) ParentRefOrEmpty(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if err := g.isValidRef(ctx, ref); err != nil {
		return "", err
	}
	parent := ref + "^"
	if _, err := g.exec.Output(ctx, g.root, g.bin, "rev-parse", "--verify", parent); err != nil {
		if !exitFailure(err) {
			return "", &CommandError{Name: g.bin, Args: []string{"rev-parse", "--verify", parent}, Err: err}
		}
		// Root commit: diff against the empty tree instead.
		return emptyTreeSHA, nil
	}
	return parent, nil
}

func (g *Git) CommitsInRange(ctx context.Context, from, to string) ([]StackedCommitInfo, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if err := g.isValidRef(ctx, from); err != nil {
		return nil, err
	}
	if err := g.isValidRef(ctx, to); err != nil {
		return nil, err
	}

	out, err := g.run(ctx, "log", "--reverse", "--format=%H%x00%h%x00%s", from+".."+to)
	if err != nil {
		return nil, err
	}

	var commits []StackedCommitInfo
	for _, line := range splitNonEmptyLines(out) {
		parts := strings.SplitN(line, "\x00", 3)
		if len(parts) < 3 {
			continue
		}
		// Commits that touch no files, such as merges, have nothing to
		// review and are dropped from the stack.
		files, err := g.ChangedFiles(ctx, parts[0])
		if err != nil || len(files) == 0 {
			continue
		}
		commits = append(commits, StackedCommitInfo{
			CommitID: parts[0],
			ShortID:  parts[1],
			Summary:  parts[2],
		})
	}
	return commits, nil
}

func (g *Git) Log(ctx context.Context, limit int) ([]LogEntry, error) {
	args := []string{"log", "--format=%H%x00%h%x00%d%x00%s%x00%cr"}
	if limit > 0 {
		args = append(args, "-n", fmt.Sprint(limit))
	}
	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var entries []LogEntry
	for _, line := range splitNonEmptyLines(out) {
		parts := strings.SplitN(line, "\x00", 5)
		if len(parts) < 5 {
			continue
		}
		entries = append(entries, LogEntry{
			CommitID: parts[0],
			ShortID:  parts[1],
			Refs:     strings.Trim(strings.TrimSpace(parts[2]), "()"),
			Summary:  parts[3],
			When:     parts[4],
		})
	}
	return entries, nil
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
