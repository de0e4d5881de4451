package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/internal/vcs"
	"github.com/lenslet/lens/pkg/executil"
)

// PRInfo identifies a GitHub pull request and its comparison endpoints.
// HeadRepoOwner is empty unless the head branch lives in a fork.
type PRInfo struct {
	Number        int
	RepoOwner     string
	RepoName      string
	BaseRepoOwner string
	HeadRepoOwner string
	BaseRef       string
	HeadRef       string
}

// PRLoader reads pull request diffs through the gh CLI, so reviews work
// without a local checkout of the head branch.
type PRLoader struct {
	exec executil.Executor
	log  zerolog.Logger
}

// NewPRLoader returns a loader that shells out to gh.
func NewPRLoader(exec executil.Executor) *PRLoader {
	return &PRLoader{
		exec: exec,
		log:  logging.Component("review.pr"),
	}
}

// prViewPayload matches the JSON shape of gh pr view --json.
type prViewPayload struct {
	Number              int    `json:"number"`
	BaseRefName         string `json:"baseRefName"`
	HeadRefName         string `json:"headRefName"`
	IsCrossRepository   bool   `json:"isCrossRepository"`
	HeadRepositoryOwner struct {
		Login string `json:"login"`
	} `json:"headRepositoryOwner"`
}

// repoViewPayload matches the JSON shape of gh repo view --json.
type repoViewPayload struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

const prViewFields = "number,baseRefName,headRefName,headRepositoryOwner,isCrossRepository"

// Resolve looks up a pull request by number, branch, or URL and returns its
// comparison endpoints.
func (l *PRLoader) Resolve(ctx context.Context, selector string) (*PRInfo, error) {
	out, err := l.exec.Output(ctx, "", "gh", "pr", "view", selector, "--json", prViewFields)
	if err != nil {
		return nil, fmt.Errorf("look up pull request %q: %w", selector, err)
	}
	var pr prViewPayload
	if err := json.Unmarshal(out, &pr); err != nil {
		return nil, fmt.Errorf("malformed gh pr view JSON: %w", err)
	}
	if pr.Number == 0 || pr.BaseRefName == "" || pr.HeadRefName == "" {
		return nil, fmt.Errorf("gh pr view %q: missing required fields", selector)
	}

	out, err = l.exec.Output(ctx, "", "gh", "repo", "view", "--json", "name,owner")
	if err != nil {
		return nil, fmt.Errorf("look up repository: %w", err)
	}
	var repo repoViewPayload
	if err := json.Unmarshal(out, &repo); err != nil {
		return nil, fmt.Errorf("malformed gh repo view JSON: %w", err)
	}

	info := &PRInfo{
		Number:        pr.Number,
		RepoOwner:     repo.Owner.Login,
		RepoName:      repo.Name,
		BaseRepoOwner: repo.Owner.Login,
		BaseRef:       pr.BaseRefName,
		HeadRef:       pr.HeadRefName,
	}
	if pr.IsCrossRepository {
		info.HeadRepoOwner = pr.HeadRepositoryOwner.Login
	}
	return info, nil
}

// Load fetches the pull request's changed files with full contents of both
// sides. Individual content fetches that fail read as empty rather than
// aborting the review; the file still appears with whatever side loaded.
func (l *PRLoader) Load(ctx context.Context, info *PRInfo) ([]FileDiff, error) {
	repoArg := info.RepoOwner + "/" + info.RepoName

	out, err := l.exec.Output(ctx, "", "gh", "pr", "diff", strconv.Itoa(info.Number), "--repo", repoArg)
	if err != nil {
		return nil, fmt.Errorf("fetch diff for pull request #%d: %w", info.Number, err)
	}
	names, err := changedFilesFromPatch(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parse diff for pull request #%d: %w", info.Number, err)
	}
	// Same denylist as local comparisons; gh pr diff has no exclude
	// pathspecs, so the filter runs on the parsed file list.
	kept := names[:0]
	for _, n := range names {
		if vcs.Excluded(n) {
			continue
		}
		kept = append(kept, n)
	}
	names = kept

	baseRepo := info.BaseRepoOwner + "/" + info.RepoName
	headRepo := baseRepo
	if info.HeadRepoOwner != "" {
		headRepo = info.HeadRepoOwner + "/" + info.RepoName
	}

	diffs := make([]FileDiff, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, name := range names {
		g.Go(func() error {
			oldContent := l.fetchContent(gctx, baseRepo, info.BaseRef, name)
			newContent := l.fetchContent(gctx, headRepo, info.HeadRef, name)
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
	l.log.Debug().Ctx(ctx).Int("pr", info.Number).Int("files", len(diffs)).Msg("loaded pull request diffs")
	return diffs, nil
}

// fetchContent reads one file at one ref through the GitHub contents API.
// A miss is normal for added or deleted files and reads as empty.
func (l *PRLoader) fetchContent(ctx context.Context, repo, ref, path string) string {
	endpoint := fmt.Sprintf("repos/%s/contents/%s?ref=%s", repo, path, ref)
	out, err := l.exec.Output(ctx, "", "gh", "api", endpoint,
		"-H", "Accept: application/vnd.github.raw+json")
	if err != nil {
		l.log.Debug().Ctx(ctx).Str("repo", repo).Str("ref", ref).Str("path", path).
			Msg("content fetch failed, treating as absent")
		return ""
	}
	return string(out)
}

// changedFilesFromPatch extracts file paths from unified diff text, in
// patch order. Renames and deletions report the surviving name when one
// exists.
func changedFilesFromPatch(r io.Reader) ([]string, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		name := f.NewName
		if name == "" {
			name = f.OldName
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}
