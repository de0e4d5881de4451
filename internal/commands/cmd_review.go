package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/internal/review"
	"github.com/lenslet/lens/internal/tui"
	"github.com/lenslet/lens/internal/vcs"
	"github.com/lenslet/lens/internal/watch"
	"github.com/lenslet/lens/pkg/executil"
)

type ReviewCmd struct {
	flags *Flags

	// flags
	staged      bool
	backendName string
	stacked     bool
	noWatch     bool
	pr          string
}

// NewReviewCmd creates a new review command.
func NewReviewCmd(flags *Flags) *ReviewCmd {
	return &ReviewCmd{flags: flags}
}

// Flags returns the review flags for registration on the root command, so
// `lens [ref]` works without the subcommand.
func (cmd *ReviewCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "staged",
			Usage:       "review only staged changes (git)",
			Destination: &cmd.staged,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "force a VCS backend (git, jj) instead of auto-detecting",
			Destination: &cmd.backendName,
		},
		&cli.BoolFlag{
			Name:        "stacked",
			Usage:       "review a commit range one commit at a time",
			Destination: &cmd.stacked,
		},
		&cli.BoolFlag{
			Name:        "no-watch",
			Usage:       "disable live reload on file changes",
			Destination: &cmd.noWatch,
		},
		&cli.StringFlag{
			Name:        "pr",
			Usage:       "review a GitHub pull request by number or URL (needs gh)",
			Destination: &cmd.pr,
		},
	}
}

// Register adds the review command to the application.
func (cmd *ReviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "review",
		Usage:     "Open an interactive review of a revision or the working tree",
		UsageText: "lens review [ref | from..to | from...to] [options]",
		Description: `Opens the diff review TUI. With no argument the working tree is compared
against its parent. A bare revision is compared against its parent; a
two-dot range compares its endpoints; a three-dot range compares against
the merge base.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Run executes the review TUI. Exported for use as the default command.
func (cmd *ReviewCmd) Run(ctx context.Context, c *cli.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("review needs a terminal; use 'lens explain' for plain output")
	}

	if cmd.pr != "" {
		return cmd.runPR(ctx, c)
	}

	backend, err := cmd.flags.OpenBackend(cmd.backendName)
	if err != nil {
		return err
	}
	ctx = logging.WithBackend(ctx, backend.Name().String())

	refArg := c.Args().First()
	var ref *vcs.RevisionReference
	if refArg != "" {
		ctx = logging.WithRef(ctx, refArg)
		parsed, err := vcs.ParseRef(refArg, backend.WorkingCopySymbol())
		if err != nil {
			return err
		}
		ref = &parsed
	}

	loader := review.NewLoader(backend)
	loadOpts := review.LoadOptions{Reference: ref, Staged: cmd.staged}

	session, err := cmd.buildSession(ctx, loader, backend, loadOpts)
	if err != nil {
		return err
	}
	if session == nil {
		fmt.Fprintln(os.Stderr, "No changes to review")
		return nil
	}
	session.BackendName = backend.Name().String()
	session.DiffRef = refArg

	var watcher *watch.Watcher
	if !cmd.noWatch {
		watcher, err = watch.New(backend.Root())
		if err != nil {
			// Reviews work without live reload; leave a trace and move on.
			log.Warn().Err(err).Msg("file watcher unavailable")
		} else {
			defer watcher.Close() //nolint:errcheck
		}
	}

	opts := tui.Options{
		Session:     session,
		Loader:      loader,
		LoadOptions: loadOpts,
		Watcher:     watcher,
		Root:        backend.Root(),
		Explain:     cmd.explainFunc(),
	}
	if err := tui.Run(ctx, opts); err != nil {
		return err
	}

	// Notes taken during the review go to stdout so they survive the
	// session.
	if notes := session.ExportAnnotations(); notes != "" {
		fmt.Print(notes)
	}
	return nil
}

func (cmd *ReviewCmd) settings() review.Settings {
	return review.Settings{
		TabWidth: cmd.flags.Config.UI.TabWidth,
		Sticky: review.StickyConfig{
			Enabled:  cmd.flags.Config.UI.Sticky == nil || *cmd.flags.Config.UI.Sticky,
			MaxLines: cmd.flags.Config.UI.StickyMax(),
		},
	}
}

// runPR reviews a pull request through gh. There is nothing local to
// watch or reload, so the session runs without a loader.
func (cmd *ReviewCmd) runPR(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithBackend(ctx, "github")
	ctx = logging.WithRef(ctx, cmd.pr)
	prLoader := review.NewPRLoader(&executil.RealExecutor{})
	info, err := prLoader.Resolve(ctx, cmd.pr)
	if err != nil {
		return err
	}
	files, err := prLoader.Load(ctx, info)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No changes to review")
		return nil
	}

	session := review.NewSession(files, cmd.settings())
	session.BackendName = "github"
	session.DiffRef = fmt.Sprintf("%s..%s", info.BaseRef, info.HeadRef)

	opts := tui.Options{
		Session: session,
		Explain: cmd.explainFunc(),
	}
	if err := tui.Run(ctx, opts); err != nil {
		return err
	}
	if notes := session.ExportAnnotations(); notes != "" {
		fmt.Print(notes)
	}
	return nil
}

// buildSession loads the initial file set. A nil session with nil error
// means there is nothing to review.
func (cmd *ReviewCmd) buildSession(ctx context.Context, loader *review.Loader, backend vcs.Backend, loadOpts review.LoadOptions) (*review.Session, error) {
	settings := cmd.settings()

	if cmd.stacked {
		ref := loadOpts.Reference
		if ref == nil || ref.Kind == vcs.RefSingle {
			return nil, errors.New("--stacked needs a range (from..to)")
		}
		refs := loader.Resolve(ctx, ref)
		commits, err := backend.CommitsInRange(ctx, refs.From, refs.To)
		if err != nil {
			return nil, err
		}
		if len(commits) == 0 {
			return nil, nil
		}
		files, err := loader.LoadCommit(ctx, commits[0].CommitID, loadOpts.Files)
		if err != nil {
			return nil, err
		}
		session := review.NewSession(files, settings)
		session.InitStackedMode(commits)
		return session, nil
	}

	files, err := loader.Load(ctx, loadOpts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return review.NewSession(files, settings), nil
}

// explainFunc wires the assistant modal when a provider is configured.
// Provider construction failures disable the modal rather than the review.
func (cmd *ReviewCmd) explainFunc() tui.ExplainFunc {
	provider, err := cmd.flags.NewProvider()
	if err != nil {
		log.Debug().Err(err).Msg("assistant disabled")
		return nil
	}
	return func(ctx context.Context, file review.FileDiff) (string, error) {
		change := vcs.FileChange{Path: file.Filename}
		if file.Status != review.StatusAdded {
			old := file.OldContent
			change.Old = &old
		}
		if file.Status != review.StatusDeleted {
			next := file.NewContent
			change.New = &next
		}
		diff := vcs.FormatUnified([]vcs.FileChange{change})
		prompt := ai.ExplainPrompt(ai.WorkingTreeSubject(diff, false))
		return provider.Complete(ctx, prompt)
	}
}
