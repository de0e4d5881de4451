package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/vcs"
)

type ListCmd struct {
	flags *Flags

	// flags
	backendName string
	limit       int
	noPick      bool
}

// NewListCmd creates a new list command.
func NewListCmd(flags *Flags) *ListCmd {
	return &ListCmd{flags: flags}
}

// Register adds the list command to the application.
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Usage:     "Pick a recent commit and explain it",
		UsageText: "lens list [options]",
		Description: `Shows the recent commit log. On a terminal the log is an interactive
picker: the selected commit is explained by the configured provider.
Piped output prints a plain table instead.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "force a VCS backend (git, jj) instead of auto-detecting",
				Destination: &cmd.backendName,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "number of commits to list",
				Value:       50,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "no-pick",
				Usage:       "print the log without the interactive picker",
				Destination: &cmd.noPick,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	backend, err := cmd.flags.OpenBackend(cmd.backendName)
	if err != nil {
		return err
	}

	entries, err := backend.Log(ctx, cmd.limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No commits found")
		return nil
	}

	if cmd.noPick || !term.IsTerminal(int(os.Stdout.Fd())) {
		return printLog(entries)
	}
	return cmd.pickAndExplain(ctx, backend, entries)
}

func printLog(entries []vcs.LogEntry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		id := e.ShortID
		if e.ChangeID != "" {
			id = e.ChangeID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, e.When, e.Refs, e.Summary)
	}
	return w.Flush()
}

func (cmd *ListCmd) pickAndExplain(ctx context.Context, backend vcs.Backend, entries []vcs.LogEntry) error {
	options := make([]huh.Option[string], 0, len(entries))
	for _, e := range entries {
		label := fmt.Sprintf("%s  %-14s %s", e.ShortID, e.When, e.Summary)
		if e.Refs != "" {
			label += " (" + e.Refs + ")"
		}
		options = append(options, huh.NewOption(label, e.CommitID))
	}

	var commitID string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Pick a commit to explain").
			Options(options...).
			Value(&commitID),
	))
	if err := form.Run(); err != nil {
		return err
	}

	provider, err := cmd.flags.NewProvider()
	if err != nil {
		return err
	}
	info, err := backend.Commit(ctx, commitID)
	if err != nil {
		return err
	}
	subject := ai.CommitSubject(info)

	fmt.Println(renderMarkdown(subject.Header(provider.Name())))

	answer, err := provider.Complete(ctx, ai.ExplainPrompt(subject))
	if err != nil {
		return fmt.Errorf("complete prompt: %w", err)
	}
	fmt.Println(renderMarkdown(answer))
	return nil
}
