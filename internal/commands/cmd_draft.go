package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v3"

	"github.com/lenslet/lens/internal/ai"
)

type DraftCmd struct {
	flags *Flags

	// flags
	staged      bool
	backendName string
	hint        string
	copyDraft   bool
}

// NewDraftCmd creates a new draft command.
func NewDraftCmd(flags *Flags) *DraftCmd {
	return &DraftCmd{flags: flags}
}

// Register adds the draft command to the application.
func (cmd *DraftCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "draft",
		Usage:     "Draft a conventional commit message for the pending changes",
		UsageText: "lens draft [options]",
		Description: `Generates a commit message for the staged changes (or the whole working
tree with --staged=false) and prints it to stdout, ready to pass to
git commit -F -.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "staged",
				Usage:       "draft from staged changes only (git)",
				Value:       true,
				Destination: &cmd.staged,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "force a VCS backend (git, jj) instead of auto-detecting",
				Destination: &cmd.backendName,
			},
			&cli.StringFlag{
				Name:        "context",
				Usage:       "extra context describing the intent of the change",
				Destination: &cmd.hint,
			},
			&cli.BoolFlag{
				Name:        "copy",
				Usage:       "copy the drafted message to the clipboard",
				Destination: &cmd.copyDraft,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DraftCmd) run(ctx context.Context, c *cli.Command) error {
	backend, err := cmd.flags.OpenBackend(cmd.backendName)
	if err != nil {
		return err
	}
	provider, err := cmd.flags.NewProvider()
	if err != nil {
		return err
	}

	subject, err := buildSubject(ctx, backend, "", cmd.staged)
	if err != nil {
		return err
	}
	if strings.TrimSpace(subject.Diff) == "" {
		return fmt.Errorf("no changes to draft a message for")
	}

	commitTypes, err := cmd.flags.Config.Draft.CommitTypesJSON()
	if err != nil {
		return fmt.Errorf("commit types: %w", err)
	}
	prompt, err := ai.DraftPrompt(subject, commitTypes, cmd.hint)
	if err != nil {
		return err
	}

	message, err := provider.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("complete prompt: %w", err)
	}
	message = strings.TrimSpace(message)

	fmt.Println(message)
	if cmd.copyDraft {
		if err := clipboard.WriteAll(message); err != nil {
			fmt.Fprintf(os.Stderr, "clipboard unavailable: %v\n", err)
		}
	}
	return nil
}
