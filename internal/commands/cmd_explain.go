package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lenslet/lens/internal/ai"
)

type ExplainCmd struct {
	flags *Flags

	// flags
	staged      bool
	backendName string
	query       string
}

// NewExplainCmd creates a new explain command.
func NewExplainCmd(flags *Flags) *ExplainCmd {
	return &ExplainCmd{flags: flags}
}

// Register adds the explain command to the application.
func (cmd *ExplainCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "explain",
		Usage:     "Explain a revision or the working tree changes",
		UsageText: "lens explain [ref | from..to | from...to] [options]",
		Description: `Asks the configured provider for a short explanation of the changes and
prints it to stdout. With --query the provider answers a free-form
question about the changes instead.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "staged",
				Usage:       "explain only staged changes (git)",
				Destination: &cmd.staged,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "force a VCS backend (git, jj) instead of auto-detecting",
				Destination: &cmd.backendName,
			},
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "ask a free-form question about the changes",
				Destination: &cmd.query,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ExplainCmd) run(ctx context.Context, c *cli.Command) error {
	backend, err := cmd.flags.OpenBackend(cmd.backendName)
	if err != nil {
		return err
	}
	provider, err := cmd.flags.NewProvider()
	if err != nil {
		return err
	}

	subject, err := buildSubject(ctx, backend, c.Args().First(), cmd.staged)
	if err != nil {
		return err
	}
	if strings.TrimSpace(subject.Diff) == "" {
		return fmt.Errorf("no changes to explain")
	}

	prompt := ai.ExplainPrompt(subject)
	if cmd.query != "" {
		prompt = ai.QueryPrompt(subject, cmd.query)
	}

	fmt.Println(renderMarkdown(subject.Header(provider.Name())))

	answer, err := provider.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("complete prompt: %w", err)
	}
	fmt.Println(renderMarkdown(answer))
	return nil
}
