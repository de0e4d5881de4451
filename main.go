package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/lenslet/lens/internal/commands"
	"github.com/lenslet/lens/internal/core/config"
	"github.com/lenslet/lens/internal/core/logging"
	"github.com/lenslet/lens/internal/core/styles"
	"github.com/lenslet/lens/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()
	flags := &commands.Flags{}
	reviewCmd := commands.NewReviewCmd(flags)

	app := &cli.Command{
		Name:      "lens",
		Usage:     "Review repository changes in the terminal",
		UsageText: "lens [global options] [ref] | lens command [command options]",
		Description: `Lens turns the difference between two revision states into a navigable
review session over git or jj repositories.

Run 'lens' with no arguments to review the working tree.
Run 'lens <ref>' or 'lens <from>..<to>' to review commits or ranges.`,
		Version: build(),
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("LENS_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (the TUI never logs to stdout)",
				Sources:     cli.EnvVars("LENS_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("LENS_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "provider",
				Usage:       "assistant provider (claude, groq, ollama, openai, phind)",
				Sources:     cli.EnvVars("LENS_AI_PROVIDER"),
				Destination: &flags.Provider,
			},
			&cli.StringFlag{
				Name:        "model",
				Usage:       "assistant model (defaults per provider)",
				Sources:     cli.EnvVars("LENS_AI_MODEL"),
				Destination: &flags.Model,
			},
			&cli.StringFlag{
				Name:        "api-key",
				Usage:       "assistant API key",
				Sources:     cli.EnvVars("LENS_API_KEY"),
				Destination: &flags.APIKey,
			},
		}, reviewCmd.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			// Commands tag their context with backend and ref; the hook
			// folds both into every event carrying that context.
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Flag and env overrides beat the file.
			if flags.Provider != "" {
				cfg.AI.Provider = flags.Provider
			}
			if flags.Model != "" {
				cfg.AI.Model = flags.Model
			}
			if flags.APIKey != "" {
				cfg.AI.APIKey = flags.APIKey
			}

			// Structural problems are reported by the command that trips
			// over them, so `lens config validate` can still run.
			if err := cfg.Validate(); err != nil {
				log.Warn().Err(err).Msg("configuration has problems")
			}

			palette, ok := styles.GetPalette(cfg.UI.Theme)
			if !ok {
				palette, _ = styles.GetPalette(styles.DefaultTheme)
			}
			styles.SetTheme(palette)

			flags.Config = cfg
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		// `lens [ref]` reviews without the subcommand.
		Action:                reviewCmd.Run,
		EnableShellCompletion: true,
	}

	app = reviewCmd.Register(app)
	app = commands.NewExplainCmd(flags).Register(app)
	app = commands.NewDraftCmd(flags).Register(app)
	app = commands.NewListCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
