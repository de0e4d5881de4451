package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/core/config"
	"github.com/lenslet/lens/internal/core/styles"
)

type ConfigCmd struct {
	flags *Flags
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command group to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "init",
				Usage:       "Create a config file interactively",
				UsageText:   "lens config init",
				Description: "Walks through provider, model, and theme selection and writes the config file.",
				Action:      cmd.runInit,
			},
			{
				Name:        "validate",
				Usage:       "Validate the configuration file",
				UsageText:   "lens config validate",
				Description: "Checks the configuration structurally, verifies the config path, commit types, and VCS binaries, and reports non-fatal warnings.",
				Action:      cmd.runValidate,
			},
		},
	})
	return app
}

func (cmd *ConfigCmd) runInit(ctx context.Context, c *cli.Command) error {
	path := cmd.flags.ConfigPath

	if _, err := os.Stat(path); err == nil {
		overwrite := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("%s exists. Overwrite?", path)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	cfg := config.DefaultConfig()
	providers := []string{
		string(ai.KindPhind),
		string(ai.KindClaude),
		string(ai.KindOpenAI),
		string(ai.KindGroq),
		string(ai.KindOllama),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Assistant provider").
				Description("phind needs no API key; ollama runs locally").
				Options(huh.NewOptions(providers...)...).
				Value(&cfg.AI.Provider),
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default (required for ollama)").
				Value(&cfg.AI.Model),
			huh.NewInput().
				Title("API key").
				Description("Leave empty to pass it via LENS_API_KEY instead").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.AI.APIKey),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(styles.ThemeNames()...)...).
				Value(&cfg.UI.Theme),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	if err := cfg.Validate(); err != nil {
		fmt.Println(styles.ErrorStyle.Render("invalid: " + err.Error()))
		return fmt.Errorf("configuration is invalid")
	}
	fmt.Println("structure: ok")

	if err := cfg.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		fmt.Println(styles.ErrorStyle.Render("invalid: " + err.Error()))
		return fmt.Errorf("configuration is invalid")
	}
	fmt.Println("environment: ok")

	for _, w := range cfg.Warnings() {
		fmt.Printf("warning (%s %s): %s\n", w.Category, w.Item, w.Message)
	}
	return nil
}
