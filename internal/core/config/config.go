// Package config handles configuration loading and validation for lens.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	AI    AIConfig    `yaml:"ai"`
	Draft DraftConfig `yaml:"draft"`
	UI    UIConfig    `yaml:"ui"`
}

// AIConfig selects and authenticates the assistant provider.
type AIConfig struct {
	Provider string `yaml:"provider"` // claude, groq, ollama, openai, phind
	Model    string `yaml:"model"`    // empty uses the provider default
	APIKey   string `yaml:"api_key"`
}

// DraftConfig controls commit message drafting.
type DraftConfig struct {
	// CommitTypes replaces the built-in conventional commit table when set.
	CommitTypes map[string]string `yaml:"commit_types"`
}

// UIConfig adjusts the review surface.
type UIConfig struct {
	Theme       string `yaml:"theme"`
	TabWidth    int    `yaml:"tab_width"`
	Sticky      *bool  `yaml:"sticky"`       // nil = enabled
	StickyLines int    `yaml:"sticky_lines"` // max enclosing-scope lines shown
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			Provider: string(ai.KindPhind),
		},
		UI: UIConfig{
			Theme:       styles.DefaultTheme,
			TabWidth:    4,
			StickyLines: 5,
		},
	}
}

// Load reads configuration from the given path.
// If path is empty or doesn't exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	// Validation is the caller's call: the startup path warns and keeps
	// going, `config validate` reports, and both need the parsed Config.
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.AI.Provider == "" {
		c.AI.Provider = defaults.AI.Provider
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.TabWidth == 0 {
		c.UI.TabWidth = defaults.UI.TabWidth
	}
	if c.UI.StickyLines == 0 {
		c.UI.StickyLines = defaults.UI.StickyLines
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ai.ParseKind(c.AI.Provider); err != nil {
		return fmt.Errorf("ai.provider: %w", err)
	}

	if _, ok := styles.GetPalette(c.UI.Theme); !ok {
		return fmt.Errorf("ui.theme %q is not a built-in theme (valid: %s)",
			c.UI.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	if c.UI.TabWidth < 1 {
		return fmt.Errorf("ui.tab_width must be at least 1")
	}

	if c.UI.StickyLines < 1 {
		return fmt.Errorf("ui.sticky_lines must be at least 1")
	}

	return nil
}

// ProviderKind returns the configured provider as an ai.Kind.
func (c *Config) ProviderKind() ai.Kind {
	kind, err := ai.ParseKind(c.AI.Provider)
	if err != nil {
		// Validate() rejects unknown providers at load time.
		return ai.KindPhind
	}
	return kind
}

// CommitTypesJSON renders the configured commit type table as the JSON
// object embedded in draft prompts. Empty means the built-in table.
func (d DraftConfig) CommitTypesJSON() (string, error) {
	if len(d.CommitTypes) == 0 {
		return "", nil
	}
	data, err := json.Marshal(d.CommitTypes)
	if err != nil {
		return "", fmt.Errorf("encode commit types: %w", err)
	}
	return string(data), nil
}

// StickyMax returns the sticky-scope line cap, or 0 when disabled.
func (u UIConfig) StickyMax() int {
	if u.Sticky != nil && !*u.Sticky {
		return 0
	}
	return u.StickyLines
}
