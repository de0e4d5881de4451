package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/core/styles"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, string(ai.KindPhind), cfg.AI.Provider)
	assert.Equal(t, styles.DefaultTheme, cfg.UI.Theme)
	assert.Equal(t, 4, cfg.UI.TabWidth)
	assert.Equal(t, 5, cfg.UI.StickyLines)
	assert.Empty(t, cfg.Draft.CommitTypes)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, string(ai.KindPhind), cfg.AI.Provider)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, styles.DefaultTheme, cfg.UI.Theme)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
ai:
  provider: claude
  model: claude-3-opus
  api_key: sk-test
draft:
  commit_types:
    feat: A new feature
    fix: A bug fix
ui:
  theme: gruvbox
  tab_width: 8
  sticky_lines: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude", cfg.AI.Provider)
	assert.Equal(t, "claude-3-opus", cfg.AI.Model)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, map[string]string{"feat": "A new feature", "fix": "A bug fix"}, cfg.Draft.CommitTypes)
	assert.Equal(t, "gruvbox", cfg.UI.Theme)
	assert.Equal(t, 8, cfg.UI.TabWidth)
	assert.Equal(t, 3, cfg.UI.StickyLines)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
ai:
  provider: openai
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, styles.DefaultTheme, cfg.UI.Theme)
	assert.Equal(t, 4, cfg.UI.TabWidth)
	assert.Equal(t, 5, cfg.UI.StickyLines)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "ai: [broken")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

// Load stays lenient about field values so the validate command can
// diagnose the very files it would otherwise never see.
func TestLoadUnknownProviderStillLoads(t *testing.T) {
	path := writeConfig(t, "ai:\n  provider: skynet\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "skynet", cfg.AI.Provider)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skynet")
}

func TestLoadUnknownThemeStillLoads(t *testing.T) {
	path := writeConfig(t, "ui:\n  theme: hotdog-stand\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hotdog-stand")
	assert.Contains(t, err.Error(), styles.DefaultTheme)
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero tab width",
			mutate:  func(c *Config) { c.UI.TabWidth = -1 },
			wantErr: "tab_width",
		},
		{
			name:    "negative sticky lines",
			mutate:  func(c *Config) { c.UI.StickyLines = -2 },
			wantErr: "sticky_lines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviderKind(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ai.KindPhind, cfg.ProviderKind())

	cfg.AI.Provider = "Ollama"
	assert.Equal(t, ai.KindOllama, cfg.ProviderKind())
}

func TestCommitTypesJSON(t *testing.T) {
	var d DraftConfig

	got, err := d.CommitTypesJSON()
	require.NoError(t, err)
	assert.Empty(t, got)

	d.CommitTypes = map[string]string{"feat": "A new feature"}
	got, err = d.CommitTypesJSON()
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, d.CommitTypes, decoded)
}

func TestStickyMax(t *testing.T) {
	on := true
	off := false

	tests := []struct {
		name string
		ui   UIConfig
		want int
	}{
		{"default enabled", UIConfig{StickyLines: 5}, 5},
		{"explicitly enabled", UIConfig{Sticky: &on, StickyLines: 3}, 3},
		{"disabled", UIConfig{Sticky: &off, StickyLines: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ui.StickyMax())
		})
	}
}
