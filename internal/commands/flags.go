package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lenslet/lens/internal/ai"
	"github.com/lenslet/lens/internal/core/config"
	"github.com/lenslet/lens/internal/vcs"
	"github.com/lenslet/lens/pkg/executil"
)

// Flags carry global flag values and the state built by the Before hook
// into every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	Provider   string
	Model      string
	APIKey     string

	// Config is loaded in the Before hook and available to all commands.
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lens", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state
// directory. On macOS: ~/Library/Logs/lens/lens.log. On Linux:
// $XDG_STATE_HOME/lens/lens.log (defaults to ~/.local/state/lens/lens.log).
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "lens", "lens.log")
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "lens", "lens.log")
	}
	return filepath.Join(home, ".local", "state", "lens", "lens.log")
}

// OpenBackend locates the repository containing the working directory and
// returns the matching backend. An override names the implementation
// explicitly; detection still locates the repository root either way.
func (f *Flags) OpenBackend(override string) (vcs.Backend, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("working directory: %w", err)
	}
	exec := &executil.RealExecutor{}

	if override == "" {
		return vcs.Open(cwd, exec)
	}

	_, root, err := vcs.Detect(cwd)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "git":
		return vcs.NewGit(root, exec), nil
	case "jj", "jujutsu":
		return vcs.NewJujutsu(root, exec), nil
	}
	return nil, fmt.Errorf("unknown backend %q (valid: git, jj)", override)
}

// NewProvider builds the assistant provider from the effective
// configuration. Flag and env overrides were already merged into Config by
// the Before hook.
func (f *Flags) NewProvider() (ai.Provider, error) {
	kind, err := ai.ParseKind(f.Config.AI.Provider)
	if err != nil {
		return nil, err
	}
	return ai.New(kind, ai.Options{
		APIKey: f.Config.AI.APIKey,
		Model:  f.Config.AI.Model,
	})
}
