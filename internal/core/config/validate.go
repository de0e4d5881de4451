package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/lenslet/lens/internal/ai"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including file accessibility and tool availability. The configPath
// argument specifies the config file location to validate (empty string
// skips the config file check). This calls Validate() first for basic
// structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		c.validateCommitTypes(),
		validateVCSBinaries(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.AI.APIKey != "" {
		warnings = append(warnings, ValidationWarning{
			Category: "AI",
			Item:     "api_key",
			Message:  "api key stored in plain text; the LENS_API_KEY environment variable keeps it out of the file",
		})
	}

	if c.AI.Provider == string(ai.KindOllama) && c.AI.Model == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "AI",
			Item:     "model",
			Message:  "ollama has no default model; set ai.model or pass --model",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// validateCommitTypes checks the draft commit type table entries.
func (c *Config) validateCommitTypes() error {
	var errs criterio.FieldErrorsBuilder
	for name, desc := range c.Draft.CommitTypes {
		if strings.TrimSpace(name) == "" {
			errs = errs.Append("draft.commit_types", fmt.Errorf("empty type name"))
			continue
		}
		if strings.TrimSpace(desc) == "" {
			errs = errs.Append(fmt.Sprintf("draft.commit_types[%q]", name), fmt.Errorf("empty description"))
		}
	}
	return errs.ToError()
}

// validateVCSBinaries checks that at least one supported VCS executable
// resolves on PATH.
func validateVCSBinaries() error {
	if _, err := exec.LookPath("git"); err == nil {
		return nil
	}
	if _, err := exec.LookPath("jj"); err == nil {
		return nil
	}
	return criterio.NewFieldErrors("vcs", fmt.Errorf("neither git nor jj found in PATH"))
}
