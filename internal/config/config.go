/*
PURPOSE:
  Defines the configuration structure and loading logic for tokenmeter.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of repo path, formats, trials, tokenizers, output.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Trials must be a positive integer; baseline must be a known format.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/tokenizer
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default config file is not an error (defaults apply).
  - Validate() rejects impossible runs before any file is touched.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (1 trial, heuristic tokenizer, cwd repo).

USAGE:
  cfg, err := config.Load("tokenmeter.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update Load() defaults.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aicac-project/tokenmeter/internal/model"
)

// Config represents the full configuration for tokenmeter.
type Config struct {
	// RepoPath is the repository whose documentation is measured.
	RepoPath string `yaml:"repo_path"`
	// Formats lists the documentation formats to measure.
	Formats []string `yaml:"formats"`
	// Baseline is the format all percentage reductions are computed against.
	Baseline string `yaml:"baseline"`
	// Trials repeats every (format, question, tokenizer) measurement.
	// The text is static, so trials beyond the first are a determinism check.
	Trials int `yaml:"trials"`
	// Tokenizers names the counting backends to use.
	Tokenizers []string `yaml:"tokenizers"`
	// Categories filters the question set; empty means all categories.
	Categories []string `yaml:"categories"`
	// QuestionsFile optionally replaces the embedded question set.
	QuestionsFile string `yaml:"questions_file"`

	OutputDir  string `yaml:"output_dir"`
	CSVFile    string `yaml:"csv_file"`
	JSONLFile  string `yaml:"jsonl_file"`
	ReportFile string `yaml:"report_file"`

	// Network-backed tokenizer tuning (Anthropic count-tokens API).
	MaxRetries       int           `yaml:"max_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url"`
	AnthropicModel   string        `yaml:"anthropic_model"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RepoPath:         ".",
		Formats:          []string{string(model.FormatReadmeOnly), string(model.FormatAgentsOnly), string(model.FormatAICaC)},
		Baseline:         string(model.FormatReadmeOnly),
		Trials:           1,
		Tokenizers:       []string{"heuristic"},
		OutputDir:        ".",
		CSVFile:          "token_results.csv",
		JSONLFile:        "token_results.jsonl",
		ReportFile:       "token_results.json",
		MaxRetries:       3,
		RetryDelay:       2 * time.Second,
		RequestTimeout:   30 * time.Second,
		AnthropicBaseURL: "https://api.anthropic.com",
		AnthropicModel:   "claude-sonnet-4-20250514",
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"tokenmeter.yaml", "tokenmeter.conf"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// ParsedFormats resolves the configured format names, rejecting unknowns.
func (c *Config) ParsedFormats() ([]model.Format, error) {
	formats := make([]model.Format, 0, len(c.Formats))
	for _, name := range c.Formats {
		f, err := model.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// Validate rejects configurations that cannot produce a valid run.
func (c *Config) Validate() error {
	if c.Trials < 1 {
		return fmt.Errorf("trials must be a positive integer, got %d", c.Trials)
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("no formats selected")
	}
	if len(c.Tokenizers) == 0 {
		return fmt.Errorf("no tokenizers selected")
	}
	if _, err := c.ParsedFormats(); err != nil {
		return err
	}
	if _, err := model.ParseFormat(c.Baseline); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	return nil
}
