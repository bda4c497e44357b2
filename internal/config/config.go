package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"hermes/internal/logging"
)

// Config holds all hermes configuration.
type Config struct {
	// RootDir is the directory the problem tree is projected into
	// directly (see internal/store); the CLI sets it to
	// <workspace>/.hermes.
	RootDir string `yaml:"root_dir"`

	// BackupDir receives a timestamped copy of each existing node file
	// (definition, criteria, breakdown, artifacts) and of the knowledge-base
	// file before the store overwrites it.
	BackupDir string `yaml:"backup_dir"`

	// MaxDepthHint is checked to be positive by Validate; nothing that
	// creates or renders subproblems reads it, so nesting depth is neither
	// limited nor warned about.
	MaxDepthHint int `yaml:"max_depth_hint"`

	// PerCommandOutputMaxLength truncates a single command's rendered
	// output before it is appended to a node's transcript.
	PerCommandOutputMaxLength int `yaml:"per_command_output_max_length"`

	// BudgetTotal is the total turn budget rendered by the Budget dynamic
	// section; zero means unbounded.
	BudgetTotal int `yaml:"budget_total"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RootDir:                   ".",
		BackupDir:                 ".hermes/backup",
		MaxDepthHint:              3,
		PerCommandOutputMaxLength: 8000,
		BudgetTotal:               0,

		LLM: LLMConfig{
			Provider: "genai",
			Model:    "gemini-2.0-flash",
			Timeout:  "120s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "hermes.log",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("Loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("Config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			logging.BootDebug("Config loaded: provider=%s", cfg.LLM.Provider)
			return cfg, nil
		}
		logging.BootError("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("Failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("Config loaded: provider=%s model=%s", cfg.LLM.Provider, cfg.LLM.Model)

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "genai"
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "anthropic"
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "openai"
	}

	if root := os.Getenv("HERMES_ROOT"); root != "" {
		c.RootDir = root
	}
	if dir := os.Getenv("HERMES_BACKUP_DIR"); dir != "" {
		c.BackupDir = dir
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GEMINI_API_KEY, ANTHROPIC_API_KEY, or OPENAI_API_KEY)")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.LLM.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	if c.MaxDepthHint <= 0 {
		return fmt.Errorf("max_depth_hint must be positive")
	}

	return nil
}
