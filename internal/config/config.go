// Package config loads haven configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"haven/internal/llm"
)

// Config holds all haven configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Per-tier model configuration
	LLM LLMConfig `yaml:"llm"`

	// Storage
	Storage StorageConfig `yaml:"storage"`

	// Scheduler
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the three generation tiers.
type LLMConfig struct {
	Fast     TierSettings `yaml:"fast"`
	Balanced TierSettings `yaml:"balanced"`
	Deep     TierSettings `yaml:"deep"`
}

// TierSettings binds one tier to a provider, model and key.
type TierSettings struct {
	Provider string `yaml:"provider"` // gemini, openai, anthropic
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
}

// StorageConfig configures the SQLite store.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SchedulerConfig configures periodic profile rebuilds.
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CronSpec string `yaml:"cron_spec"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// ValidProviders lists supported LLM providers.
var ValidProviders = []string{"gemini", "openai", "anthropic"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "haven",
		Version: "0.3.0",

		LLM: LLMConfig{
			Fast:     TierSettings{Provider: "gemini", Model: "gemini-2.0-flash"},
			Balanced: TierSettings{Provider: "gemini", Model: "gemini-2.5-flash"},
			Deep:     TierSettings{Provider: "gemini", Model: "gemini-2.5-pro"},
		},

		Storage: StorageConfig{
			DatabasePath: "data/haven.db",
		},

		Scheduler: SchedulerConfig{
			Enabled:  true,
			CronSpec: "@hourly",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
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

// applyEnvOverrides applies environment variable overrides. An API key set
// in the environment applies to every tier configured for that provider.
func (c *Config) applyEnvOverrides() {
	keys := map[string]string{
		"gemini":    os.Getenv("GEMINI_API_KEY"),
		"openai":    os.Getenv("OPENAI_API_KEY"),
		"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
	}
	for _, tier := range []*TierSettings{&c.LLM.Fast, &c.LLM.Balanced, &c.LLM.Deep} {
		if key := keys[tier.Provider]; key != "" {
			tier.APIKey = key
		}
	}

	if model := os.Getenv("HAVEN_FAST_MODEL"); model != "" {
		c.LLM.Fast.Model = model
	}
	if model := os.Getenv("HAVEN_BALANCED_MODEL"); model != "" {
		c.LLM.Balanced.Model = model
	}
	if model := os.Getenv("HAVEN_DEEP_MODEL"); model != "" {
		c.LLM.Deep.Model = model
	}

	if path := os.Getenv("HAVEN_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
}

// Validate checks provider names. Missing API keys are not an error here;
// an unkeyed tier simply resolves as unavailable at call time.
func (c *Config) Validate() error {
	for _, t := range []TierSettings{c.LLM.Fast, c.LLM.Balanced, c.LLM.Deep} {
		if t.Provider == "" {
			continue
		}
		valid := false
		for _, p := range ValidProviders {
			if t.Provider == p {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid LLM provider: %s (valid: %v)", t.Provider, ValidProviders)
		}
	}
	return nil
}

// TierConfigs converts the LLM section into resolver input. Tiers without
// an API key are omitted so they resolve as unavailable.
func (c *Config) TierConfigs() map[llm.Tier]llm.TierConfig {
	tiers := make(map[llm.Tier]llm.TierConfig)
	add := func(tier llm.Tier, s TierSettings) {
		if s.APIKey == "" {
			return
		}
		tiers[tier] = llm.TierConfig{
			Provider: llm.Provider(s.Provider),
			APIKey:   s.APIKey,
			Model:    s.Model,
			BaseURL:  s.BaseURL,
		}
	}
	add(llm.TierFast, c.LLM.Fast)
	add(llm.TierBalanced, c.LLM.Balanced)
	add(llm.TierDeep, c.LLM.Deep)
	return tiers
}
