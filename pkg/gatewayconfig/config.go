// Package gatewayconfig is C9: on-disk YAML configuration plus environment
// overrides. Grounded on gopkg.in/yaml.v3 (as used for structured config in
// the wider example pack) and joho/godotenv for .env loading, the latter
// following the teacher/pack convention of a single `_ = godotenv.Load()` at
// process start (see cmd/octrafic/main.go's init sequence).
package gatewayconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultReasoningEffort = "high"
	defaultSmallModel      = "gpt-4o-mini"
)

// file is the on-disk shape of config.yaml.
type file struct {
	Upstream struct {
		BaseURL  string `yaml:"base_url"`
		TokenEnv string `yaml:"token_env"`
	} `yaml:"upstream"`
	ReasoningEffort struct {
		Default   string            `yaml:"default"`
		Overrides map[string]string `yaml:"overrides"`
	} `yaml:"reasoning_effort"`
	SmallModel   string            `yaml:"small_model"`
	ExtraPrompts map[string]string `yaml:"extra_prompts"`
}

// Config is the resolved configuration the gateway's core and CLI consume.
// It implements the four lookups spec.md §6 names as external collaborators.
type Config struct {
	upstreamBaseURL string
	upstreamToken   string

	reasoningEffortDefault   string
	reasoningEffortOverrides map[string]string

	smallModel string

	extraPrompts map[string]string
}

// DefaultConfigPath returns ~/.config/copilot-gateway/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "copilot-gateway", "config.yaml"), nil
}

// Load reads path (if it exists) and applies environment overrides. A
// missing file is not an error: the documented defaults apply, per
// SPEC_FULL's note that the config file itself is outside the core's
// concern.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		upstreamBaseURL:          "https://api.githubcopilot.com",
		reasoningEffortDefault:   defaultReasoningEffort,
		reasoningEffortOverrides: map[string]string{},
		smallModel:               defaultSmallModel,
		extraPrompts:             map[string]string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.resolveToken("")
			return cfg, nil
		}
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Upstream.BaseURL != "" {
		cfg.upstreamBaseURL = f.Upstream.BaseURL
	}
	if f.ReasoningEffort.Default != "" {
		cfg.reasoningEffortDefault = f.ReasoningEffort.Default
	}
	if f.ReasoningEffort.Overrides != nil {
		cfg.reasoningEffortOverrides = f.ReasoningEffort.Overrides
	}
	if f.SmallModel != "" {
		cfg.smallModel = f.SmallModel
	}
	if f.ExtraPrompts != nil {
		cfg.extraPrompts = f.ExtraPrompts
	}

	cfg.resolveToken(f.Upstream.TokenEnv)
	return cfg, nil
}

func (c *Config) resolveToken(tokenEnv string) {
	if tokenEnv == "" {
		tokenEnv = "COPILOT_GATEWAY_TOKEN"
	}
	c.upstreamToken = os.Getenv(tokenEnv)
}

// UpstreamBaseURL is the Copilot-compatible backend's base URL.
func (c *Config) UpstreamBaseURL() string { return c.upstreamBaseURL }

// UpstreamToken is the bearer token C7 authenticates with.
func (c *Config) UpstreamToken() string { return c.upstreamToken }

// GetReasoningEffortForModel returns one of {minimal, low, medium, high},
// defaulting to "high" (spec.md §6).
func (c *Config) GetReasoningEffortForModel(model string) string {
	for prefix, effort := range c.reasoningEffortOverrides {
		if strings.HasPrefix(model, prefix) {
			return effort
		}
	}
	return c.reasoningEffortDefault
}

// GetSmallModel returns the configured cheap-model alias.
func (c *Config) GetSmallModel() string {
	return c.smallModel
}

// GetExtraPromptForModel returns the configured extra system prompt for
// model, or "" if none is configured.
func (c *Config) GetExtraPromptForModel(model string) string {
	for prefix, prompt := range c.extraPrompts {
		if strings.HasPrefix(model, prefix) {
			return prompt
		}
	}
	return ""
}
