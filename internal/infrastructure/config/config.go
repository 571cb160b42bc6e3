// Package config loads and validates the judge panel configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paperjury/paperjury/internal/domain/review"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure so callers can map the whole
// family to one user-facing message.
var ErrInvalid = errors.New("invalid configuration")

// APIKeyEnv fills an empty api_key so configs can be committed without
// credentials.
const APIKeyEnv = "PAPERJURY_API_KEY"

const (
	DefaultModel       = "anthropic/claude-3-haiku"
	DefaultTemperature = 0.1
	DefaultMaxTokens   = 4000
	DefaultAPIDelay    = 1.0
)

type Config struct {
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	GuidelinesFile string   `yaml:"guidelines_file"`
	Judges         []Judge  `yaml:"judges"`
	Settings       Settings `yaml:"settings"`
}

type Judge struct {
	Name        string   `yaml:"name"`
	Model       string   `yaml:"model"`
	Persona     string   `yaml:"persona"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   *int     `yaml:"max_tokens"`
}

type Settings struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	APIDelay    float64 `yaml:"api_delay"`
	LogPrompts  bool    `yaml:"log_prompts"`
}

func defaults() *Config {
	return &Config{
		Settings: Settings{
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			APIDelay:    DefaultAPIDelay,
		},
	}
}

// Load reads, fills, and validates the config at path. A relative
// guidelines_file resolves against the config file's directory so the
// config stays portable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnv)
	}
	if cfg.GuidelinesFile != "" && !filepath.IsAbs(cfg.GuidelinesFile) {
		cfg.GuidelinesFile = filepath.Join(filepath.Dir(path), cfg.GuidelinesFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: api_key is required (or set %s)", ErrInvalid, APIKeyEnv)
	}
	if len(c.Judges) == 0 {
		return fmt.Errorf("%w: at least one judge is required", ErrInvalid)
	}

	seen := make(map[string]bool, len(c.Judges))
	for i, j := range c.Judges {
		if strings.TrimSpace(j.Name) == "" {
			return fmt.Errorf("%w: judges[%d] has no name", ErrInvalid, i)
		}
		key := strings.ToLower(j.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate judge name %q", ErrInvalid, j.Name)
		}
		seen[key] = true
		if j.Temperature != nil && (*j.Temperature < 0 || *j.Temperature > 2) {
			return fmt.Errorf("%w: judge %q temperature must be within [0, 2]", ErrInvalid, j.Name)
		}
		if j.MaxTokens != nil && *j.MaxTokens < 1 {
			return fmt.Errorf("%w: judge %q max_tokens must be positive", ErrInvalid, j.Name)
		}
	}

	if c.Settings.Temperature < 0 || c.Settings.Temperature > 2 {
		return fmt.Errorf("%w: settings.temperature must be within [0, 2]", ErrInvalid)
	}
	if c.Settings.MaxTokens < 1 {
		return fmt.Errorf("%w: settings.max_tokens must be positive", ErrInvalid)
	}
	if c.Settings.APIDelay < 0 {
		return fmt.Errorf("%w: settings.api_delay must not be negative", ErrInvalid)
	}
	return nil
}

// JudgeSpecs converts the configured judges into domain specs, in file
// order. Order is observable: reviews run and render in this order.
func (c *Config) JudgeSpecs() []review.JudgeSpec {
	specs := make([]review.JudgeSpec, 0, len(c.Judges))
	for _, j := range c.Judges {
		specs = append(specs, review.JudgeSpec{
			Name:        j.Name,
			Model:       j.Model,
			Persona:     strings.TrimSpace(j.Persona),
			Temperature: j.Temperature,
			MaxTokens:   j.MaxTokens,
		})
	}
	return specs
}

// Delay returns the inter-call pause as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Settings.APIDelay * float64(time.Second))
}
