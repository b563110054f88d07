// Package config loads text-analyzer settings from a YAML file, the
// environment and command line overrides, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/helmcode/text-analyzer/pkg/model"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvWebhookURL   = "TEXT_ANALYZER_WEBHOOK_URL"
	EnvTimeout      = "TEXT_ANALYZER_TIMEOUT"
	EnvAnalysisType = "TEXT_ANALYZER_ANALYSIS_TYPE"
	EnvMaxDepth     = "TEXT_ANALYZER_MAX_DEPTH"
	EnvOutput       = "TEXT_ANALYZER_OUTPUT"
)

const (
	DefaultTimeout  = 60 * time.Second
	DefaultMaxDepth = 32
	DefaultOutput   = "human"
)

// Config holds everything needed to reach the webhook and render replies.
type Config struct {
	WebhookURL       string             `yaml:"webhook_url" validate:"required,url"`
	Timeout          time.Duration      `yaml:"timeout" validate:"min=0"`
	Headers          map[string]string  `yaml:"headers,omitempty"`
	AnalysisType     model.AnalysisType `yaml:"analysis_type" validate:"oneof=summary sentiment"`
	MaxDepth         int                `yaml:"max_depth" validate:"min=1"`
	MaxResponseBytes int64              `yaml:"max_response_bytes" validate:"min=0"`
	Output           string             `yaml:"output" validate:"oneof=human json yaml"`
}

// Default returns a Config with every optional field filled in. WebhookURL
// has no default and must be configured.
func Default() *Config {
	return &Config{
		Timeout:      DefaultTimeout,
		AnalysisType: model.AnalysisSummary,
		MaxDepth:     DefaultMaxDepth,
		Output:       DefaultOutput,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/text-analyzer/config.yaml or "" if no
// config dir can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "text-analyzer", "config.yaml")
}

// Load reads path (if it exists) over the defaults and applies environment
// overrides. A missing file at the default path is not an error; a missing
// explicitly requested file is.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		if strings.HasPrefix(path, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[2:])
			}
		}

		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			if err := checkTimeoutUnit(data); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// optional
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkTimeoutUnit rejects a bare number for timeout. yaml.v3 reads it as
// nanoseconds, so "timeout: 30" would fail every request at once.
func checkTimeoutUnit(data []byte) error {
	var raw struct {
		Timeout yaml.Node `yaml:"timeout"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	n := raw.Timeout
	if n.Kind != yaml.ScalarNode {
		return nil
	}
	if (n.Tag == "!!int" || n.Tag == "!!float") && n.Value != "0" {
		return fmt.Errorf("timeout %q needs a unit, e.g. %ss", n.Value, n.Value)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvWebhookURL); ok && v != "" {
		c.WebhookURL = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvAnalysisType); ok && v != "" {
		t, err := model.ParseAnalysisType(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAnalysisType, err)
		}
		c.AnalysisType = t
	}
	if v, ok := lookup(EnvMaxDepth); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxDepth, v, err)
		}
		c.MaxDepth = n
	}
	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output = strings.ToLower(v)
	}
	return nil
}

// Validate reports the first invalid field in user terms.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "WebhookURL":
		if fe.Tag() == "required" {
			return fmt.Errorf("webhook URL not configured (set %s or webhook_url in the config file)", EnvWebhookURL)
		}
		return fmt.Errorf("invalid webhook URL %q", c.WebhookURL)
	case "Timeout":
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	case "AnalysisType":
		return fmt.Errorf("unsupported analysis type: %q (supported: summary, sentiment)", c.AnalysisType)
	case "MaxDepth":
		return fmt.Errorf("max depth must be at least 1, got %d", c.MaxDepth)
	case "MaxResponseBytes":
		return fmt.Errorf("max response bytes must not be negative, got %d", c.MaxResponseBytes)
	case "Output":
		return fmt.Errorf("unsupported output format: %q (supported: human, json, yaml)", c.Output)
	default:
		return fe
	}
}
