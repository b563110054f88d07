package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvWebhookURL, EnvTimeout, EnvAnalysisType, EnvMaxDepth, EnvOutput} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.WebhookURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, model.AnalysisSummary, cfg.AnalysisType)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, "human", cfg.Output)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `webhook_url: https://hooks.example.com/webhook/text-analysis
timeout: 15s
analysis_type: sentiment
max_depth: 8
output: yaml
headers:
  Authorization: Bearer abc
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.example.com/webhook/text-analysis", cfg.WebhookURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, model.AnalysisSentiment, cfg.AnalysisType)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "Bearer abc", cfg.Headers["Authorization"])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webhook_url: [unterminated"), 0o600))

	_, err := Load(path, true)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_TimeoutNeedsUnit(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
		wantErr string
	}{
		{"bare integer", "30", 0, `timeout "30" needs a unit`},
		{"with unit", "30s", 30 * time.Second, ""},
		{"zero disables", "0", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte("timeout: "+tt.timeout+"\n"), 0o600))

			cfg, err := Load(path, true)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Timeout)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("webhook_url: https://file.example.com/hook\ntimeout: 5s\n"), 0o600))

	t.Setenv(EnvWebhookURL, "https://env.example.com/hook")
	t.Setenv(EnvTimeout, "2m")
	t.Setenv(EnvAnalysisType, "Sentiment")
	t.Setenv(EnvMaxDepth, "4")
	t.Setenv(EnvOutput, "JSON")

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/hook", cfg.WebhookURL)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, model.AnalysisSentiment, cfg.AnalysisType)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"timeout", EnvTimeout, "soon"},
		{"analysis type", EnvAnalysisType, "keywords"},
		{"max depth", EnvMaxDepth, "deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load("", false)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.WebhookURL = "https://hooks.example.com/webhook/text-analysis"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing url", func(c *Config) { c.WebhookURL = "" }, "webhook URL not configured"},
		{"bad url", func(c *Config) { c.WebhookURL = "not a url" }, "invalid webhook URL"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must not be negative"},
		{"zero timeout disables it", func(c *Config) { c.Timeout = 0 }, ""},
		{"bad type", func(c *Config) { c.AnalysisType = "keywords" }, "unsupported analysis type"},
		{"zero depth", func(c *Config) { c.MaxDepth = 0 }, "max depth must be at least 1"},
		{"bad output", func(c *Config) { c.Output = "xml" }, "unsupported output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
