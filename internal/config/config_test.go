package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/scribe/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090
  api_key: "secret"
providers:
  claude:
    enabled: true
    model: "claude-sonnet-4-20250514"
    api_key: "ck"
    timeout_seconds: 60
    priority: 1
    cost_per_1k_tokens: 3.0
    rate_limit_rpm: 50
    quality_score: 0.95
routing:
  strategy: "quality"
  max_retries: 3
session:
  max_questions: 4
cache:
  enabled: true
  ttl: 10m
archive:
  type: "localfs"
  path: "/tmp/docs"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "quality", cfg.Routing.Strategy)
	assert.Equal(t, 4, cfg.Session.MaxQuestions)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "localfs", cfg.Archive.Type)

	p, ok := cfg.Providers["claude"]
	require.True(t, ok)
	assert.Equal(t, 0.95, p.QualityScore)
	assert.Equal(t, 50, p.RateLimitRPM)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SCRIBE_TEST_KEY", "expanded-key")
	path := writeConfig(t, `
providers:
  openai:
    enabled: true
    api_key: "${SCRIBE_TEST_KEY}"
    timeout_seconds: 30
    rate_limit_rpm: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Providers["openai"].APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestDefaults_AreValid(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		cfg := Defaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no providers enabled", func(c *Config) {
			c.Providers = nil
		}, core.ErrConfigMissing},
		{"unknown provider kind", func(c *Config) {
			c.Providers["grok"] = ProviderConfig{Enabled: true, TimeoutSeconds: 30, RateLimitRPM: 60}
		}, core.ErrConfigInvalid},
		{"cloud provider without api key", func(c *Config) {
			c.Providers["claude"] = ProviderConfig{Enabled: true, TimeoutSeconds: 30, RateLimitRPM: 60}
		}, core.ErrConfigMissing},
		{"nonpositive timeout", func(c *Config) {
			p := c.Providers[string(core.ProviderOllama)]
			p.TimeoutSeconds = 0
			c.Providers[string(core.ProviderOllama)] = p
		}, core.ErrConfigInvalid},
		{"quality score out of range", func(c *Config) {
			p := c.Providers[string(core.ProviderOllama)]
			p.QualityScore = 1.5
			c.Providers[string(core.ProviderOllama)] = p
		}, core.ErrConfigInvalid},
		{"negative cost", func(c *Config) {
			p := c.Providers[string(core.ProviderOllama)]
			p.CostPer1KTokens = -1
			c.Providers[string(core.ProviderOllama)] = p
		}, core.ErrConfigInvalid},
		{"unknown strategy", func(c *Config) {
			c.Routing.Strategy = "cheapest"
		}, core.ErrConfigInvalid},
		{"unknown archive type", func(c *Config) {
			c.Archive.Type = "ftp"
		}, core.ErrConfigInvalid},
		{"localfs without path", func(c *Config) {
			c.Archive.Type = "localfs"
		}, core.ErrConfigMissing},
		{"s3 without bucket", func(c *Config) {
			c.Archive.Type = "s3"
		}, core.ErrConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidate_DisabledProvidersAreIgnored(t *testing.T) {
	cfg := Defaults()
	cfg.Providers["claude"] = ProviderConfig{Enabled: false}
	assert.NoError(t, cfg.Validate())
}
