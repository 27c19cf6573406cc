package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/scribe/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig              `mapstructure:"server"`
	Providers map[string]ProviderConfig `mapstructure:"providers"`
	Routing   RoutingConfig             `mapstructure:"routing"`
	Session   SessionConfig             `mapstructure:"session"`
	Cache     CacheConfig               `mapstructure:"cache"`
	Archive   ArchiveConfig             `mapstructure:"archive"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// ProviderConfig holds the registration-time settings for one backend.
// All routing fields are required; there is no dynamic reconfiguration.
type ProviderConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	Model           string  `mapstructure:"model"`
	APIKey          string  `mapstructure:"api_key"`
	Endpoint        string  `mapstructure:"endpoint"` // ollama only
	MaxRetries      int     `mapstructure:"max_retries"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	Priority        int     `mapstructure:"priority"`
	CostPer1KTokens float64 `mapstructure:"cost_per_1k_tokens"`
	RateLimitRPM    int     `mapstructure:"rate_limit_rpm"`
	QualityScore    float64 `mapstructure:"quality_score"`
}

type RoutingConfig struct {
	Strategy   string `mapstructure:"strategy"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type SessionConfig struct {
	MaxQuestions int `mapstructure:"max_questions"`
	MaxSessions  int `mapstructure:"max_sessions"`
}

type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// ArchiveConfig holds cold storage settings for finalized documents.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "none", "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Providers: map[string]ProviderConfig{
			string(core.ProviderOllama): {
				Enabled:        true,
				Endpoint:       "http://localhost:11434",
				MaxRetries:     2,
				TimeoutSeconds: 120,
				Priority:       10,
				RateLimitRPM:   60,
				QualityScore:   0.6,
			},
		},
		Routing: RoutingConfig{
			Strategy:   string(core.StrategyBalanced),
			MaxRetries: 2,
		},
		Session: SessionConfig{
			MaxQuestions: 5,
			MaxSessions:  1000,
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTL:        15 * time.Minute,
			MaxEntries: 256,
		},
		Archive: ArchiveConfig{
			Type: "none",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.enabledProviders()) == 0 {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("no providers enabled"))
	}

	for name, p := range c.Providers {
		if !p.Enabled {
			continue
		}
		kind := core.ProviderKind(name)
		if kind != core.ProviderClaude && kind != core.ProviderOpenAI && kind != core.ProviderOllama {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown provider kind %q", name))
		}
		if kind != core.ProviderOllama && p.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("provider %s: api_key required", name))
		}
		if p.TimeoutSeconds <= 0 {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("provider %s: timeout_seconds must be positive", name))
		}
		if p.RateLimitRPM <= 0 {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("provider %s: rate_limit_rpm must be positive", name))
		}
		if p.QualityScore < 0 || p.QualityScore > 1 {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("provider %s: quality_score must be in [0,1]", name))
		}
		if p.CostPer1KTokens < 0 {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("provider %s: cost_per_1k_tokens must be >= 0", name))
		}
	}

	if c.Routing.Strategy != "" && !core.Strategy(c.Routing.Strategy).IsValid() {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown routing strategy %q", c.Routing.Strategy))
	}

	switch c.Archive.Type {
	case "", "none", "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", c.Archive.Type))
	}
	if c.Archive.Type == "localfs" && c.Archive.Path == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive: path required for localfs"))
	}
	if c.Archive.Type == "s3" && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("archive: s3 bucket required"))
	}

	return nil
}

func (c *Config) enabledProviders() []string {
	var names []string
	for name, p := range c.Providers {
		if p.Enabled {
			names = append(names, name)
		}
	}
	return names
}
