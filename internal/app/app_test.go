// internal/app/app_test.go
package app

import (
	"testing"

	"github.com/newthinker/scribe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FromDefaults(t *testing.T) {
	cfg := config.Defaults()
	require.NoError(t, cfg.Validate())

	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, a.Engine())
	assert.NotNil(t, a.Client())
}

func TestNew_NoEnabledProviders(t *testing.T) {
	cfg := config.Defaults()
	cfg.Providers = nil

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestNew_CloudProviderWithKey(t *testing.T) {
	cfg := config.Defaults()
	cfg.Providers["claude"] = config.ProviderConfig{
		Enabled:         true,
		APIKey:          "test-key",
		Model:           "claude-sonnet-4-20250514",
		TimeoutSeconds:  60,
		RateLimitRPM:    50,
		CostPer1KTokens: 3.0,
		QualityScore:    0.95,
	}

	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestNew_LocalfsArchive(t *testing.T) {
	cfg := config.Defaults()
	cfg.Archive.Type = "localfs"
	cfg.Archive.Path = t.TempDir()

	_, err := New(cfg, nil)
	require.NoError(t, err)
}

func TestNew_UnknownArchiveType(t *testing.T) {
	cfg := config.Defaults()
	cfg.Archive.Type = "ftp"

	_, err := New(cfg, nil)
	assert.Error(t, err)
}
