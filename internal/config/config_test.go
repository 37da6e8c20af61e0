package config

import (
	"testing"
	"time"

	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("RELAY_BASE_URL", "")
	t.Setenv("SCRAPE_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 55*time.Second, cfg.Gateway.ScrapeTimeout)
	assert.Equal(t, time.Second, cfg.Gateway.RetryBaseDelay)
	assert.Zero(t, cfg.Gateway.GenerateTimeout)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "apify~instagram-profile-scraper", cfg.Apify.Actors["instagram"])
	assert.False(t, cfg.RelayEnabled())
	assert.True(t, cfg.HasGenerationCredential())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RELAY_BASE_URL", "https://relay.example.com/")
	t.Setenv("SCRAPE_TIMEOUT_SECONDS", "20")
	t.Setenv("RETRY_BASE_DELAY_MS", "250")
	t.Setenv("OPENAI_ENABLE_FALLBACK", "false")
	t.Setenv("ANALYSIS_BATCH_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://relay.example.com", cfg.Relay.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Gateway.ScrapeTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Gateway.RetryBaseDelay)
	assert.False(t, cfg.OpenAI.EnableFallback)
	assert.Equal(t, 4, cfg.Analysis.BatchConcurrency)
	assert.True(t, cfg.RelayEnabled())
}

func TestValidateRequiresGenerationCredential(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Gateway:  GatewayConfig{ScrapeTimeout: time.Second},
		Analysis: AnalysisConfig{BatchConcurrency: 1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCredentialMissing))

	cfg.OpenAI.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadTimeouts(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Relay:    RelayConfig{BaseURL: "http://relay"},
		Analysis: AnalysisConfig{BatchConcurrency: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.Gateway.ScrapeTimeout = time.Second
	cfg.Gateway.RetryBaseDelay = -time.Millisecond
	assert.Error(t, cfg.Validate())
}
