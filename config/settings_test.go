package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_VERSION", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "OPENAI_TEMPERATURE",
		"OPENAI_TIMEOUT_SECONDS", "MAX_RETRIES", "OPENAI_OFFLINE_MODE", "JUDGE_LEXICAL_SIGNALS",
		"SERVER_ADDR", "GIN_MODE", "LOG_LEVEL", "HEALTHCHECK_INTERVAL_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAppVersion, s.AppVersion)
	assert.Equal(t, DefaultModel, s.Model)
	assert.InDelta(t, 0.2, s.Temperature, 1e-9)
	assert.Equal(t, 20*time.Second, s.Timeout)
	assert.Equal(t, 1, s.MaxRetries)
	assert.False(t, s.OfflineMode)
	assert.False(t, s.LexicalSignals)
	assert.Equal(t, ":8000", s.ServerAddr)
	assert.Equal(t, 15*time.Second, s.HealthCheckInterval)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "  sk-test  ")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TEMPERATURE", "0.7")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "2.5")
	t.Setenv("MAX_RETRIES", "3")
	t.Setenv("OPENAI_OFFLINE_MODE", "TRUE")
	t.Setenv("JUDGE_LEXICAL_SIGNALS", "true")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk-test", s.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", s.Model)
	assert.InDelta(t, 0.7, s.Temperature, 1e-9)
	assert.Equal(t, 2500*time.Millisecond, s.Timeout)
	assert.Equal(t, 3, s.MaxRetries)
	assert.True(t, s.OfflineMode)
	assert.True(t, s.LexicalSignals)
}

func TestLoadRejectsGarbage(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_TEMPERATURE", "warm")
	t.Setenv("MAX_RETRIES", "once")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "OPENAI_TEMPERATURE")
	assert.Contains(t, err.Error(), "MAX_RETRIES")
}

func TestRequireAPIKey(t *testing.T) {
	t.Run("online without key", func(t *testing.T) {
		err := Settings{}.RequireAPIKey()
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("offline without key", func(t *testing.T) {
		assert.NoError(t, Settings{OfflineMode: true}.RequireAPIKey())
	})

	t.Run("online with key", func(t *testing.T) {
		assert.NoError(t, Settings{OpenAIAPIKey: "sk"}.RequireAPIKey())
	})
}
