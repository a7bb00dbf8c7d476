package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_GenerationDefaults(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", "")
	t.Setenv("GENERATION_API_KEY", "")
	t.Setenv("GENERATION_MODEL", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Generation.Provider)
	assert.Equal(t, "sk-ant-test", cfg.Generation.APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Generation.Model)
	assert.Equal(t, 4000, cfg.Generation.MaxTokens)
	assert.InDelta(t, 0.2, cfg.Generation.Temperature, 1e-9)
	assert.Equal(t, time.Duration(0), cfg.Generation.Timeout)
}

func TestLoad_OpenAIProvider(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", "OpenAI")
	t.Setenv("GENERATION_API_KEY", "")
	t.Setenv("GENERATION_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GENERATION_TEMPERATURE", "0.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Generation.Provider)
	assert.Equal(t, "sk-openai", cfg.Generation.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Generation.Model)
	assert.InDelta(t, 0.5, cfg.Generation.Temperature, 1e-9)
}

func TestLoad_UnsupportedProvider(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", "parrot")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_ServerDefaults(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STREAM_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 8001, cfg.Server.StreamPort)
	assert.Equal(t, 180*time.Second, cfg.Server.WriteTimeout)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:3000")
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "claims", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=claims sslmode=disable", cfg.DatabaseDSN())
}
