package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := parse(env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "grocer_session", cfg.Session.CookieName)
	assert.Empty(t, cfg.Session.RedisURL)
	assert.Equal(t, "./saved_sessions", cfg.SnapshotDir)
	assert.Equal(t, "./tmp_pdfs", cfg.PDFDir)
	assert.Equal(t, "grocery_prices.json", cfg.PricesFile)
	assert.Equal(t, "./orders.db", cfg.Database.SQLitePath)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
	assert.Empty(t, cfg.Llama.APIURL)
	assert.Len(t, cfg.CORSOrigins, 3)
	assert.False(t, cfg.R2.Storage().Enabled())
}

func TestParse_ProductionNeedsSecret(t *testing.T) {
	_, err := parse(env.Options{Environment: map[string]string{"APP_ENV": "production"}})
	assert.ErrorContains(t, err, "SESSION_SECRET")

	cfg, err := parse(env.Options{Environment: map[string]string{
		"APP_ENV":        "production",
		"SESSION_SECRET": "s3cret",
	}})
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "8080")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GEMINI_TEMPERATURE", "0.2")
	t.Setenv("GEMINI_MAX_OUTPUT_TOKENS", "512")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Session.RedisURL)

	p := cfg.Gemini.Params()
	assert.InDelta(t, 0.2, p.Temperature, 1e-6)
	assert.Equal(t, int32(512), p.MaxOutputTokens)
	assert.InDelta(t, 40, p.TopK, 1e-6)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:    "5000",
			AppEnv:  "development",
			Session: SessionConfig{Secret: DevSessionSecret, TTL: 30 * time.Minute},
			Gemini:  GeminiConfig{Timeout: 30 * time.Second},
		}
	}

	assert.NoError(t, base().Validate())

	prod := base()
	prod.AppEnv = "production"
	assert.ErrorContains(t, prod.Validate(), "SESSION_SECRET")
	prod.Session.Secret = "real-secret"
	assert.NoError(t, prod.Validate())

	ttl := base()
	ttl.Session.TTL = 0
	assert.ErrorContains(t, ttl.Validate(), "SESSION_TTL")

	r2 := base()
	r2.R2.Endpoint = "https://r2.example.com"
	assert.ErrorContains(t, r2.Validate(), "R2_ENDPOINT")
	r2.R2 = R2Config{Endpoint: "e", AccessKey: "a", SecretKey: "s", Bucket: "b"}
	assert.NoError(t, r2.Validate())
	assert.True(t, r2.R2.Storage().Enabled())
}
