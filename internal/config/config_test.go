package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("RATE_LIMIT_ANALYZE_MAX", "")
	t.Setenv("RATE_LIMIT_COVER_LETTER_MAX", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "googleai", cfg.LLM.Provider)
	assert.Equal(t, time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, Limit{Max: 10, Window: time.Minute}, cfg.RateLimit.Analyze)
	assert.Equal(t, Limit{Max: 5, Window: time.Minute}, cfg.RateLimit.CoverLetter)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.SweepInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", " sk-test ")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("RATE_LIMIT_COVER_LETTER_MAX", "2")
	t.Setenv("RATE_LIMIT_COVER_LETTER_WINDOW", "30s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, Limit{Max: 2, Window: 30 * time.Second}, cfg.RateLimit.CoverLetter)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	tt := []struct {
		desc  string
		key   string
		value string
	}{
		{desc: "unknown provider", key: "LLM_PROVIDER", value: "llama"},
		{desc: "non numeric max", key: "RATE_LIMIT_ANALYZE_MAX", value: "ten"},
		{desc: "zero max", key: "RATE_LIMIT_ANALYZE_MAX", value: "0"},
		{desc: "bad duration", key: "RATE_LIMIT_SWEEP_INTERVAL", value: "5 minutes"},
		{desc: "negative timeout", key: "LLM_TIMEOUT", value: "-1s"},
		{desc: "bad bool", key: "COOKIE_SECURE", value: "maybe"},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
