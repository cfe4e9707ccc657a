// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	DSN string
}

type LLMConfig struct {
	Provider string // "googleai" or "openai"
	APIKey   string
	Model    string
	Timeout  time.Duration
}

type AuthConfig struct {
	GitHubClientID     string
	GitHubClientSecret string
	CallbackURL        string
	// FrontendURL is where the browser lands after signing in.
	FrontendURL   string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
}

// Limit is a window/max pair read from the environment.
type Limit struct {
	Max    int
	Window time.Duration
}

type RateLimitConfig struct {
	Analyze       Limit
	CoverLetter   Limit
	Extract       Limit
	SweepInterval time.Duration
}

const defaultDSN = "host=localhost user=postgres password=password dbname=jobtracker port=5432 sslmode=disable"

// Load reads the .env file when present and builds the Config.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	llm, err := buildLLMConfig()
	if err != nil {
		return Config{}, err
	}

	authCfg, err := buildAuthConfig()
	if err != nil {
		return Config{}, err
	}

	rateLimit, err := buildRateLimitConfig()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Database:  DatabaseConfig{DSN: getEnv("DATABASE_URL", defaultDSN)},
		LLM:       llm,
		Auth:      authCfg,
		RateLimit: rateLimit,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}, nil
}

func buildLLMConfig() (LLMConfig, error) {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", "googleai"))

	var apiKey, model string
	switch provider {
	case "googleai":
		apiKey = os.Getenv("GEMINI_API_KEY")
		model = getEnv("LLM_MODEL", "gemini-2.5-flash")
	case "openai":
		apiKey = os.Getenv("OPENAI_API_KEY")
		model = getEnv("LLM_MODEL", "gpt-4o-mini")
	default:
		return LLMConfig{}, fmt.Errorf("unsupported LLM_PROVIDER: %s", provider)
	}

	timeout, err := getDuration("LLM_TIMEOUT", time.Minute)
	if err != nil {
		return LLMConfig{}, err
	}

	return LLMConfig{
		Provider: provider,
		APIKey:   strings.TrimSpace(apiKey),
		Model:    model,
		Timeout:  timeout,
	}, nil
}

func buildAuthConfig() (AuthConfig, error) {
	ttl, err := getDuration("SESSION_TTL", 30*24*time.Hour)
	if err != nil {
		return AuthConfig{}, err
	}
	secure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		return AuthConfig{}, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	return AuthConfig{
		GitHubClientID:     os.Getenv("GITHUB_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_SECRET"),
		CallbackURL:        getEnv("GITHUB_CALLBACK_URL", "http://localhost:8080/api/v1/auth/github/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionTTL:         ttl,
		CookieSecure:       secure,
	}, nil
}

func buildRateLimitConfig() (RateLimitConfig, error) {
	analyze, err := buildLimit("RATE_LIMIT_ANALYZE", 10, time.Minute)
	if err != nil {
		return RateLimitConfig{}, err
	}
	coverLetter, err := buildLimit("RATE_LIMIT_COVER_LETTER", 5, time.Minute)
	if err != nil {
		return RateLimitConfig{}, err
	}
	extract, err := buildLimit("RATE_LIMIT_EXTRACT", 10, time.Minute)
	if err != nil {
		return RateLimitConfig{}, err
	}
	sweep, err := getDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return RateLimitConfig{}, err
	}

	return RateLimitConfig{
		Analyze:       analyze,
		CoverLetter:   coverLetter,
		Extract:       extract,
		SweepInterval: sweep,
	}, nil
}

func buildLimit(prefix string, max int, window time.Duration) (Limit, error) {
	maxKey := prefix + "_MAX"
	n, err := strconv.Atoi(getEnv(maxKey, strconv.Itoa(max)))
	if err != nil {
		return Limit{}, fmt.Errorf("invalid %s: %w", maxKey, err)
	}
	if n <= 0 {
		return Limit{}, fmt.Errorf("invalid %s: must be positive", maxKey)
	}

	w, err := getDuration(prefix+"_WINDOW", window)
	if err != nil {
		return Limit{}, err
	}
	return Limit{Max: n, Window: w}, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
