package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	AppName     = "pricemate"
	EnvFileName = "config.env"
)

// Config holds the process settings shared by the server and the CLI.
type Config struct {
	Env             string
	Backend         string
	APIURL          string
	HTTPPort        string
	DBPath          string
	GeminiAPIKey    string
	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
	MaxImageMB      int64
}

// MaxImageBytes is MaxImageMB in bytes.
func (c *Config) MaxImageBytes() int64 {
	return c.MaxImageMB << 20
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadEnvFiles loads .env from the working directory and config.env from
// the user's config directory. Missing files are ignored. Variables already
// set in the environment win.
func LoadEnvFiles() {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(configBase, AppName, EnvFileName))
}

// Load reads env files and the environment. Invalid numbers and durations
// fall back to their defaults with a warning.
func Load() *Config {
	LoadEnvFiles()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		Backend:         getEnv("PRICEMATE_BACKEND", "stub"),
		APIURL:          getEnv("PRICEMATE_API_URL", "http://localhost:4000"),
		HTTPPort:        getEnv("HTTP_PORT", "4000"),
		DBPath:          getEnv("PRICEMATE_DB_PATH", "pricemate.db"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RateLimitLimit:  parseInt64("RATE_LIMIT_LIMIT", 10),
		RateLimitPeriod: parseDuration("RATE_LIMIT_PERIOD", time.Minute),
		MaxImageMB:      parseInt64("MAX_IMAGE_MB", 8),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt64(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int64("default", fallback).Msg("invalid number in config, using default")
		return fallback
	}
	return n
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Dur("default", fallback).Msg("invalid duration in config, using default")
		return fallback
	}
	return d
}
