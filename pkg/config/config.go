package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Baseline is the equity every agent starts with. It exists purely so the
// client can show profit/loss as a delta; it is never written back to the
// server.
const Baseline = 10_000.0

type Config struct {
	// Backend
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Refresh
	PollInterval time.Duration

	// Local state
	CredDBPath string
	LogFile    string
	LogLevel   string

	// Cosmetics: external image templates, %s is the seed / ticker
	AvatarURLTemplate   string
	FallbackURLTemplate string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:   envOr("ARENA_API_URL", "http://localhost:8000/api/v1"),
		HTTPTimeout:  time.Duration(envInt("ARENA_HTTP_TIMEOUT", 15)) * time.Second,
		PollInterval: time.Duration(envInt("ARENA_POLL_INTERVAL", 5)) * time.Second,
		CredDBPath:   envOr("ARENA_CRED_DB", "arena_session.db"),
		LogFile:      envOr("ARENA_LOG_FILE", "arena.log"),
		LogLevel:     envOr("ARENA_LOG_LEVEL", "info"),

		AvatarURLTemplate:   envOr("ARENA_AVATAR_URL", "https://api.dicebear.com/7.x/bottts-neutral/svg?seed=%s"),
		FallbackURLTemplate: envOr("ARENA_LOGO_FALLBACK_URL", "https://ui-avatars.com/api/?name=%s&background=random&color=fff&size=32"),
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("ARENA_API_URL must not be empty")
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("ARENA_POLL_INTERVAL must be at least 1 second, got %s", c.PollInterval)
	}
	return nil
}

// --- Known ticker logos ---

var TickerLogos = map[string]string{
	"AAPL":  "https://logo.clearbit.com/apple.com",
	"GOOGL": "https://logo.clearbit.com/abc.xyz",
	"MSFT":  "https://logo.clearbit.com/microsoft.com",
	"TSLA":  "https://logo.clearbit.com/tesla.com",
	"NVDA":  "https://logo.clearbit.com/nvidia.com",
	"AMD":   "https://logo.clearbit.com/amd.com",
	"AMZN":  "https://logo.clearbit.com/amazon.com",
	"META":  "https://logo.clearbit.com/meta.com",
	"NFLX":  "https://logo.clearbit.com/netflix.com",
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
