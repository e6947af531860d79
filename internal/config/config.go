// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider names accepted in TRANSLATION_PROVIDERS
const (
	ProviderGoogle = "google"
	ProviderLibre  = "libre"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Session stores accepted in SESSION_STORE
const (
	SessionStoreMemory = "memory"
	SessionStoreMongo  = "mongo"
)

// Config holds every setting of the service
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	JWTSecret string

	Providers       []string
	GoogleURL       string
	LibreURL        string
	LibreAPIKey     string
	ProviderTimeout time.Duration
	GeminiAPIKey    string
	GeminiModel     string

	CatalogPath        string
	PlaybackIntervalMs int

	SessionStore           string
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration

	MongoURI      string
	MongoDatabase string
}

// Load reads the given .env files (default ".env"), ignoring missing ones,
// then parses the environment
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv parses settings through getenv and validates them
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          env("PORT", "8080"),
		AppEnv:        env("APP_ENV", "production"),
		LogLevel:      env("LOG_LEVEL", ""),
		JWTSecret:     env("JWT_SECRET", ""),
		GoogleURL:     env("GOOGLE_TRANSLATE_URL", ""),
		LibreURL:      env("LIBRE_TRANSLATE_URL", ""),
		LibreAPIKey:   env("LIBRE_TRANSLATE_API_KEY", ""),
		GeminiAPIKey:  env("GEMINI_API_KEY", ""),
		GeminiModel:   env("GEMINI_MODEL", ""),
		CatalogPath:   env("GESTURE_CATALOG_PATH", ""),
		SessionStore:  strings.ToLower(env("SESSION_STORE", SessionStoreMemory)),
		MongoURI:      env("MONGODB_URI", ""),
		MongoDatabase: env("MONGODB_DATABASE", ""),
	}

	for _, name := range strings.Split(env("TRANSLATION_PROVIDERS", ProviderGoogle+","+ProviderLibre), ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			cfg.Providers = append(cfg.Providers, name)
		}
	}

	var err error
	if cfg.ProviderTimeout, err = parseDuration(env("PROVIDER_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT: %w", err)
	}
	if cfg.SessionTTL, err = parseDuration(env("SESSION_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.SessionCleanupInterval, err = parseDuration(env("SESSION_CLEANUP_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("SESSION_CLEANUP_INTERVAL: %w", err)
	}
	if cfg.PlaybackIntervalMs, err = strconv.Atoi(env("PLAYBACK_INTERVAL_MS", "700")); err != nil {
		return nil, fmt.Errorf("PLAYBACK_INTERVAL_MS: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and provider names
func (c *Config) Validate() error {
	if c.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.SessionCleanupInterval <= 0 {
		return errors.New("SESSION_CLEANUP_INTERVAL must be positive")
	}
	if c.PlaybackIntervalMs <= 0 {
		return errors.New("PLAYBACK_INTERVAL_MS must be positive")
	}
	if c.SessionStore != SessionStoreMemory && c.SessionStore != SessionStoreMongo {
		return fmt.Errorf("unknown session store %q", c.SessionStore)
	}
	if len(c.Providers) == 0 {
		return errors.New("TRANSLATION_PROVIDERS must name at least one provider")
	}

	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		switch p {
		case ProviderGoogle, ProviderLibre, ProviderMock:
		case ProviderGemini:
			if c.GeminiAPIKey == "" {
				return errors.New("GEMINI_API_KEY is required when the gemini provider is enabled")
			}
		default:
			return fmt.Errorf("unknown translation provider %q", p)
		}
		if seen[p] {
			return fmt.Errorf("translation provider %q listed twice", p)
		}
		seen[p] = true
	}
	return nil
}

// IsDevelopment reports whether APP_ENV selects development mode
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development") || strings.EqualFold(c.AppEnv, "dev")
}

// parseDuration accepts Go durations ("10s") or bare seconds ("10")
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
