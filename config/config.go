package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Env  string
	Port int

	MarketCheckAPIKey string
	EbayEnvironment   string
	EbayClientID      string
	EbayClientSecret  string
	AutoDevAPIKey     string

	AdminToken     string
	AllowedOrigins []string
	TrustProxy     bool

	LeadWebhookURL    string
	LeadWebhookSecret string
	LeadsDSN          string

	DataDir string
	LogDir  string

	CacheFreshTTL time.Duration
	CacheStaleTTL time.Duration

	UpstreamTimeout time.Duration
	MaxRetries      int
	RetryBaseDelay  time.Duration
}

// IsProd reports whether the service runs with production fail-fast rules.
func (c *Config) IsProd() bool { return c.Env == "production" }

// Load reads the .env file and returns a populated Config struct.
// In production, missing required secrets are a startup error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnvInt("PORT", 1335),

		MarketCheckAPIKey: strings.TrimSpace(os.Getenv("MARKETCHECK_API_KEY")),
		EbayEnvironment:   strings.ToLower(getEnv("EBAY_ENVIRONMENT", "sandbox")),
		EbayClientID:      strings.TrimSpace(os.Getenv("EBAY_CLIENT_ID")),
		EbayClientSecret:  strings.TrimSpace(os.Getenv("EBAY_CLIENT_SECRET")),
		AutoDevAPIKey:     strings.TrimSpace(os.Getenv("AUTO_DEV_API_KEY")),

		AdminToken: strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		TrustProxy: os.Getenv("TRUST_PROXY") == "1",

		LeadWebhookURL:    strings.TrimSpace(os.Getenv("LEAD_WEBHOOK_URL")),
		LeadWebhookSecret: strings.TrimSpace(os.Getenv("LEAD_WEBHOOK_SECRET")),
		LeadsDSN:          strings.TrimSpace(os.Getenv("LEADS_DSN")),

		DataDir: getEnv("DATA_DIR", "./data"),
		LogDir:  getEnv("LOG_DIR", "./logs"),

		CacheFreshTTL: time.Duration(getEnvInt("CACHE_FRESH_SECONDS", 300)) * time.Second,
		CacheStaleTTL: time.Duration(getEnvInt("CACHE_STALE_SECONDS", 1800)) * time.Second,

		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_MS", 12000)) * time.Millisecond,
		MaxRetries:      getEnvInt("MAX_RETRIES", 2),
		RetryBaseDelay:  time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 1000)) * time.Millisecond,
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	if cfg.IsProd() {
		if cfg.AdminToken == "" {
			return nil, fmt.Errorf("config: ADMIN_TOKEN required in production")
		}
		if cfg.MarketCheckAPIKey == "" {
			return nil, fmt.Errorf("config: MARKETCHECK_API_KEY required in production")
		}
		if len(cfg.AllowedOrigins) == 0 {
			return nil, fmt.Errorf("config: ALLOWED_ORIGINS required in production (comma-separated list)")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
