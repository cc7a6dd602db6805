package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting for the API and the worker.
// Values come from the environment, with an optional .env file.
type Config struct {
	Port      string
	RedisAddr string
	DBURL     string

	APISecretKey string

	HeloHost    string
	MailFrom    string
	SMTPTimeout time.Duration

	// DomainCacheTTL shares DNS findings across bulk worker tasks.
	// Zero (the default) disables caching entirely.
	DomainCacheTTL time.Duration

	ProxyList        []string
	ProxyConcurrency int
	SMTPProxyEnabled bool

	HIBPAPIKey string

	WorkerCount int
}

func init() {
	// Missing .env is fine; the environment may be fully populated.
	_ = godotenv.Load()
}

// Load reads the configuration from the environment.
func Load() *Config {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		DBURL:            getEnv("DB_URL", ""),
		APISecretKey:     getEnv("API_SECRET_KEY", ""),
		HeloHost:         getEnv("SMTP_HELO_HOST", "verification.local"),
		MailFrom:         getEnv("SMTP_MAIL_FROM", "verify@verification.local"),
		SMTPTimeout:      getEnvAsDuration("SMTP_TIMEOUT", 10*time.Second),
		DomainCacheTTL:   getEnvAsDuration("DOMAIN_CACHE_TTL", 0),
		ProxyConcurrency: getEnvAsInt("PROXY_CONCURRENCY", 0),
		HIBPAPIKey:       getEnv("HIBP_API_KEY", ""),
		WorkerCount:      getEnvAsInt("WORKER_COUNT", 4),
	}

	if raw := getEnv("PROXY_LIST", ""); raw != "" {
		cfg.ProxyList = strings.Split(raw, ",")
	}

	smtpProxy := strings.ToLower(getEnv("SMTP_PROXY_ENABLED", ""))
	cfg.SMTPProxyEnabled = smtpProxy == "true" || smtpProxy == "1"

	return cfg
}

// BulkEnabled reports whether the bulk verification pipeline has the
// infrastructure it needs.
func (c *Config) BulkEnabled() bool {
	return c.RedisAddr != "" && c.DBURL != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
