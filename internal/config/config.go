package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	// APIBaseURL is the remote REST backend every screen works against.
	APIBaseURL string

	SessionSecret []byte
	SessionDBPath string
	CookieSecure  bool

	KafkaBrokers []string
	AuditTopic   string

	LogLevel string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		ListenAddr:    EnvDefault("LISTEN_ADDR", ":8080"),
		APIBaseURL:    strings.TrimSuffix(os.Getenv("API_BASE_URL"), "/"),
		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		SessionDBPath: EnvDefault("SESSION_DB_PATH", "dashboard.db"),
		CookieSecure:  EnvBoolDefault("COOKIE_SECURE", false),
		KafkaBrokers:  CSV(os.Getenv("KAFKA_BROKERS")),
		AuditTopic:    EnvDefault("AUDIT_TOPIC", "audit_events"),
		LogLevel:      EnvDefault("LOG_LEVEL", "info"),
	}

	MustNonEmpty(cfg.APIBaseURL, "API_BASE_URL")
	MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")

	return cfg
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
