package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvDefault(t *testing.T) {
	t.Setenv("TEST_ENV_DEFAULT", "")
	require.Equal(t, "fallback", EnvDefault("TEST_ENV_DEFAULT", "fallback"))

	t.Setenv("TEST_ENV_DEFAULT", "valor")
	require.Equal(t, "valor", EnvDefault("TEST_ENV_DEFAULT", "fallback"))
}

func TestEnvBoolDefault(t *testing.T) {
	t.Setenv("TEST_ENV_BOOL", "")
	require.True(t, EnvBoolDefault("TEST_ENV_BOOL", true))

	t.Setenv("TEST_ENV_BOOL", "false")
	require.False(t, EnvBoolDefault("TEST_ENV_BOOL", true))

	t.Setenv("TEST_ENV_BOOL", "no-es-bool")
	require.True(t, EnvBoolDefault("TEST_ENV_BOOL", true))
}

func TestCSV(t *testing.T) {
	require.Nil(t, CSV(""))
	require.Equal(t, []string{"a"}, CSV("a"))
	require.Equal(t, []string{"a", "b", "c"}, CSV(" a , b ,c,, "))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://backend.example.com/")
	t.Setenv("SESSION_SECRET", "secreto")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("AUDIT_TOPIC", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SESSION_DB_PATH", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg := Load()
	require.Equal(t, "https://backend.example.com", cfg.APIBaseURL, "la barra final se recorta")
	require.Equal(t, []byte("secreto"), cfg.SessionSecret)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, "audit_events", cfg.AuditTopic)
	require.Equal(t, "dashboard.db", cfg.SessionDBPath)
	require.False(t, cfg.CookieSecure)
}
