package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: memory\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, "tickets", cfg.Kafka.TicketTopic)
	assert.Equal(t, "tickets", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, 30*time.Second, cfg.Booking.FlightsTTL())
	assert.Equal(t, 5*time.Second, cfg.Booking.ShutdownTimeout())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestParse_Postgres(t *testing.T) {
	cfg, err := Parse([]byte(`
database:
  host: db
  user: flightdesk
  password: secret
  name: flightdesk
redis:
  addr: redis:6379
kafka:
  brokers: [kafka:9092]
  notifications_topic: notifications
`))
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=db port=5432 user=flightdesk password=secret dbname=flightdesk sslmode=disable", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "notifications", cfg.Kafka.NotificationsTopic)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: oracle\n"))
	assert.ErrorContains(t, err, "unknown driver")

	_, err = Parse([]byte("database:\n  driver: postgres\n"))
	assert.ErrorContains(t, err, "host and name are required")

	_, err = Parse([]byte("http: ["))
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: memory\nlogs:\n  level: debug\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logs.Level)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config.yaml", Path())

	t.Setenv("CONFIG_PATH", "/etc/flightdesk.yaml")
	assert.Equal(t, "/etc/flightdesk.yaml", Path())
}
