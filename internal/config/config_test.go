package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	assert.Equal(t, 256, cfg.WebSocket.SendQueueSize)
	assert.Equal(t, time.Hour, cfg.GetJWTDuration())
}

func TestLoad_MissingJWTSecretFails(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")

	yaml := `
server:
  port: "9090"
database:
  postgres:
    host: db.internal
    database: procs
websocket:
  send_queue_size: 32
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "procs", cfg.Database.Postgres.Database)
	assert.Equal(t, 32, cfg.WebSocket.SendQueueSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// YAML left these at their defaults
	assert.Equal(t, "5432", cfg.Database.Postgres.Port)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("POSTGRES_HOST", "env-host")

	yaml := "server:\n  port: \"9090\"\n"
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "env-host", cfg.Database.Postgres.Host)
}

func TestLoad_DurationFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SERVER_READ_TIMEOUT", "45s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: "5432", User: "u", Password: "pw", Database: "d"}
	assert.Equal(t, "host=h port=5432 user=u password=pw dbname=d sslmode=disable", p.DSN())
}

func TestListenAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.Interface = "127.0.0.1"
	cfg.Server.Port = "8081"
	assert.Equal(t, "127.0.0.1:8081", cfg.ListenAddress())
}
