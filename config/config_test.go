package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "mongo", cfg.Mongo.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "COP", cfg.App.DefaultCurrency)
	assert.Equal(t, 5, cfg.Outbox.MaxAttempts)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: "9000"
mongo:
  uri: mongodb://db:27017
  dbName: autos
jwt:
  secret: from-file
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("ALLOWED_ORIGINS", "https://1auto.market, https://admin.1auto.market")
	t.Setenv("OUTBOX_POLL_INTERVAL", "2s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "autos", cfg.Mongo.DBName)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, []string{"https://1auto.market", "https://admin.1auto.market"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	assert.ErrorContains(t, Config{}.Validate(), "jwt.secret")

	cfg := Config{JWT: JWTConfig{Secret: "s"}}
	assert.ErrorContains(t, cfg.Validate(), "mongo.uri")

	cfg.Mongo.Driver = "memory"
	assert.NoError(t, cfg.Validate())
}
