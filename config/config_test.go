package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  host: 127.0.0.1
  username: kitchen
  password: secret
  database: couple
consolidation:
  provider: gemini
retention:
  days: 14
`)

	cfg := LoadFrom(path)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.Consolidation.Provider)
	assert.Equal(t, 60, cfg.Consolidation.TimeoutSec)
	assert.Equal(t, 14, cfg.Retention.Days)
	assert.Equal(t, "30 3 * * *", cfg.Retention.Cron)
	assert.Equal(t, "kitchen:secret@tcp(127.0.0.1:3306)/couple?charset=utf8mb4&parseTime=true&loc=Local", cfg.DB.DSN)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db
  username: from_yaml
siliconflow:
  api_key: yaml-key
`)
	t.Setenv("DATABASE_USERNAME", "from_env")
	t.Setenv("SILICONFLOW_API_KEY", "env-key")
	t.Setenv("SHOPPING_API_KEY", "shared-secret")
	t.Setenv("SERVER_PORT", "7000")

	cfg := LoadFrom(path)

	assert.Equal(t, "from_env", cfg.DB.Username)
	assert.Equal(t, "env-key", cfg.SiliconFlow.APIKey)
	assert.Equal(t, "shared-secret", cfg.Auth.APIKey)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Contains(t, cfg.DB.DSN, "from_env:")
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "u:p@tcp(h:1)/d?parseTime=true")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "siliconflow", cfg.Consolidation.Provider)
	assert.Equal(t, "u:p@tcp(h:1)/d?parseTime=true", cfg.DB.DSN)
}

func TestLoadFrom_BrokenYAMLFallsBack(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")

	cfg := LoadFrom(path)

	assert.Equal(t, 8080, cfg.Server.Port)
}
