package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "territory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  type: sqlite\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5390, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, filepath.Join("data", "territory.db"), cfg.Database.DBName)
	assert.Equal(t, 15*time.Minute, cfg.Scanner.Interval)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Duration)
	assert.Equal(t, "territory", cfg.Metrics.Namespace)
}

func TestLoadConfigResolvesEnv(t *testing.T) {
	t.Setenv("TERRITORY_DB", "/tmp/custom.db")
	path := writeConfig(t, `
port: 8080
database:
  type: sqlite
  dbname: ${TERRITORY_DB}
jwt:
  secret_key: ${TERRITORY_JWT_SECRET:fallback-secret-key-0123456789abcdef}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/tmp/custom.db", cfg.Database.DBName)
	assert.Equal(t, "fallback-secret-key-0123456789abcdef", cfg.JWT.SecretKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDSN(t *testing.T) {
	pg := &DatabaseConfig{Type: "postgres", Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "territory", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@localhost:5432/territory?sslmode=disable", pg.GetDSN())

	my := &DatabaseConfig{Type: "mysql", Host: "127.0.0.1", Port: 3306, User: "root", Password: "p", DBName: "territory"}
	assert.Equal(t, "root:p@tcp(127.0.0.1:3306)/territory?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	lite := &DatabaseConfig{Type: "sqlite", DBName: "data/territory.db"}
	assert.Equal(t, "data/territory.db", lite.GetDSN())

	assert.Equal(t, "", (&DatabaseConfig{Type: "oracle"}).GetDSN())
}
