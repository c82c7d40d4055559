package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "driving", cfg.CommuteMode)
	assert.Equal(t, 50, cfg.RecordsPerPage)
	assert.Equal(t, 2000, cfg.ScrapeDelayMs)
	assert.False(t, cfg.PostgresEnabled)
	assert.Equal(t, filepath.Join("data", "processed", "real_estate_data.csv"), filepath.Clean(cfg.DefaultOutputPath()))
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MAX_LISTINGS", "7")
	t.Setenv("COMMUTE_MODE", "transit")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxListings)
	assert.Equal(t, "transit", cfg.CommuteMode)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("default_destination: 1 Rideau St, Ottawa, ON\nserver_port: 9090\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1 Rideau St, Ottawa, ON", cfg.DefaultDestination)
	assert.Equal(t, 9090, cfg.ServerPort)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "re", PostgresSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=re sslmode=disable", cfg.DSN())
}
