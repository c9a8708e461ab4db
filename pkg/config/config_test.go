package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.ResourceListLimitMax)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	contents := []byte("database_url: postgres://file/db\nlog_level: debug\ntenant_tables: [resources, events]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), contents, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"resources", "events"}, cfg.TenantTables)

	t.Setenv("DATABASE_URL", "postgres://env/db")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL, "environment wins over file")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not yaml"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
}
