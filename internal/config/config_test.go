package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "data/songwork.db", cfg.DB.Path)
	require.Equal(t, "data/backup.json", cfg.Snapshot.Path)
	require.True(t, cfg.Snapshot.RestoreOnStart)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SONGWORK_SERVER_PORT", "9090")
	t.Setenv("SONGWORK_SNAPSHOT_PATH", "/var/lib/songwork/backup.json")
	t.Setenv("SONGWORK_RESTORE_ON_START", "false")
	t.Setenv("SONGWORK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/var/lib/songwork/backup.json", cfg.Snapshot.Path)
	require.False(t, cfg.Snapshot.RestoreOnStart)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_YAMLFileThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  host: 127.0.0.1
  port: 3000
snapshot:
  path: from-file.json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("SONGWORK_CONFIG_PATH", path)
	t.Setenv("SONGWORK_SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 4000, cfg.Server.Port)
	require.Equal(t, "from-file.json", cfg.Snapshot.Path)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SONGWORK_SERVER_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
}
