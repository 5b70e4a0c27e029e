package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should fall back to defaults without a file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, defaults(), cfg)
	})

	t.Run("should read values from the file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := `
server:
  addr: ":9090"
storage:
  driver: bolt
  path: /var/lib/quhixcal/events.db
client:
  baseurl: http://calendar.local
  timeout: 3s
ui:
  darkmode: false
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, 5000, cfg.Server.MaxOccurrences)
		assert.Equal(t, 10, cfg.Database.MaxConns)
		assert.Equal(t, 2, cfg.Database.MinConns)
		assert.Equal(t, StorageBolt, cfg.Storage.Driver)
		assert.Equal(t, "/var/lib/quhixcal/events.db", cfg.Storage.Path)
		assert.Equal(t, "http://calendar.local", cfg.Client.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
		assert.Equal(t, "*/5 * * * *", cfg.Client.Refresh)
		assert.False(t, cfg.UI.DarkMode)
		assert.Equal(t, "quhixcal", cfg.Database.Name)
	})

	t.Run("should let the environment win over the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("client:\n  baseurl: http://from-file\n"), 0o600))
		t.Setenv("QUHIXCAL_CLIENT_BASEURL", "http://from-env")
		t.Setenv("QUHIXCAL_DB_PORT", "6543")
		t.Setenv("QUHIXCAL_DB_MAXCONNS", "25")
		t.Setenv("QUHIXCAL_CLIENT_TIMEOUT", "750ms")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "http://from-env", cfg.Client.BaseURL)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, 25, cfg.Database.MaxConns)
		assert.Equal(t, 750*time.Millisecond, cfg.Client.Timeout)
	})

	t.Run("should fail on a malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

		_, err := Load(path)

		assert.Error(t, err)
	})
}
