package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tasktracker"), cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "tasktracker", "tasks.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "tasktracker", "credentials.txt"), cfg.CredentialsPath)
	assert.Equal(t, filepath.Join(dir, "tasktracker", "tasktracker.log"), cfg.LogPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "plain", cfg.PasswordHashing)
	assert.False(t, cfg.ArchiveCleared)
	assert.Equal(t, "127.0.0.1:8765", cfg.APIAddress)
	assert.Equal(t, 10*time.Second, cfg.SMTP.Timeout)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Empty(t, cfg.SMTP.Host)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
data_dir: ` + dir + `
password_hashing: bcrypt
archive_cleared: true
smtp:
  host: smtp.example.com
  timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("TASKTRACKER_LOG_LEVEL", "debug")
	t.Setenv("TASKTRACKER_SMTP_PORT", "2525")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "tasks.db"), cfg.DBPath)
	assert.Equal(t, "bcrypt", cfg.PasswordHashing)
	assert.True(t, cfg.ArchiveCleared)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, 3*time.Second, cfg.SMTP.Timeout)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	tests := []struct {
		name string
		yaml string
	}{
		{"hashing", "password_hashing: md5\n"},
		{"log level", "log_level: loud\n"},
		{"timeout", "smtp:\n  timeout: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "tasktracker", "config.yaml"), path)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("TASKTRACKER_LOG_LEVEL", "warn")
	os.Unsetenv("TASKTRACKER_API_ADDRESS")
	t.Cleanup(func() { os.Unsetenv("TASKTRACKER_API_ADDRESS") })

	env := "TASKTRACKER_API_ADDRESS=127.0.0.1:9999\nTASKTRACKER_LOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0600))

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.APIAddress)
	// the real environment wins over .env
	assert.Equal(t, "warn", cfg.LogLevel)
}
