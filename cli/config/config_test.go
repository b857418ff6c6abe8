package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/binhbb2204/RateMyProf-Group13/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RMP_CONFIG_DIR", dir)
	return dir
}

func TestLoad_NotInitialized(t *testing.T) {
	useTempDir(t)

	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrNotInitialized)

	_, err = config.GetServerURL()
	require.ErrorIs(t, err, config.ErrNotInitialized)
}

func TestInit_WritesDefaults(t *testing.T) {
	dir := useTempDir(t)

	_, err := config.Init("http://api.example.com/", false)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestInit_KeepsExistingUnlessForced(t *testing.T) {
	useTempDir(t)

	_, err := config.Init("http://one", false)
	require.NoError(t, err)
	require.NoError(t, config.UpdateUserToken("a@b.c", "tok"))

	cfg, err := config.Init("http://two", false)
	require.NoError(t, err)
	assert.Equal(t, "http://one", cfg.Server.BaseURL)
	assert.Equal(t, "tok", cfg.User.Token)

	cfg, err = config.Init("http://two", true)
	require.NoError(t, err)
	assert.Equal(t, "http://two", cfg.Server.BaseURL)
	assert.Empty(t, cfg.User.Token)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	useTempDir(t)
	_, err := config.Init("http://file", false)
	require.NoError(t, err)

	t.Setenv("RMP_SERVER_URL", "http://env")
	t.Setenv("RMP_TIMEOUT", "3s")
	t.Setenv("RMP_RATE_LIMIT", "2.5")
	t.Setenv("RMP_UNRELATED", "ignored")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.Server.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout)
	assert.InDelta(t, 2.5, cfg.Server.RateLimit, 1e-9)

	// values from the environment are not persisted
	require.NoError(t, config.Set("logging.level", "debug"))
	os.Unsetenv("RMP_SERVER_URL")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://file", cfg.Server.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestUserToken(t *testing.T) {
	useTempDir(t)
	_, err := config.Init("", false)
	require.NoError(t, err)

	require.NoError(t, config.UpdateUserToken("ada@example.edu", "secret"))
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "ada@example.edu", cfg.User.Email)
	assert.Equal(t, "secret", cfg.User.Token)

	require.NoError(t, config.ClearUserToken())
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.User.Token)
	assert.Empty(t, cfg.User.Email)
}

func TestSet(t *testing.T) {
	useTempDir(t)
	_, err := config.Init("", false)
	require.NoError(t, err)

	require.NoError(t, config.Set("server.timeout", "2s"))
	require.NoError(t, config.Set("compare.max_size", "2"))
	require.NoError(t, config.Set("logging.format", "json"))

	require.Error(t, config.Set("server.timeout", "soon"))
	require.Error(t, config.Set("logging.format", "xml"))
	require.Error(t, config.Set("user.token", "x"))
	require.Error(t, config.Set("nope.key", "x"))

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 2, cfg.Compare.MaxSize)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Contains(t, cfg.Keys(), [2]string{"compare.max_size", "2"})
}

func TestDrafts(t *testing.T) {
	useTempDir(t)

	_, ok, err := config.LoadDraft(7)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, config.SaveDraft(7, 4, "kept for retry"))
	require.NoError(t, config.SaveDraft(8, 2, "other"))

	d, ok, err := config.LoadDraft(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, d.Stars)
	assert.Equal(t, "kept for retry", d.Comment)

	require.NoError(t, config.ClearDraft(7))
	require.NoError(t, config.ClearDraft(7))
	_, ok, err = config.LoadDraft(7)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = config.LoadDraft(8)
	require.NoError(t, err)
	assert.True(t, ok)
}
