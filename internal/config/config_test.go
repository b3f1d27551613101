package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "NCVIEW_BACKEND", "NCVIEW_CONCAT_DIM", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, ":8080", cfg.Addr())

	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, lvl)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ncview.toml")
	content := `
port = "9000"
backend = "cdf"
concat_dim = "record"
allowed_origins = ["https://a.example"]
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, "cdf", cfg.Backend)
	require.Equal(t, "record", cfg.ConcatDim)
	require.Equal(t, []string{"https://a.example"}, cfg.AllowedOrigins)
	require.Equal(t, "debug", cfg.LogLevel)

	t.Setenv("PORT", "3000")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://b.example, ,https://c.example")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, "cdf", cfg.Backend)
	require.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.AllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("port = ["), 0o600))
	_, err = Load(bad)
	require.Error(t, err)

	t.Setenv("LOG_LEVEL", "chatty")
	_, err = Load("")
	require.Error(t, err)
}
