package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withoutEnvFiles(t *testing.T) {
	t.Helper()
	SetEnvFileLoadingForTest(false)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })
}

func TestLoadDefaults(t *testing.T) {
	withoutEnvFiles(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultHomaBaseURL, cfg.Homa.BaseURL)
	assert.Equal(t, DefaultHTTPTimeout, cfg.Homa.Timeout)
	assert.Equal(t, DefaultUIGFBaseURL, cfg.UIGF.BaseURL)
	assert.Equal(t, "chs", cfg.UIGF.Lang)
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, DefaultOutputDir, cfg.Report.OutputDir)
	assert.Equal(t, DefaultListenAddr, cfg.Dashboard.ListenAddr)
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, filepath.IsAbs(cfg.Archive.Path))
}

func TestLoadFromEnv(t *testing.T) {
	withoutEnvFiles(t)

	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("MYSQL_USER", "reader")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DATABASE", "homa")
	t.Setenv("REDIS_ENDPOINT", "127.0.0.1:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("REFRESH_INTERVAL", "30m")
	t.Setenv("SQLITE_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, 3307, cfg.MySQL.Port)
	assert.Equal(t, "reader", cfg.MySQL.Username)
	assert.Equal(t, "127.0.0.1", cfg.Redis.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Dashboard.RefreshInterval)
	assert.Empty(t, cfg.Archive.Path)
}

func TestLoadInvalidEnv(t *testing.T) {
	withoutEnvFiles(t)

	t.Setenv("MYSQL_PORT", "abc")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadInvalidDuration(t *testing.T) {
	withoutEnvFiles(t)

	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	withoutEnvFiles(t)

	path := filepath.Join(t.TempDir(), "abyss.yaml")
	content := `
homa:
  base_url: http://localhost:9000
  timeout: 5s
report:
  output_dir: /tmp/reports
dashboard:
  listen_addr: ":9090"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LISTEN_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Homa.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Homa.Timeout)
	assert.Equal(t, "/tmp/reports", cfg.Report.OutputDir)
	assert.Equal(t, ":7070", cfg.Dashboard.ListenAddr)
	assert.Equal(t, DefaultPlotlyCDN, cfg.Report.PlotlyCDN)
}

func TestLoadMissingFile(t *testing.T) {
	withoutEnvFiles(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	cfg := MySQLConfig{Host: "localhost", Username: "root", Password: "pw", Database: "homa"}

	dsn, err := cfg.DSN()
	require.NoError(t, err)
	assert.Equal(t, "root:pw@tcp(localhost:3306)/homa?charset=utf8mb4&parseTime=true&loc=Local", dsn)
}

func TestMySQLDSNValidation(t *testing.T) {
	_, err := MySQLConfig{Username: "root", Database: "homa"}.DSN()
	assert.Error(t, err)

	_, err = MySQLConfig{Host: "localhost", Database: "homa"}.DSN()
	assert.Error(t, err)

	_, err = MySQLConfig{Host: "localhost", Username: "root"}.DSN()
	assert.Error(t, err)
}

func TestParseEndpointWithDefault(t *testing.T) {
	host, port, err := parseEndpointWithDefault("10.0.0.2", 6379)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", host)
	assert.Equal(t, 6379, port)

	_, _, err = parseEndpointWithDefault("host:abc", 6379)
	assert.Error(t, err)
}

func TestLoadEnvFiles(t *testing.T) {
	SetEnvFileLoadingForTest(true)
	t.Cleanup(func() { SetEnvFileLoadingForTest(true) })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("UIGF_LANG=en\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("UIGF_LANG=jp\nOUTPUT_DIR=/tmp/abyss\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// godotenv only sets unset variables; t.Setenv restores them afterwards.
	t.Setenv("UIGF_LANG", "")
	t.Setenv("OUTPUT_DIR", "")
	require.NoError(t, os.Unsetenv("UIGF_LANG"))
	require.NoError(t, os.Unsetenv("OUTPUT_DIR"))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.UIGF.Lang)
	assert.Equal(t, "/tmp/abyss", cfg.Report.OutputDir)
	require.Len(t, cfg.EnvFiles, 2)
	assert.Equal(t, ".env.local", filepath.Base(cfg.EnvFiles[0]))
	assert.Equal(t, ".env", filepath.Base(cfg.EnvFiles[1]))

	assert.Equal(t, cfg.EnvFiles, LoadEnvFiles())
}

func TestLoadEnvFilesDisabled(t *testing.T) {
	withoutEnvFiles(t)
	assert.Nil(t, LoadEnvFiles())
}
