// Package config loads runtime configuration from .env files, an optional
// YAML file, and the process environment, in increasing order of priority.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultHomaBaseURL  = "https://homa.snapgenshin.com"
	DefaultUIGFBaseURL  = "https://api.uigf.org"
	DefaultUIGFLang     = "chs"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultCacheTTL     = 10 * time.Minute
	DefaultSQLitePath   = "data/abyss.db"
	DefaultOutputDir    = "output"
	DefaultListenAddr   = ":8050"
	DefaultPlotlyCDN    = "https://cdn.plot.ly/plotly-2.27.0.min.js"
	DefaultMySQLPort    = 3306
	DefaultMySQLParams  = "charset=utf8mb4&parseTime=true&loc=Local"
	DefaultRedisPort    = 6379
	defaultRedisTimeout = 5 * time.Second
)

// Config is the complete runtime configuration.
type Config struct {
	Homa      HomaConfig      `yaml:"homa"`
	UIGF      UIGFConfig      `yaml:"uigf"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Redis     RedisConfig     `yaml:"redis"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Report    ReportConfig    `yaml:"report"`
	Dashboard DashboardConfig `yaml:"dashboard"`

	// EnvFiles lists the .env files applied by Load.
	EnvFiles []string `yaml:"-"`
}

// HomaConfig configures the statistics API client.
type HomaConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// UIGFConfig configures the item dictionary client.
type UIGFConfig struct {
	BaseURL string `yaml:"base_url"`
	Lang    string `yaml:"lang"`
}

// MySQLConfig describes the read-only records database.
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Params   string `yaml:"params"`
}

// RedisConfig enables the HTTP response cache when Host is set.
type RedisConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Timeout  time.Duration `yaml:"timeout"`
	TTL      time.Duration `yaml:"ttl"`
}

// Enabled reports whether a Redis endpoint was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// ArchiveConfig configures the sqlite snapshot archive. An empty path disables it.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// ReportConfig configures static report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	PlotlyCDN string `yaml:"plotly_cdn"`
}

// DashboardConfig configures the web dashboard.
type DashboardConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Homa: HomaConfig{BaseURL: DefaultHomaBaseURL, Timeout: DefaultHTTPTimeout},
		UIGF: UIGFConfig{BaseURL: DefaultUIGFBaseURL, Lang: DefaultUIGFLang},
		MySQL: MySQLConfig{
			Port:   DefaultMySQLPort,
			Params: DefaultMySQLParams,
		},
		Redis: RedisConfig{
			Port:    DefaultRedisPort,
			Timeout: defaultRedisTimeout,
			TTL:     DefaultCacheTTL,
		},
		Archive:   ArchiveConfig{Path: DefaultSQLitePath},
		Report:    ReportConfig{OutputDir: DefaultOutputDir, PlotlyCDN: DefaultPlotlyCDN},
		Dashboard: DashboardConfig{ListenAddr: DefaultListenAddr},
	}
}

// Load builds the configuration. path names an optional YAML file; an empty
// path skips it.
func Load(path string) (Config, error) {
	envFiles := LoadEnvFiles()

	cfg := Default()
	cfg.EnvFiles = envFiles
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Archive.Path = normalisePath(cfg.Archive.Path)
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Homa.BaseURL, "HOMA_BASE_URL")
	setString(&cfg.UIGF.BaseURL, "UIGF_BASE_URL")
	setString(&cfg.UIGF.Lang, "UIGF_LANG")

	setString(&cfg.MySQL.Host, "MYSQL_HOST")
	setString(&cfg.MySQL.Username, "MYSQL_USER")
	setString(&cfg.MySQL.Password, "MYSQL_PASSWORD")
	setString(&cfg.MySQL.Database, "MYSQL_DATABASE")
	setString(&cfg.MySQL.Params, "MYSQL_PARAMS")

	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	if endpoint := strings.TrimSpace(os.Getenv("REDIS_ENDPOINT")); endpoint != "" {
		host, port, err := parseEndpointWithDefault(endpoint, DefaultRedisPort)
		if err != nil {
			return fmt.Errorf("invalid REDIS_ENDPOINT: %w", err)
		}
		cfg.Redis.Host = host
		cfg.Redis.Port = port
	}

	setString(&cfg.Archive.Path, "SQLITE_PATH")
	setString(&cfg.Report.OutputDir, "OUTPUT_DIR")
	setString(&cfg.Report.PlotlyCDN, "PLOTLY_CDN")
	setString(&cfg.Dashboard.ListenAddr, "LISTEN_ADDR")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.MySQL.Port, "MYSQL_PORT"},
		{&cfg.Redis.DB, "REDIS_DB"},
	}
	for _, v := range ints {
		if err := setInt(v.dst, v.key); err != nil {
			return err
		}
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&cfg.Homa.Timeout, "HTTP_TIMEOUT"},
		{&cfg.Redis.TTL, "CACHE_TTL"},
		{&cfg.Dashboard.RefreshInterval, "REFRESH_INTERVAL"},
	}
	for _, v := range durations {
		if err := setDuration(v.dst, v.key); err != nil {
			return err
		}
	}
	return nil
}

// setString applies a variable that is present even when empty, so
// SQLITE_PATH="" disables the archive.
func setString(dst *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(val)
	}
}

func setInt(dst *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

// DSN validates the configuration and builds a go-sql-driver DSN.
func (c MySQLConfig) DSN() (string, error) {
	if c.Host == "" {
		return "", fmt.Errorf("mysql host is required")
	}
	if c.Username == "" {
		return "", fmt.Errorf("mysql username is required")
	}
	if c.Database == "" {
		return "", fmt.Errorf("mysql database is required")
	}

	port := c.Port
	if port == 0 {
		port = DefaultMySQLPort
	}
	params := c.Params
	if params == "" {
		params = DefaultMySQLParams
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Username,
		c.Password,
		c.Host,
		port,
		c.Database,
		params,
	), nil
}

func parseEndpointWithDefault(endpoint string, defaultPort int) (string, int, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", 0, fmt.Errorf("endpoint is empty")
	}

	if !strings.Contains(endpoint, ":") {
		return endpoint, defaultPort, nil
	}

	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", 0, err
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}

	return host, port, nil
}

// normalisePath expands ~ and makes relative paths absolute.
func normalisePath(raw string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
		}
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	if abs, err := filepath.Abs(raw); err == nil {
		return abs
	}
	return raw
}
