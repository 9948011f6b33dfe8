// Package config handles loading todopro.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/amonks/todopro/internal/paths"
	internalstrings "github.com/amonks/todopro/internal/strings"
)

// ProjectFileName is the per-directory config file.
const ProjectFileName = "todopro.toml"

// Environment variables that override file settings.
const (
	EnvServer = "TODOPRO_SERVER"
	EnvToken  = "TODOPRO_TOKEN"
)

// Defaults applied when no file or environment sets a value.
const (
	DefaultServer       = "http://127.0.0.1:8765"
	DefaultAddr         = "127.0.0.1:8765"
	DefaultItemsPerPage = 10
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config represents the todopro.toml configuration file.
type Config struct {
	Client Client `toml:"client"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

// Client configures the td commands that talk to a gateway.
type Client struct {
	// Server is the gateway base URL.
	Server string `toml:"server"`
	// ItemsPerPage is the default page size for list and board views.
	ItemsPerPage int `toml:"items-per-page"`
	// DiscardStaleLoads drops list responses superseded by a newer request.
	DiscardStaleLoads bool `toml:"discard-stale-loads"`
	// Token is only ever set from the environment.
	Token string `toml:"-"`
}

// Server configures `td serve`.
type Server struct {
	Addr string `toml:"addr"`
	// Database is a SQLite path, or ":memory:" for an in-process store.
	Database  string `toml:"database"`
	JWTSecret string `toml:"jwt-secret"`
	// Seed fills an empty store with sample todos on startup.
	Seed bool `toml:"seed"`
	// Latency delays every response, which makes optimistic updates visible.
	Latency Duration `toml:"latency"`
}

// Log configures the charmbracelet logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a string like "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if value == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", value)
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration the way UnmarshalText reads it.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load loads configuration from the project directory and the global config
// file, then applies environment overrides and defaults.
func Load(projectDir string) (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(projectDir, ProjectFileName))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, projectMeta)
	applyEnv(merged)
	applyDefaults(merged)
	if err := merged.validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

func globalConfigPath() (string, error) {
	dir, err := paths.DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %s", path, undecoded[0])
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Client.Server = mergeString(projectMeta.IsDefined("client", "server"), projectCfg.Client.Server, globalCfg.Client.Server)
	merged.Client.ItemsPerPage = mergeValue(projectMeta.IsDefined("client", "items-per-page"), projectCfg.Client.ItemsPerPage, globalCfg.Client.ItemsPerPage)
	merged.Client.DiscardStaleLoads = mergeValue(projectMeta.IsDefined("client", "discard-stale-loads"), projectCfg.Client.DiscardStaleLoads, globalCfg.Client.DiscardStaleLoads)

	merged.Server.Addr = mergeString(projectMeta.IsDefined("server", "addr"), projectCfg.Server.Addr, globalCfg.Server.Addr)
	merged.Server.Database = mergeString(projectMeta.IsDefined("server", "database"), projectCfg.Server.Database, globalCfg.Server.Database)
	merged.Server.JWTSecret = mergeString(projectMeta.IsDefined("server", "jwt-secret"), projectCfg.Server.JWTSecret, globalCfg.Server.JWTSecret)
	merged.Server.Seed = mergeValue(projectMeta.IsDefined("server", "seed"), projectCfg.Server.Seed, globalCfg.Server.Seed)
	merged.Server.Latency = mergeValue(projectMeta.IsDefined("server", "latency"), projectCfg.Server.Latency, globalCfg.Server.Latency)

	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	merged.Log.Format = mergeString(projectMeta.IsDefined("log", "format"), projectCfg.Log.Format, globalCfg.Log.Format)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	return strings.TrimSpace(mergeValue(projectDefined, projectValue, globalValue))
}

func mergeValue[T any](projectDefined bool, projectValue, globalValue T) T {
	if projectDefined {
		return projectValue
	}
	return globalValue
}

func applyEnv(cfg *Config) {
	if server := strings.TrimSpace(os.Getenv(EnvServer)); server != "" {
		cfg.Client.Server = server
	}
	if token := strings.TrimSpace(os.Getenv(EnvToken)); token != "" {
		cfg.Client.Token = token
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Client.Server == "" {
		cfg.Client.Server = DefaultServer
	}
	cfg.Client.Server = internalstrings.NormalizeServerURL(cfg.Client.Server)
	if cfg.Client.ItemsPerPage == 0 {
		cfg.Client.ItemsPerPage = DefaultItemsPerPage
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func (c *Config) validate() error {
	if c.Client.ItemsPerPage < 1 {
		return fmt.Errorf("client.items-per-page must be at least 1, got %d", c.Client.ItemsPerPage)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format must be text, json, or logfmt, got %q", c.Log.Format)
	}
	return nil
}
