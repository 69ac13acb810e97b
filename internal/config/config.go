// Package config holds daemon-level configuration: where the database
// lives, how to reach the browser, and logging. User preferences (limits,
// site list) are deliberately not here; they live in the durable store so
// that every process sees one source of truth.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration, loaded from YAML with environment
// overrides on top.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Browser  BrowserConfig  `yaml:"browser"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the durable store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BrowserConfig configures the DevTools connection.
type BrowserConfig struct {
	// DebuggerURL attaches to an already-running Chrome started with
	// --remote-debugging-port. Empty means launch a new instance.
	DebuggerURL string `yaml:"debugger_url"`
	// Bin is the browser binary used when launching. Empty uses rod's
	// auto-detected browser.
	Bin                 string `yaml:"bin"`
	Headless            bool   `yaml:"headless"`
	PollIntervalMs      int    `yaml:"poll_interval_ms"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration rooted in the user's home
// directory.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(defaultDataDir(), "scrollstop.db"),
		},
		Browser: BrowserConfig{
			PollIntervalMs:      250,
			NavigationTimeoutMs: 30000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scrollstop"
	}
	return filepath.Join(home, ".scrollstop")
}

// Load reads configuration from a YAML file, returning defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating the directory if
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("SCROLLSTOP_DB"); path != "" {
		c.Database.Path = path
	}
	if url := os.Getenv("SCROLLSTOP_DEBUGGER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if level := os.Getenv("SCROLLSTOP_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// DataDir returns the directory holding the database and the signal file.
func (c *Config) DataDir() string {
	return filepath.Dir(c.Database.Path)
}

// PollInterval returns the page polling cadence.
func (c *Config) PollInterval() time.Duration {
	if c.Browser.PollIntervalMs <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.Browser.PollIntervalMs) * time.Millisecond
}

// NavigationTimeout returns the page navigation timeout.
func (c *Config) NavigationTimeout() time.Duration {
	if c.Browser.NavigationTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Browser.NavigationTimeoutMs) * time.Millisecond
}
