package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path == "" {
		t.Fatal("expected default database path")
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Fatalf("poll interval = %v, want 250ms", cfg.PollInterval())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Browser.DebuggerURL = "ws://127.0.0.1:9222"
	cfg.Browser.Headless = true
	cfg.Browser.PollIntervalMs = 100
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Browser.DebuggerURL != "ws://127.0.0.1:9222" {
		t.Fatalf("debugger url = %q", got.Browser.DebuggerURL)
	}
	if !got.Browser.Headless {
		t.Fatal("headless flag lost")
	}
	if got.PollInterval() != 100*time.Millisecond {
		t.Fatalf("poll interval = %v", got.PollInterval())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCROLLSTOP_DB", "/tmp/scrollstop/override.db")
	t.Setenv("SCROLLSTOP_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Path != "/tmp/scrollstop/override.db" {
		t.Fatalf("database path = %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
	if cfg.DataDir() != "/tmp/scrollstop" {
		t.Fatalf("data dir = %q", cfg.DataDir())
	}
}

func TestTimeoutFloors(t *testing.T) {
	cfg := &Config{}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Fatalf("zero poll interval must fall back, got %v", cfg.PollInterval())
	}
	if cfg.NavigationTimeout() != 30*time.Second {
		t.Fatalf("zero navigation timeout must fall back, got %v", cfg.NavigationTimeout())
	}
}
