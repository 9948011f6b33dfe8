package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amonks/todopro/internal/config"
	"github.com/amonks/todopro/internal/testsupport"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func globalPath(home string) string {
	return filepath.Join(home, ".config", "todopro", "config.toml")
}

func TestLoad_NotFound(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Client.Server != config.DefaultServer {
		t.Errorf("Server = %q, expected %q", cfg.Client.Server, config.DefaultServer)
	}
	if cfg.Client.ItemsPerPage != config.DefaultItemsPerPage {
		t.Errorf("ItemsPerPage = %d, expected %d", cfg.Client.ItemsPerPage, config.DefaultItemsPerPage)
	}
	if cfg.Server.Addr != config.DefaultAddr {
		t.Errorf("Addr = %q, expected %q", cfg.Server.Addr, config.DefaultAddr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, expected info/text", cfg.Log)
	}
	if cfg.Client.DiscardStaleLoads {
		t.Error("expected DiscardStaleLoads to default to false")
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "todopro.toml"), `
[client]
server = "http://todos.example.com/"
items-per-page = 25
discard-stale-loads = true

[server]
addr = ":9000"
database = "todos.db"
jwt-secret = "hunter2"
seed = true
latency = "250ms"

[log]
level = "debug"
format = "json"
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Client.Server != "http://todos.example.com" {
		t.Errorf("Server = %q, expected trailing slash trimmed", cfg.Client.Server)
	}
	if cfg.Client.ItemsPerPage != 25 {
		t.Errorf("ItemsPerPage = %d, expected 25", cfg.Client.ItemsPerPage)
	}
	if !cfg.Client.DiscardStaleLoads {
		t.Error("expected DiscardStaleLoads")
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.Database != "todos.db" || cfg.Server.JWTSecret != "hunter2" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Server.Seed {
		t.Error("expected Seed")
	}
	if cfg.Server.Latency.Duration != 250*time.Millisecond {
		t.Errorf("Latency = %v, expected 250ms", cfg.Server.Latency.Duration)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, globalPath(home), `
[client]
server = "http://global.example.com"
items-per-page = 50
discard-stale-loads = true

[log]
level = "warn"
`)
	writeFile(t, filepath.Join(tmpDir, "todopro.toml"), `
[client]
items-per-page = 5
discard-stale-loads = false
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Client.Server != "http://global.example.com" {
		t.Errorf("Server = %q, expected global value", cfg.Client.Server)
	}
	if cfg.Client.ItemsPerPage != 5 {
		t.Errorf("ItemsPerPage = %d, expected project value 5", cfg.Client.ItemsPerPage)
	}
	if cfg.Client.DiscardStaleLoads {
		t.Error("expected project false to override global true")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q, expected global value", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "todopro.toml"), `
[client]
server = "http://file.example.com"
`)
	t.Setenv(config.EnvServer, "http://env.example.com")
	t.Setenv(config.EnvToken, "Bearer abc")

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Client.Server != "http://env.example.com" {
		t.Errorf("Server = %q, expected env value", cfg.Client.Server)
	}
	if cfg.Client.Token != "Bearer abc" {
		t.Errorf("Token = %q, expected env value", cfg.Client.Token)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[client\n", "parse config file"},
		{"unknown key", "[client]\nservr = \"x\"\n", "unknown key client.servr"},
		{"bad latency", "[server]\nlatency = \"soon\"\n", "invalid duration"},
		{"negative latency", "[server]\nlatency = \"-1s\"\n", "must not be negative"},
		{"bad page size", "[client]\nitems-per-page = -3\n", "items-per-page"},
		{"bad format", "[log]\nformat = \"xml\"\n", "log.format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testsupport.SetupTestHome(t)
			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, "todopro.toml"), tc.content)

			_, err := config.Load(tmpDir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
