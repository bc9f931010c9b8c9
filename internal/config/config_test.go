package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
instance:
  id: test-ingester
database:
  host: localhost
  name: test_db
  user: testuser
  password: testpass
server:
  shared_secret: hunter2
feeds:
  urls:
    - https://example.com/feed
enrichment:
  endpoint: https://api.example.com/v1/chat/completions
  model: test-model
`

func TestLoad(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-ingester" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-ingester")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if len(cfg.Feeds.URLs) != 1 || cfg.Feeds.URLs[0] != "https://example.com/feed" {
		t.Errorf("Feeds.URLs = %v", cfg.Feeds.URLs)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_WS_SECRET", "secret123")

	yaml := strings.Replace(minimalYAML, "hunter2", "${TEST_WS_SECRET}", 1)
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.SharedSecret != "secret123" {
		t.Errorf("Server.SharedSecret = %q, want %q", cfg.Server.SharedSecret, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.PoolSize != DefaultPoolSize {
		t.Errorf("Database.PoolSize = %d, want default %d", cfg.Database.PoolSize, DefaultPoolSize)
	}
	if cfg.Feeds.SweepInterval != DefaultSweepInterval {
		t.Errorf("Feeds.SweepInterval = %v, want default %v", cfg.Feeds.SweepInterval, DefaultSweepInterval)
	}
	if cfg.Stream.Cooldown != DefaultStreamCooldown {
		t.Errorf("Stream.Cooldown = %v, want default %v", cfg.Stream.Cooldown, DefaultStreamCooldown)
	}
	if cfg.Shutdown.JoinTimeout != 15*time.Second {
		t.Errorf("Shutdown.JoinTimeout = %v, want 15s", cfg.Shutdown.JoinTimeout)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	if _, err := LoadAndValidate(path); err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *Config) { c.Instance.ID = "" },
			wantErr: "instance.id",
		},
		{
			name:    "missing db host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: "database.host",
		},
		{
			name:    "missing shared secret",
			mutate:  func(c *Config) { c.Server.SharedSecret = "" },
			wantErr: "server.shared_secret",
		},
		{
			name: "no sources",
			mutate: func(c *Config) {
				c.Feeds.URLs = nil
				c.Stream.URL = ""
			},
			wantErr: "feeds.urls or stream.url",
		},
		{
			name:    "missing enrichment endpoint",
			mutate:  func(c *Config) { c.Enrichment.Endpoint = "" },
			wantErr: "enrichment.endpoint",
		},
		{
			name:    "bad pool size",
			mutate:  func(c *Config) { c.Database.PoolSize = -1 },
			wantErr: "pool_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithDefaults(writeTempFile(t, minimalYAML))
			if err != nil {
				t.Fatalf("LoadWithDefaults failed: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
