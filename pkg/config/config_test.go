package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	assertDefaultConfig(t, cfg)
}

func TestLoadWithPartialConfigAppliesDefaults(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  address: ":9090"
  base_url: "https://portfolio.example.com/"
database:
  driver: ""
  sqlite: {}
auth:
  code_ttl: 2m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("expected server address :9090, got %s", cfg.Server.Address)
	}
	if cfg.Server.BaseURL != "https://portfolio.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.Server.BaseURL)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected database driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Database.SQLite.Path != "instance/portfolio.db" {
		t.Fatalf("expected sqlite path instance/portfolio.db, got %s", cfg.Database.SQLite.Path)
	}
	if cfg.Auth.CodeTTL != 2*time.Minute {
		t.Fatalf("expected code ttl 2m, got %s", cfg.Auth.CodeTTL)
	}
	if cfg.RateLimit.Login != "5 per minute" {
		t.Fatalf("expected default login limit, got %q", cfg.RateLimit.Login)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("serverr:\n  address: \":1\"\n"), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USER", "owner@example.com")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("LOGIN_SECRET_KEY", "door")

	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SMTP.Server != "smtp.example.com" || cfg.SMTP.Port != 2525 {
		t.Fatalf("unexpected smtp config: %+v", cfg.SMTP)
	}
	if cfg.SMTP.AlertRecipient != "owner@example.com" {
		t.Fatalf("expected alert recipient to default to smtp user, got %q", cfg.SMTP.AlertRecipient)
	}
	if cfg.Auth.SessionSecret != "s3cret" || cfg.Auth.LoginSecretKey != "door" {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
}

func TestApplyDatabaseURL(t *testing.T) {
	cases := []struct {
		name   string
		url    string
		driver string
		check  func(DatabaseConfig) string
		want   string
	}{
		{
			name:   "sqlite",
			url:    "sqlite:///var/data/portfolio.db",
			driver: "sqlite",
			check:  func(c DatabaseConfig) string { return c.SQLite.Path },
			want:   "var/data/portfolio.db",
		},
		{
			name:   "postgres scheme is normalised",
			url:    "postgres://u:p@db:5432/portfolio",
			driver: "postgres",
			check:  func(c DatabaseConfig) string { return c.Postgres.DSN },
			want:   "postgresql://u:p@db:5432/portfolio",
		},
		{
			name:   "mysql url becomes driver dsn",
			url:    "mysql://u:p@db:3306/portfolio",
			driver: "mysql",
			check:  func(c DatabaseConfig) string { return c.MySQL.DSN },
			want:   "u:p@tcp(db:3306)/portfolio?charset=utf8mb4&parseTime=True&loc=UTC",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DatabaseConfig{URL: tc.url}
			if err := applyDatabaseURL(&cfg); err != nil {
				t.Fatalf("applyDatabaseURL: %v", err)
			}
			if cfg.Driver != tc.driver {
				t.Fatalf("expected driver %s, got %s", tc.driver, cfg.Driver)
			}
			if got := tc.check(cfg); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}

	t.Run("unknown scheme", func(t *testing.T) {
		cfg := DatabaseConfig{URL: "oracle://x"}
		if err := applyDatabaseURL(&cfg); err == nil {
			t.Fatal("expected error for unknown scheme")
		}
	})
}

func assertDefaultConfig(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg == nil {
		t.Fatalf("config is nil")
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Fatalf("expected default driver sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Database.SQLite.Path != "instance/portfolio.db" {
		t.Fatalf("expected default sqlite path, got %s", cfg.Database.SQLite.Path)
	}
	if cfg.Fetcher.Timeout != 60*time.Second {
		t.Fatalf("expected fetcher timeout 60s, got %s", cfg.Fetcher.Timeout)
	}
	if cfg.Server.MaxBodySize != 2<<30 {
		t.Fatalf("expected 2GiB body limit, got %d", cfg.Server.MaxBodySize)
	}
	if len(cfg.RateLimit.Default) != 2 {
		t.Fatalf("expected two default rate limits, got %v", cfg.RateLimit.Default)
	}
}
