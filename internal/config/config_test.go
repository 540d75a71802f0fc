package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected default driver %q, got %q", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.SessionTTL() != 7*24*time.Hour {
		t.Errorf("expected default session ttl of a week, got %s", cfg.SessionTTL())
	}
	if cfg.ShutdownTimeout() != 15*time.Second {
		t.Errorf("expected default shutdown timeout 15s, got %s", cfg.ShutdownTimeout())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.tutorsite.yml")

	original := DefaultConfig()
	original.App.Name = "Grammar Corner"
	original.App.Phone = "+880 1700 000000"
	original.Server.Port = 9000
	original.Database.Driver = DriverPostgres
	original.Database.DSN = "postgres://localhost/tutor"
	original.Sessions.TTL = "12h"
	original.RateLimit.Burst = 9

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.App.Name != original.App.Name {
		t.Errorf("app.name: got %q, want %q", loaded.App.Name, original.App.Name)
	}
	if loaded.App.Phone != original.App.Phone {
		t.Errorf("app.phone: got %q, want %q", loaded.App.Phone, original.App.Phone)
	}
	if loaded.Server.Port != original.Server.Port {
		t.Errorf("server.port: got %d, want %d", loaded.Server.Port, original.Server.Port)
	}
	if loaded.Database != original.Database {
		t.Errorf("database: got %+v, want %+v", loaded.Database, original.Database)
	}
	if loaded.SessionTTL() != 12*time.Hour {
		t.Errorf("sessions.ttl: got %s, want 12h", loaded.SessionTTL())
	}
	if loaded.RateLimit.Burst != 9 {
		t.Errorf("rate_limit.burst: got %d, want 9", loaded.RateLimit.Burst)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.App.Name != DefaultConfig().App.Name {
		t.Errorf("expected default app name, got %q", cfg.App.Name)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yml")
	if err := os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != "15s" {
		t.Errorf("expected default shutdown timeout to survive, got %q", cfg.Server.ShutdownTimeout)
	}
	if cfg.RateLimit.RequestsPerMinute != 20 {
		t.Errorf("expected default rate limit to survive, got %d", cfg.RateLimit.RequestsPerMinute)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("TUTORSITE_LOG_LEVEL", "debug")
	t.Setenv("TUTORSITE_SESSIONS__REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TUTORSITE_DATABASE__DRIVER", "postgres")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("env override failed: got %q, want %q", loaded.LogLevel, "debug")
	}
	if loaded.Sessions.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("nested env override failed: got %q", loaded.Sessions.RedisURL)
	}
	if loaded.Database.Driver != DriverPostgres {
		t.Errorf("nested env override failed: got %q", loaded.Database.Driver)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TUTORSITE_APP__TAGLINE=From dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TUTORSITE_APP__TAGLINE", "")
	os.Unsetenv("TUTORSITE_APP__TAGLINE")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	cfg, err := Load(filepath.Join(dir, "none.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Tagline != "From dotenv" {
		t.Errorf("expected tagline from .env, got %q", cfg.App.Tagline)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty app name", func(c *Config) { c.App.Name = "" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"bad ttl", func(c *Config) { c.Sessions.TTL = "a week" }},
		{"negative ttl", func(c *Config) { c.Sessions.TTL = "-1h" }},
		{"bad shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = "soon" }},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerMinute = -1 }},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }},
		{"sendgrid without addresses", func(c *Config) { c.Notify.SendgridKey = "SG.key" }},
		{"endpoint without bucket", func(c *Config) {
			c.Backup.Endpoint = "localhost:9000"
			c.Backup.Bucket = ""
		}},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestStorage(t *testing.T) {
	tests := []struct {
		name         string
		db           DatabaseConfig
		wantDriver   string
		wantDSN      string
		wantFallback bool
	}{
		{"sqlite default", DatabaseConfig{Driver: DriverSQLite}, DriverSQLite, filepath.Join("data", "tutorsite.db"), false},
		{"sqlite explicit", DatabaseConfig{Driver: DriverSQLite, DSN: "/tmp/x.db"}, DriverSQLite, "/tmp/x.db", false},
		{"postgres", DatabaseConfig{Driver: DriverPostgres, DSN: "postgres://db"}, DriverPostgres, "postgres://db", false},
		{"postgres without dsn", DatabaseConfig{Driver: DriverPostgres}, DriverSQLite, filepath.Join("data", "tutorsite.db"), true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.DataDir = "data"
		cfg.Database = tt.db
		driver, dsn, fallback := cfg.Storage()
		if driver != tt.wantDriver || dsn != tt.wantDSN || fallback != tt.wantFallback {
			t.Errorf("%s: got (%q, %q, %v), want (%q, %q, %v)", tt.name, driver, dsn, fallback, tt.wantDriver, tt.wantDSN, tt.wantFallback)
		}
	}
}

func TestWizardValidators(t *testing.T) {
	if err := required("  "); err == nil {
		t.Error("expected blank value to be rejected")
	}
	if err := optionalEmail(""); err != nil {
		t.Errorf("expected blank e-mail to be accepted, got %v", err)
	}
	if err := optionalEmail("not-an-address"); err == nil {
		t.Error("expected invalid e-mail to be rejected")
	}
	if err := validPort("8080"); err != nil {
		t.Errorf("expected 8080 to be valid, got %v", err)
	}
	if err := validPort("0"); err == nil {
		t.Error("expected port 0 to be rejected")
	}
	if err := minLength(8)("short"); err == nil {
		t.Error("expected short password to be rejected")
	}
}
