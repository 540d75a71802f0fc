package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: TUTORSITE_SERVER__PORT sets server.port.
const EnvPrefix = "TUTORSITE_"

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TUTORSITE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps TUTORSITE_RATE_LIMIT__BURST to rate_limit.burst.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if _, err := parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout); err != nil {
		return err
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of sqlite, postgres", c.Database.Driver)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if _, err := parseDuration("sessions.ttl", c.Sessions.TTL); err != nil {
		return err
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be non-negative")
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate_limit.burst must be at least 1")
	}

	if c.Notify.SendgridKey != "" && (c.Notify.FromEmail == "" || c.Notify.ToEmail == "") {
		return fmt.Errorf("notify.from_email and notify.to_email are required with notify.sendgrid_key")
	}

	if c.Backup.Endpoint != "" && c.Backup.Bucket == "" {
		return fmt.Errorf("backup.bucket is required with backup.endpoint")
	}

	return nil
}

func parseDuration(key, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be non-negative", key)
	}
	return d, nil
}

// SessionTTL returns sessions.ttl, defaulting to a week.
func (c *Config) SessionTTL() time.Duration {
	if d, err := parseDuration("", c.Sessions.TTL); err == nil && d > 0 {
		return d
	}
	return 7 * 24 * time.Hour
}

// ShutdownTimeout returns server.shutdown_timeout, defaulting to 15s.
func (c *Config) ShutdownTimeout() time.Duration {
	if d, err := parseDuration("", c.Server.ShutdownTimeout); err == nil && d > 0 {
		return d
	}
	return 15 * time.Second
}

// SQLitePath is the local database file under DataDir.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "tutorsite.db")
}

// Storage resolves the database to open. A postgres driver without a DSN
// falls back to the local SQLite file; fallback reports that case.
func (c *Config) Storage() (driver, dsn string, fallback bool) {
	if c.Database.Driver == DriverPostgres {
		if c.Database.DSN != "" {
			return DriverPostgres, c.Database.DSN, false
		}
		return DriverSQLite, c.SQLitePath(), true
	}
	if c.Database.DSN != "" {
		return DriverSQLite, c.Database.DSN, false
	}
	return DriverSQLite, c.SQLitePath(), false
}
