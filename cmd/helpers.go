package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/catalog"
	"github.com/unlockenglish/tutorsite/internal/config"
	"github.com/unlockenglish/tutorsite/internal/db"
	"github.com/unlockenglish/tutorsite/internal/store"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `tutorsite init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// openDatabase opens the configured database. A postgres driver without a
// DSN falls back to the local sqlite file.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	driver, dsn, fallback := cfg.Storage()
	if fallback {
		slog.Warn("postgres selected without a DSN, using sqlite", "path", dsn)
	}
	d, err := db.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	return d, nil
}

// actorCLI is the audit actor for changes made from the command line.
const actorCLI = "cli"

// openCatalog opens the database and loads a catalog without live listeners,
// for one-shot CLI commands. The returned close func releases the database.
func openCatalog(ctx context.Context) (*catalog.Catalog, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	d, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	cat := catalog.New(store.NewStore(d), catalog.Deps{Audit: audit.NewStore(d)})
	if err := cat.Load(ctx); err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("loading content: %w", err)
	}
	return cat, func() { d.Close() }, nil
}
