// Package mcp parses MCP command flags and serves the battle tools on stdio.
package mcp

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/louisbranch/partybattle/internal/catalog"
	"github.com/louisbranch/partybattle/internal/platform/cmd"
	"github.com/louisbranch/partybattle/internal/platform/logging"
	"github.com/louisbranch/partybattle/internal/services/mcp/service"
	"github.com/louisbranch/partybattle/internal/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath      string `env:"DB_PATH"`
	CatalogFile string `env:"CATALOG_FILE"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite file receiving encounter reports")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "stat catalog yaml (default: embedded)")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves MCP on stdio until ctx ends. The logger must not write to stdout.
func Run(ctx context.Context, cfg Config, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	opts := service.Options{Catalog: catalog.Default(), Logger: logger}
	if cfg.CatalogFile != "" {
		cat, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return err
		}
		opts.Catalog = cat
	}
	if cfg.DBPath != "" {
		store, err := sqlite.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("close store", zap.Error(err))
			}
		}()
		opts.Store = store
	}
	logger.Info("serving mcp", zap.String("transport", "stdio"), zap.Bool("store", opts.Store != nil))
	return service.New(opts).Serve(ctx)
}
