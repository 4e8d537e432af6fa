// Package simulate parses simulate command flags and runs scenarios.
package simulate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/louisbranch/partybattle/internal/battle/summary"
	"github.com/louisbranch/partybattle/internal/catalog"
	"github.com/louisbranch/partybattle/internal/platform/config"
	"github.com/louisbranch/partybattle/internal/platform/logging"
	"github.com/louisbranch/partybattle/internal/scenario"
	"github.com/louisbranch/partybattle/internal/simulation"
	"github.com/louisbranch/partybattle/internal/storage/sqlite"
)

// Config holds simulate command configuration.
type Config struct {
	Scenario    string `env:"SCENARIO_FILE"`
	Encounters  int    `env:"ENCOUNTERS"    envDefault:"0"`
	Seed        int64  `env:"SEED"          envDefault:"0"`
	TurnCap     int    `env:"TURN_CAP"      envDefault:"0"`
	Lanes       int    `env:"LANES"         envDefault:"1"`
	DBPath      string `env:"DB_PATH"`
	CatalogFile string `env:"CATALOG_FILE"`
	Narrate     bool   `env:"NARRATE"`
	Reports     bool   `env:"REPORTS"`
	Locale      string `env:"LOCALE"        envDefault:"en"`

	Log logging.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file")
	fs.IntVar(&cfg.Encounters, "encounters", cfg.Encounters, "encounters to fight (0 uses the scenario)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0 uses the scenario, then a random seed)")
	fs.IntVar(&cfg.TurnCap, "turn-cap", cfg.TurnCap, "turns per encounter before it ends (0 uses the scenario)")
	fs.IntVar(&cfg.Lanes, "lanes", cfg.Lanes, "encounters fought in parallel")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite file to store reports in")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "stat catalog yaml (default: embedded)")
	fs.BoolVar(&cfg.Narrate, "narrate", cfg.Narrate, "print battle narration")
	fs.BoolVar(&cfg.Reports, "reports", cfg.Reports, "print every encounter report")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for number formatting")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the simulate command. Reports go to out; logs go to errOut.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Scenario == "" {
		return errors.New("scenario path is required")
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("parse locale: %w", err)
	}
	logger, err := logging.NewWriter(cfg.Log, errOut)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
			return err
		}
	}
	sc, err := scenario.Load(cfg.Scenario)
	if err != nil {
		return err
	}

	opts := []simulation.Option{simulation.WithCatalog(cat), simulation.WithLogger(logger)}
	if cfg.Narrate {
		opts = append(opts, simulation.WithNarration(out))
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
		opts = append(opts, simulation.WithStore(store))
	}

	res, err := simulation.NewRunner(opts...).Run(ctx, sc, simulation.Config{
		Seed:       cfg.Seed,
		Encounters: cfg.Encounters,
		TurnCap:    cfg.TurnCap,
		Lanes:      cfg.Lanes,
	})
	if err != nil {
		return err
	}

	w := summary.NewWriter(out, tag)
	if cfg.Reports {
		for _, enc := range res.Encounters {
			if err := w.Report(enc.Report); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
	}
	fmt.Fprintf(out, "Run %s (%s, seed %d)\n", res.RunID, sc.Name, res.Seed)
	return w.Totals(res.Totals)
}
