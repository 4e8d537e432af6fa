// Package simulation runs scenarios as batches of back-to-back encounters.
//
// Encounters are spread across lanes. Each lane owns its roster, its
// decision sources and its randomness stream, so lanes run concurrently
// while every lane stays deterministic for a given seed.
package simulation

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/battle/summary"
	"github.com/louisbranch/partybattle/internal/catalog"
	"github.com/louisbranch/partybattle/internal/core/dice"
	"github.com/louisbranch/partybattle/internal/platform/logging"
	"github.com/louisbranch/partybattle/internal/platform/otel"
	"github.com/louisbranch/partybattle/internal/scenario"
	"github.com/louisbranch/partybattle/internal/storage"
)

const tracerName = "github.com/louisbranch/partybattle/internal/simulation"

// Config controls one run. Zero values fall back to the scenario, then to
// the defaults.
type Config struct {
	RunID      string
	Seed       int64
	Encounters int
	TurnCap    int
	Lanes      int
}

// Encounter is one finished encounter of a run.
type Encounter struct {
	Lane   int
	Index  int
	Report battle.Report
}

// Result is the outcome of a run.
type Result struct {
	RunID      string
	Seed       int64
	Encounters []Encounter
	Totals     summary.Totals
}

// Runner executes scenarios.
type Runner struct {
	catalog   *catalog.Catalog
	store     storage.EncounterStore
	logger    *zap.Logger
	tracer    trace.Tracer
	narration io.Writer
	now       func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCatalog sets the stat catalog and templates.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Runner) { r.catalog = c }
}

// WithStore persists every finished encounter.
func WithStore(s storage.EncounterStore) Option {
	return func(r *Runner) { r.store = s }
}

// WithLogger sets the logger. Narration is logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = logging.OrNop(l) }
}

// WithNarration writes narration lines to w.
func WithNarration(w io.Writer) Option {
	return func(r *Runner) { r.narration = w }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// NewRunner builds a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		catalog: catalog.Default(),
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the scenario and returns every report in encounter order.
// Storage failures abort the run.
func (r *Runner) Run(ctx context.Context, sc *scenario.Scenario, cfg Config) (Result, error) {
	if sc == nil {
		return Result{}, fmt.Errorf("scenario is required")
	}
	cfg, err := r.resolve(sc, cfg)
	if err != nil {
		return Result{}, err
	}
	logger := r.logger.With(zap.String("run_id", cfg.RunID), zap.String("scenario", sc.Name))

	ctx, span := r.tracer.Start(ctx, "simulation.run", trace.WithAttributes(
		attribute.String("run.id", cfg.RunID),
		attribute.String("scenario.name", sc.Name),
		attribute.Int64("run.seed", cfg.Seed),
		attribute.Int("run.encounters", cfg.Encounters),
		attribute.Int("run.lanes", cfg.Lanes),
	))
	defer span.End()

	logger.Info("run started",
		zap.Int64("seed", cfg.Seed),
		zap.Int("encounters", cfg.Encounters),
		zap.Int("lanes", cfg.Lanes),
		zap.Int("turn_cap", cfg.TurnCap),
	)

	results := make([]Encounter, cfg.Encounters)
	var narrationMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for lane := range cfg.Lanes {
		g.Go(func() error {
			return r.lane(gctx, sc, cfg, lane, results, &narrationMu, logger)
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("run failed", zap.Error(err))
		return Result{}, err
	}

	out := Result{RunID: cfg.RunID, Seed: cfg.Seed, Encounters: results}
	for _, enc := range results {
		out.Totals.Add(enc.Report)
	}
	logger.Info("run finished",
		zap.Int("turns", out.Totals.Turns),
		zap.Int("party_deaths", out.Totals.PartyDeaths),
		zap.Int("opposition_deaths", out.Totals.OppositionDeaths),
	)
	return out, nil
}

func (r *Runner) resolve(sc *scenario.Scenario, cfg Config) (Config, error) {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Seed == 0 {
		cfg.Seed = sc.Seed
	}
	if cfg.Seed == 0 {
		seed, err := dice.NewSeed()
		if err != nil {
			return cfg, err
		}
		cfg.Seed = seed
	}
	if cfg.Encounters <= 0 {
		cfg.Encounters = max(sc.Encounters, 1)
	}
	if cfg.TurnCap <= 0 {
		cfg.TurnCap = sc.TurnCap
	}
	if cfg.TurnCap <= 0 {
		cfg.TurnCap = battle.DefaultTurnCap
	}
	cfg.Lanes = min(max(cfg.Lanes, 1), cfg.Encounters)
	return cfg, nil
}

// lane fights encounters lane, lane+Lanes, ... on one roster.
func (r *Runner) lane(ctx context.Context, sc *scenario.Scenario, cfg Config, lane int, results []Encounter, mu *sync.Mutex, logger *zap.Logger) error {
	rng := dice.NewSource(dice.LaneSeed(cfg.Seed, lane))
	roster, err := sc.Build(r.catalog, dice.NewSource(dice.PolicySeed(cfg.Seed, lane)))
	if err != nil {
		return fmt.Errorf("lane %d: %w", lane, err)
	}
	logger = logger.With(zap.Int("lane", lane))
	sink := ZapSink(logger)
	if r.narration != nil {
		tag := ""
		if cfg.Lanes > 1 {
			tag = fmt.Sprintf("[lane %d]", lane)
		}
		sink = battle.Tee(sink, writerSink{mu: mu, out: r.narration, tag: tag})
	}

	for index := lane; index < cfg.Encounters; index += cfg.Lanes {
		report, err := r.encounter(ctx, roster, rng, sink, cfg, lane, index, logger)
		if err != nil {
			return err
		}
		results[index] = Encounter{Lane: lane, Index: index, Report: report}
	}
	return nil
}

func (r *Runner) encounter(ctx context.Context, roster *battle.Roster, rng dice.Source, sink battle.Sink, cfg Config, lane, index int, logger *zap.Logger) (battle.Report, error) {
	ctx, span := r.tracer.Start(ctx, "simulation.encounter", trace.WithAttributes(
		attribute.Int("encounter.lane", lane),
		attribute.Int("encounter.index", index),
	))
	defer span.End()

	enc, err := battle.NewEncounter(roster, rng, battle.Options{
		TurnCap: cfg.TurnCap,
		Catalog: r.catalog,
		Sink:    sink,
		Logger:  logger.With(zap.Int("index", index)),
	})
	if err != nil {
		return battle.Report{}, err
	}
	span.SetAttributes(attribute.String("encounter.id", enc.ID()))

	report, err := enc.Run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return battle.Report{}, fmt.Errorf("encounter %d: %w", index, err)
	}
	span.SetAttributes(
		attribute.Int("encounter.turns", report.Turns),
		attribute.String("encounter.reason", string(report.Reason)),
	)

	if r.store != nil {
		_, err := r.store.SaveEncounter(ctx, storage.EncounterRecord{
			RunID:     cfg.RunID,
			Lane:      lane,
			Index:     index,
			Seed:      cfg.Seed,
			Report:    report,
			CreatedAt: r.now(),
		})
		if err != nil {
			span.RecordError(err)
			return battle.Report{}, fmt.Errorf("store encounter %d: %w", index, err)
		}
	}
	return report, nil
}
