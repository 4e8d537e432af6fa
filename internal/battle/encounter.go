package battle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/louisbranch/partybattle/internal/core/dice"
)

// DefaultTurnCap bounds an encounter when no cap is configured.
const DefaultTurnCap = 1000

// Lifecycle states of an encounter.
const (
	StateIdle       = "idle"
	StateRunning    = "running"
	StateTerminated = "terminated"
)

const (
	eventStart     = "start"
	eventTerminate = "terminate"
)

// ErrEncounterStarted is returned when Run is called twice.
var ErrEncounterStarted = errors.New("encounter already started")

// Options configure an encounter. Zero values select the defaults.
type Options struct {
	ID      string
	TurnCap int
	Catalog StatCatalog
	Fitness FitnessFunc
	Sink    Sink
	Logger  *zap.Logger
}

// Encounter is one battle over a roster. Rosters outlive encounters: run a
// new Encounter on the same roster to fight again.
type Encounter struct {
	id      string
	roster  *Roster
	board   *StatusBoard
	turnCap int
	turns   int
	catalog StatCatalog
	fitness FitnessFunc
	logger  *zap.Logger
	machine *fsm.FSM

	narrator
	scheduler *scheduler
	targets   *targetResolver
	abilities *abilityResolver
	mortality *mortality
}

// NewEncounter prepares an encounter; it does not touch the roster until Run.
func NewEncounter(roster *Roster, rng dice.Source, opts Options) (*Encounter, error) {
	if roster == nil || roster.Len() == 0 {
		return nil, ErrEmptyRoster
	}
	if rng == nil {
		return nil, errors.New("randomness source is required")
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.TurnCap <= 0 {
		opts.TurnCap = DefaultTurnCap
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog
	}
	if opts.Fitness == nil {
		opts.Fitness = DefaultFitness
	}
	if opts.Sink == nil {
		opts.Sink = Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	logger := opts.Logger.With(zap.String("encounter_id", opts.ID))

	e := &Encounter{
		id:       opts.ID,
		roster:   roster,
		board:    NewStatusBoard(roster.Len()),
		turnCap:  opts.TurnCap,
		catalog:  opts.Catalog,
		fitness:  opts.Fitness,
		logger:   logger,
		narrator: narrator{sink: opts.Sink},
	}
	e.mortality = &mortality{roster: roster, board: e.board, narrator: e.narrator, logger: logger}
	e.scheduler = &scheduler{roster: roster, board: e.board, mortality: e.mortality}
	e.targets = &targetResolver{roster: roster, board: e.board, rng: rng}
	e.abilities = &abilityResolver{roster: roster, board: e.board, rng: rng, narrator: e.narrator}
	e.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle}, Dst: StateRunning},
			{Name: eventTerminate, Src: []string{StateRunning}, Dst: StateTerminated},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, ev *fsm.Event) {
				logger.Debug("encounter state", zap.String("from", ev.Src), zap.String("to", ev.Dst))
			},
		},
	)
	return e, nil
}

// ID returns the encounter identifier.
func (e *Encounter) ID() string { return e.id }

// State returns the lifecycle state.
func (e *Encounter) State() string { return e.machine.Current() }

// Turns returns how many turns have been taken.
func (e *Encounter) Turns() int { return e.turns }

// Board exposes the status board.
func (e *Encounter) Board() *StatusBoard { return e.board }

// Roster returns the roster being fought over.
func (e *Encounter) Roster() *Roster { return e.roster }

// Run fights the encounter to termination, reports fitness to every
// combatant's decision source, and restores the roster for the next fight.
// The returned Report reflects the state before restoration.
func (e *Encounter) Run(ctx context.Context) (Report, error) {
	if e.State() != StateIdle {
		return Report{}, ErrEncounterStarted
	}
	if err := e.machine.Event(ctx, eventStart); err != nil {
		return Report{}, fmt.Errorf("start encounter: %w", err)
	}
	e.roster.applyCatalog(e.catalog)
	e.roster.resetTelemetry()

	reason, loopErr := e.loop(ctx)
	if err := e.machine.Event(ctx, eventTerminate); err != nil {
		return Report{}, errors.Join(loopErr, fmt.Errorf("terminate encounter: %w", err))
	}
	if loopErr != nil {
		e.restore()
		return Report{}, loopErr
	}

	report := e.report(reason)
	e.logger.Info("encounter finished",
		zap.String("reason", string(reason)),
		zap.Int("turns", e.turns),
		zap.Int("party_deaths", report.PartyDeaths),
		zap.Int("opposition_deaths", report.OppositionDeaths),
	)

	var errs []error
	for _, c := range report.Combatants {
		member := e.roster.At(c.Slot)
		if err := member.Brain.ReportFitness(ctx, member.ID, c.Fitness); err != nil {
			errs = append(errs, fmt.Errorf("report fitness for %s: %w", member.Name, err))
		}
	}
	e.restore()
	return report, errors.Join(errs...)
}

func (e *Encounter) loop(ctx context.Context) (Termination, error) {
	partyDown := func() bool { return e.roster.Defeated(Party) }
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if partyDown() {
			return PartyDefeated, nil
		}
		if e.turns >= e.turnCap {
			return TurnCap, nil
		}

		actor, p := e.scheduler.next(partyDown)
		switch p {
		case stalled:
			e.logger.Warn("encounter stalled", zap.Int("turns", e.turns))
			return Stalled, nil
		case interrupted:
			continue
		}

		e.turns++
		if err := e.turn(ctx, actor); err != nil {
			return "", err
		}
	}
}

func (e *Encounter) turn(ctx context.Context, actor *Combatant) error {
	sensors := Sensors(e.roster, e.catalog)
	decision, err := actor.Brain.ChooseAction(ctx, sensors)
	if err != nil {
		return fmt.Errorf("%s choose action: %w", actor.Name, err)
	}
	ability := ParseAbility(int(decision.Ability))

	target, ok := e.targets.resolve(actor, ability, decision.Target)
	if !ok {
		e.say("%s has no one to use %s on.", actor.Name, ability)
		e.logger.Debug("ability fizzled",
			zap.String("actor", actor.Name),
			zap.Stringer("ability", ability),
			zap.Int("raw_target", decision.Target),
		)
		return nil
	}

	out := e.abilities.resolve(actor, target, ability)
	e.logger.Debug("turn resolved",
		zap.Int("turn", e.turns),
		zap.String("actor", actor.Name),
		zap.Stringer("ability", ability),
		zap.Int("target", target.Slot),
		zap.Bool("redirected", target.Redirected),
		zap.Int("damage", out.Damage),
		zap.Int("healing", out.Healing),
		zap.Bool("unpaid", out.Unpaid),
	)

	e.mortality.check(e.roster.At(target.Slot))
	e.mortality.check(actor)
	return nil
}

func (e *Encounter) report(reason Termination) Report {
	r := Report{
		EncounterID:      e.id,
		Turns:            e.turns,
		Reason:           reason,
		PartyDeaths:      e.roster.Deaths(Party),
		OppositionDeaths: e.roster.Deaths(Opposition),
	}
	for _, c := range e.roster.members {
		r.Combatants = append(r.Combatants, CombatantReport{
			ID:        c.ID,
			Name:      c.Name,
			Slot:      c.slot,
			Faction:   c.Faction,
			Alive:     c.Alive,
			HP:        c.Stats.HP.Current,
			HPMax:     c.Stats.HP.Max,
			MP:        c.Stats.MP.Current,
			MPMax:     c.Stats.MP.Max,
			Status:    e.board.Of(c.slot),
			Telemetry: c.Telemetry.Clone(),
			Fitness: e.fitness(FitnessInput{
				Turns:          e.turns,
				OpposingDeaths: e.roster.Deaths(c.Faction.Opponent()),
				Telemetry:      c.Telemetry,
			}),
		})
	}
	return r
}

func (e *Encounter) restore() {
	e.roster.restore()
	e.board.Reset()
}
