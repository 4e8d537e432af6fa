package domain

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/catalog"
	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
	"github.com/louisbranch/partybattle/internal/platform/logging"
	"github.com/louisbranch/partybattle/internal/scenario"
	"github.com/louisbranch/partybattle/internal/simulation"
	"github.com/louisbranch/partybattle/internal/storage"
)

// MaxEncounters bounds one simulate_encounter call.
const MaxEncounters = 100

// MaxTurnCap bounds the turns of each encounter in one call.
const MaxTurnCap = battle.DefaultTurnCap

// maxNarrationLines bounds the narration returned to the client.
const maxNarrationLines = 2000

// SimulateEncounterInput is the simulate_encounter input.
type SimulateEncounterInput struct {
	Scenario   string `json:"scenario" jsonschema:"Lua scenario script that returns a Scenario"`
	Seed       int64  `json:"seed,omitempty" jsonschema:"random seed; 0 uses the scenario seed, then a random one"`
	Encounters int    `json:"encounters,omitempty" jsonschema:"encounters to fight back to back (max 100)"`
	TurnCap    int    `json:"turn_cap,omitempty" jsonschema:"turns per encounter before it ends (max 1000)"`
	Narrate    bool   `json:"narrate,omitempty" jsonschema:"include battle narration"`
}

// CombatantResult is a combatant's state at the end of an encounter.
type CombatantResult struct {
	ID             string         `json:"id" jsonschema:"combatant identifier"`
	Name           string         `json:"name" jsonschema:"display name"`
	Slot           int            `json:"slot" jsonschema:"roster slot"`
	Faction        string         `json:"faction" jsonschema:"party or opposition"`
	Alive          bool           `json:"alive" jsonschema:"whether the combatant was standing at the end"`
	HP             int            `json:"hp" jsonschema:"current hp"`
	HPMax          int            `json:"hp_max" jsonschema:"max hp"`
	MP             int            `json:"mp" jsonschema:"current mp"`
	MPMax          int            `json:"mp_max" jsonschema:"max mp"`
	Status         []string       `json:"status" jsonschema:"status flags set at the end"`
	Casts          map[string]int `json:"casts" jsonschema:"times each ability was chosen"`
	DamageDealt    int            `json:"damage_dealt" jsonschema:"damage dealt to others"`
	DamageReceived int            `json:"damage_received" jsonschema:"damage taken"`
	HealingDealt   int            `json:"healing_dealt" jsonschema:"healing done"`
	Whoopsies      int            `json:"whoopsies" jsonschema:"hostile actions against allies"`
	Deaths         int            `json:"deaths" jsonschema:"times fallen"`
	Karma          int            `json:"karma" jsonschema:"karma from landed statuses"`
	Fitness        float64        `json:"fitness" jsonschema:"fitness reported to the decision source"`
}

// EncounterResult is one finished encounter.
type EncounterResult struct {
	EncounterID      string            `json:"encounter_id" jsonschema:"encounter identifier"`
	Turns            int               `json:"turns" jsonschema:"turns taken"`
	Reason           string            `json:"reason" jsonschema:"party_defeated, turn_cap or stalled"`
	PartyDeaths      int               `json:"party_deaths" jsonschema:"party member deaths"`
	OppositionDeaths int               `json:"opposition_deaths" jsonschema:"opposition deaths"`
	Combatants       []CombatantResult `json:"combatants" jsonschema:"combatants in slot order"`
}

// SimulateEncounterResult is the simulate_encounter output.
type SimulateEncounterResult struct {
	RunID      string            `json:"run_id" jsonschema:"run identifier"`
	Scenario   string            `json:"scenario" jsonschema:"scenario name"`
	Seed       int64             `json:"seed" jsonschema:"seed used"`
	Encounters []EncounterResult `json:"encounters" jsonschema:"encounters in order"`
	Narration  []string          `json:"narration,omitempty" jsonschema:"battle narration, when requested"`
	Truncated  bool              `json:"truncated,omitempty" jsonschema:"whether narration was cut short"`
}

// SimulateEncounterTool defines the MCP tool schema for running a scenario.
func SimulateEncounterTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "simulate_encounter",
		Description: "Runs a Lua battle scenario and returns the end-of-encounter reports",
	}
}

// SimulateEncounterHandler runs scenarios supplied by the client. Scenarios
// may not load policy files. A non-nil store persists every encounter.
func SimulateEncounterHandler(cat *catalog.Catalog, store storage.EncounterStore, logger *zap.Logger) mcp.ToolHandlerFor[SimulateEncounterInput, SimulateEncounterResult] {
	logger = logging.OrNop(logger)
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SimulateEncounterInput) (*mcp.CallToolResult, SimulateEncounterResult, error) {
		if strings.TrimSpace(input.Scenario) == "" {
			return nil, SimulateEncounterResult{}, fmt.Errorf("scenario is required")
		}
		if input.Encounters > MaxEncounters {
			return nil, SimulateEncounterResult{}, fmt.Errorf("encounters must be at most %d", MaxEncounters)
		}
		if input.TurnCap > MaxTurnCap {
			return nil, SimulateEncounterResult{}, fmt.Errorf("turn_cap must be at most %d", MaxTurnCap)
		}
		sc, err := scenario.ParseContext(ctx, "scenario", input.Scenario)
		if err != nil {
			logFailure(logger, err)
			return nil, SimulateEncounterResult{}, err
		}
		for _, m := range sc.Members {
			if m.Policy.File != "" {
				return nil, SimulateEncounterResult{}, fmt.Errorf("%s: policy files are not allowed here; inline the source", m.Name)
			}
		}
		if sc.Encounters > MaxEncounters && input.Encounters == 0 {
			input.Encounters = MaxEncounters
		}
		if sc.TurnCap > MaxTurnCap && input.TurnCap == 0 {
			input.TurnCap = MaxTurnCap
		}

		var narration bytes.Buffer
		opts := []simulation.Option{simulation.WithCatalog(cat), simulation.WithLogger(logger)}
		if input.Narrate {
			opts = append(opts, simulation.WithNarration(&narration))
		}
		if store != nil {
			opts = append(opts, simulation.WithStore(store))
		}
		res, err := simulation.NewRunner(opts...).Run(ctx, sc, simulation.Config{
			Seed:       input.Seed,
			Encounters: input.Encounters,
			TurnCap:    input.TurnCap,
		})
		if err != nil {
			logFailure(logger, err)
			return nil, SimulateEncounterResult{}, err
		}

		out := SimulateEncounterResult{RunID: res.RunID, Scenario: sc.Name, Seed: res.Seed}
		for _, enc := range res.Encounters {
			out.Encounters = append(out.Encounters, encounterResult(enc.Report))
		}
		if input.Narrate {
			lines := strings.Split(strings.TrimRight(narration.String(), "\n"), "\n")
			if len(lines) > maxNarrationLines {
				lines = lines[:maxNarrationLines]
				out.Truncated = true
			}
			out.Narration = lines
		}
		return nil, out, nil
	}
}

// logFailure keeps rejected client scripts out of the error log.
func logFailure(logger *zap.Logger, err error) {
	code := apperrors.CodeOf(err)
	if code.InvalidInput() {
		logger.Debug("scenario rejected", zap.String("code", string(code)), zap.Error(err))
		return
	}
	logger.Error("simulate encounter", zap.Error(err))
}

func encounterResult(r battle.Report) EncounterResult {
	out := EncounterResult{
		EncounterID:      r.EncounterID,
		Turns:            r.Turns,
		Reason:           string(r.Reason),
		PartyDeaths:      r.PartyDeaths,
		OppositionDeaths: r.OppositionDeaths,
	}
	for _, c := range r.Combatants {
		casts := map[string]int{}
		for a, n := range c.Telemetry.Casts {
			casts[a.String()] = n
		}
		status := c.Status.Names()
		if status == nil {
			status = []string{}
		}
		out.Combatants = append(out.Combatants, CombatantResult{
			ID:             c.ID,
			Name:           c.Name,
			Slot:           c.Slot,
			Faction:        c.Faction.String(),
			Alive:          c.Alive,
			HP:             c.HP,
			HPMax:          c.HPMax,
			MP:             c.MP,
			MPMax:          c.MPMax,
			Status:         status,
			Casts:          casts,
			DamageDealt:    c.Telemetry.DamageDealt,
			DamageReceived: c.Telemetry.DamageReceived,
			HealingDealt:   c.Telemetry.HealingDealt,
			Whoopsies:      c.Telemetry.Whoopsie,
			Deaths:         c.Telemetry.Deaths,
			Karma:          c.Telemetry.Karma,
			Fitness:        c.Fitness,
		})
	}
	return out
}
