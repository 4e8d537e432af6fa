package scenario

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/battle/policy"
	"github.com/louisbranch/partybattle/internal/catalog"
	"github.com/louisbranch/partybattle/internal/core/dice"
	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
)

func TestLoadFile(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "crypt.lua"))
	require.NoError(t, err)

	assert.Equal(t, "crypt", s.Name)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, 300, s.TurnCap)
	assert.Equal(t, 3, s.Encounters)
	require.Len(t, s.Members, 4)
	assert.Equal(t, battle.Opposition, s.Members[3].Faction)
	assert.Equal(t, 3, s.Members[3].Level)
	assert.Equal(t, []battle.Decision{
		{Ability: battle.Fire, Target: 3},
		{Ability: battle.Blink, Target: 1},
	}, s.Members[1].Policy.Decisions)

	roster, err := s.Build(catalog.Default(), dice.NewSource(s.Seed))
	require.NoError(t, err)
	require.Equal(t, 4, roster.Len())
	assert.Equal(t, "paladin-0", roster.At(0).ID)
	assert.Equal(t, "skeleton-a-3", roster.At(3).ID)
	assert.Equal(t, 60+9, roster.At(0).Stats.HP.Max)
	assert.Equal(t, battle.DefaultRules(battle.Opposition), roster.Rules(battle.Opposition))

	lists, ok := roster.At(2).Brain.(*policy.ActionList)
	require.True(t, ok, "sorcerer brain = %T", roster.At(2).Brain)
	d, err := lists.ChooseAction(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, battle.Decision{Ability: battle.Fire, Target: 3}, d)
}

func TestScenarioRunsEncounter(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "crypt.lua"))
	require.NoError(t, err)
	rng := dice.NewSource(s.Seed)
	roster, err := s.Build(nil, rng)
	require.NoError(t, err)

	enc, err := battle.NewEncounter(roster, rng, battle.Options{TurnCap: s.TurnCap})
	require.NoError(t, err)
	report, err := enc.Run(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, report.Turns, s.TurnCap)
	assert.Len(t, report.Combatants, 4)
}

func TestParseExplicitStatsAndRules(t *testing.T) {
	s, err := Parse("inline", `
local s = Scenario.new("duel")
s:party("Hero", { stats = { hp = 30, mp = 10, str = 12, spd = 5 }, actions = { "attack", 16 } })
s:opposition("Slime", { stats = { hp = 5 }, policy = "idle" })
s:rules("opposition", { auto_revive = false })
return s
`)
	require.NoError(t, err)
	assert.Equal(t, "duel", s.Name)
	assert.Equal(t, []battle.Ability{battle.Attack, battle.Cure}, s.Members[0].Actions)

	roster, err := s.Build(nil, dice.NewSource(1))
	require.NoError(t, err)
	hero := roster.At(0)
	assert.Equal(t, 30, hero.Stats.HP.Max)
	assert.Equal(t, 12, hero.Stats.Str.Max)
	assert.Equal(t, 1, hero.Stats.Lvl.Max)
	assert.IsType(t, policy.Idle{}, hero.Brain)
	assert.Equal(t, battle.FactionRules{AutoRevive: false, RandomTargets: true}, roster.Rules(battle.Opposition))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   apperrors.Code
	}{
		{name: "syntax", source: `local s = `, code: apperrors.CodeScenarioLoad},
		{name: "runtime", source: `error("nope")`, code: apperrors.CodeScenarioLoad},
		{name: "no return", source: `local s = Scenario.new()`, code: apperrors.CodeScenarioInvalid},
		{name: "empty", source: `return Scenario.new()`, code: apperrors.CodeScenarioInvalid},
		{
			name:   "no stats",
			source: `local s = Scenario.new() s:party("A", {}) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
		{
			name:   "bad level",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", level = 0 }) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
		{
			name:   "bad action",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", actions = { "meteor" } }) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
		{
			name:   "lua without source",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", policy = "lua" }) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
		{
			name:   "action list with random",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", policy = "random", action_list = true }) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
		{
			name:   "action list with cycle",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", policy = "cycle", decisions = { { ability = "cure" } }, action_list = true }) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
		{
			name:   "bad faction rules",
			source: `local s = Scenario.new() s:party("A", { template = "paladin" }) s:rules("mobs", {}) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.name, tt.source)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err), "error: %v", err)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   apperrors.Code
	}{
		{
			name:   "unknown template",
			source: `local s = Scenario.new() s:party("A", { template = "dragon" }) return s`,
			code:   apperrors.CodeCatalogUnknownKind,
		},
		{
			name:   "unknown policy",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", policy = "genius" }) return s`,
			code:   apperrors.CodeScenarioUnknownPolicy,
		},
		{
			name:   "unknown stat",
			source: `local s = Scenario.new() s:party("A", { stats = { hp = 1, luck = 3 } }) return s`,
			code:   apperrors.CodeRosterInvalidStat,
		},
		{
			name:   "zero hp",
			source: `local s = Scenario.new() s:party("A", { stats = { mp = 3 } }) return s`,
			code:   apperrors.CodeRosterInvalidStat,
		},
		{
			name:   "no party",
			source: `local s = Scenario.new() s:opposition("A", { template = "skeleton" }) return s`,
			code:   apperrors.CodeRosterNoParty,
		},
		{
			name:   "broken policy",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", policy = "lua", source = "x = 1" }) return s`,
			code:   apperrors.CodeScenarioInvalid,
		},
		{
			name:   "missing policy file",
			source: `local s = Scenario.new() s:party("A", { template = "paladin", policy = "lua", file = "nowhere.lua" }) return s`,
			code:   apperrors.CodeScenarioLoad,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.name, tt.source)
			require.NoError(t, err)
			_, err = s.Build(catalog.Default(), dice.NewSource(1))
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.CodeOf(err), "error: %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Equal(t, apperrors.CodeScenarioLoad, apperrors.CodeOf(err))
}

func TestParseContextStopsEndlessScript(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ParseContext(ctx, "spin", `while true do end`)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, apperrors.CodeScenarioLoad, apperrors.CodeOf(err))
}
