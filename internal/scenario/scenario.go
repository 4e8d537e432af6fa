// Package scenario loads Lua scripts that declare encounters.
//
// A script builds a Scenario and returns it:
//
//	local s = Scenario.new("crypt")
//	s:seed(7)
//	s:encounters(20)
//	s:party("Paladin", { template = "paladin", level = 3, policy = "random" })
//	s:opposition("Skeleton A", { template = "skeleton", policy = "lua", source = [[
//	  function choose(sensors) return "attack", 0 end
//	]] })
//	return s
package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/battle/policy"
	"github.com/louisbranch/partybattle/internal/catalog"
	"github.com/louisbranch/partybattle/internal/core/dice"
	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
)

// Policy kinds accepted by the policy option.
const (
	PolicyIdle   = "idle"
	PolicyRandom = "random"
	PolicyCycle  = "cycle"
	PolicyLua    = "lua"
)

// Scenario is a decoded scenario script.
type Scenario struct {
	Name       string
	Seed       int64
	TurnCap    int
	Encounters int
	Members    []Member
	Rules      map[battle.Faction]battle.FactionRules

	dir   string
	decls []declaration
}

// Member declares one combatant.
type Member struct {
	Name     string
	Faction  battle.Faction
	Template string
	Level    int
	Stats    map[string]int
	Actions  []battle.Ability
	Policy   PolicySpec
}

// PolicySpec selects and configures a decision source.
type PolicySpec struct {
	Kind      string
	Decisions []battle.Decision
	Source    string
	File      string

	// ActionList makes a lua policy answer with a 0-based index into the
	// combatant's actions instead of an ability.
	ActionList bool
}

// Load runs the scenario script at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeScenarioLoad, "read scenario", map[string]string{"path": path}, err)
	}
	s, err := Parse(filepath.Base(path), string(data))
	if err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(path)
	if strings.TrimSpace(s.Name) == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse runs a scenario script held in memory. Relative policy files are
// resolved against the working directory.
func Parse(name, source string) (*Scenario, error) {
	return ParseContext(context.Background(), name, source)
}

// ParseContext is Parse with the script stopped when ctx ends. Scripts are
// also bounded by the Lua instruction budget.
func ParseContext(ctx context.Context, name, source string) (*Scenario, error) {
	s, err := run(ctx, name, source)
	if err != nil {
		return nil, err
	}
	if err := s.decode(); err != nil {
		return nil, err
	}
	return s, nil
}

// Build creates a fresh roster for the scenario. Templates come from cat and
// random policies draw from rng.
func (s *Scenario) Build(cat *catalog.Catalog, rng dice.Source) (*battle.Roster, error) {
	if cat == nil {
		cat = catalog.Default()
	}
	members := make([]*battle.Combatant, 0, len(s.Members))
	for i, m := range s.Members {
		attrs, actions, err := m.attributes(cat)
		if err != nil {
			return nil, err
		}
		brain, err := s.brain(m, actions, rng)
		if err != nil {
			return nil, err
		}
		id := fmt.Sprintf("%s-%d", slug(m.Name), i)
		members = append(members, battle.NewCombatant(id, m.Name, m.Faction, attrs, brain))
	}
	roster, err := battle.NewRoster(members...)
	if err != nil {
		return nil, err
	}
	for faction, rules := range s.Rules {
		roster.SetRules(faction, rules)
	}
	return roster, nil
}

func (m Member) attributes(cat *catalog.Catalog) (battle.Attributes, []battle.Ability, error) {
	var attrs battle.Attributes
	actions := m.Actions
	if m.Template != "" {
		tmpl, err := cat.Template(m.Template)
		if err != nil {
			return attrs, nil, err
		}
		attrs = tmpl.Attributes(m.Level)
		if len(actions) == 0 {
			actions = tmpl.ActionList()
		}
	} else {
		attrs.Lvl = max(m.Level, 1)
	}

	names := make([]string, 0, len(m.Stats))
	for name := range m.Stats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := m.Stats[name]
		field := attributeField(&attrs, name)
		if field == nil {
			return attrs, nil, apperrors.WithMetadata(apperrors.CodeRosterInvalidStat,
				fmt.Sprintf("%s: stat %q is not supported", m.Name, name),
				map[string]string{"combatant": m.Name, "stat": name})
		}
		if value < 0 {
			return attrs, nil, apperrors.WithMetadata(apperrors.CodeRosterInvalidStat,
				fmt.Sprintf("%s: stat %s must not be negative", m.Name, name),
				map[string]string{"combatant": m.Name, "stat": name})
		}
		*field = value
	}
	if attrs.HP <= 0 {
		return attrs, nil, apperrors.WithMetadata(apperrors.CodeRosterInvalidStat,
			fmt.Sprintf("%s: hp must be positive", m.Name),
			map[string]string{"combatant": m.Name, "stat": battle.StatHP})
	}
	return attrs, actions, nil
}

func attributeField(a *battle.Attributes, name string) *int {
	switch name {
	case battle.StatHP:
		return &a.HP
	case battle.StatMP:
		return &a.MP
	case battle.StatStr:
		return &a.Str
	case battle.StatDex:
		return &a.Dex
	case battle.StatVit:
		return &a.Vit
	case battle.StatWil:
		return &a.Wil
	case battle.StatInt:
		return &a.Int
	case battle.StatLvl:
		return &a.Lvl
	case battle.StatSpd:
		return &a.Spd
	default:
		return nil
	}
}

func (s *Scenario) brain(m Member, actions []battle.Ability, rng dice.Source) (battle.DecisionSource, error) {
	var source battle.DecisionSource
	switch m.Policy.Kind {
	case "", PolicyIdle:
		source = policy.Idle{}
	case PolicyRandom:
		if rng == nil {
			rng = dice.NewSource(s.Seed)
		}
		source = policy.NewRandom(rng, actions, len(s.Members))
	case PolicyCycle:
		source = policy.NewCycle(m.Policy.Decisions...)
	case PolicyLua:
		code := m.Policy.Source
		name := m.Name
		if m.Policy.File != "" {
			path := m.Policy.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(s.dir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, apperrors.WrapWithMetadata(apperrors.CodeScenarioLoad, "read policy",
					map[string]string{"combatant": m.Name, "path": path}, err)
			}
			code = string(data)
			name = filepath.Base(path)
		}
		lp, err := policy.NewLua(name, code)
		if err != nil {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeScenarioInvalid, "compile policy",
				map[string]string{"combatant": m.Name}, err)
		}
		source = lp
	default:
		return nil, apperrors.WithMetadata(apperrors.CodeScenarioUnknownPolicy,
			fmt.Sprintf("%s: policy %q is not supported", m.Name, m.Policy.Kind),
			map[string]string{"combatant": m.Name, "policy": m.Policy.Kind})
	}
	if m.Policy.ActionList {
		source = policy.NewActionList(actions, source)
	}
	return source, nil
}

func slug(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return "combatant"
	}
	return strings.Join(fields, "-")
}
