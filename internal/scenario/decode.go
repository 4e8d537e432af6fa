package scenario

import (
	"fmt"
	"strings"

	"github.com/louisbranch/partybattle/internal/battle"
	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
)

type declaration struct {
	kind string
	name string
	args map[string]any
}

const (
	declMember = "member"
	declRules  = "rules"
)

func (s *Scenario) decode() error {
	if s.Encounters < 0 {
		return invalid("encounters must not be negative")
	}
	if s.TurnCap < 0 {
		return invalid("turn cap must not be negative")
	}
	for _, d := range s.decls {
		switch d.kind {
		case declMember:
			m, err := decodeMember(d)
			if err != nil {
				return err
			}
			s.Members = append(s.Members, m)
		case declRules:
			faction, err := battle.ParseFaction(d.name)
			if err != nil {
				return apperrors.Wrap(apperrors.CodeScenarioInvalid, "rules", err)
			}
			if s.Rules == nil {
				s.Rules = map[battle.Faction]battle.FactionRules{}
			}
			rules := battle.DefaultRules(faction)
			if v, ok := d.args["auto_revive"].(bool); ok {
				rules.AutoRevive = v
			}
			if v, ok := d.args["random_targets"].(bool); ok {
				rules.RandomTargets = v
			}
			s.Rules[faction] = rules
		}
	}
	if len(s.Members) == 0 {
		return invalid("scenario declares no combatants")
	}
	return nil
}

func decodeMember(d declaration) (Member, error) {
	faction, err := battle.ParseFaction(stringArg(d.args, "faction"))
	if err != nil {
		return Member{}, apperrors.Wrap(apperrors.CodeScenarioInvalid, d.name, err)
	}
	m := Member{
		Name:     d.name,
		Faction:  faction,
		Template: stringArg(d.args, "template"),
		Level:    1,
		Policy:   PolicySpec{Kind: strings.ToLower(stringArg(d.args, "policy"))},
	}
	if strings.TrimSpace(m.Name) == "" {
		return Member{}, invalid("combatant name must not be empty")
	}
	if level, ok := d.args["level"].(int); ok {
		if level < 1 {
			return Member{}, invalid(fmt.Sprintf("%s: level must be at least 1", m.Name))
		}
		m.Level = level
	}
	if raw, ok := d.args["stats"].(map[string]any); ok {
		m.Stats = map[string]int{}
		for name, value := range raw {
			n, ok := value.(int)
			if !ok {
				return Member{}, invalid(fmt.Sprintf("%s: stat %s must be an integer", m.Name, name))
			}
			m.Stats[strings.ToLower(name)] = n
		}
	}
	if m.Template == "" && m.Stats == nil {
		return Member{}, invalid(fmt.Sprintf("%s: a template or stats are required", m.Name))
	}
	if raw, ok := d.args["actions"]; ok {
		actions, err := decodeAbilities(m.Name, raw)
		if err != nil {
			return Member{}, err
		}
		m.Actions = actions
	}
	if raw, ok := d.args["decisions"]; ok {
		decisions, err := decodeDecisions(m.Name, raw)
		if err != nil {
			return Member{}, err
		}
		m.Policy.Decisions = decisions
	}
	m.Policy.Source = stringArg(d.args, "source")
	m.Policy.File = stringArg(d.args, "file")
	if v, ok := d.args["action_list"].(bool); ok {
		m.Policy.ActionList = v
	}
	if m.Policy.ActionList && m.Policy.Kind != PolicyLua {
		return Member{}, invalid(fmt.Sprintf("%s: action_list needs a lua policy, not %q", m.Name, m.Policy.Kind))
	}
	if m.Policy.Kind == PolicyLua && m.Policy.Source == "" && m.Policy.File == "" {
		return Member{}, invalid(fmt.Sprintf("%s: lua policy needs source or file", m.Name))
	}
	return m, nil
}

func decodeAbilities(owner string, raw any) ([]battle.Ability, error) {
	list, ok := asList(raw)
	if !ok {
		return nil, invalid(fmt.Sprintf("%s: actions must be a list", owner))
	}
	out := make([]battle.Ability, 0, len(list))
	for _, item := range list {
		a, err := decodeAbility(owner, item)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeAbility(owner string, raw any) (battle.Ability, error) {
	switch v := raw.(type) {
	case int:
		return battle.Ability(v), nil
	case string:
		a, err := battle.AbilityByName(v)
		if err != nil {
			return battle.Idle, apperrors.Wrap(apperrors.CodeScenarioInvalid, owner, err)
		}
		return a, nil
	default:
		return battle.Idle, invalid(fmt.Sprintf("%s: ability must be a code or name", owner))
	}
}

func decodeDecisions(owner string, raw any) ([]battle.Decision, error) {
	list, ok := asList(raw)
	if !ok {
		return nil, invalid(fmt.Sprintf("%s: decisions must be a list", owner))
	}
	out := make([]battle.Decision, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, invalid(fmt.Sprintf("%s: each decision must be a table", owner))
		}
		a, err := decodeAbility(owner, entry["ability"])
		if err != nil {
			return nil, err
		}
		target, _ := entry["target"].(int)
		out = append(out, battle.Decision{Ability: a, Target: target})
	}
	return out, nil
}

// asList accepts a Lua sequence. An empty table decodes as a map, so it is
// treated as an empty list.
func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		return nil, len(v) == 0
	default:
		return nil, false
	}
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}

func invalid(message string) error {
	return apperrors.New(apperrors.CodeScenarioInvalid, message)
}
