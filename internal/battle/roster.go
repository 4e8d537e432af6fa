package battle

import (
	"strconv"

	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
)

var (
	// ErrEmptyRoster is returned when a roster has no combatants.
	ErrEmptyRoster = apperrors.New(apperrors.CodeRosterEmpty, "roster has no combatants")
	// ErrNoParty is returned when no combatant belongs to the Party faction.
	ErrNoParty = apperrors.New(apperrors.CodeRosterNoParty, "roster has no party members")
	// ErrMissingDecisionSource is returned for a combatant without a brain.
	ErrMissingDecisionSource = apperrors.New(apperrors.CodeRosterMissingBrain, "combatant has no decision source")
)

// FactionRules are per-faction encounter rules.
type FactionRules struct {
	// AutoRevive restores a fallen member to full hp immediately.
	AutoRevive bool
	// RandomTargets replaces the chosen target with a random opposing slot.
	RandomTargets bool
}

// DefaultRules returns the reference rules: the opposition revives and
// targets at random, the party does neither.
func DefaultRules(f Faction) FactionRules {
	if f == Opposition {
		return FactionRules{AutoRevive: true, RandomTargets: true}
	}
	return FactionRules{}
}

// Roster is the ordered set of combatants in an encounter. Slot indices are
// stable for the life of the roster.
type Roster struct {
	members []*Combatant
	rules   [2]FactionRules
}

// NewRoster assigns slots in argument order.
func NewRoster(members ...*Combatant) (*Roster, error) {
	if len(members) == 0 {
		return nil, ErrEmptyRoster
	}
	hasParty := false
	for i, c := range members {
		if c == nil {
			return nil, apperrors.WithMetadata(apperrors.CodeRosterEmpty, "roster slot is nil", map[string]string{"slot": strconv.Itoa(i)})
		}
		if c.Brain == nil {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeRosterMissingBrain, "combatant "+c.Name+" has no decision source",
				map[string]string{"combatant": c.Name}, ErrMissingDecisionSource)
		}
		if c.Telemetry.Casts == nil {
			c.Telemetry.Casts = map[Ability]int{}
		}
		c.slot = i
		if c.Faction == Party {
			hasParty = true
		}
	}
	if !hasParty {
		return nil, ErrNoParty
	}
	return &Roster{
		members: members,
		rules:   [2]FactionRules{DefaultRules(Party), DefaultRules(Opposition)},
	}, nil
}

// Len returns the number of slots.
func (r *Roster) Len() int {
	return len(r.members)
}

// At returns the combatant in slot, or nil when out of range.
func (r *Roster) At(slot int) *Combatant {
	if slot < 0 || slot >= len(r.members) {
		return nil
	}
	return r.members[slot]
}

// Members returns the combatants in slot order.
func (r *Roster) Members() []*Combatant {
	return r.members
}

// Slots returns the slots of a faction in ascending order.
func (r *Roster) Slots(f Faction) []int {
	var out []int
	for i, c := range r.members {
		if c.Faction == f {
			out = append(out, i)
		}
	}
	return out
}

// Rules returns the rules of a faction.
func (r *Roster) Rules(f Faction) FactionRules {
	return r.rules[f]
}

// SetRules overrides the rules of a faction.
func (r *Roster) SetRules(f Faction, rules FactionRules) {
	r.rules[f] = rules
}

// Defeated reports whether every member of the faction is at or below 0 hp.
func (r *Roster) Defeated(f Faction) bool {
	for _, c := range r.members {
		if c.Faction == f && c.Stats.HP.Current > 0 {
			return false
		}
	}
	return true
}

// Deaths sums the deaths recorded by members of a faction this encounter.
func (r *Roster) Deaths(f Faction) int {
	total := 0
	for _, c := range r.members {
		if c.Faction == f {
			total += c.Telemetry.Deaths
		}
	}
	return total
}

func (r *Roster) restore() {
	for _, c := range r.members {
		c.restore()
	}
}

func (r *Roster) resetTelemetry() {
	for _, c := range r.members {
		c.resetTelemetry()
	}
}

func (r *Roster) applyCatalog(catalog StatCatalog) {
	for _, c := range r.members {
		for _, name := range StatNames() {
			if s, ok := c.Stats.ByName(name); ok {
				s.Matched = catalog.IsMatched(name)
			}
		}
	}
}
