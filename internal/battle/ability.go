package battle

import (
	"fmt"
	"strings"
)

// Ability is an action code chosen by a DecisionSource.
type Ability int

// Ability codes. Any code not listed resolves as Idle.
const (
	Idle    Ability = 0
	Attack  Ability = 15
	Cure    Ability = 16
	Fire    Ability = 17
	Poison  Ability = 18
	Reap    Ability = 19
	Regen   Ability = 21
	Refresh Ability = 22
	Drain   Ability = 23
	Protect Ability = 24
	Berserk Ability = 25
	Haste   Ability = 26
	Sleep   Ability = 27
	Blink   Ability = 28
	Cover   Ability = 29
)

var abilityOrder = []Ability{
	Idle, Attack, Cure, Fire, Poison, Reap, Regen, Refresh,
	Drain, Protect, Berserk, Haste, Sleep, Blink, Cover,
}

var abilityNames = map[Ability]string{
	Idle:    "Idle",
	Attack:  "Attack",
	Cure:    "Cure",
	Fire:    "Fire",
	Poison:  "Poison",
	Reap:    "Reaper",
	Regen:   "Regen",
	Refresh: "Refresh",
	Drain:   "Drain",
	Protect: "Protect",
	Berserk: "Berserk",
	Haste:   "Haste",
	Sleep:   "Sleep",
	Blink:   "Blink",
	Cover:   "Cover",
}

// Abilities returns every known ability in catalog order, Idle first.
func Abilities() []Ability {
	out := make([]Ability, len(abilityOrder))
	copy(out, abilityOrder)
	return out
}

// ParseAbility maps a raw code to an Ability. Unknown codes become Idle.
func ParseAbility(code int) Ability {
	a := Ability(code)
	if _, ok := abilityNames[a]; !ok {
		return Idle
	}
	return a
}

// AbilityByName looks an ability up by its display name, case-insensitively.
// "reap" is accepted for Reaper.
func AbilityByName(name string) (Ability, error) {
	trimmed := strings.TrimSpace(name)
	if strings.EqualFold(trimmed, "reap") {
		return Reap, nil
	}
	for _, a := range abilityOrder {
		if strings.EqualFold(abilityNames[a], trimmed) {
			return a, nil
		}
	}
	return Idle, fmt.Errorf("ability %q is not supported", trimmed)
}

// Known reports whether a is part of the catalog.
func (a Ability) Known() bool {
	_, ok := abilityNames[a]
	return ok
}

func (a Ability) String() string {
	if name, ok := abilityNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Ability(%d)", int(a))
}

// Hostile reports whether the ability targets the opposing faction.
func (a Ability) Hostile() bool {
	switch a {
	case Attack, Fire, Poison, Reap, Drain, Sleep:
		return true
	default:
		return false
	}
}

// UsesTarget reports whether the ability acts on a chosen slot. Abilities
// that do not use a target act on the caster and can never fizzle.
func (a Ability) UsesTarget() bool {
	return a != Idle && a != Berserk && a.Known()
}

// Cost returns the mp cost for a caster with the given mp max.
func (a Ability) Cost(mpMax int) int {
	switch a {
	case Cure, Fire, Regen, Drain, Protect, Sleep, Blink:
		return mpMax / 10
	case Poison:
		return int(float64(mpMax) * 0.05)
	case Refresh:
		return mpMax / 3
	case Haste:
		return mpMax / 4
	default:
		return 0
	}
}

// karma awarded to the caster when the ability lands its status.
var abilityKarma = map[Ability]int{
	Poison:  50,
	Regen:   50,
	Refresh: 200,
	Protect: 100,
	Haste:   150,
	Sleep:   25,
	Blink:   25,
}
