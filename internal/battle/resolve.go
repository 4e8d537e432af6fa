package battle

import (
	"github.com/louisbranch/partybattle/internal/core/dice"
)

// Outcome describes a resolved ability.
type Outcome struct {
	Ability Ability
	Actor   int
	Target  Target
	Damage  int
	Healing int
	// Unpaid is set when the caster lacked the mp to cast.
	Unpaid bool
}

type abilityResolver struct {
	roster *Roster
	board  *StatusBoard
	rng    dice.Source
	narrator
}

// ratio divides, treating a non-positive denominator as 1.
func ratio(num, den int) float64 {
	if den < 1 {
		den = 1
	}
	return float64(num) / float64(den)
}

func nonNegative(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v)
}

// chance draws a percentile and succeeds when it is at or below threshold.
func (r *abilityResolver) chance(threshold float64) bool {
	return float64(dice.Percentile(r.rng)) <= threshold
}

func (r *abilityResolver) resolve(actor *Combatant, t Target, ability Ability) Outcome {
	out := Outcome{Ability: ability, Actor: actor.slot, Target: t}
	intended := r.roster.At(t.Intended)
	target := r.roster.At(t.Slot)
	actor.Telemetry.Casts[ability]++

	cost := ability.Cost(actor.Stats.MP.Max)
	if actor.Stats.MP.Current < cost {
		r.say("%s is unable to cast %s on %s.", actor.Name, ability, intended.Name)
		out.Unpaid = true
		return out
	}
	actor.Stats.MP.Current -= cost

	r.announce(actor, intended, ability)
	if t.Redirected {
		r.say("%s covers %s!", target.Name, intended.Name)
	}

	switch ability {
	case Attack:
		base := float64(10+actor.Stats.Lvl.Value()) * ratio(actor.Stats.Str.Value(), target.Stats.Vit.Value())
		out.Damage = r.strike(actor, target, nonNegative(base))
	case Reap:
		self := actor.Stats.HP.Current / 10
		actor.Stats.HP.Current -= self
		actor.Telemetry.DamageReceived += self
		r.say("%s takes %d points of damage.", actor.Name, self)
		base := float64(10+actor.Stats.Lvl.Value()) * ratio(actor.Stats.Str.Value(), target.Stats.Vit.Value())
		out.Damage = r.strike(actor, target, self+nonNegative(base))
	case Cure:
		heal := nonNegative(2 * (float64(cost+actor.Stats.Wil.Value()) - 2.5*float64(actor.Stats.Lvl.Value())))
		out.Healing = r.heal(target, heal)
	case Fire:
		if r.absorbed(target) {
			break
		}
		dmg := nonNegative(2 * (float64(cost+actor.Stats.Int.Value()) - 2.5*float64(actor.Stats.Lvl.Value())))
		out.Damage = r.magic(actor, target, dmg)
	case Poison:
		if r.board.Has(target.slot, Poisoned) {
			r.say("%s is unaffected.", target.Name)
			break
		}
		if r.absorbed(target) {
			break
		}
		actor.Telemetry.Karma += abilityKarma[Poison]
		out.Damage = nonNegative(5 * ratio(actor.Stats.Int.Value(), target.Stats.Wil.Value()))
		r.damage(target, out.Damage)
		r.board.Set(target.slot, Poisoned)
		r.say("%s is poisoned.", target.Name)
	case Drain:
		if r.absorbed(target) {
			break
		}
		dmg := nonNegative(float64(cost+actor.Stats.Int.Value()) - 2.5*float64(actor.Stats.Lvl.Value()))
		out.Damage = r.magic(actor, target, dmg)
		// Drained hp is already counted as damage.
		r.heal(actor, out.Damage)
	case Regen, Refresh, Protect, Haste, Sleep, Blink:
		r.enchant(actor, target, ability)
	case Berserk:
		if r.board.Has(actor.slot, Berserked) {
			r.say("%s is unaffected.", actor.Name)
			break
		}
		r.board.Set(actor.slot, Berserked)
		r.say("%s goes berserk!", actor.Name)
	case Cover:
		if target == actor {
			r.board.Uncover(actor.slot)
			r.say("%s stands alone.", actor.Name)
			break
		}
		r.board.Cover(actor.slot, target.slot)
		r.say("%s guards %s.", actor.Name, target.Name)
	}

	r.record(actor, target, out)
	return out
}

func (r *abilityResolver) announce(actor, target *Combatant, ability Ability) {
	switch ability {
	case Idle:
		r.say("%s idles.", actor.Name)
	case Attack:
		r.say("%s attacks %s.", actor.Name, target.Name)
	case Reap:
		r.say("%s uses Reaper on %s.", actor.Name, target.Name)
	case Berserk:
		r.say("%s uses Berserk.", actor.Name)
	case Cover:
		r.say("%s uses Cover on %s.", actor.Name, target.Name)
	default:
		r.say("%s casts %s on %s.", actor.Name, ability, target.Name)
	}
}

// strike applies the physical modifiers in order: critical, protect, the
// berserk of either side, then blink.
func (r *abilityResolver) strike(actor, target *Combatant, dmg int) int {
	if r.chance(10 + ratio(actor.Stats.Dex.Value(), target.Stats.Dex.Value())) {
		dmg *= 2
		r.say("%s scores a critical hit!", actor.Name)
	}
	if r.board.Has(target.slot, Protected) {
		dmg /= 2
	}
	if r.board.Has(actor.slot, Berserked) {
		dmg *= 2
	}
	if r.board.Has(target.slot, Berserked) {
		dmg *= 2
	}
	if r.absorbed(target) {
		return 0
	}
	r.damage(target, dmg)
	return dmg
}

// magic applies the resist roll and the damage.
func (r *abilityResolver) magic(actor, target *Combatant, dmg int) int {
	if r.chance(10 + ratio(actor.Stats.Int.Value(), target.Stats.Wil.Value())) {
		dmg /= 2
		r.say("%s resists!", target.Name)
	}
	r.damage(target, dmg)
	return dmg
}

// absorbed consumes a blink on target, reporting whether one was present.
func (r *abilityResolver) absorbed(target *Combatant) bool {
	if !r.board.Has(target.slot, Blinked) {
		return false
	}
	r.board.Clear(target.slot, Blinked)
	r.say("%s's shadow absorbs the damage.", target.Name)
	return true
}

func (r *abilityResolver) damage(target *Combatant, dmg int) {
	target.Stats.HP.Current -= dmg
	r.say("%s takes %d points of damage.", target.Name, dmg)
}

// heal restores up to amount hp, never past max, and returns what was restored.
func (r *abilityResolver) heal(target *Combatant, amount int) int {
	hp := &target.Stats.HP
	if hp.Current+amount > hp.Max {
		amount = max(0, hp.Max-hp.Current)
	}
	hp.Current += amount
	r.say("%s recovers %d points of damage.", target.Name, amount)
	return amount
}

var enchantments = map[Ability]struct {
	flag Status
	line string
}{
	Regen:   {Regened, "%s begins to regenerate."},
	Refresh: {Refreshed, "%s is refreshed."},
	Protect: {Protected, "%s is protected."},
	Haste:   {Hasted, "%s speeds up."},
	Sleep:   {Slept, "%s falls asleep."},
	Blink:   {Blinked, "%s casts a shadow."},
}

// enchant raises a status flag once; casting it again is unaffected.
func (r *abilityResolver) enchant(actor, target *Combatant, ability Ability) {
	e := enchantments[ability]
	if !target.Alive || r.board.Has(target.slot, e.flag) {
		r.say("%s is unaffected.", target.Name)
		return
	}
	r.board.Set(target.slot, e.flag)
	actor.Telemetry.Karma += abilityKarma[ability]
	r.say(e.line, target.Name)
}

func (r *abilityResolver) record(actor, target *Combatant, out Outcome) {
	actor.Telemetry.DamageDealt += out.Damage
	target.Telemetry.DamageReceived += out.Damage
	actor.Telemetry.HealingDealt += out.Healing
	if actor.Faction == target.Faction {
		actor.Telemetry.Whoopsie += out.Damage
	} else {
		actor.Telemetry.Whoopsie += out.Healing
	}
}
