package battle

import (
	"github.com/louisbranch/partybattle/internal/core/dice"
)

// Target is a repaired target choice.
type Target struct {
	// Intended is the legal slot chosen before cover redirection.
	Intended int
	// Slot is the slot the ability lands on.
	Slot int
	// Redirected is set when a coverer stepped in.
	Redirected bool
}

type targetResolver struct {
	roster *Roster
	board  *StatusBoard
	rng    dice.Source
}

// resolve turns a raw slot into a legal target. It reports false when the
// legal pool has no living member, in which case the ability fizzles.
func (r *targetResolver) resolve(actor *Combatant, ability Ability, raw int) (Target, bool) {
	if !ability.UsesTarget() {
		return Target{Intended: actor.slot, Slot: actor.slot}, true
	}

	if r.roster.Rules(actor.Faction).RandomTargets {
		foes := r.roster.Slots(actor.Faction.Opponent())
		if idx, err := dice.Pick(r.rng, len(foes)); err == nil {
			raw = foes[idx]
		}
	}

	poolFaction := actor.Faction
	if ability.Hostile() {
		poolFaction = actor.Faction.Opponent()
	}
	slot, ok := r.legal(r.roster.Slots(poolFaction), raw)
	if !ok {
		return Target{}, false
	}
	t := Target{Intended: slot, Slot: slot}

	if ability.Hostile() {
		if c, covered := r.board.CoveredBy(slot); covered {
			coverer := r.roster.At(c)
			switch {
			case !coverer.Alive:
				r.board.release(slot)
			case coverer.Stats.HP.Current > 0 && !r.board.Has(c, Slept):
				t.Slot = c
				t.Redirected = true
			}
		}
	}

	if ability != Sleep && r.board.Has(t.Slot, Slept) {
		r.board.Clear(t.Slot, Slept)
		r.roster.At(t.Slot).Stats.Gauge.Current = 0
	}
	return t, true
}

// legal keeps raw when it is a living pool member, otherwise scans the pool
// forward from raw mod len(pool), wrapping once.
func (r *targetResolver) legal(pool []int, raw int) (int, bool) {
	n := len(pool)
	if n == 0 {
		return 0, false
	}
	for _, slot := range pool {
		if slot == raw && r.roster.At(slot).Alive {
			return slot, true
		}
	}
	k := raw % n
	if k < 0 {
		k += n
	}
	for i := 0; i < n; i++ {
		slot := pool[(k+i)%n]
		if r.roster.At(slot).Alive {
			return slot, true
		}
	}
	return 0, false
}
