package battle

// GaugeThreshold is the gauge value at which a combatant acts.
const GaugeThreshold = 100

type pick int

const (
	picked pick = iota
	stalled
	interrupted
)

// scheduler implements the turn gauge: combatants accumulate speed every
// tick and act once their gauge reaches the threshold.
type scheduler struct {
	roster    *Roster
	board     *StatusBoard
	mortality *mortality
}

// next returns the next actor. When nobody is ready it ticks time forward,
// calling interrupt after each tick so the caller can stop on a terminal
// state. It reports stalled when no living combatant can ever act and no
// tick can bring the party down.
func (s *scheduler) next(interrupt func() bool) (*Combatant, pick) {
	for {
		for _, c := range s.roster.members {
			if !c.Alive || c.Stats.Gauge.Current < GaugeThreshold {
				continue
			}
			c.Stats.Gauge.Current -= GaugeThreshold
			if s.board.Has(c.slot, Slept) {
				continue
			}
			return c, picked
		}
		if !s.canProgress() {
			return nil, stalled
		}
		s.tick()
		if interrupt != nil && interrupt() {
			return nil, interrupted
		}
	}
}

// canProgress reports whether time can still change the outcome: some
// living, awake combatant gains gauge, or poison is wearing down a party
// that will not revive.
func (s *scheduler) canProgress() bool {
	for _, c := range s.roster.members {
		if c.Alive && !s.board.Has(c.slot, Slept) && s.speed(c) > 0 {
			return true
		}
	}
	return s.partyBleeding()
}

// partyBleeding reports whether a living party member loses hp every tick.
// Regen heals at least as much as poison takes.
func (s *scheduler) partyBleeding() bool {
	if s.roster.Rules(Party).AutoRevive {
		return false
	}
	for _, c := range s.roster.members {
		if c.Alive && c.Faction == Party && s.board.Has(c.slot, Poisoned) && !s.board.Has(c.slot, Regened) {
			return true
		}
	}
	return false
}

func (s *scheduler) speed(c *Combatant) int {
	spd := c.Stats.Spd.Value()
	if s.board.Has(c.slot, Hasted) {
		spd *= 2
	}
	return spd
}

// tick advances every living combatant by one step of time. Regen, refresh
// and poison apply silently; only deaths are narrated.
func (s *scheduler) tick() {
	for _, c := range s.roster.members {
		if !c.Alive {
			continue
		}
		c.Stats.Gauge.Current += s.speed(c)

		hp := &c.Stats.HP
		mp := &c.Stats.MP
		if s.board.Has(c.slot, Regened) && hp.Current < hp.Max {
			hp.Current = min(hp.Max, hp.Current+max(1, hp.Max/50))
		}
		if s.board.Has(c.slot, Refreshed) && mp.Current < mp.Max {
			mp.Current = min(mp.Max, mp.Current+max(1, mp.Max/25))
		}
		if s.board.Has(c.slot, Poisoned) {
			dmg := max(1, hp.Max/100)
			hp.Current -= dmg
			c.Telemetry.DamageReceived += dmg
		}
		s.mortality.check(c)
	}
}
