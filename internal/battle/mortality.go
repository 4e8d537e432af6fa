package battle

import "go.uber.org/zap"

type mortality struct {
	roster *Roster
	board  *StatusBoard
	narrator
	logger *zap.Logger
}

// check settles the death of c once per life. It reports whether c died.
func (m *mortality) check(c *Combatant) bool {
	if c == nil || !c.Alive || c.Stats.HP.Current > 0 {
		return false
	}
	c.Alive = false
	m.board.Uncover(c.slot)
	c.Telemetry.Deaths++
	m.say("%s has fallen.", c.Name)
	m.logger.Debug("combatant fell",
		zap.String("combatant", c.Name),
		zap.Int("slot", c.slot),
		zap.Stringer("faction", c.Faction),
	)

	if m.roster.Rules(c.Faction).AutoRevive {
		c.Alive = true
		c.Stats.HP.Current = c.Stats.HP.Max
		m.say("%s has risen.", c.Name)
	}
	return true
}
