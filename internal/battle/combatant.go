package battle

import "fmt"

// Faction partitions the roster into the two sides of an encounter.
type Faction int

const (
	Party Faction = iota
	Opposition
)

func (f Faction) String() string {
	switch f {
	case Party:
		return "party"
	case Opposition:
		return "opposition"
	default:
		return fmt.Sprintf("Faction(%d)", int(f))
	}
}

// Opponent returns the other faction.
func (f Faction) Opponent() Faction {
	if f == Party {
		return Opposition
	}
	return Party
}

// ParseFaction accepts "party" or "opposition".
func ParseFaction(value string) (Faction, error) {
	switch value {
	case "party":
		return Party, nil
	case "opposition":
		return Opposition, nil
	default:
		return Party, fmt.Errorf("faction %q is not supported", value)
	}
}

// Stat is a bounded numeric attribute. Matched stats always report Max.
type Stat struct {
	Current int
	Max     int
	Matched bool
}

// NewStat returns a stat filled to max.
func NewStat(limit int) Stat {
	return Stat{Current: limit, Max: limit}
}

// Value is what formulas and sensors read.
func (s Stat) Value() int {
	if s.Matched {
		return s.Max
	}
	return s.Current
}

// Stat names as they appear in the stat catalog.
const (
	StatHP    = "hp"
	StatMP    = "mp"
	StatStr   = "str"
	StatDex   = "dex"
	StatVit   = "vit"
	StatWil   = "wil"
	StatInt   = "int"
	StatLvl   = "lvl"
	StatSpd   = "spd"
	StatGauge = "turn"
)

// StatNames lists every stat a combatant carries.
func StatNames() []string {
	return []string{StatHP, StatMP, StatStr, StatDex, StatVit, StatWil, StatInt, StatLvl, StatSpd, StatGauge}
}

// Stats is the full stat block of a combatant.
type Stats struct {
	HP    Stat
	MP    Stat
	Str   Stat
	Dex   Stat
	Vit   Stat
	Wil   Stat
	Int   Stat
	Lvl   Stat
	Spd   Stat
	Gauge Stat
}

// ByName returns a pointer to the named stat.
func (s *Stats) ByName(name string) (*Stat, bool) {
	switch name {
	case StatHP:
		return &s.HP, true
	case StatMP:
		return &s.MP, true
	case StatStr:
		return &s.Str, true
	case StatDex:
		return &s.Dex, true
	case StatVit:
		return &s.Vit, true
	case StatWil:
		return &s.Wil, true
	case StatInt:
		return &s.Int, true
	case StatLvl:
		return &s.Lvl, true
	case StatSpd:
		return &s.Spd, true
	case StatGauge:
		return &s.Gauge, true
	default:
		return nil, false
	}
}

// Attributes are the maxima a stat block is built from.
type Attributes struct {
	HP  int
	MP  int
	Str int
	Dex int
	Vit int
	Wil int
	Int int
	Lvl int
	Spd int
}

// Stats builds a full stat block with an empty turn gauge.
func (a Attributes) Stats() Stats {
	return Stats{
		HP:    NewStat(a.HP),
		MP:    NewStat(a.MP),
		Str:   NewStat(a.Str),
		Dex:   NewStat(a.Dex),
		Vit:   NewStat(a.Vit),
		Wil:   NewStat(a.Wil),
		Int:   NewStat(a.Int),
		Lvl:   NewStat(a.Lvl),
		Spd:   NewStat(a.Spd),
		Gauge: Stat{Max: GaugeThreshold},
	}
}

// Telemetry is the per-encounter record of what a combatant did.
type Telemetry struct {
	Casts          map[Ability]int
	DamageDealt    int
	DamageReceived int
	HealingDealt   int
	Whoopsie       int
	Deaths         int
	Karma          int
}

// Clone returns a deep copy.
func (t Telemetry) Clone() Telemetry {
	out := t
	out.Casts = make(map[Ability]int, len(t.Casts))
	for k, v := range t.Casts {
		out.Casts[k] = v
	}
	return out
}

// Combatant is a single participant in an encounter.
type Combatant struct {
	ID        string
	Name      string
	Faction   Faction
	Stats     Stats
	Alive     bool
	Brain     DecisionSource
	Telemetry Telemetry

	slot int
}

// NewCombatant returns a living combatant with full stats.
func NewCombatant(id, name string, faction Faction, attrs Attributes, brain DecisionSource) *Combatant {
	return &Combatant{
		ID:        id,
		Name:      name,
		Faction:   faction,
		Stats:     attrs.Stats(),
		Alive:     true,
		Brain:     brain,
		Telemetry: Telemetry{Casts: map[Ability]int{}},
	}
}

// Slot is the combatant's stable index in its roster.
func (c *Combatant) Slot() int {
	return c.slot
}

func (c *Combatant) restore() {
	c.Stats.HP.Current = c.Stats.HP.Max
	c.Stats.MP.Current = c.Stats.MP.Max
	c.Stats.Gauge.Current = 0
	c.Alive = true
}

func (c *Combatant) resetTelemetry() {
	c.Telemetry = Telemetry{Casts: map[Ability]int{}}
}
