package battle

// StatCatalog says which stats are reported at max and which are exposed to
// decision sources.
type StatCatalog interface {
	// Exposed lists the stats written into the sensor vector, in order.
	Exposed() []string
	// IsMatched reports whether the named stat always reads as its max.
	IsMatched(name string) bool
}

// DefaultCatalog exposes every stat except the turn gauge and matches the
// attributes that never change during an encounter.
var DefaultCatalog StatCatalog = defaultCatalog{}

type defaultCatalog struct{}

func (defaultCatalog) Exposed() []string {
	return []string{StatHP, StatMP, StatStr, StatDex, StatVit, StatWil, StatInt, StatLvl, StatSpd}
}

func (defaultCatalog) IsMatched(name string) bool {
	switch name {
	case StatStr, StatDex, StatVit, StatWil, StatInt, StatLvl, StatSpd:
		return true
	default:
		return false
	}
}
