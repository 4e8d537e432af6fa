package battle

// SensorLen is the length of the sensor vector for a roster and catalog.
func SensorLen(r *Roster, catalog StatCatalog) int {
	return 1 + r.Len()*len(catalog.Exposed())
}

// Sensors builds the vector handed to decision sources. Index 0 is reserved
// and always 0. Then, for each slot in order, each exposed stat's value, or 0
// for a dead combatant.
func Sensors(r *Roster, catalog StatCatalog) []float64 {
	exposed := catalog.Exposed()
	out := make([]float64, 1, SensorLen(r, catalog))
	for _, c := range r.members {
		for _, name := range exposed {
			v := 0.0
			if c.Alive {
				if s, ok := c.Stats.ByName(name); ok {
					v = float64(s.Value())
				}
			}
			out = append(out, v)
		}
	}
	return out
}
