package battle

// Termination says why an encounter ended.
type Termination string

const (
	PartyDefeated Termination = "party_defeated"
	TurnCap       Termination = "turn_cap"
	Stalled       Termination = "stalled"
)

// Report is the record of a finished encounter, captured before stats reset.
type Report struct {
	EncounterID      string
	Turns            int
	Reason           Termination
	PartyDeaths      int
	OppositionDeaths int
	Combatants       []CombatantReport
}

// CombatantReport is a combatant's end-of-encounter state.
type CombatantReport struct {
	ID        string
	Name      string
	Slot      int
	Faction   Faction
	Alive     bool
	HP        int
	HPMax     int
	MP        int
	MPMax     int
	Status    Status
	Telemetry Telemetry
	Fitness   float64
}

// Faction returns the reports of one faction in slot order.
func (r Report) Faction(f Faction) []CombatantReport {
	var out []CombatantReport
	for _, c := range r.Combatants {
		if c.Faction == f {
			out = append(out, c)
		}
	}
	return out
}
