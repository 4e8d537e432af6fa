package battle

import "math"

// FitnessInput is what a fitness function sees for one combatant.
type FitnessInput struct {
	Turns          int
	OpposingDeaths int
	Telemetry      Telemetry
}

// FitnessFunc scores a combatant after an encounter.
type FitnessFunc func(FitnessInput) float64

// DefaultFitness is turns + opposing deaths + karma + (damage + healing) per
// turn, truncated and floored at 0.
func DefaultFitness(in FitnessInput) float64 {
	f := float64(in.Turns + in.OpposingDeaths + in.Telemetry.Karma)
	if in.Turns > 0 {
		f += float64(in.Telemetry.DamageDealt+in.Telemetry.HealingDealt) / float64(in.Turns)
	}
	return math.Max(0, math.Trunc(f))
}
