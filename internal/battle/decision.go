package battle

import "context"

// Decision is what a DecisionSource asks for: an ability and a raw target
// slot. The target is repaired before use, so any integer is acceptable.
type Decision struct {
	Ability Ability
	Target  int
}

// DecisionSource chooses actions for combatants and learns how they fared.
//
// A source may serve several combatants; ReportFitness names the combatant.
// Errors abort the encounter.
type DecisionSource interface {
	ChooseAction(ctx context.Context, sensors []float64) (Decision, error)
	ReportFitness(ctx context.Context, combatantID string, fitness float64) error
}
