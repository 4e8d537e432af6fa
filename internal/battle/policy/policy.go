// Package policy provides decision sources for encounters.
package policy

import (
	"context"
	"sync"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/core/dice"
)

// Idle always chooses Idle.
type Idle struct{}

// ChooseAction implements battle.DecisionSource.
func (Idle) ChooseAction(context.Context, []float64) (battle.Decision, error) {
	return battle.Decision{Ability: battle.Idle}, nil
}

// ReportFitness implements battle.DecisionSource.
func (Idle) ReportFitness(context.Context, string, float64) error { return nil }

// Random picks an ability from its action list and a target slot uniformly.
type Random struct {
	mu      sync.Mutex
	src     dice.Source
	actions []battle.Ability
	slots   int
}

// NewRandom builds a random policy over actions. An empty list means every
// ability in the catalog. slots bounds the raw target draw.
func NewRandom(src dice.Source, actions []battle.Ability, slots int) *Random {
	if len(actions) == 0 {
		actions = battle.Abilities()
	}
	if slots < 1 {
		slots = 1
	}
	return &Random{src: src, actions: actions, slots: slots}
}

// ChooseAction implements battle.DecisionSource.
func (r *Random) ChooseAction(ctx context.Context, _ []float64) (battle.Decision, error) {
	if err := ctx.Err(); err != nil {
		return battle.Decision{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return battle.Decision{
		Ability: r.actions[r.src.Intn(len(r.actions))],
		Target:  r.src.Intn(r.slots),
	}, nil
}

// ReportFitness implements battle.DecisionSource.
func (r *Random) ReportFitness(context.Context, string, float64) error { return nil }

// Cycle replays a fixed list of decisions, wrapping at the end.
type Cycle struct {
	mu        sync.Mutex
	decisions []battle.Decision
	next      int
}

// NewCycle returns a policy replaying decisions in order. An empty list
// idles.
func NewCycle(decisions ...battle.Decision) *Cycle {
	return &Cycle{decisions: decisions}
}

// ChooseAction implements battle.DecisionSource.
func (c *Cycle) ChooseAction(context.Context, []float64) (battle.Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.decisions) == 0 {
		return battle.Decision{Ability: battle.Idle}, nil
	}
	d := c.decisions[c.next%len(c.decisions)]
	c.next++
	return d, nil
}

// ReportFitness implements battle.DecisionSource.
func (c *Cycle) ReportFitness(context.Context, string, float64) error { return nil }

// ActionList translates decisions made against a combatant's own action
// list into catalog abilities. The inner source answers with an index into
// the list in Decision.Ability; out-of-range indices become Idle.
type ActionList struct {
	actions []battle.Ability
	inner   battle.DecisionSource
}

// NewActionList wraps inner with the given action list.
func NewActionList(actions []battle.Ability, inner battle.DecisionSource) *ActionList {
	list := make([]battle.Ability, len(actions))
	copy(list, actions)
	return &ActionList{actions: list, inner: inner}
}

// Actions returns a copy of the action list.
func (a *ActionList) Actions() []battle.Ability {
	out := make([]battle.Ability, len(a.actions))
	copy(out, a.actions)
	return out
}

// ChooseAction implements battle.DecisionSource.
func (a *ActionList) ChooseAction(ctx context.Context, sensors []float64) (battle.Decision, error) {
	d, err := a.inner.ChooseAction(ctx, sensors)
	if err != nil {
		return battle.Decision{}, err
	}
	index := int(d.Ability)
	if index < 0 || index >= len(a.actions) {
		d.Ability = battle.Idle
		return d, nil
	}
	d.Ability = a.actions[index]
	return d, nil
}

// ReportFitness forwards to the inner source.
func (a *ActionList) ReportFitness(ctx context.Context, combatantID string, fitness float64) error {
	return a.inner.ReportFitness(ctx, combatantID, fitness)
}
