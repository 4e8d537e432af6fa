package battle

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/louisbranch/partybattle/internal/core/dice"
)

type scriptedBrain struct {
	decisions []Decision
	next      int
	err       error
	sensors   [][]float64
	fitness   map[string]float64
}

func (b *scriptedBrain) ChooseAction(_ context.Context, sensors []float64) (Decision, error) {
	b.sensors = append(b.sensors, sensors)
	if b.err != nil {
		return Decision{}, b.err
	}
	if len(b.decisions) == 0 {
		return Decision{Ability: Idle}, nil
	}
	d := b.decisions[b.next%len(b.decisions)]
	b.next++
	return d, nil
}

func (b *scriptedBrain) ReportFitness(_ context.Context, id string, fitness float64) error {
	if b.fitness == nil {
		b.fitness = map[string]float64{}
	}
	b.fitness[id] = fitness
	return nil
}

var baseAttrs = Attributes{HP: 100, MP: 100, Str: 10, Dex: 10, Vit: 10, Wil: 10, Int: 10, Lvl: 1, Spd: 10}

func withAttrs(mutate func(*Attributes)) Attributes {
	a := baseAttrs
	if mutate != nil {
		mutate(&a)
	}
	return a
}

func hero(name string, attrs Attributes) *Combatant {
	return NewCombatant(name, name, Party, attrs, &scriptedBrain{})
}

func monster(name string, attrs Attributes) *Combatant {
	return NewCombatant(name, name, Opposition, attrs, &scriptedBrain{})
}

type fixture struct {
	roster    *Roster
	board     *StatusBoard
	rng       *dice.Script
	journal   *Journal
	targets   *targetResolver
	abilities *abilityResolver
	mortality *mortality
	scheduler *scheduler
}

// newFixture wires the encounter components directly. Party-side random
// targeting and revival are turned off so tests pick their own targets.
func newFixture(t *testing.T, rolls []int, members ...*Combatant) *fixture {
	t.Helper()
	roster, err := NewRoster(members...)
	if err != nil {
		t.Fatalf("new roster: %v", err)
	}
	roster.SetRules(Opposition, FactionRules{})
	roster.applyCatalog(DefaultCatalog)

	f := &fixture{
		roster:  roster,
		board:   NewStatusBoard(roster.Len()),
		rng:     &dice.Script{Values: rolls},
		journal: &Journal{},
	}
	n := narrator{sink: f.journal}
	f.mortality = &mortality{roster: roster, board: f.board, narrator: n, logger: zap.NewNop()}
	f.targets = &targetResolver{roster: roster, board: f.board, rng: f.rng}
	f.abilities = &abilityResolver{roster: roster, board: f.board, rng: f.rng, narrator: n}
	f.scheduler = &scheduler{roster: roster, board: f.board, mortality: f.mortality}
	return f
}

// act resolves ability from actor on a legal target slot, bypassing repair.
func (f *fixture) act(actor *Combatant, ability Ability, target *Combatant) Outcome {
	return f.abilities.resolve(actor, Target{Intended: target.slot, Slot: target.slot}, ability)
}

func contains(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}
