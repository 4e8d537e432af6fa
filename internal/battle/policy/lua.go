package policy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/partybattle/internal/battle"
	"github.com/louisbranch/partybattle/internal/platform/luastate"
)

const (
	chooseFunction  = "choose"
	fitnessFunction = "fitness"
)

// ErrMissingChoose is returned when a policy script defines no choose
// function.
var ErrMissingChoose = errors.New("lua policy must define choose(sensors)")

// Lua runs a decision script. The script defines a global
// choose(sensors) returning an ability (code or name) and a raw target slot.
// Unknown codes and names idle. It may define fitness(id, value) to receive
// end-of-encounter fitness.
//
// Sensors are passed as a 1-based array. A single Lua state backs the
// policy, so calls are serialized. Each call is bounded by its context and
// the Lua instruction budget.
type Lua struct {
	mu    sync.Mutex
	state *luastate.State
	name  string
}

// NewLua compiles and runs source once so that its globals are defined.
func NewLua(name, source string) (*Lua, error) {
	state := luastate.New()
	if err := lua.LoadBuffer(state.State, source, name, ""); err != nil {
		return nil, fmt.Errorf("load lua policy %s: %w", name, err)
	}
	if err := state.CallContext(context.Background(), 0, 0); err != nil {
		return nil, fmt.Errorf("run lua policy %s: %w", name, err)
	}
	state.Global(chooseFunction)
	defined := state.IsFunction(-1)
	state.Pop(1)
	if !defined {
		return nil, fmt.Errorf("%s: %w", name, ErrMissingChoose)
	}
	return &Lua{state: state, name: name}, nil
}

// Name returns the chunk name the policy was loaded with.
func (p *Lua) Name() string { return p.name }

// ChooseAction implements battle.DecisionSource.
func (p *Lua) ChooseAction(ctx context.Context, sensors []float64) (battle.Decision, error) {
	if err := ctx.Err(); err != nil {
		return battle.Decision{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.state
	state.SetTop(0)
	state.Global(chooseFunction)
	state.CreateTable(len(sensors), 0)
	for i, value := range sensors {
		state.PushNumber(value)
		state.RawSetInt(-2, i+1)
	}
	if err := state.CallContext(ctx, 1, 2); err != nil {
		state.SetTop(0)
		return battle.Decision{}, fmt.Errorf("lua policy %s choose: %w", p.name, err)
	}
	defer state.SetTop(0)

	ability, err := luaAbility(state.State, -2)
	if err != nil {
		return battle.Decision{}, fmt.Errorf("lua policy %s choose: %w", p.name, err)
	}
	target := 0
	if state.TypeOf(-1) == lua.TypeNumber {
		value, _ := state.ToNumber(-1)
		target = int(math.Floor(value))
	}
	return battle.Decision{Ability: ability, Target: target}, nil
}

// ReportFitness calls fitness(id, value) when the script defines it.
func (p *Lua) ReportFitness(ctx context.Context, combatantID string, fitness float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.state
	state.SetTop(0)
	state.Global(fitnessFunction)
	if !state.IsFunction(-1) {
		state.SetTop(0)
		return nil
	}
	state.PushString(combatantID)
	state.PushNumber(fitness)
	if err := state.CallContext(ctx, 2, 0); err != nil {
		state.SetTop(0)
		return fmt.Errorf("lua policy %s fitness: %w", p.name, err)
	}
	return nil
}

func luaAbility(state *lua.State, index int) (battle.Ability, error) {
	switch state.TypeOf(index) {
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return battle.Ability(int(math.Floor(value))), nil
	case lua.TypeString:
		name, _ := state.ToString(index)
		ability, err := battle.AbilityByName(name)
		if err != nil {
			return battle.Idle, nil
		}
		return ability, nil
	case lua.TypeNil, lua.TypeNone:
		return battle.Idle, nil
	default:
		return battle.Idle, fmt.Errorf("ability must be a number or name, got %s", lua.TypeNameOf(state, index))
	}
}
