// Package luastate creates the Lua states used for scenarios and policies.
//
// Scripts get the base, string, table, math and bit32 libraries. The io, os,
// package and debug libraries are left out, as are dofile and loadfile, so a
// script cannot touch the filesystem or the process. Calls made through
// State.CallContext stop when their context ends or the instruction budget
// runs out.
package luastate

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shopify/go-lua"
)

// DefaultBudget is the number of instructions one Call may execute.
const DefaultBudget = 20_000_000

// hookInterval is how many instructions run between limit checks.
const hookInterval = 1000

// ErrBudgetExceeded is returned when a call runs out of instructions.
var ErrBudgetExceeded = errors.New("lua instruction budget exceeded")

var libraries = []lua.RegistryFunction{
	{Name: "_G", Function: lua.BaseOpen},
	{Name: "string", Function: lua.StringOpen},
	{Name: "table", Function: lua.TableOpen},
	{Name: "math", Function: lua.MathOpen},
	{Name: "bit32", Function: lua.Bit32Open},
}

var removedGlobals = []string{"dofile", "loadfile"}

// State is a restricted Lua state with bounded calls.
type State struct {
	*lua.State

	budget int
	ctx    context.Context
	used   int
	err    error
}

// New returns a state with the restricted standard library loaded and the
// default instruction budget.
func New() *State {
	return NewWithBudget(DefaultBudget)
}

// NewWithBudget is New with an explicit per-call instruction budget. A
// budget of zero or less leaves only the context bound.
func NewWithBudget(budget int) *State {
	state := lua.NewState()
	for _, lib := range libraries {
		lua.Require(state, lib.Name, lib.Function, true)
		state.Pop(1)
	}
	for _, name := range removedGlobals {
		state.PushNil()
		state.SetGlobal(name)
	}
	s := &State{State: state, budget: budget}
	s.arm(hookInterval)
	return s
}

// CallContext is ProtectedCall bounded by ctx and a fresh instruction
// budget. It returns ctx.Err() without calling when ctx has already ended.
func (s *State) CallContext(ctx context.Context, argCount, resultCount int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.ctx, s.used, s.err = ctx, 0, nil
	err := s.ProtectedCall(argCount, resultCount, 0)
	stopped := s.err
	s.ctx, s.err = nil, nil
	s.arm(hookInterval)
	if stopped != nil {
		return fmt.Errorf("lua stopped: %w", stopped)
	}
	return err
}

func (s *State) arm(count int) {
	lua.SetDebugHook(s.State, s.hook, lua.MaskCount, count)
}

// hook raises a Lua error once a limit trips. After that it fires on every
// instruction so a pcall inside the script cannot swallow the stop.
func (s *State) hook(state *lua.State, _ lua.Debug) {
	if s.ctx == nil {
		return
	}
	if s.err == nil {
		s.used += hookInterval
		switch {
		case s.ctx.Err() != nil:
			s.err = s.ctx.Err()
		case s.budget > 0 && s.used > s.budget:
			s.err = ErrBudgetExceeded
		default:
			return
		}
		s.arm(1)
	}
	lua.Errorf(state, "%s", s.err.Error())
}
