package scenario

import (
	"context"
	"math"

	"github.com/Shopify/go-lua"

	apperrors "github.com/louisbranch/partybattle/internal/platform/errors"
	"github.com/louisbranch/partybattle/internal/platform/luastate"
)

const scenarioTypeName = "partybattle.scenario"

func run(ctx context.Context, name, source string) (*Scenario, error) {
	state := luastate.New()
	registerScenarioType(state.State)
	registerScenarioConstructor(state.State)

	if err := lua.LoadBuffer(state.State, source, name, ""); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScenarioLoad, "load lua", err)
	}
	if err := state.CallContext(ctx, 0, 1); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScenarioLoad, "run lua", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, apperrors.New(apperrors.CodeScenarioInvalid, "scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	s, ok := ud.(*Scenario)
	if !ok || s == nil {
		return nil, apperrors.New(apperrors.CodeScenarioInvalid, "scenario script returned invalid Scenario")
	}
	return s, nil
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "seed", Function: scenarioSeed},
	{Name: "turn_cap", Function: scenarioTurnCap},
	{Name: "encounters", Function: scenarioEncounters},
	{Name: "party", Function: scenarioParty},
	{Name: "opposition", Function: scenarioOpposition},
	{Name: "rules", Function: scenarioRules},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

func scenarioSeed(state *lua.State) int {
	s := checkScenario(state)
	s.Seed = int64(lua.CheckInteger(state, 2))
	state.SetTop(1)
	return 1
}

func scenarioTurnCap(state *lua.State) int {
	s := checkScenario(state)
	s.TurnCap = lua.CheckInteger(state, 2)
	state.SetTop(1)
	return 1
}

func scenarioEncounters(state *lua.State) int {
	s := checkScenario(state)
	s.Encounters = lua.CheckInteger(state, 2)
	state.SetTop(1)
	return 1
}

func scenarioParty(state *lua.State) int {
	return declareMember(state, "party")
}

func scenarioOpposition(state *lua.State) int {
	return declareMember(state, "opposition")
}

func declareMember(state *lua.State, faction string) int {
	s := checkScenario(state)
	name := lua.CheckString(state, 2)
	args := optionalTable(state, 3)
	args["faction"] = faction
	s.decls = append(s.decls, declaration{kind: declMember, name: name, args: args})
	state.SetTop(1)
	return 1
}

func scenarioRules(state *lua.State) int {
	s := checkScenario(state)
	faction := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	s.decls = append(s.decls, declaration{kind: declRules, name: faction, args: tableToMap(state, 3)})
	state.SetTop(1)
	return 1
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if s, ok := ud.(*Scenario); ok && s != nil {
		return s
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

// tableToGo returns a []any for sequences and a map otherwise.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				maxIndex = max(maxIndex, idx)
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}
	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
