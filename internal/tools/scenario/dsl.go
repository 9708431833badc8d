package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a named list of steps loaded from a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scenario action with its Lua arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script that must return a Scenario.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	registerScenarioType(state)
	registerScenarioConstructor(state)
	registerEffectHelpers(state)
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

func registerEffectHelpers(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, effectHelpers, 0)
	state.SetGlobal("Effects")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

var effectHelpers = []lua.RegistryFunction{
	{Name: "add", Function: effectHelper("add")},
	{Name: "mul", Function: effectHelper("mul")},
	{Name: "set", Function: effectHelper("set")},
}

// effectHelper builds Effects.<op>(name, attr, value [, calls]).
func effectHelper(op string) lua.Function {
	return func(state *lua.State) int {
		name := lua.CheckString(state, 1)
		attr := lua.CheckString(state, 2)
		value := lua.CheckNumber(state, 3)
		calls := lua.OptInteger(state, 4, 1)
		state.NewTable()
		state.PushString(name)
		state.SetField(-2, "name")
		state.PushString(op)
		state.SetField(-2, "op")
		state.PushString(attr)
		state.SetField(-2, "attr")
		state.PushNumber(value)
		state.SetField(-2, "value")
		state.PushInteger(calls)
		state.SetField(-2, "calls")
		return 1
	}
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "subject", Function: scenarioSubject},
	{Name: "brew", Function: scenarioBrew},
	{Name: "combine", Function: binaryStep("combine")},
	{Name: "subtract", Function: binaryStep("subtract")},
	{Name: "scale", Function: scenarioScale},
	{Name: "split", Function: scenarioSplit},
	{Name: "consume", Function: scenarioConsume},
	{Name: "compare", Function: scenarioCompare},
	{Name: "apply", Function: scenarioApply},
	{Name: "tick", Function: scenarioTick},
	{Name: "forget", Function: scenarioForget},
	{Name: "expect", Function: scenarioExpect},
	{Name: "expect_absent", Function: scenarioExpectAbsent},
	{Name: "expect_potion", Function: scenarioExpectPotion},
	{Name: "expect_remaining", Function: scenarioExpectRemaining},
}

func scenarioSubject(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	attrs := optionalTable(state, 3)
	appendStep(scenario, "subject", map[string]any{"name": name, "attrs": attrs})
	return 0
}

func scenarioBrew(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	data["name"] = name
	appendStep(scenario, "brew", data)
	return 0
}

// binaryStep builds scene:<kind>(into, left, right [, opts]).
func binaryStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		data := optionalTable(state, 5)
		data["into"] = lua.CheckString(state, 2)
		data["left"] = lua.CheckString(state, 3)
		data["right"] = lua.CheckString(state, 4)
		appendStep(scenario, kind, data)
		return 0
	}
}

func scenarioScale(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 5)
	data["into"] = lua.CheckString(state, 2)
	data["potion"] = lua.CheckString(state, 3)
	data["factor"] = normalizeNumber(lua.CheckNumber(state, 4))
	appendStep(scenario, "scale", data)
	return 0
}

func scenarioSplit(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 5)
	data["into"] = lua.CheckString(state, 2)
	data["potion"] = lua.CheckString(state, 3)
	data["parts"] = lua.CheckInteger(state, 4)
	appendStep(scenario, "split", data)
	return 0
}

func scenarioConsume(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 4)
	data["potion"] = lua.CheckString(state, 2)
	data["effect"] = lua.CheckString(state, 3)
	appendStep(scenario, "consume", data)
	return 0
}

func scenarioCompare(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "compare", data)
	return 0
}

func scenarioApply(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 4)
	data["potion"] = lua.CheckString(state, 2)
	data["target"] = lua.CheckString(state, 3)
	appendStep(scenario, "apply", data)
	return 0
}

func scenarioTick(state *lua.State) int {
	scenario := checkScenario(state)
	count := lua.OptInteger(state, 2, 1)
	appendStep(scenario, "tick", map[string]any{"count": count})
	return 0
}

func scenarioForget(state *lua.State) int {
	scenario := checkScenario(state)
	data := optionalTable(state, 3)
	data["target"] = lua.CheckString(state, 2)
	appendStep(scenario, "forget", data)
	return 0
}

func scenarioExpect(state *lua.State) int {
	scenario := checkScenario(state)
	target := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	appendStep(scenario, "expect", map[string]any{"target": target, "attrs": tableToMap(state, 3)})
	return 0
}

func scenarioExpectAbsent(state *lua.State) int {
	scenario := checkScenario(state)
	target := lua.CheckString(state, 2)
	attr := lua.CheckString(state, 3)
	appendStep(scenario, "expect_absent", map[string]any{"target": target, "attr": attr})
	return 0
}

func scenarioExpectPotion(state *lua.State) int {
	scenario := checkScenario(state)
	name := lua.CheckString(state, 2)
	lua.CheckType(state, 3, lua.TypeTable)
	data := tableToMap(state, 3)
	data["potion"] = name
	appendStep(scenario, "expect_potion", data)
	return 0
}

func scenarioExpectRemaining(state *lua.State) int {
	scenario := checkScenario(state)
	handle := lua.CheckString(state, 2)
	data := map[string]any{"handle": handle}
	if state.IsNoneOrNil(3) {
		data["expired"] = true
	} else {
		data["remaining"] = lua.CheckInteger(state, 3)
	}
	appendStep(scenario, "expect_remaining", data)
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
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
	case lua.TypeUserData:
		return state.ToUserData(index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

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
				if idx > maxIndex {
					maxIndex = idx
				}
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
