package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug/info/warn/error(msg)
//	engine.dice.roll(expr) -> total, or nil on a bad expression
//	engine.dice.intn(n) -> [0, n)
//	engine.moves.get(id) -> table or nil
//	engine.types.effectiveness(attack, {defend...}) -> multiplier
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "moves", m.movesModule(L))
	L.SetField(engine, "types", m.typesModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		result, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			m.logger.Warn("scripting: bad dice expression", zap.Error(err))
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(result.Total()))
		return 1
	}))
	L.SetField(mod, "intn", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be positive")
			return 0
		}
		L.Push(lua.LNumber(m.roller.Intn(n)))
		return 1
	}))
	return mod
}

func (m *Manager) movesModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.LookupMove == nil {
			L.Push(lua.LNil)
			return 1
		}
		info, ok := m.LookupMove(id)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		t.RawSetString("id", lua.LString(info.ID))
		t.RawSetString("type", lua.LString(info.Type))
		t.RawSetString("category", lua.LString(strings.ToLower(info.Category)))
		t.RawSetString("power", lua.LNumber(info.Power))
		t.RawSetString("accuracy", lua.LNumber(info.Accuracy))
		t.RawSetString("priority", lua.LNumber(info.Priority))
		L.Push(t)
		return 1
	}))
	return mod
}

func (m *Manager) typesModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "effectiveness", L.NewFunction(func(L *lua.LState) int {
		attack := L.CheckString(1)
		defend := stringList(L.CheckTable(2))
		if m.Effectiveness == nil {
			L.Push(lua.LNumber(1))
			return 1
		}
		L.Push(lua.LNumber(m.Effectiveness(attack, defend)))
		return 1
	}))
	return mod
}

func stringList(t *lua.LTable) []string {
	var out []string
	t.ForEach(func(_, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}
