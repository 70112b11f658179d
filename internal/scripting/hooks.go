package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/monbattle/internal/game/battler"
	"github.com/cory-johannsen/monbattle/internal/game/data"
)

// ChooseMoveHook is the global function consulted for enemy move choice:
//
//	choose_enemy_move(self, foe, usable) -> move id or nil
const ChooseMoveHook = "choose_enemy_move"

// BindData wires engine.moves and engine.types to p.
//
// Precondition: p must be non-nil.
func (m *Manager) BindData(p data.Provider) {
	m.LookupMove = func(id string) (*MoveInfo, bool) {
		d, ok := p.Move(id)
		if !ok {
			return nil, false
		}
		return &MoveInfo{
			ID:       d.ID,
			Type:     d.Type,
			Category: d.Category.String(),
			Power:    d.Power,
			Accuracy: d.Accuracy,
			Priority: d.Priority,
		}, true
	}
	m.Effectiveness = p.Effectiveness
}

// Weight calls hook with the party as a list of combatant tables.
//
// Postcondition: ok is false when the hook is missing, fails, or returns a
// non-number; a negative result is clamped to 0.
func (m *Manager) Weight(hook string, party []*battler.Combatant) (int, bool) {
	if !m.HasHook(hook) {
		return 0, false
	}
	ret, err := m.call(hook, func(L *lua.LState) []lua.LValue {
		list := L.NewTable()
		for _, c := range party {
			list.Append(combatantTable(L, c))
		}
		return []lua.LValue{list}
	})
	if err != nil {
		return 0, false
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		m.logger.Warn("scripting: weight hook returned a non-number",
			zap.String("hook", hook),
			zap.String("type", ret.Type().String()),
		)
		return 0, false
	}
	return max(int(n), 0), true
}

// ChooseMove asks choose_enemy_move for self's move against foe.
//
// Postcondition: ok is true only when the hook returned one of usable.
func (m *Manager) ChooseMove(self, foe *battler.Combatant, usable []string) (string, bool) {
	if !m.HasHook(ChooseMoveHook) {
		return "", false
	}
	ret, err := m.call(ChooseMoveHook, func(L *lua.LState) []lua.LValue {
		ids := L.NewTable()
		for _, id := range usable {
			ids.Append(lua.LString(id))
		}
		return []lua.LValue{combatantTable(L, self), combatantTable(L, foe), ids}
	})
	if err != nil || ret == lua.LNil {
		return "", false
	}
	id := lua.LVAsString(ret)
	for _, u := range usable {
		if u == id {
			return id, true
		}
	}
	m.logger.Warn("scripting: enemy move hook chose an unusable move",
		zap.String("move", id),
		zap.Strings("usable", usable),
	)
	return "", false
}

// combatantTable is the read-only view of c handed to Lua.
func combatantTable(L *lua.LState, c *battler.Combatant) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(c.ID))
	t.RawSetString("species", lua.LString(c.Species))
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("level", lua.LNumber(c.Level))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP()))
	t.RawSetString("fainted", lua.LBool(c.Fainted()))
	t.RawSetString("status", lua.LString(c.Status.Effect.String()))

	types := L.NewTable()
	for _, ty := range c.Types {
		types.Append(lua.LString(ty))
	}
	t.RawSetString("types", types)

	moves := L.NewTable()
	for _, s := range c.Moves {
		if s.Move == "" {
			continue
		}
		slot := L.NewTable()
		slot.RawSetString("id", lua.LString(s.Move))
		slot.RawSetString("pp", lua.LNumber(s.PPLeft()))
		moves.Append(slot)
	}
	t.RawSetString("moves", moves)
	return t
}
