package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/1broseidon/wintile/internal/binding"
)

func (e *Engine) install() {
	L := e.L
	mt := L.NewTypeMetatable(actionTypeName)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkAction(L, 1).String()))
		return 1
	}))

	simple := map[string]binding.Kind{
		"close_tile":           binding.CloseTile,
		"ignore_tile":          binding.IgnoreTile,
		"minimize_tile":        binding.MinimizeTile,
		"reset_row":            binding.ResetRow,
		"reset_column":         binding.ResetColumn,
		"quit":                 binding.Quit,
		"toggle_floating_mode": binding.ToggleFloatingMode,
		"toggle_fullscreen":    binding.ToggleFullscreen,
		"toggle_work_mode":     binding.ToggleWorkMode,
	}
	for name, kind := range simple {
		kind := kind
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: kind})
		}))
	}

	funcs := map[string]lua.LGFunction{
		"launch": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.Launch, Command: L.CheckString(1)})
		},
		"change_workspace": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.ChangeWorkspace, ID: int32(L.CheckInt(1))})
		},
		"move_to_workspace": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.MoveToWorkspace, ID: int32(L.CheckInt(1))})
		},
		"move_workspace_to_monitor": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.MoveWorkspaceToMonitor, Monitor: int32(L.CheckInt(1))})
		},
		"increment_config": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.IncrementConfig, Field: L.CheckString(1), Value: int32(L.CheckInt(2))})
		},
		"decrement_config": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.DecrementConfig, Field: L.CheckString(1), Value: int32(L.CheckInt(2))})
		},
		"toggle_config": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.ToggleConfig, Field: L.CheckString(1)})
		},
		"focus": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.Focus, Direction: checkDirection(L, 1)})
		},
		"swap": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.Swap, Direction: checkDirection(L, 1)})
		},
		"resize": func(L *lua.LState) int {
			return pushAction(L, binding.Action{Kind: binding.Resize, Direction: checkDirection(L, 1), Amount: int32(L.CheckInt(2))})
		},
		"split": func(L *lua.LState) int {
			d, err := binding.ParseSplitDirection(L.CheckString(1))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			return pushAction(L, binding.Action{Kind: binding.Split, Split: d})
		},
		"callback": e.luaCallback,
		"bind":     e.luaBind,
	}
	for name, fn := range funcs {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

// luaCallback stores fn and returns a Callback action referring to it.
// Called with mu held, from inside DoFile or DoString.
func (e *Engine) luaCallback(L *lua.LState) int {
	fn := L.CheckFunction(1)
	e.callbacks = append(e.callbacks, fn)
	return pushAction(L, binding.Action{Kind: binding.Callback, CallbackID: len(e.callbacks) - 1})
}

// luaBind appends a keybinding. Called with mu held.
func (e *Engine) luaBind(L *lua.LState) int {
	chord, err := binding.ParseChord(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	a := checkAction(L, 2)
	e.bindings = append(e.bindings, binding.Keybinding{Chord: chord, Action: a})
	e.logger.Debug("script bound key", "chord", chord.String(), "action", a.String())
	return 0
}

func pushAction(L *lua.LState, a binding.Action) int {
	ud := L.NewUserData()
	ud.Value = a
	L.SetMetatable(ud, L.GetTypeMetatable(actionTypeName))
	L.Push(ud)
	return 1
}

func checkAction(L *lua.LState, n int) binding.Action {
	ud := L.CheckUserData(n)
	a, ok := ud.Value.(binding.Action)
	if !ok {
		L.ArgError(n, "action expected")
	}
	return a
}

func checkDirection(L *lua.LState, n int) binding.Direction {
	d, err := binding.ParseDirection(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return d
}
