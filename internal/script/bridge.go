package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/splicerope/internal/rope"
)

// ropeModule is the global name of the rope table.
const ropeModule = "rope"

// registerRope installs the rope table bound to r.
func registerRope(L *lua.LState, r *rope.Rope) {
	b := &bridge{r: r}
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"size":      b.size,
		"slice":     b.slice,
		"set_slice": b.setSlice,
		"text":      b.text,
		"stats":     b.stats,
		"validate":  b.validate,
	})
	L.SetGlobal(ropeModule, mod)
}

// bridge adapts rope methods to Lua calling conventions.
type bridge struct {
	r *rope.Rope
}

func (b *bridge) size(L *lua.LState) int {
	L.Push(lua.LNumber(b.r.Size()))
	return 1
}

func (b *bridge) slice(L *lua.LState) int {
	pos := L.CheckInt(1)
	n := L.CheckInt(2)
	got, err := b.r.Slice(pos, n)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(got))
	return 1
}

func (b *bridge) setSlice(L *lua.LState) int {
	pos := L.CheckInt(1)
	n := L.CheckInt(2)
	str := L.CheckString(3)
	if err := b.r.SetSliceString(str, pos, n); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (b *bridge) text(L *lua.LState) int {
	L.Push(lua.LString(b.r.String()))
	return 1
}

func (b *bridge) stats(L *lua.LState) int {
	st := b.r.Stats()
	t := L.NewTable()
	t.RawSetString("size", lua.LNumber(st.Size))
	t.RawSetString("depth", lua.LNumber(st.Depth))
	t.RawSetString("leaves", lua.LNumber(st.Leaves))
	t.RawSetString("internal", lua.LNumber(st.Internal))
	t.RawSetString("empty", lua.LNumber(st.EmptyLeaves))
	L.Push(t)
	return 1
}

func (b *bridge) validate(L *lua.LState) int {
	if err := b.r.Validate(); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}
