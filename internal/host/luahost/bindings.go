package luahost

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	lua "github.com/yuin/gopher-lua"
)

// register installs the console API into the state: a redirected print
// plus the console table.
func (h *Host) register(L *lua.LState) {
	L.SetGlobal("print", L.NewFunction(h.luaPrint))

	mod := L.NewTable()
	L.SetField(mod, "width", L.NewFunction(h.luaWidth))
	L.SetField(mod, "progress", L.NewFunction(h.luaProgress))
	L.SetField(mod, "clear", L.NewFunction(h.luaClear))
	L.SetField(mod, "writec", L.NewFunction(h.luaWritec))
	L.SetGlobal("console", mod)
}

// luaPrint mirrors Lua's print onto the console: tostring on every
// argument, tab separated, one line.
func (h *Host) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	if err := h.con.WriteLine(strings.Join(parts, "\t")); err != nil {
		L.RaiseError("print: %v", err)
	}
	return 0
}

func (h *Host) luaWidth(L *lua.LState) int {
	w, err := h.con.Width()
	if err != nil {
		L.RaiseError("width: %v", err)
	}
	L.Push(lua.LNumber(w))
	return 1
}

func (h *Host) luaProgress(L *lua.LState) int {
	label := L.CheckString(1)
	pct := L.CheckInt(2)
	if err := h.con.WriteProgress(label, pct); err != nil {
		L.RaiseError("progress: %v", err)
	}
	return 0
}

func (h *Host) luaClear(L *lua.LState) int {
	if err := h.con.ClearConsole(); err != nil {
		L.RaiseError("clear: %v", err)
	}
	return 0
}

func (h *Host) luaWritec(L *lua.LState) int {
	text := L.CheckString(1)
	fg := optColor(L, 2)
	bg := optColor(L, 3)
	if err := h.con.WriteColored(text, fg, bg); err != nil {
		L.RaiseError("writec: %v", err)
	}
	return 0
}

// optColor reads an optional hex color argument.
func optColor(L *lua.LState, n int) *colorful.Color {
	hex := L.OptString(n, "")
	if hex == "" {
		return nil
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		L.ArgError(n, "hex color expected")
		return nil
	}
	return &c
}
