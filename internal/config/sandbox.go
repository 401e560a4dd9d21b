package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM removes everything that reaches outside the VM: the os, io
// and debug libraries and every way to load more code. string, table and
// math stay available.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"os",
		"io",
		"debug",
		"require",
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"module",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("package", lua.LNil)
}

// newSandboxedVM returns a VM ready to evaluate a manifest.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}
