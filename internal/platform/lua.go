package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable exposes the host as a read-only global `platform`
// table so manifests can pick tools per OS, arch or distro.
// It must be called before the manifest code runs.
func InjectPlatformTable(L *lua.LState, info *Info, sig Signature) error {
	t := L.NewTable()

	L.SetField(t, "os", lua.LString(info.OS))
	L.SetField(t, "arch", lua.LString(info.Arch))
	L.SetField(t, "arch_raw", lua.LString(info.ArchRaw))
	L.SetField(t, "word_size", lua.LString(sig.WordSize))
	L.SetField(t, "glibc", lua.LBool(sig.Glibc))
	L.SetField(t, "package_type", lua.LString(PreferredPackageType(info)))

	L.SetField(t, "is_linux", lua.LBool(info.IsLinux()))
	L.SetField(t, "is_macos", lua.LBool(info.IsMacOS()))
	L.SetField(t, "is_windows", lua.LBool(info.IsWindows()))
	L.SetField(t, "is_amd64", lua.LBool(info.IsAMD64()))
	L.SetField(t, "is_arm64", lua.LBool(info.IsARM64()))

	if distro := info.GetDistro(); distro != nil {
		dt := L.NewTable()
		L.SetField(dt, "id", lua.LString(distro.ID))
		L.SetField(dt, "family", lua.LString(distro.Family))
		L.SetField(dt, "version", lua.LString(distro.Version))
		L.SetField(t, "distro", dt)
	} else {
		L.SetField(t, "distro", lua.LNil)
	}

	L.SetField(t, "is_debian_family", lua.LBool(info.IsDebianFamily()))
	L.SetField(t, "is_rpm_family", lua.LBool(info.IsRPMFamily()))
	L.SetField(t, "is_alpine", lua.LBool(info.IsAlpine()))

	// when(condition, value) returns value if condition is true, nil otherwise.
	L.SetField(t, "when", L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		if cond {
			L.Push(L.Get(2))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	L.SetGlobal("platform", makeReadOnly(L, t))
	return nil
}

// makeReadOnly wraps table in an empty proxy whose metatable redirects
// reads and rejects writes.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()
	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)
	return proxy
}
