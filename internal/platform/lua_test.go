package platform

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable_Linux(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:       "linux",
		Arch:     "amd64",
		ArchRaw:  "amd64",
		Platform: "ubuntu",
		Family:   "debian",
		Version:  "22.04",
	}
	sig := Signature{OS: "linux", WordSize: "64bit", Glibc: true}

	if err := InjectPlatformTable(L, info, sig); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
		want lua.LValue
	}{
		{"os", `return platform.os`, lua.LString("linux")},
		{"arch", `return platform.arch`, lua.LString("amd64")},
		{"word_size", `return platform.word_size`, lua.LString("64bit")},
		{"glibc", `return platform.glibc`, lua.LTrue},
		{"package_type", `return platform.package_type`, lua.LString("deb")},
		{"is_linux", `return platform.is_linux`, lua.LTrue},
		{"is_macos", `return platform.is_macos`, lua.LFalse},
		{"is_amd64", `return platform.is_amd64`, lua.LTrue},
		{"distro.id", `return platform.distro.id`, lua.LString("ubuntu")},
		{"distro.version", `return platform.distro.version`, lua.LString("22.04")},
		{"is_debian_family", `return platform.is_debian_family`, lua.LTrue},
		{"is_rpm_family", `return platform.is_rpm_family`, lua.LFalse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("failed to execute code: %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)

			if got.Type() != tt.want.Type() {
				t.Errorf("type mismatch: got %v, want %v", got.Type(), tt.want.Type())
				return
			}
			if got.String() != tt.want.String() {
				t.Errorf("value mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInjectPlatformTable_MacOS(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{OS: "darwin", Arch: "arm64", ArchRaw: "arm64"}
	if err := InjectPlatformTable(L, info, Signature{OS: "darwin", WordSize: "64bit"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	if err := L.DoString(`return platform.distro == nil and platform.package_type == ""`); err != nil {
		t.Fatalf("failed to execute code: %v", err)
	}
	if got := L.Get(-1); got != lua.LTrue {
		t.Errorf("expected no distro and no package type on macOS, got %v", got)
	}
}

func TestPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64"}, Signature{}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
	}{
		{"modify existing", `platform.os = "windows"`},
		{"add new", `platform.custom = true`},
		{"replace metatable", `setmetatable(platform, {})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := L.DoString(tt.code)
			if err == nil {
				t.Fatal("expected error writing to platform table")
			}
		})
	}
}

func TestPlatformTable_WhenHelper(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "arm64"}, Signature{}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
		want string
	}{
		{"true condition", `return platform.when(platform.is_linux, "yes")`, "yes"},
		{"false condition", `return platform.when(platform.is_macos, "yes")`, "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("failed to execute code: %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)
			if got.String() != tt.want {
				t.Errorf("when() = %v, want %v", got, tt.want)
			}
		})
	}

	err := L.DoString(`return platform.when("not a bool", 1)`)
	if err == nil || !strings.Contains(err.Error(), "boolean") {
		t.Errorf("expected boolean argument error, got %v", err)
	}
}
