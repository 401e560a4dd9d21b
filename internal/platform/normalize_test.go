package platform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"amd64", "amd64", true},
		{"x86_64", "amd64", true},
		{"X86_64", "amd64", true},
		{"arm64", "arm64", true},
		{"aarch64", "arm64", true},
		{"i386", "", false},
		{"riscv64", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := normalizeArch(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("normalizeArch(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestArchFamily(t *testing.T) {
	tests := []struct {
		name   string
		arch   string
		want   []string
		wantOK bool
	}{
		{"goarch amd64", "amd64", []string{"x86", "x64", "amd64", "amd", "x86_64"}, true},
		{"uname x86_64", "x86_64", []string{"x86", "x64", "amd64", "amd", "x86_64"}, true},
		{"goarch arm64", "arm64", []string{"arm64", "aarch64", "arm"}, true},
		{"uname aarch64", "aarch64", []string{"arm64", "aarch64", "arm"}, true},
		{"unknown", "mips64", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ArchFamily(tt.arch)
			if ok != tt.wantOK {
				t.Fatalf("ArchFamily(%q) ok = %v, want %v", tt.arch, ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ArchFamily(%q) mismatch (-want +got):\n%s", tt.arch, diff)
			}
		})
	}
}

func TestArchFamily_ReturnsCopy(t *testing.T) {
	a, _ := ArchFamily("amd64")
	a[0] = "mutated"
	b, _ := ArchFamily("amd64")
	if b[0] != "x86" {
		t.Errorf("ArchFamily shares its backing array, got %q", b[0])
	}
}

func TestWordSize(t *testing.T) {
	tests := map[string]string{
		"amd64": "64bit",
		"arm64": "64bit",
		"386":   "32bit",
		"arm":   "32bit",
	}
	for arch, want := range tests {
		if got := wordSize(arch); got != want {
			t.Errorf("wordSize(%q) = %q, want %q", arch, got, want)
		}
	}
}

func TestPreferredPackageType(t *testing.T) {
	tests := []struct {
		name string
		info *Info
		want string
	}{
		{"nil", nil, ""},
		{"darwin", &Info{OS: "darwin"}, ""},
		{"ubuntu", &Info{OS: "linux", Family: FamilyDebian}, PackageDeb},
		{"fedora", &Info{OS: "linux", Family: FamilyFedora}, PackageRPM},
		{"rhel", &Info{OS: "linux", Family: FamilyRHEL}, PackageRPM},
		{"suse", &Info{OS: "linux", Family: FamilySUSE}, PackageRPM},
		{"arch", &Info{OS: "linux", Family: FamilyArch}, PackageAppImage},
		{"unknown distro", &Info{OS: "linux"}, PackageAppImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PreferredPackageType(tt.info); got != tt.want {
				t.Errorf("PreferredPackageType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapFamily(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debian", FamilyDebian},
		{"Ubuntu", FamilyDebian},
		{"  rhel  ", FamilyRHEL},
		{"almalinux", FamilyRHEL},
		{"opensuse", FamilySUSE},
		{"manjaro", FamilyArch},
		{"nixos", FamilyUnknown},
		{"", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := mapFamily(tt.input); got != tt.want {
				t.Errorf("mapFamily(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
