package asset

import (
	"errors"
	"testing"

	"github.com/install-release/ir/internal/platform"
	"github.com/install-release/ir/internal/release"
)

func assets(names ...string) []release.Asset {
	out := make([]release.Asset, 0, len(names))
	for _, n := range names {
		out = append(out, release.Asset{Name: n, DownloadURL: "https://dl.test/" + n})
	}
	return out
}

var ripgrepAssets = assets(
	"ripgrep-14.1.1-aarch64-unknown-linux-gnu.tar.gz",
	"ripgrep-14.1.1-x86_64-apple-darwin.tar.gz",
	"ripgrep-14.1.1-x86_64-pc-windows-msvc.zip",
	"ripgrep-14.1.1-x86_64-unknown-linux-gnu.tar.gz",
	"ripgrep-14.1.1-x86_64-unknown-linux-musl.tar.gz",
	"ripgrep-14.1.1-x86_64-unknown-linux-musl.tar.gz.sha256",
	"ripgrep_14.1.1-1_amd64.deb",
)

func TestSelect_PicksBestForHost(t *testing.T) {
	releases := []release.Release{{TagName: "14.1.1", Assets: ripgrepAssets}}

	tests := []struct {
		name string
		sig  platform.Signature
		want string
	}{
		{"glibc host prefers gnu", linuxGlibc, "ripgrep-14.1.1-x86_64-unknown-linux-gnu.tar.gz"},
		{"musl host prefers musl", linuxMusl, "ripgrep-14.1.1-x86_64-unknown-linux-musl.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSelector(tt.sig, nil).Select(releases, "https://github.com/BurntSushi/ripgrep", Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Asset.Name != tt.want {
				t.Errorf("Select() = %q, want %q", got.Asset.Name, tt.want)
			}
			if got.Release.TagName != "14.1.1" {
				t.Errorf("Release.TagName = %q", got.Release.TagName)
			}
		})
	}
}

func TestSelect_FirstEligibleRelease(t *testing.T) {
	releases := []release.Release{
		{TagName: "v3.0.0-rc1", Prerelease: true, Assets: assets("tool-linux-amd64.tar.gz")},
		{TagName: "v2.1.0"},
		{TagName: "v2.0.0", Assets: assets("tool-2.0.0-linux-amd64.tar.gz", "tool-2.0.0-darwin-arm64.tar.gz")},
		{TagName: "v1.0.0", Assets: assets("tool-1.0.0-linux-x86_64-amd64.tar.gz")},
	}

	got, err := NewSelector(linuxGlibc, nil).Select(releases, "repo", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Release.TagName != "v2.0.0" {
		t.Errorf("selected release %q, want v2.0.0", got.Release.TagName)
	}
	if got.Asset.Name != "tool-2.0.0-linux-amd64.tar.gz" {
		t.Errorf("selected asset %q from the wrong release", got.Asset.Name)
	}

	got, err = NewSelector(linuxGlibc, nil).Select(releases, "repo", Options{AllowPrerelease: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Release.TagName != "v3.0.0-rc1" {
		t.Errorf("with prereleases allowed selected %q, want v3.0.0-rc1", got.Release.TagName)
	}
}

func TestSelect_NoReleases(t *testing.T) {
	tests := []struct {
		name     string
		releases []release.Release
	}{
		{"nil", nil},
		{"only prereleases", []release.Release{{TagName: "v1-rc", Prerelease: true, Assets: assets("a.tar.gz")}}},
		{"only empty", []release.Release{{TagName: "v1"}, {TagName: "v0"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSelector(linuxGlibc, nil).Select(tt.releases, "repo", Options{})
			if !errors.Is(err, ErrNoReleasesFound) {
				t.Errorf("expected ErrNoReleasesFound, got %v", err)
			}
		})
	}
}

func TestSelect_SingleCandidateAlwaysWins(t *testing.T) {
	releases := []release.Release{{TagName: "v1", Assets: assets("installer-windows.msi")}}

	got, err := NewSelector(linuxGlibc, nil).Select(releases, "repo", Options{})
	if err != nil {
		t.Fatalf("lone asset must be returned unconditionally: %v", err)
	}
	if got.Asset.Name != "installer-windows.msi" {
		t.Errorf("Select() = %q", got.Asset.Name)
	}
	if got.Score >= DefaultMinScore {
		t.Errorf("test asset should score under the threshold, got %v", got.Score)
	}
}

func TestSelect_BelowThreshold(t *testing.T) {
	releases := []release.Release{{TagName: "v1", Assets: assets("notes.md", "tool-windows.exe", "tool-darwin.zip")}}

	_, err := NewSelector(linuxGlibc, nil).Select(releases, "repo", Options{})
	if !errors.Is(err, ErrNoSuitableAsset) {
		t.Fatalf("expected ErrNoSuitableAsset, got %v", err)
	}
	if errors.Is(err, ErrNoReleasesFound) {
		t.Error("no-suitable-asset must be distinct from no-releases")
	}
}

func TestSelect_MinScoreOverride(t *testing.T) {
	// "tool-amd64.tar.gz" scores (3+3+2)/22, about 0.36.
	releases := []release.Release{{TagName: "v1", Assets: assets("tool-amd64.tar.gz", "notes.md")}}

	if _, err := NewSelector(linuxGlibc, nil).Select(releases, "repo", Options{}); err != nil {
		t.Fatalf("unexpected error with default threshold: %v", err)
	}
	_, err := NewSelector(linuxGlibc, nil).Select(releases, "repo", Options{MinScore: 0.5})
	if !errors.Is(err, ErrNoSuitableAsset) {
		t.Errorf("expected ErrNoSuitableAsset with MinScore 0.5, got %v", err)
	}
}

func TestSelect_ExactWordsWinWhenAdjustmentsDisabled(t *testing.T) {
	wanted := "tool-linux-x86_64.tar.gz"
	releases := []release.Release{{TagName: "v1", Assets: assets(
		"tool-amd64-x64-linux.tar.gz",
		wanted,
	)}}
	words := TokenList(wanted)

	sel := NewSelector(linuxGlibc, nil)

	got, err := sel.Select(releases, "repo", Options{ExtraWords: words, DisableAdjustments: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != wanted {
		t.Errorf("superset match should win, got %q", got.Asset.Name)
	}

	got, err = sel.Select(releases, "repo", Options{ExtraWords: words})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != "tool-amd64-x64-linux.tar.gz" {
		t.Errorf("with adjustments on the top score should win, got %q", got.Asset.Name)
	}
}

func TestSelect_ExactWordsFallBackToTop(t *testing.T) {
	releases := []release.Release{{TagName: "v1", Assets: assets(
		"tool-linux-amd64.tar.gz",
		"tool-linux-arm64.tar.gz",
	)}}

	got, err := NewSelector(linuxGlibc, nil).Select(releases, "repo", Options{
		ExtraWords:         []string{"nonexistent"},
		DisableAdjustments: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != "tool-linux-amd64.tar.gz" {
		t.Errorf("Select() = %q, want top candidate", got.Asset.Name)
	}
}

func TestSelect_PackageTypeFilter(t *testing.T) {
	releases := []release.Release{{TagName: "v1", Assets: assets(
		"bat-v0.24.0-x86_64-unknown-linux-gnu.tar.gz",
		"bat_0.24.0_amd64.deb",
		"bat_0.24.0_arm64.deb",
		"bat-0.24.0-1.x86_64.rpm",
	)}}
	sel := NewSelector(linuxGlibc, nil)

	got, err := sel.Select(releases, "repo", Options{PackageType: platform.PackageDeb})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != "bat_0.24.0_amd64.deb" {
		t.Errorf("Select() = %q, want amd64 deb", got.Asset.Name)
	}

	got, err = sel.Select(releases, "repo", Options{PackageType: platform.PackageRPM})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Asset.Name != "bat-0.24.0-1.x86_64.rpm" {
		t.Errorf("Select() = %q, want rpm", got.Asset.Name)
	}

	_, err = sel.Select(releases, "repo", Options{PackageType: platform.PackageAppImage})
	if !errors.Is(err, ErrNoSuitableAsset) {
		t.Errorf("expected ErrNoSuitableAsset when no asset has the package type, got %v", err)
	}
}

func TestRank_StableTies(t *testing.T) {
	s := NewScorer(NewWeightTable(linuxGlibc, nil), false)
	got := Rank(s, assets("b-linux.tar.gz", "a-linux.tar.gz", "c-linux-amd64.tar.gz"))

	want := []string{"c-linux-amd64.tar.gz", "b-linux.tar.gz", "a-linux.tar.gz"}
	for i, w := range want {
		if got[i].Asset.Name != w {
			t.Errorf("rank[%d] = %q, want %q", i, got[i].Asset.Name, w)
		}
	}
}

func TestSelect_Properties(t *testing.T) {
	sel := NewSelector(linuxGlibc, nil)

	tests := []struct {
		name   string
		assets []string
		opts   Options
		want   string
	}{
		{"sole asset", []string{"tool-unknown.bin"}, Options{}, "tool-unknown.bin"},
		{"linux over windows", []string{"tool-linux-amd64.tar.gz", "tool-windows-amd64.zip"}, Options{}, "tool-linux-amd64.tar.gz"},
		{
			name:   "explicit version word",
			assets: []string{"app-v1-linux.tar.gz", "app-v2-linux.tar.gz"},
			opts:   Options{ExtraWords: []string{"v2"}, DisableAdjustments: true},
			want:   "app-v2-linux.tar.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sel.Select([]release.Release{{TagName: "v1", Assets: assets(tt.assets...)}}, "repo", tt.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Asset.Name != tt.want {
				t.Errorf("Select() = %q, want %q", got.Asset.Name, tt.want)
			}
		})
	}
}

func TestScore_OSTokenStrictlyHelps(t *testing.T) {
	s := NewScorer(NewWeightTable(linuxGlibc, nil), false)
	with := s.Score("tool-linux-arm.tar.gz")
	without := s.Score("tool-arm.tar.gz")
	if with <= without {
		t.Errorf("OS token should raise the score: with=%v without=%v", with, without)
	}
}
