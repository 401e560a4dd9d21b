package asset

import (
	"math"
	"testing"

	"github.com/install-release/ir/internal/platform"
)

var (
	linuxGlibc = platform.Signature{
		OS:          "linux",
		WordSize:    "64bit",
		ArchAliases: []string{"x86", "x64", "amd64", "amd", "x86_64"},
		Glibc:       true,
	}
	linuxMusl = platform.Signature{
		OS:          "linux",
		WordSize:    "64bit",
		ArchAliases: []string{"x86", "x64", "amd64", "amd", "x86_64"},
	}
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestNewWeightTable_Total(t *testing.T) {
	tests := []struct {
		name  string
		sig   platform.Signature
		words []string
		want  float64
	}{
		{"glibc host", linuxGlibc, nil, 5 + 5*3 + 2},
		{"musl host adds libc token", linuxMusl, nil, 5 + 5*3 + 2 + 2},
		{"extra words", linuxGlibc, []string{"ripgrep", "static"}, 5 + 5*3 + 2 + 2*2},
		{"blank extra words ignored", linuxGlibc, []string{"", "  "}, 5 + 5*3 + 2},
		{"unknown arch", platform.Signature{OS: "linux", Glibc: true}, nil, 5 + 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWeightTable(tt.sig, tt.words).Total()
			if !approxEqual(got, tt.want) {
				t.Errorf("Total() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewWeightTable_LadderOrder(t *testing.T) {
	table := NewWeightTable(linuxMusl, []string{"Tool"})
	patterns := table.Patterns()

	want := []struct {
		text   string
		weight float64
		kind   PatternKind
	}{
		{"linux", WeightOS, PatternPlain},
		{"x86", WeightArch, PatternPlain},
		{"x64", WeightArch, PatternPlain},
		{"amd64", WeightArch, PatternPlain},
		{"amd", WeightArch, PatternPlain},
		{"x86_64", WeightArch, PatternPlain},
		{"musl", WeightLibc, PatternPlain},
		{archivePattern, WeightArchive, PatternRegex},
		{"tool", WeightExtraWord, PatternPlain},
	}
	if len(patterns) != len(want) {
		t.Fatalf("got %d patterns, want %d", len(patterns), len(want))
	}
	for i, w := range want {
		p := patterns[i]
		if p.Text != w.text || p.Weight != w.weight || p.Kind != w.kind {
			t.Errorf("pattern[%d] = {%q %v %v}, want {%q %v %v}", i, p.Text, p.Weight, p.Kind, w.text, w.weight, w.kind)
		}
	}
}

func TestScorer_Score(t *testing.T) {
	const total = 22.0

	tests := []struct {
		name    string
		sig     platform.Signature
		file    string
		disable bool
		want    float64
	}{
		{
			name: "gnu bonus on glibc",
			sig:  linuxGlibc,
			file: "ripgrep-14.1.1-x86_64-unknown-linux-gnu.tar.gz",
			want: 13 / total * 1.1,
		},
		{
			name: "musl penalty on glibc",
			sig:  linuxGlibc,
			file: "ripgrep-14.1.1-x86_64-unknown-linux-musl.tar.gz",
			want: 13 / total * 0.7,
		},
		{
			name: "musl preferred on musl host",
			sig:  linuxMusl,
			file: "ripgrep-14.1.1-x86_64-unknown-linux-musl.tar.gz",
			want: 15.0 / 24.0,
		},
		{
			name: "no glibc bonus on musl host",
			sig:  linuxMusl,
			file: "ripgrep-14.1.1-x86_64-unknown-linux-gnu.tar.gz",
			want: 13.0 / 24.0,
		},
		{
			name: "case insensitive",
			sig:  linuxGlibc,
			file: "Tool-LINUX-AMD64.TAR.GZ",
			want: (5 + 3 + 3 + 2) / total,
		},
		{
			name: "wrong os",
			sig:  linuxGlibc,
			file: "ripgrep-14.1.1-x86_64-apple-darwin.tar.gz",
			want: (3 + 3 + 2) / total,
		},
		{
			name: "non-binary suffix halves",
			sig:  linuxGlibc,
			file: "tool-linux-amd64.sbom.spdx",
			want: (5 + 3 + 3) / total * 0.5,
		},
		{
			name: "debug substring halves",
			sig:  linuxGlibc,
			file: "tool-linux-amd64-debug.tar.gz",
			want: (5 + 3 + 3 + 2) / total * 0.5,
		},
		{
			name: "both multipliers",
			sig:  linuxGlibc,
			file: "tool-linux-gnu.sha256sum",
			want: 5 / total * 1.1 * 0.5,
		},
		{
			name:    "adjustments disabled",
			sig:     linuxGlibc,
			file:    "tool-linux-amd64-musl.txt",
			disable: true,
			want:    (5 + 3 + 3) / total,
		},
		{
			name: "clamped to one",
			sig:  linuxGlibc,
			file: "tool-linux-x86_64-x64-amd64-gnu.tar.gz",
			want: 1,
		},
		{
			name: "nothing matches",
			sig:  linuxGlibc,
			file: "README",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(NewWeightTable(tt.sig, nil), tt.disable)
			got := s.Score(tt.file)
			if !approxEqual(got, tt.want) {
				t.Errorf("Score(%q) = %v, want %v", tt.file, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Score(%q) = %v out of [0,1]", tt.file, got)
			}
		})
	}
}

func TestScorer_ZeroTotal(t *testing.T) {
	s := NewScorer(&WeightTable{}, false)
	if got := s.Score("tool-linux-amd64.tar.gz"); got != 0 {
		t.Errorf("Score() with empty table = %v, want 0", got)
	}
}

func TestScorer_ExtraWords(t *testing.T) {
	s := NewScorer(NewWeightTable(linuxGlibc, []string{"static"}), false)
	plain := s.Score("tool-linux-amd64.tar.gz")
	static := s.Score("tool-linux-amd64-static.tar.gz")
	if static <= plain {
		t.Errorf("extra word should raise score: static=%v plain=%v", static, plain)
	}
}

func TestScorer_MonotonicInMatches(t *testing.T) {
	s := NewScorer(NewWeightTable(linuxGlibc, nil), true)
	names := []string{
		"tool",
		"tool.tar.gz",
		"tool-amd64.tar.gz",
		"tool-linux-amd64.tar.gz",
		"tool-linux-x86_64-amd64.tar.gz",
	}
	prev := -1.0
	for _, n := range names {
		got := s.Score(n)
		if got <= prev {
			t.Errorf("Score(%q) = %v, expected more than %v", n, got, prev)
		}
		prev = got
	}
}
