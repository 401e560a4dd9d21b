// Package asset chooses which file of a release to install on this host.
//
// A WeightTable turns the host Signature and any caller-supplied words into a
// ladder of weighted patterns. A Scorer rates a filename against the table
// in [0,1], and the Selector applies that to a release list.
//
// The weights encode how decisive each signal is: an OS mismatch makes a
// binary unrunnable, an arch mismatch nearly so, everything else breaks ties.
package asset

import (
	"regexp"
	"strings"

	"github.com/install-release/ir/internal/platform"
)

// Pattern weights.
const (
	WeightOS        = 5.0
	WeightArch      = 3.0
	WeightLibc      = 2.0
	WeightArchive   = 2.0
	WeightExtraWord = 2.0
)

// DefaultMinScore is the score below which a candidate is not considered,
// unless it is the only candidate.
const DefaultMinScore = 0.2

// archivePattern matches common archive extensions anywhere in a filename.
const archivePattern = `(tar|zip|gz|bz2|xz|7z)`

// PatternKind says how a Pattern is matched.
type PatternKind int

const (
	// PatternPlain matches by substring.
	PatternPlain PatternKind = iota
	// PatternRegex matches by regular expression search.
	PatternRegex
)

// Pattern is one weighted entry of a WeightTable.
type Pattern struct {
	Text   string
	Weight float64
	Kind   PatternKind

	re *regexp.Regexp
}

// matches reports whether the lowercased name contains the pattern.
func (p Pattern) matches(lowerName string) bool {
	if p.Kind == PatternRegex {
		return p.re.MatchString(lowerName)
	}
	return strings.Contains(lowerName, p.Text)
}

// WeightTable is the ordered set of patterns a filename is scored against.
// It is immutable once built.
type WeightTable struct {
	patterns []Pattern
	total    float64
	glibc    bool
}

var archiveRe = regexp.MustCompile(archivePattern)

// NewWeightTable builds the pattern ladder for a host and extra words.
// Empty extra words are ignored; all text is lowercased.
func NewWeightTable(sig platform.Signature, extraWords []string) *WeightTable {
	t := &WeightTable{glibc: sig.Glibc}

	if sig.OS != "" {
		t.add(Pattern{Text: strings.ToLower(sig.OS), Weight: WeightOS})
	}
	for _, alias := range sig.ArchAliases {
		t.add(Pattern{Text: strings.ToLower(alias), Weight: WeightArch})
	}
	if !sig.Glibc {
		t.add(Pattern{Text: "musl", Weight: WeightLibc})
	}
	t.add(Pattern{Text: archivePattern, Weight: WeightArchive, Kind: PatternRegex, re: archiveRe})
	for _, w := range extraWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		t.add(Pattern{Text: w, Weight: WeightExtraWord})
	}

	return t
}

func (t *WeightTable) add(p Pattern) {
	t.patterns = append(t.patterns, p)
	t.total += p.Weight
}

// Total returns the sum of all registered weights.
func (t *WeightTable) Total() float64 {
	return t.total
}

// Patterns returns a copy of the registered patterns in ladder order.
func (t *WeightTable) Patterns() []Pattern {
	return append([]Pattern(nil), t.patterns...)
}

// Glibc reports whether the table was built for a glibc host.
func (t *WeightTable) Glibc() bool {
	return t.glibc
}

// matched sums the weights of every pattern found in lowerName.
func (t *WeightTable) matched(lowerName string) float64 {
	var sum float64
	for _, p := range t.patterns {
		if p.matches(lowerName) {
			sum += p.Weight
		}
	}
	return sum
}
