package asset

import (
	"strings"
)

const (
	muslPenalty  = 0.7
	glibcBonus   = 1.1
	nonBinaryMul = 0.5
)

// nonBinarySuffixes are extensions of files published next to binaries that
// are never the thing to install.
var nonBinarySuffixes = []string{
	".dbg", ".json", ".jsonl", ".spdx", ".txt", ".yaml", ".yml",
	".md", ".snap", ".sha256sum", ".sig", ".msi", ".exe",
}

// Scorer rates filenames against a WeightTable.
type Scorer struct {
	table *WeightTable

	// DisableAdjustments skips the libc and non-binary multipliers so the
	// score reflects pattern matches only.
	DisableAdjustments bool
}

// NewScorer creates a Scorer for table.
func NewScorer(table *WeightTable, disableAdjustments bool) *Scorer {
	return &Scorer{table: table, DisableAdjustments: disableAdjustments}
}

// Score returns the match quality of name in [0,1]. Matching is
// case-insensitive.
func (s *Scorer) Score(name string) float64 {
	lower := strings.ToLower(name)

	var score float64
	if total := s.table.Total(); total > 0 {
		score = s.table.matched(lower) / total
	}

	if !s.DisableAdjustments {
		score = s.adjust(score, lower)
	}

	return clamp(score)
}

func (s *Scorer) adjust(score float64, lower string) float64 {
	if s.table.Glibc() {
		switch {
		case strings.Contains(lower, "musl"):
			score *= muslPenalty
		case strings.Contains(lower, "glibc") || strings.Contains(lower, "gnu"):
			score *= glibcBonus
		}
	}

	if isNonBinary(lower) {
		score *= nonBinaryMul
	}
	return score
}

func isNonBinary(lower string) bool {
	if strings.Contains(lower, "debug") {
		return true
	}
	for _, suffix := range nonBinarySuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
