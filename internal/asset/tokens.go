package asset

import (
	"strings"
	"unicode"
)

// ignoredTokens carry no identity: "v" is a version prefix and "unknown"
// is the vendor field of target triples.
var ignoredTokens = map[string]struct{}{
	"v":       {},
	"unknown": {},
}

// Tokenize splits names on non-alphanumeric runes, lowercases the pieces and
// drops ignored tokens. The result is a set.
func Tokenize(names ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range names {
		fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, f := range fields {
			if _, skip := ignoredTokens[f]; skip {
				continue
			}
			set[f] = struct{}{}
		}
	}
	return set
}

// TokenList returns the tokens of name in order of first appearance.
func TokenList(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := ignoredTokens[f]; skip {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
