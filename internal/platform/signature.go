package platform

import (
	"context"
	"strings"

	"github.com/install-release/ir/internal/logging"
)

// NewSignature builds the scoring signature for a detected host.
//
// An unrecognized architecture logs a warning and contributes no alias
// tokens, so an exotic host never matches every asset by accident.
func NewSignature(ctx context.Context, info *Info, prober LibcProber, logger logging.Logger) Signature {
	logger = logging.OrNop(logger)

	sig := Signature{
		OS:       strings.ToLower(info.OS),
		WordSize: wordSize(info.ArchRaw),
	}

	if aliases, ok := ArchFamily(info.ArchRaw); ok {
		sig.ArchAliases = aliases
	} else {
		logger.Warn("unrecognized architecture, asset scoring will ignore arch", "arch", info.ArchRaw)
	}

	if prober != nil {
		sig.Glibc = prober.IsGlibc(ctx)
	}

	logger.Debug("platform signature", "os", sig.OS, "word_size", sig.WordSize,
		"arch_aliases", strings.Join(sig.ArchAliases, ","), "glibc", sig.Glibc)
	return sig
}

// Words returns the OS and arch tokens of the signature.
func (s Signature) Words() []string {
	words := make([]string, 0, len(s.ArchAliases)+1)
	if s.OS != "" {
		words = append(words, s.OS)
	}
	return append(words, s.ArchAliases...)
}
