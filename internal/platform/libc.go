package platform

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner runs an external program and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner runs the command on the host.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// LddProber detects glibc by inspecting `ldd --version`.
// glibc's ldd prints "GNU libc" or "GLIBC"; musl's ldd prints "musl libc"
// and exits non-zero, so the output is checked even when the command fails.
type LddProber struct {
	Run     CommandRunner
	Timeout time.Duration
}

// NewLddProber returns a prober that shells out to ldd.
func NewLddProber() *LddProber {
	return &LddProber{Run: execRunner, Timeout: 5 * time.Second}
}

// IsGlibc implements LibcProber.
func (p *LddProber) IsGlibc(ctx context.Context) bool {
	run := p.Run
	if run == nil {
		run = execRunner
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	out, _ := run(ctx, "ldd", "--version")
	lower := strings.ToLower(string(out))
	return strings.Contains(lower, "glibc") || strings.Contains(lower, "gnu")
}

// StaticProber is a LibcProber with a fixed answer.
type StaticProber bool

func (s StaticProber) IsGlibc(context.Context) bool { return bool(s) }
