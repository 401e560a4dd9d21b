package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   string
	goarch string
}

// NewDetector creates a detector for the running process.
func NewDetector() Detector {
	return &RealDetector{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// Detect uses runtime.GOOS and runtime.GOARCH for OS and architecture and
// gopsutil for Linux distribution details.
//
// An unrecognized architecture is not an error: it is reported raw and the
// Signature will simply carry no arch aliases for it. If gopsutil fails to
// detect the distribution the distro fields stay empty. A cancelled context
// is a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      d.goos,
		ArchRaw: d.goarch,
		Arch:    d.goarch,
	}
	if arch, ok := normalizeArch(d.goarch); ok {
		info.Arch = arch
	}

	if d.goos != "linux" {
		return info, nil
	}

	platform, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	platform = normalizePlatform(platform)
	if platform != "" {
		info.Platform = platform
		info.Family = mapFamily(family)
		if info.Family == FamilyUnknown {
			// gopsutil leaves family empty for some distros; the ID still maps.
			info.Family = mapFamily(platform)
		}
		info.Version = normalizePlatform(version)
	}

	return info, nil
}

// StaticDetector reports a fixed host.
type StaticDetector struct {
	Info *Info
}

// Detect returns a copy of the configured info.
func (d StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Info == nil {
		return nil, fmt.Errorf("static detector has no platform info")
	}
	info := *d.Info
	return &info, nil
}
