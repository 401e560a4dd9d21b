// Package release fetches release metadata from source forges.
//
// A Provider lists the releases of one repository, newest first, in a
// forge-neutral shape. GitHub and GitLab are supported; the Factory picks
// the implementation from the repository URL.
package release

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnsupportedRepo is returned for repository URLs no provider handles.
	ErrUnsupportedRepo = errors.New("unsupported repository")

	// ErrUnparseableTimestamp is returned when a publish time is in none of
	// the accepted layouts.
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
)

// Release is one published release of a repository.
type Release struct {
	RepoURL     string
	Name        string
	TagName     string
	Prerelease  bool
	PublishedAt string // as reported by the forge
	Assets      []Asset
}

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name          string `json:"name"`
	DownloadURL   string `json:"browser_download_url"`
	Size          int64  `json:"size,omitempty"`
	DownloadCount int    `json:"download_count,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
}

// SizeMB returns the asset size in megabytes.
func (a Asset) SizeMB() float64 {
	return float64(a.Size) / 1000000.0
}

// RepoInfo is the repository summary shown before an install.
type RepoInfo struct {
	Name        string
	FullName    string
	HTMLURL     string
	Description string
	Language    string
	Stars       int
}

// Provider lists releases for a single repository.
type Provider interface {
	// Releases returns releases newest first. With a non-empty tag only that
	// release is returned. A missing tag or repository yields an empty
	// slice, not an error. Prereleases are dropped unless includePrerelease.
	Releases(ctx context.Context, tag string, includePrerelease bool) ([]Release, error)

	// Info returns the repository summary.
	Info(ctx context.Context) (*RepoInfo, error)
}

// RateLimitError is returned when a forge API rate limit is exhausted.
type RateLimitError struct {
	Forge     string
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s API rate limit exceeded (%d remaining, resets at %s)",
		e.Forge, e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}
