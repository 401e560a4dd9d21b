// Package state persists the set of tools ir has installed.
//
// The whole collection is one JSON object keyed by "{repoURL}#{toolName}".
// It is loaded fully into memory and rewritten fully on every save. The store
// itself does not lock; AcquireLock guards the commands that mutate it.
package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/install-release/ir/internal/release"
)

var (
	// ErrMalformedKey is returned for keys that do not split into url#name.
	ErrMalformedKey = errors.New("malformed state key")

	// ErrCorruptState is returned when the state file cannot be parsed.
	// It is the only state error that should stop the process.
	ErrCorruptState = errors.New("corrupt state file")

	// ErrNotFound is returned when no tool matches a lookup.
	ErrNotFound = errors.New("tool not found")
)

// InstallMethod says how a tool was put on the system.
type InstallMethod string

const (
	MethodBinary  InstallMethod = "binary"
	MethodPackage InstallMethod = "package"
)

// Key identifies one installed tool. Repository URLs containing '#' are
// not supported: the name is everything after the last '#'.
type Key struct {
	URL  string
	Name string
}

// NewKey returns the key for a tool.
func NewKey(url, name string) Key {
	return Key{URL: url, Name: name}
}

// String renders the key as stored on disk.
func (k Key) String() string {
	return k.URL + "#" + k.Name
}

// ParseKey splits a stored key on its last '#'.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndex(s, "#")
	if i < 0 {
		return Key{}, fmt.Errorf("%w: %q has no '#'", ErrMalformedKey, s)
	}
	k := Key{URL: s[:i], Name: s[i+1:]}
	if k.URL == "" || k.Name == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return k, nil
}

// ToolRecord is the persisted record of one installed tool.
type ToolRecord struct {
	URL                string        `json:"url"`
	Name               string        `json:"name"`
	TagName            string        `json:"tag_name"`
	Prerelease         bool          `json:"prerelease,omitempty"`
	PublishedAt        string        `json:"published_at"`
	Asset              release.Asset `json:"asset"`
	HoldUpdate         bool          `json:"hold_update,omitempty"`
	InstallMethod      InstallMethod `json:"install_method,omitempty"`
	PackageType        string        `json:"package_type,omitempty"`
	CustomReleaseWords []string      `json:"custom_release_words,omitempty"`
}

// Key returns the record's key.
func (r ToolRecord) Key() Key {
	return NewKey(r.URL, r.Name)
}

// Method returns the install method, defaulting to binary for records
// written before the field existed.
func (r ToolRecord) Method() InstallMethod {
	if r.InstallMethod == "" {
		return MethodBinary
	}
	return r.InstallMethod
}

// Document maps stored keys to records.
type Document map[string]ToolRecord
