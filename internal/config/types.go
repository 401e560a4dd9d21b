package config

import (
	"fmt"
	"strings"

	"github.com/install-release/ir/internal/release"
	"github.com/install-release/ir/internal/state"
)

// Manifest is a parsed Lua tool manifest.
type Manifest struct {
	Tools []ToolSpec
}

// ToolSpec is one entry of ir.tools.
type ToolSpec struct {
	URL    string
	Name   string
	Tag    string
	Hold   bool
	Words  []string
	Method state.InstallMethod
}

// Validate checks the manifest for problems that would stop every tool.
func (m *Manifest) Validate() error {
	if len(m.Tools) > MaxToolCount {
		return &ValidationError{
			Field:   luaFieldTools,
			Message: fmt.Sprintf("too many tools (%d), maximum is %d", len(m.Tools), MaxToolCount),
		}
	}

	seen := make(map[string]int, len(m.Tools))
	for i, t := range m.Tools {
		field := fmt.Sprintf("tools[%d]", i+1)
		if err := t.validate(); err != nil {
			return &ValidationError{Field: field, Message: err.Error()}
		}
		key := t.Key().String()
		if prev, ok := seen[key]; ok {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate of tools[%d] (%s)", prev, key),
			}
		}
		seen[key] = i + 1
	}
	return nil
}

func (t ToolSpec) validate() error {
	if t.URL == "" {
		return fmt.Errorf("url is required")
	}
	if _, err := release.ParseRepoURL(t.URL); err != nil {
		return err
	}
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.Contains(t.Name, "#") || strings.ContainsAny(t.Name, `/\`) {
		return fmt.Errorf("invalid tool name %q", t.Name)
	}
	for _, s := range append([]string{t.URL, t.Name, t.Tag}, t.Words...) {
		if len(s) > maxFieldLen {
			return fmt.Errorf("value too long (%d chars, max %d)", len(s), maxFieldLen)
		}
	}
	switch t.Method {
	case "", state.MethodBinary, state.MethodPackage:
	default:
		return fmt.Errorf("unknown method %q", t.Method)
	}
	return nil
}

// Key returns the state key the entry maps to.
func (t ToolSpec) Key() state.Key {
	return state.NewKey(t.URL, t.Name)
}

// Record converts an entry into the record shape the merger compares
// against local state. Only fields the manifest can express are set.
func (t ToolSpec) Record() state.ToolRecord {
	return state.ToolRecord{
		URL:                t.URL,
		Name:               t.Name,
		TagName:            t.Tag,
		HoldUpdate:         t.Hold,
		InstallMethod:      t.Method,
		CustomReleaseWords: t.Words,
	}
}

// ToDocument converts the manifest into a state document.
func (m *Manifest) ToDocument() state.Document {
	doc := make(state.Document, len(m.Tools))
	for _, t := range m.Tools {
		doc[t.Key().String()] = t.Record()
	}
	return doc
}

// ValidationError reports an invalid manifest field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "manifest validation failed for " + e.Field + ": " + e.Message
	}
	return "manifest validation failed: " + e.Message
}
