package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/platform"
	"github.com/install-release/ir/internal/release"
	"github.com/install-release/ir/internal/state"
)

// Parser evaluates Lua manifests against the current host.
type Parser struct {
	detector platform.Detector
	prober   platform.LibcProber
	logger   logging.Logger
}

// NewParser returns a parser. A nil detector skips the platform table, which
// leaves manifests that reference `platform` failing at runtime.
func NewParser(detector platform.Detector, prober platform.LibcProber, logger logging.Logger) *Parser {
	return &Parser{detector: detector, prober: prober, logger: logging.OrNop(logger)}
}

// ParseFile reads and parses the manifest at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return p.ParseString(ctx, string(data))
}

// ParseString parses manifest source held in memory.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Manifest, error) {
	for _, f := range DetectSensitiveData(luaCode) {
		p.logger.Warn("manifest may contain a credential", "line", f.Line, "kind", f.PatternName, "preview", f.Preview)
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		prober := p.prober
		if prober == nil {
			prober = platform.NewLddProber()
		}
		sig := platform.NewSignature(ctx, info, prober, p.logger)
		if err := platform.InjectPlatformTable(L, info, sig); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ParseError{Message: "Lua error", Detail: err.Error()}
	}

	m, err := p.extractManifest(L)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, &ParseError{Message: "invalid manifest", Detail: err.Error()}
	}
	return m, nil
}

// ParseError is a manifest or settings error with a friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Raw error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractManifest reads the global `ir` table.
func (p *Parser) extractManifest(L *lua.LState) (*Manifest, error) {
	root, ok := L.GetGlobal(luaGlobalIR).(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "missing or invalid 'ir' table",
			Detail:  fmt.Sprintf("expected table, got %s", L.GetGlobal(luaGlobalIR).Type()),
		}
	}

	m := &Manifest{}
	tools, ok := root.RawGetString(luaFieldTools).(*lua.LTable)
	if !ok {
		return m, nil
	}

	var entryErr error
	tools.ForEach(func(key, value lua.LValue) {
		if entryErr != nil {
			return
		}
		switch v := value.(type) {
		case lua.LString:
			// Bare URL shorthand.
			url := string(v)
			m.Tools = append(m.Tools, ToolSpec{URL: url, Name: release.RepoName(url)})
		case *lua.LTable:
			spec, err := extractTool(v)
			if err != nil {
				entryErr = &ParseError{Message: fmt.Sprintf("invalid tool entry %s", key.String()), Detail: err.Error()}
				return
			}
			m.Tools = append(m.Tools, spec)
		default:
			// nil from platform.when and other non-entries
			if value != lua.LNil {
				p.logger.Warn("skipping manifest entry", "index", key.String(), "type", value.Type().String())
			}
		}
	})
	if entryErr != nil {
		return nil, entryErr
	}
	return m, nil
}

func extractTool(t *lua.LTable) (ToolSpec, error) {
	var spec ToolSpec

	url, err := stringField(t, luaFieldURL)
	if err != nil {
		return spec, err
	}
	spec.URL = url

	if spec.Name, err = stringField(t, luaFieldName); err != nil {
		return spec, err
	}
	if spec.Name == "" {
		spec.Name = release.RepoName(spec.URL)
	}

	if spec.Tag, err = stringField(t, luaFieldTag); err != nil {
		return spec, err
	}

	switch v := t.RawGetString(luaFieldHold).(type) {
	case lua.LBool:
		spec.Hold = bool(v)
	case *lua.LNilType:
	default:
		return spec, fmt.Errorf("%s must be a boolean, got %s", luaFieldHold, v.Type())
	}

	method, err := stringField(t, luaFieldMethod)
	if err != nil {
		return spec, err
	}
	spec.Method = state.InstallMethod(method)

	switch v := t.RawGetString(luaFieldWords).(type) {
	case lua.LString:
		spec.Words = strings.Fields(string(v))
	case *lua.LTable:
		v.ForEach(func(_, w lua.LValue) {
			if s, ok := w.(lua.LString); ok && strings.TrimSpace(string(s)) != "" {
				spec.Words = append(spec.Words, string(s))
			}
		})
	case *lua.LNilType:
	default:
		return spec, fmt.Errorf("%s must be a list of strings, got %s", luaFieldWords, v.Type())
	}

	return spec, nil
}

func stringField(t *lua.LTable, field string) (string, error) {
	switch v := t.RawGetString(field).(type) {
	case lua.LString:
		return strings.TrimSpace(string(v)), nil
	case *lua.LNilType:
		return "", nil
	default:
		return "", fmt.Errorf("%s must be a string, got %s", field, v.Type())
	}
}

// FormatError formats an error for display. Verbose output keeps the raw
// Lua traceback.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
