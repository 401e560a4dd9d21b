package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/install-release/ir/internal/asset"
	"github.com/install-release/ir/internal/binary"
	"github.com/install-release/ir/internal/platform"
	"github.com/install-release/ir/internal/release"
	"github.com/install-release/ir/internal/state"
)

var linuxAMD64 = platform.Signature{
	OS:          "linux",
	WordSize:    "64bit",
	ArchAliases: []string{"x86", "x64", "amd64", "amd", "x86_64"},
	Glibc:       true,
}

type recordingLogger struct {
	warns []string
}

func (r *recordingLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (r *recordingLogger) Info(msg interface{}, keyvals ...interface{})  {}
func (r *recordingLogger) Warn(msg interface{}, keyvals ...interface{}) {
	r.warns = append(r.warns, msg.(string))
}
func (r *recordingLogger) Error(msg interface{}, keyvals ...interface{}) {}

type fakeProvider struct {
	releases []release.Release
	err      error
	delay    time.Duration
	calls    atomic.Int32
}

func (p *fakeProvider) Releases(ctx context.Context, tag string, _ bool) ([]release.Release, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	if tag == "" {
		return p.releases, nil
	}
	for _, r := range p.releases {
		if r.TagName == tag {
			return []release.Release{r}, nil
		}
	}
	return nil, nil
}

func (p *fakeProvider) Info(context.Context) (*release.RepoInfo, error) {
	return &release.RepoInfo{FullName: "owner/tool", Stars: 7, Language: "Go"}, nil
}

type fakeProviders map[string]*fakeProvider

func (f fakeProviders) For(url string) (release.Provider, error) {
	p, ok := f[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", release.ErrUnsupportedRepo, url)
	}
	return p, nil
}

type fakeMaterializer struct {
	t        *testing.T
	requests []binary.Request
	err      error
}

func (m *fakeMaterializer) Materialize(_ context.Context, req binary.Request) (*binary.Artifact, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	dir := m.t.TempDir()
	return &binary.Artifact{
		WorkDir:     dir,
		Download:    filepath.Join(dir, req.Asset.Name),
		Executable:  filepath.Join(dir, req.ToolName),
		PackageType: req.PackageType,
		Verified:    binary.VerificationSHA256,
	}, nil
}

type placeCall struct {
	name        string
	packageType string
}

type fakePlacer struct {
	placed  []placeCall
	removed []placeCall
	err     error
}

func (p *fakePlacer) Place(_ context.Context, art *binary.Artifact, name string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.placed = append(p.placed, placeCall{name: name, packageType: art.PackageType})
	return "/bin/" + name, nil
}

func (p *fakePlacer) Remove(_ context.Context, name, packageType string) error {
	if p.err != nil {
		return p.err
	}
	p.removed = append(p.removed, placeCall{name: name, packageType: packageType})
	return nil
}

type fakeConfirmer struct {
	answer bool
	err    error
	prompt string
	items  []string
	calls  int
}

func (c *fakeConfirmer) Confirm(_ context.Context, prompt string, items []string) (bool, error) {
	c.calls++
	c.prompt, c.items = prompt, items
	return c.answer, c.err
}

// fakeInstaller records requests; it is safe for concurrent use so tests can
// assert it was never called from the gather phase.
type fakeInstaller struct {
	mu       sync.Mutex
	requests []InstallRequest
	fail     map[string]error
}

func (f *fakeInstaller) Install(_ context.Context, req InstallRequest) (*state.ToolRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.fail[req.Name]; err != nil {
		return nil, err
	}
	return &state.ToolRecord{URL: req.URL, Name: req.Name, TagName: req.Tag, HoldUpdate: req.Hold}, nil
}

var errBoom = errors.New("boom")

func openStore(t *testing.T, records ...state.ToolRecord) *state.Store {
	t.Helper()
	s, err := state.Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for _, r := range records {
		s.Set(r.Key(), r)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return s
}

func rel(tag, published string, names ...string) release.Release {
	r := release.Release{TagName: tag, PublishedAt: published}
	for _, n := range names {
		r.Assets = append(r.Assets, release.Asset{Name: n, DownloadURL: "https://example.test/" + tag + "/" + n})
	}
	return r
}

func newSelector() *asset.Selector {
	return asset.NewSelector(linuxAMD64, nil)
}
