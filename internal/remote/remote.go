// Package remote retrieves state documents published somewhere else: over
// HTTP, inside a git repository, or on the local disk.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/install-release/ir/internal/logging"
	"github.com/install-release/ir/internal/state"
)

// maxDocumentBytes bounds any fetched document.
const maxDocumentBytes = 10 << 20

var (
	// ErrNoSource is returned when a Source names nothing to fetch.
	ErrNoSource = errors.New("no source given")

	// ErrAmbiguousSource is returned when a Source names more than one location.
	ErrAmbiguousSource = errors.New("more than one source given")
)

// Source says where a document lives. Exactly one of URL, GitRepo or File
// must be set.
type Source struct {
	URL string

	GitRepo string
	GitPath string
	GitRef  string // branch or tag; the remote HEAD when empty

	File string
}

// Validate reports whether the source names exactly one location.
func (s Source) Validate() error {
	n := 0
	for _, v := range []string{s.URL, s.GitRepo, s.File} {
		if v != "" {
			n++
		}
	}
	switch {
	case n == 0:
		return ErrNoSource
	case n > 1:
		return ErrAmbiguousSource
	case s.GitRepo != "" && s.GitPath == "":
		return fmt.Errorf("git source %s needs a file path", s.GitRepo)
	}
	return nil
}

func (s Source) String() string {
	switch {
	case s.URL != "":
		return s.URL
	case s.GitRepo != "":
		if s.GitRef != "" {
			return s.GitRepo + "@" + s.GitRef + ":" + s.GitPath
		}
		return s.GitRepo + ":" + s.GitPath
	default:
		return s.File
	}
}

// Fetcher reads documents from any Source.
type Fetcher struct {
	client   *http.Client
	gitToken string
	logger   logging.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithGitToken authenticates https git clones.
func WithGitToken(token string) Option {
	return func(f *Fetcher) { f.gitToken = token }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher returns a fetcher with a 30 second HTTP timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.OrNop(f.logger)
	return f
}

// Fetch returns the raw bytes at src.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	switch {
	case src.URL != "":
		return f.fetchHTTP(ctx, src.URL)
	case src.GitRepo != "":
		return f.fetchGit(ctx, src)
	default:
		return readFile(src.File)
	}
}

// FetchDocument fetches src and decodes it as a state document.
func (f *Fetcher) FetchDocument(ctx context.Context, src Source) (state.Document, error) {
	data, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	doc, err := state.DecodeDocument(data, f.logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	f.logger.Debug("fetched remote state", "source", src.String(), "tools", len(doc))
	return doc, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return nil, fmt.Errorf("unsupported URL scheme: %s", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status code: %d", url, resp.StatusCode)
	}
	return readLimited(resp.Body, url)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return readLimited(file, path)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxDocumentBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxDocumentBytes)
	}
	return data, nil
}
