package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "install-release"
)

// Downloader fetches URLs to files with retry and exponential backoff.
type Downloader struct {
	client         *http.Client
	userAgent      string
	retries        uint
	initialBackoff time.Duration
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadClient replaces the HTTP client.
func WithDownloadClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// WithRetries sets how many times a failed download is retried.
func WithRetries(n uint) DownloaderOption {
	return func(d *Downloader) { d.retries = n }
}

// WithInitialBackoff sets the first retry delay.
func WithInitialBackoff(delay time.Duration) DownloaderOption {
	return func(d *Downloader) { d.initialBackoff = delay }
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Release assets redirect to object storage.
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent:      DefaultUserAgent,
		retries:        DefaultRetries,
		initialBackoff: time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type statusError struct {
	url  string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status code: %d", e.url, e.code)
}

// DownloadToFile downloads url to destPath. Client errors other than 429
// are not retried.
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initialBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := d.downloadOnce(ctx, url, destPath)
		var se *statusError
		if errors.As(err, &se) && se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(d.retries+1))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("download %s: %w", filepath.Base(destPath), err)
	}
	return nil
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{url: url, code: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return backoff.Permanent(fmt.Errorf("create dest dir: %w", err))
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create temp file: %w", err))
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}
