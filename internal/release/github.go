package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// defaultPerPage is the number of releases fetched per API page.
	defaultPerPage = 30

	// maxPages is the upper bound on pagination to avoid runaway requests.
	maxPages = 3

	// maxJSONResponseBytes caps the size of a decoded API response (10 MB).
	maxJSONResponseBytes = 10 << 20

	defaultUserAgent = "install-release"
)

type (
	githubRelease struct {
		TagName     string        `json:"tag_name"`
		Name        string        `json:"name"`
		Prerelease  bool          `json:"prerelease"`
		Draft       bool          `json:"draft"`
		PublishedAt string        `json:"published_at"`
		CreatedAt   string        `json:"created_at"`
		Assets      []githubAsset `json:"assets"`
	}

	githubAsset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
		DownloadCount      int    `json:"download_count"`
		ContentType        string `json:"content_type"`
	}

	githubRepo struct {
		Name            string `json:"name"`
		FullName        string `json:"full_name"`
		HTMLURL         string `json:"html_url"`
		Description     string `json:"description"`
		Language        string `json:"language"`
		StargazersCount int    `json:"stargazers_count"`
	}

	// GitHubClient queries the GitHub Releases API for one repository.
	GitHubClient struct {
		httpClient *http.Client
		repo       Repo
		baseURL    string
		token      string
		userAgent  string
	}

	// ClientOption configures a forge client during construction.
	ClientOption func(*clientOptions)

	clientOptions struct {
		httpClient *http.Client
		baseURL    string
		token      string
		userAgent  string
	}
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithBaseURL overrides the API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken sets an access token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(o *clientOptions) {
		o.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

func newClientOptions(defaultBase string, opts []ClientOption) clientOptions {
	o := clientOptions{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBase,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewGitHubClient creates a client for repo against api.github.com.
func NewGitHubClient(repo Repo, opts ...ClientOption) *GitHubClient {
	o := newClientOptions("https://api.github.com", opts)
	return &GitHubClient{
		httpClient: o.httpClient,
		repo:       repo,
		baseURL:    o.baseURL,
		token:      o.token,
		userAgent:  o.userAgent,
	}
}

// Releases implements Provider. Drafts are always dropped. Pagination is
// followed up to maxPages.
func (c *GitHubClient) Releases(ctx context.Context, tag string, includePrerelease bool) ([]Release, error) {
	var raw []githubRelease

	if tag != "" {
		tagURL := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s",
			c.baseURL, c.repo.Owner, c.repo.Name, url.PathEscape(tag))
		var gr githubRelease
		found, err := c.getJSON(ctx, tagURL, &gr)
		if err != nil {
			return nil, fmt.Errorf("getting release %s: %w", tag, err)
		}
		if !found {
			return []Release{}, nil
		}
		raw = append(raw, gr)
	} else {
		pageURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d",
			c.baseURL, c.repo.Owner, c.repo.Name, defaultPerPage)
		for page := 0; page < maxPages && pageURL != ""; page++ {
			var batch []githubRelease
			next, found, err := c.getJSONPage(ctx, pageURL, &batch)
			if err != nil {
				return nil, fmt.Errorf("listing releases: %w", err)
			}
			if !found {
				if page == 0 {
					return []Release{}, nil
				}
				break
			}
			raw = append(raw, batch...)
			pageURL = next
		}
	}

	releases := make([]Release, 0, len(raw))
	for _, gr := range raw {
		if gr.Draft || (gr.Prerelease && !includePrerelease) {
			continue
		}
		releases = append(releases, c.toRelease(gr))
	}
	return releases, nil
}

// Info implements Provider.
func (c *GitHubClient) Info(ctx context.Context) (*RepoInfo, error) {
	repoURL := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, c.repo.Owner, c.repo.Name)
	var gr githubRepo
	found, err := c.getJSON(ctx, repoURL, &gr)
	if err != nil {
		return nil, fmt.Errorf("getting repository: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("getting repository: %s not found", c.repo.URL)
	}
	return &RepoInfo{
		Name:        gr.Name,
		FullName:    gr.FullName,
		HTMLURL:     gr.HTMLURL,
		Description: gr.Description,
		Language:    gr.Language,
		Stars:       gr.StargazersCount,
	}, nil
}

func (c *GitHubClient) getJSON(ctx context.Context, reqURL string, v any) (bool, error) {
	_, found, err := c.getJSONPage(ctx, reqURL, v)
	return found, err
}

// getJSONPage decodes one response into v and returns the next page URL.
// found is false on 404.
func (c *GitHubClient) getJSONPage(ctx context.Context, reqURL string, v any) (next string, found bool, err error) {
	resp, err := c.doRequest(ctx, http.MethodGet, reqURL)
	if err != nil {
		return "", false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkGitHubRateLimit(resp); err != nil {
		return "", false, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(v); err != nil {
		return "", false, fmt.Errorf("decoding response: %w", err)
	}
	return parseLinkHeader(resp.Header.Get("Link")), true, nil
}

// doRequest creates and executes an HTTP request with common GitHub API headers.
func (c *GitHubClient) doRequest(ctx context.Context, method, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)

	// The token is only attached for known GitHub hosts so it never leaks to
	// a CDN a download redirects to.
	if c.token != "" && isGitHubHost(req.URL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func (c *GitHubClient) toRelease(gr githubRelease) Release {
	assets := make([]Asset, 0, len(gr.Assets))
	for _, ga := range gr.Assets {
		assets = append(assets, Asset{
			Name:          ga.Name,
			DownloadURL:   ga.BrowserDownloadURL,
			Size:          ga.Size,
			DownloadCount: ga.DownloadCount,
			ContentType:   ga.ContentType,
		})
	}

	published := gr.PublishedAt
	if published == "" {
		published = gr.CreatedAt
	}

	return Release{
		RepoURL:     c.repo.URL,
		Name:        gr.Name,
		TagName:     gr.TagName,
		Prerelease:  gr.Prerelease,
		PublishedAt: published,
		Assets:      assets,
	}
}

// checkGitHubRateLimit returns a RateLimitError when X-RateLimit-Remaining
// is zero. Missing or malformed headers are ignored.
func checkGitHubRateLimit(resp *http.Response) error {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}
	rem, err := strconv.Atoi(remaining)
	if err != nil || rem > 0 {
		return nil
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	return &RateLimitError{
		Forge:   "GitHub",
		Limit:   limit,
		ResetAt: time.Unix(resetUnix, 0),
	}
}

// parseLinkHeader extracts the URL for the "next" page from a Link header.
//
// Example header: <https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func parseLinkHeader(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}

// isGitHubHost reports whether reqURL targets the configured API host or,
// for the public API, github.com itself.
func isGitHubHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}
