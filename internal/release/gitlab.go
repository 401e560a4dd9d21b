package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type (
	gitlabRelease struct {
		TagName         string       `json:"tag_name"`
		Name            string       `json:"name"`
		ReleasedAt      string       `json:"released_at"`
		CreatedAt       string       `json:"created_at"`
		UpcomingRelease bool         `json:"upcoming_release"`
		Assets          gitlabAssets `json:"assets"`
	}

	gitlabAssets struct {
		Links []gitlabLink `json:"links"`
	}

	gitlabLink struct {
		Name           string `json:"name"`
		URL            string `json:"url"`
		DirectAssetURL string `json:"direct_asset_url"`
		LinkType       string `json:"link_type"`
	}

	gitlabProject struct {
		Name              string `json:"name"`
		PathWithNamespace string `json:"path_with_namespace"`
		WebURL            string `json:"web_url"`
		Description       string `json:"description"`
		StarCount         int    `json:"star_count"`
	}

	// GitLabClient queries the GitLab Releases API for one project.
	GitLabClient struct {
		httpClient *http.Client
		repo       Repo
		baseURL    string
		token      string
		userAgent  string
	}
)

// NewGitLabClient creates a client for repo against gitlab.com.
func NewGitLabClient(repo Repo, opts ...ClientOption) *GitLabClient {
	o := newClientOptions("https://gitlab.com/api/v4", opts)
	return &GitLabClient{
		httpClient: o.httpClient,
		repo:       repo,
		baseURL:    o.baseURL,
		token:      o.token,
		userAgent:  o.userAgent,
	}
}

func (c *GitLabClient) projectURL() string {
	return fmt.Sprintf("%s/projects/%s", c.baseURL, url.PathEscape(c.repo.Owner+"/"+c.repo.Name))
}

// Releases implements Provider. GitLab marks releases dated in the future
// as upcoming; they are treated as prereleases.
func (c *GitLabClient) Releases(ctx context.Context, tag string, includePrerelease bool) ([]Release, error) {
	var raw []gitlabRelease

	if tag != "" {
		var gr gitlabRelease
		found, err := c.getJSON(ctx, c.projectURL()+"/releases/"+url.PathEscape(tag), &gr)
		if err != nil {
			return nil, fmt.Errorf("getting release %s: %w", tag, err)
		}
		if !found {
			return []Release{}, nil
		}
		raw = append(raw, gr)
	} else {
		reqURL := fmt.Sprintf("%s/releases?per_page=%d", c.projectURL(), defaultPerPage)
		found, err := c.getJSON(ctx, reqURL, &raw)
		if err != nil {
			return nil, fmt.Errorf("listing releases: %w", err)
		}
		if !found {
			return []Release{}, nil
		}
	}

	releases := make([]Release, 0, len(raw))
	for _, gr := range raw {
		if gr.UpcomingRelease && !includePrerelease {
			continue
		}
		releases = append(releases, c.toRelease(gr))
	}
	return releases, nil
}

// Info implements Provider.
func (c *GitLabClient) Info(ctx context.Context) (*RepoInfo, error) {
	var gp gitlabProject
	found, err := c.getJSON(ctx, c.projectURL(), &gp)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("getting project: %s not found", c.repo.URL)
	}
	return &RepoInfo{
		Name:        gp.Name,
		FullName:    gp.PathWithNamespace,
		HTMLURL:     gp.WebURL,
		Description: gp.Description,
		Stars:       gp.StarCount,
	}, nil
}

func (c *GitLabClient) getJSON(ctx context.Context, reqURL string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return false, gitlabRateLimit(resp)
	}
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(v); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}
	return true, nil
}

func (c *GitLabClient) toRelease(gr gitlabRelease) Release {
	assets := make([]Asset, 0, len(gr.Assets.Links))
	for _, l := range gr.Assets.Links {
		u := l.DirectAssetURL
		if u == "" {
			u = l.URL
		}
		assets = append(assets, Asset{Name: l.Name, DownloadURL: u})
	}

	published := gr.ReleasedAt
	if published == "" {
		published = gr.CreatedAt
	}

	return Release{
		RepoURL:     c.repo.URL,
		Name:        gr.Name,
		TagName:     gr.TagName,
		Prerelease:  gr.UpcomingRelease,
		PublishedAt: published,
		Assets:      assets,
	}
}

func gitlabRateLimit(resp *http.Response) error {
	limit, _ := strconv.Atoi(resp.Header.Get("RateLimit-Limit"))
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("RateLimit-Reset"), 10, 64)
	return &RateLimitError{
		Forge:   "GitLab",
		Limit:   limit,
		ResetAt: time.Unix(resetUnix, 0),
	}
}
