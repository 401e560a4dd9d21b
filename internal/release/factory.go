package release

import (
	"net/http"
)

// Factory builds Providers from repository URLs.
type Factory struct {
	GitHubToken string
	GitLabToken string

	// Base URL overrides, used by tests.
	GitHubBaseURL string
	GitLabBaseURL string

	HTTPClient *http.Client
	UserAgent  string
}

// For returns the provider for repoURL, or ErrUnsupportedRepo.
func (f *Factory) For(repoURL string) (Provider, error) {
	repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	var opts []ClientOption
	if f.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(f.HTTPClient))
	}
	if f.UserAgent != "" {
		opts = append(opts, WithUserAgent(f.UserAgent))
	}

	switch repo.Forge {
	case ForgeGitLab:
		if f.GitLabBaseURL != "" {
			opts = append(opts, WithBaseURL(f.GitLabBaseURL))
		}
		return NewGitLabClient(repo, append(opts, WithToken(f.GitLabToken))...), nil
	default:
		if f.GitHubBaseURL != "" {
			opts = append(opts, WithBaseURL(f.GitHubBaseURL))
		}
		return NewGitHubClient(repo, append(opts, WithToken(f.GitHubToken))...), nil
	}
}
