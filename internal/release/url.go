package release

import (
	"fmt"
	"net/url"
	"strings"
)

// Forge identifies a supported hosting service.
type Forge string

const (
	ForgeGitHub Forge = "github"
	ForgeGitLab Forge = "gitlab"
)

// Repo is a parsed repository URL.
type Repo struct {
	Forge Forge
	Owner string // may contain "/" for GitLab subgroups
	Name  string
	URL   string // canonical https URL without trailing slash or .git
}

// ParseRepoURL parses a github.com or gitlab.com repository URL.
// The scheme may be omitted.
func ParseRepoURL(raw string) (Repo, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Repo{}, fmt.Errorf("%w: empty URL", ErrUnsupportedRepo)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return Repo{}, fmt.Errorf("%w: %v", ErrUnsupportedRepo, err)
	}

	var forge Forge
	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	switch host {
	case "github.com":
		forge = ForgeGitHub
	case "gitlab.com":
		forge = ForgeGitLab
	default:
		return Repo{}, fmt.Errorf("%w: %s", ErrUnsupportedRepo, raw)
	}

	path := strings.Trim(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
		return Repo{}, fmt.Errorf("%w: missing owner or name in %s", ErrUnsupportedRepo, raw)
	}
	switch {
	case forge == ForgeGitHub && len(parts) > 2:
		// Browser URLs such as /owner/repo/releases.
		parts = parts[:2]
	case forge == ForgeGitLab:
		for i, p := range parts {
			if p == "-" {
				parts = parts[:i]
				break
			}
		}
		if len(parts) < 2 {
			return Repo{}, fmt.Errorf("%w: missing owner or name in %s", ErrUnsupportedRepo, raw)
		}
	}

	repo := Repo{
		Forge: forge,
		Owner: strings.Join(parts[:len(parts)-1], "/"),
		Name:  parts[len(parts)-1],
	}
	repo.URL = fmt.Sprintf("https://%s/%s/%s", host, repo.Owner, repo.Name)
	return repo, nil
}

// RepoName returns the repository name of a URL, or "" when it cannot be
// parsed. It is the default tool name.
func RepoName(raw string) string {
	repo, err := ParseRepoURL(raw)
	if err != nil {
		return ""
	}
	return repo.Name
}
