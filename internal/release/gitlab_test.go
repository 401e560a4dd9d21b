package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGitLabReleases(t *testing.T) {
	t.Parallel()

	repo := Repo{Forge: ForgeGitLab, Owner: "gitlab-org", Name: "cli", URL: "https://gitlab.com/gitlab-org/cli"}

	var gotToken, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `[
			{"tag_name":"v2.0.0","name":"next","released_at":"2099-01-01T00:00:00.000Z","upcoming_release":true},
			{"tag_name":"v1.46.0","name":"v1.46.0","released_at":"2024-08-01T10:00:00.000Z",
			 "assets":{"links":[
				{"name":"glab_1.46.0_linux_amd64.tar.gz","url":"https://gitlab.com/x/uploads/a","direct_asset_url":"https://gitlab.com/x/-/releases/v1.46.0/downloads/a"},
				{"name":"checksums.txt","url":"https://gitlab.com/x/uploads/c"}]}}
		]`)
	}))
	defer srv.Close()

	client := NewGitLabClient(repo, WithBaseURL(srv.URL), WithToken("glpat"))
	got, err := client.Releases(context.Background(), "", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotToken != "glpat" {
		t.Errorf("PRIVATE-TOKEN = %q", gotToken)
	}
	if gotPath != "/projects/gitlab-org%2Fcli/releases" {
		t.Errorf("path = %q", gotPath)
	}
	if len(got) != 1 {
		t.Fatalf("expected upcoming release to be dropped, got %d releases", len(got))
	}

	r := got[0]
	if r.TagName != "v1.46.0" || r.PublishedAt != "2024-08-01T10:00:00.000Z" {
		t.Errorf("unexpected release: %+v", r)
	}
	if len(r.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(r.Assets))
	}
	if r.Assets[0].DownloadURL != "https://gitlab.com/x/-/releases/v1.46.0/downloads/a" {
		t.Errorf("direct asset URL should win, got %q", r.Assets[0].DownloadURL)
	}
	if r.Assets[1].DownloadURL != "https://gitlab.com/x/uploads/c" {
		t.Errorf("fallback URL = %q", r.Assets[1].DownloadURL)
	}
}

func TestGitLabReleases_TagNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewGitLabClient(Repo{Owner: "a", Name: "b"}, WithBaseURL(srv.URL))
	got, err := client.Releases(context.Background(), "v9", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestGitLabReleases_RateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("RateLimit-Limit", "300")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewGitLabClient(Repo{Owner: "a", Name: "b"}, WithBaseURL(srv.URL)).Releases(context.Background(), "", false)
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rl.Forge != "GitLab" || rl.Limit != 300 {
		t.Errorf("unexpected rate limit error: %+v", rl)
	}
}
