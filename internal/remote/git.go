package remote

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

// fetchGit shallow-clones src.GitRepo into memory and reads src.GitPath
// from the worktree. Nothing touches the disk.
func (f *Fetcher) fetchGit(ctx context.Context, src Source) ([]byte, error) {
	opts := &git.CloneOptions{
		URL:          src.GitRepo,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
		Auth:         f.gitAuth(src.GitRepo),
	}

	refs := []plumbing.ReferenceName{""}
	if src.GitRef != "" {
		refs = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(src.GitRef),
			plumbing.NewTagReferenceName(src.GitRef),
		}
	}

	var lastErr error
	for _, ref := range refs {
		opts.ReferenceName = ref
		fs := memfs.New()
		_, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		name := path.Clean(strings.TrimPrefix(src.GitPath, "/"))
		file, err := fs.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open %s in %s: %w", name, src.GitRepo, err)
		}
		defer file.Close()
		return readLimited(file, name)
	}

	if errors.Is(lastErr, transport.ErrAuthenticationRequired) {
		return nil, fmt.Errorf("clone %s: %w (set a token with `ir config --token`)", src.GitRepo, lastErr)
	}
	return nil, fmt.Errorf("clone %s: %w", src.GitRepo, lastErr)
}

func (f *Fetcher) gitAuth(repoURL string) transport.AuthMethod {
	if f.gitToken == "" || !strings.HasPrefix(repoURL, "https://") {
		return nil
	}
	// Forges accept any username alongside a token.
	return &githttp.BasicAuth{Username: "ir", Password: f.gitToken}
}
