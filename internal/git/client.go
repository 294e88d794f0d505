// Package git acquires source repositories into the workspace using go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docmerge/internal/config"
	"git.home.luguber.info/inful/docmerge/internal/logfields"
)

// Client handles Git operations against a workspace directory.
type Client struct {
	workspaceDir string
	shallowDepth int
}

// NewClient creates a new Git client with the specified workspace directory.
func NewClient(workspaceDir string) *Client { return &Client{workspaceDir: workspaceDir} }

// WithShallowDepth enables shallow clones of the given depth (fluent helper).
func (c *Client) WithShallowDepth(depth int) *Client { c.shallowDepth = depth; return c }

// Acquire resolves every configured repository to a local root path.
//
// Repositories with a configured local path are used in place; the rest are
// cloned (or updated when a clone already exists) into the workspace. The
// first failure aborts the whole run.
func (c *Client) Acquire(ctx context.Context, repositories []config.Repository) (map[string]string, error) {
	paths := make(map[string]string, len(repositories))
	for _, repo := range repositories {
		if repo.Path != "" {
			if _, err := os.Stat(repo.Path); err != nil {
				return nil, fmt.Errorf("%w: %s at %s", ErrLocalPathMissing, repo.Name, repo.Path)
			}
			paths[repo.Name] = repo.Path
			continue
		}

		repoPath, err := c.cloneOrUpdate(ctx, repo)
		if err != nil {
			return nil, err
		}
		paths[repo.Name] = repoPath
	}
	return paths, nil
}

func (c *Client) cloneOrUpdate(ctx context.Context, repo config.Repository) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, sanitizeDirName(repo.Name))

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		if err := c.update(ctx, repo, repoPath); err != nil {
			return "", err
		}
		return repoPath, nil
	}

	slog.Debug("Cloning repository",
		logfields.URL(repo.URL), logfields.Name(repo.Name),
		slog.String("branch", repo.Branch), logfields.Path(repoPath))

	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCloneFailed, repo.Name, err)
	}

	cloneOptions := &gogit.CloneOptions{URL: repo.URL}
	if repo.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		cloneOptions.SingleBranch = true
	}
	if c.shallowDepth > 0 {
		cloneOptions.Depth = c.shallowDepth
	}

	if _, err := gogit.PlainCloneContext(ctx, repoPath, false, cloneOptions); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCloneFailed, repo.Name, err)
	}
	slog.Info("Cloned repository", logfields.Name(repo.Name), logfields.Path(repoPath))
	return repoPath, nil
}

func (c *Client) update(ctx context.Context, repo config.Repository, repoPath string) error {
	slog.Debug("Updating repository", logfields.Name(repo.Name), logfields.Path(repoPath))

	opened, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpdateFailed, repo.Name, err)
	}
	worktree, err := opened.Worktree()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpdateFailed, repo.Name, err)
	}

	pullOptions := &gogit.PullOptions{}
	if repo.Branch != "" {
		pullOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		pullOptions.SingleBranch = true
	}
	if err := worktree.PullContext(ctx, pullOptions); err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("%w: %s: %w", ErrUpdateFailed, repo.Name, err)
	}
	return nil
}

// sanitizeDirName flattens a repository identifier ("org/name") into a single
// workspace directory name.
func sanitizeDirName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}
