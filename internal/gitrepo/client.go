// Package gitrepo wraps the go-git operations the publish pipeline delegates to:
// staging the artifact set, detecting staged changes against HEAD, committing,
// and pushing to the configured remote.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/openclaw/predmarkets/internal/config"
	"github.com/openclaw/predmarkets/internal/logfields"
)

// Client handles git operations on the fixed publish checkout.
type Client struct {
	path     string
	repo     *gogit.Repository
	worktree *gogit.Worktree
	auth     *config.AuthConfig
	identity *config.Identity
}

// Open binds to an existing checkout. The pipeline never clones; a missing or
// non-git path is a fatal environment error.
func Open(cfg config.RepoConfig) (*Client, error) {
	repo, err := gogit.PlainOpen(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", cfg.Path, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	return &Client{
		path:     cfg.Path,
		repo:     repo,
		worktree: worktree,
		auth:     cfg.Auth,
		identity: cfg.Identity,
	}, nil
}

// Path returns the worktree root.
func (c *Client) Path() string { return c.path }

// Stage adds the given paths (relative to the worktree root) to the index.
// All paths are staged unconditionally; a missing artifact is a staging error.
func (c *Client) Stage(paths []string) error {
	for _, p := range paths {
		if _, err := c.worktree.Add(p); err != nil {
			return fmt.Errorf("failed to stage %s: %w", p, err)
		}
	}
	slog.Debug("Artifacts staged", logfields.Repository(c.path), logfields.Count(len(paths)))
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD, i.e. whether a
// commit would record anything.
func (c *Client) HasStagedChanges() (bool, error) {
	status, err := c.worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read worktree status: %w", err)
	}
	for _, fileStatus := range status {
		if fileStatus.Staging != gogit.Unmodified && fileStatus.Staging != gogit.Untracked {
			return true, nil
		}
	}
	return false, nil
}

// Commit records the staged index with the given message. The author comes from
// the configured identity, falling back to the repository's git config; absence
// of both fails the commit.
func (c *Client) Commit(message string) (string, error) {
	opts := &gogit.CommitOptions{}
	if c.identity != nil && c.identity.Name != "" {
		opts.Author = &object.Signature{
			Name:  c.identity.Name,
			Email: c.identity.Email,
			When:  time.Now(),
		}
	}
	hash, err := c.worktree.Commit(message, opts)
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	slog.Info("Commit created", logfields.Repository(c.path), logfields.Commit(hash.String()[:8]))
	return hash.String(), nil
}

// Push updates the remote branch with the current HEAD branch. A remote that is
// already up to date is success; anything else (non-fast-forward, network) is
// fatal and left to the caller.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	head, err := c.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	pushOptions := &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs: []gitcfg.RefSpec{
			gitcfg.RefSpec(fmt.Sprintf("%s:refs/heads/%s", head.Name(), branch)),
		},
	}
	if c.auth != nil {
		auth, err := authMethod(c.auth)
		if err != nil {
			return fmt.Errorf("failed to setup authentication: %w", err)
		}
		pushOptions.Auth = auth
	}

	err = c.repo.PushContext(ctx, pushOptions)
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		slog.Info("Remote already up to date", logfields.Remote(remote), logfields.Branch(branch))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push to %s/%s: %w", remote, branch, err)
	}
	slog.Info("Pushed", logfields.Remote(remote), logfields.Branch(branch), logfields.Commit(head.Hash().String()[:8]))
	return nil
}

// AheadOfRemote reports whether the local HEAD has commits the remote-tracking
// ref lacks. Used to surface a pending unpushed commit from a previously failed
// push; an unknown tracking ref reports false.
func (c *Client) AheadOfRemote(remote, branch string) (bool, error) {
	head, err := c.repo.Head()
	if err != nil {
		return false, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	remoteRef, err := c.repo.Reference(plumbing.NewRemoteReferenceName(remote, branch), true)
	if err != nil {
		// No tracking ref yet (fresh checkout or remote never fetched).
		return false, nil
	}
	if head.Hash() == remoteRef.Hash() {
		return false, nil
	}
	headCommit, err := c.repo.CommitObject(head.Hash())
	if err != nil {
		return false, fmt.Errorf("failed to read HEAD commit: %w", err)
	}
	remoteCommit, err := c.repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return false, fmt.Errorf("failed to read remote commit: %w", err)
	}
	ahead, err := remoteCommit.IsAncestor(headCommit)
	if err != nil {
		return false, fmt.Errorf("failed to walk ancestry: %w", err)
	}
	return ahead, nil
}
