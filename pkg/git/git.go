// Package git wraps the go-git operations the publisher performs against
// the target working tree: branch checkout, identity configuration,
// staging, committing, and pushing with token authentication.
package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

var (
	// ErrNotARepository is returned when the workspace is not a git repository.
	ErrNotARepository = errors.New("workspace is not a git repository")

	// ErrBranchNotFound is returned when the requested branch does not exist.
	ErrBranchNotFound = errors.New("branch not found")
)

// TokenUsername is the username paired with a token for HTTP basic auth.
// Generic token auth convention understood by GitHub and compatible hosts.
const TokenUsername = "x-access-token"

// Client handles git operations against a single working tree.
type Client struct {
	// WorkspaceDir is the path to the git workspace
	WorkspaceDir string
}

// NewClient creates a new git client bound to the given workspace.
func NewClient(workspaceDir string) *Client {
	return &Client{WorkspaceDir: workspaceDir}
}

func (c *Client) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(c.WorkspaceDir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotARepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// EnsureRepository verifies the workspace is a git repository.
func (c *Client) EnsureRepository() error {
	_, err := c.open()
	return err
}

// BranchExists reports whether a local branch with the given name exists.
func (c *Client) BranchExists(name string) (bool, error) {
	repo, err := c.open()
	if err != nil {
		return false, err
	}

	_, err = repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve branch %s: %w", name, err)
	}
	return true, nil
}

// CheckoutBranch switches the working tree to an existing local branch.
// The branch is never created; a missing branch returns ErrBranchNotFound
// so callers can abort before touching any files. go-git resets the
// worktree on checkout and removes untracked files with it, so anything
// that must survive the switch has to be copied out beforehand.
func (c *Client) CheckoutBranch(name string) error {
	repo, err := c.open()
	if err != nil {
		return err
	}

	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(branchRef, true); err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
		}
		return fmt.Errorf("failed to resolve branch %s: %w", name, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.Checkout(&gogit.CheckoutOptions{Branch: branchRef}); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", name, err)
	}
	return nil
}

// SetIdentity writes user.name and user.email to the repository-local
// config so the publish commit is attributed correctly.
func (c *Client) SetIdentity(name, email string) error {
	repo, err := c.open()
	if err != nil {
		return err
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}
	cfg.User.Name = name
	cfg.User.Email = email

	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write repository config: %w", err)
	}
	return nil
}

// SetRemoteURL points the named remote at url, creating the remote when it
// does not exist. The URL never carries credentials; the token rides on the
// push transport instead.
func (c *Client) SetRemoteURL(remote, url string) error {
	repo, err := c.open()
	if err != nil {
		return err
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("failed to read repository config: %w", err)
	}

	if rc, ok := cfg.Remotes[remote]; ok {
		rc.URLs = []string{url}
	} else {
		cfg.Remotes[remote] = &config.RemoteConfig{
			Name: remote,
			URLs: []string{url},
		}
	}

	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("failed to write repository config: %w", err)
	}
	return nil
}

// RemoteURL returns the first URL configured for the named remote.
func (c *Client) RemoteURL(remote string) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	r, err := repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("failed to get remote %q: %w", remote, err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL configured", remote)
	}
	return urls[0], nil
}

// Stage stages the given paths, relative to the workspace root. Staging a
// directory stages everything under it, additions and deletions included.
func (c *Client) Stage(paths ...string) error {
	repo, err := c.open()
	if err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, path := range paths {
		if _, err := worktree.Add(path); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}
	return nil
}

// Commit commits all staged and modified changes with the given message and
// author. Empty commits are allowed so republishing unchanged documentation
// still records a publish. Returns the commit hash.
func (c *Client) Commit(message, authorName, authorEmail string) (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	commit, err := worktree.Commit(message, &gogit.CommitOptions{
		All:               true,
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return commit.String(), nil
}

// ForcePush pushes the branch to the remote, overwriting remote history.
// A token, when non-empty, authenticates the transport.
func (c *Client) ForcePush(ctx context.Context, remote, branch, token string) error {
	return c.push(ctx, remote, branch, token, true)
}

// Push pushes the branch to the remote without forcing; it fails when the
// remote has diverged.
func (c *Client) Push(ctx context.Context, remote, branch, token string) error {
	return c.push(ctx, remote, branch, token, false)
}

func (c *Client) push(ctx context.Context, remoteName, branch, token string, force bool) error {
	repo, err := c.open()
	if err != nil {
		return err
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("failed to get remote %q: %w", remoteName, err)
	}

	refSpec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	if force {
		refSpec = "+" + refSpec
	}

	opts := &gogit.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(refSpec)},
	}
	if token != "" {
		opts.Auth = &http.BasicAuth{
			Username: TokenUsername,
			Password: token,
		}
	}

	if err := remote.PushContext(ctx, opts); err != nil {
		if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}
	return nil
}

// Head returns the hash of the current HEAD commit.
func (c *Client) Head() (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// CurrentBranch returns the short name of the branch HEAD points at.
func (c *Client) CurrentBranch() (string, error) {
	repo, err := c.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch: %s", head.Name())
	}
	return head.Name().Short(), nil
}

// IsClean reports whether the working tree has no uncommitted changes.
func (c *Client) IsClean() (bool, error) {
	repo, err := c.open()
	if err != nil {
		return false, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return status.IsClean(), nil
}
