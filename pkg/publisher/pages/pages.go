// Package pages implements the gh-pages documentation publisher: it
// mirrors a build output directory into the devel subdirectory of the
// pages branch (and the repository root for releases), commits, and
// force-pushes with token authentication.
package pages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docpages/docpages/pkg/fsutil"
	"github.com/docpages/docpages/pkg/git"
	gh "github.com/docpages/docpages/pkg/github"
	"github.com/docpages/docpages/pkg/log"
	"github.com/docpages/docpages/pkg/publisher"
)

// BuildRequester triggers a GitHub Pages build after a successful push.
type BuildRequester interface {
	RequestBuild(ctx context.Context, owner, repo string) (*gh.BuildInfo, error)
}

// Publisher publishes built documentation to the pages branch.
type Publisher struct {
	// Builds, when set, is used to request a Pages build after pushing.
	Builds BuildRequester
}

// NewPublisher creates a pages publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Name returns the provider name.
func (p *Publisher) Name() string {
	return "pages"
}

// Validate checks the request before any mutation: the configuration must
// be structurally valid and the workspace must be a git repository.
func (p *Publisher) Validate(req publisher.PublishRequest) error {
	if req.Config == nil {
		return fmt.Errorf("publish configuration is required")
	}
	if err := req.Config.Validate(); err != nil {
		return err
	}
	return git.NewClient(req.Config.WorkspaceDir).EnsureRepository()
}

// Publish runs the publish sequence. The first failing step aborts the
// remaining sequence; completed steps are not rolled back, and the remote
// stays untouched until the final push.
func (p *Publisher) Publish(ctx context.Context, req publisher.PublishRequest) (publisher.PublishResult, error) {
	cfg := req.Config
	result := publisher.PublishResult{
		Actions: []publisher.PublishAction{},
		Errors:  []publisher.PublishError{},
		Success: true,
	}

	if req.DryRun {
		result.Actions = append(result.Actions, publisher.PublishAction{
			Type:        "dry_run",
			Description: fmt.Sprintf("would publish %s to %s/%s", cfg.BuildDir, cfg.Remote, cfg.Branch),
		})
		return result, nil
	}

	client := git.NewClient(cfg.WorkspaceDir)

	// The source hash is recorded before moving off the current branch,
	// so a missing GITHUB_SHA falls back to the commit the docs were
	// built from.
	shortHash := cfg.ShortHash()
	if shortHash == "unknown" {
		if head, err := client.Head(); err == nil {
			shortHash = head[:8]
		}
	}

	if err := client.SetIdentity(cfg.CommitterName, cfg.CommitterEmail); err != nil {
		return p.fail(result, "set_identity", err)
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "set_identity",
		Description: fmt.Sprintf("set committer identity to %s <%s>", cfg.CommitterName, cfg.CommitterEmail),
	})

	// Checking out the pages branch resets the worktree, and the build
	// output usually lives inside it (doc/build/html). Snapshot the docs
	// first, copy from the snapshot, and put the original back afterwards.
	buildSrc, cleanup, err := snapshotBuildDir(cfg.BuildDir)
	if err != nil {
		return p.fail(result, "snapshot_build", err)
	}
	defer cleanup()

	if err := client.CheckoutBranch(cfg.Branch); err != nil {
		return p.fail(result, "checkout", err)
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "checkout",
		Description: fmt.Sprintf("checked out branch %s", cfg.Branch),
	})

	if _, err := os.Stat(cfg.BuildDir); os.IsNotExist(err) {
		if err := fsutil.CopyTree(buildSrc, cfg.BuildDir); err != nil {
			log.Warn("failed to restore build directory after checkout", "path", cfg.BuildDir, "error", err)
		}
	}

	develPath := filepath.Join(cfg.WorkspaceDir, cfg.DevelDir)
	if err := fsutil.ReplaceDir(develPath); err != nil {
		return p.fail(result, "replace_devel", err)
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "replace_devel",
		Description: fmt.Sprintf("cleared %s", cfg.DevelDir),
	})

	// Entries written by this run; exactly these get staged, so unrelated
	// untracked files (the build tree itself, editor droppings) never end
	// up in the publish commit.
	staged := []string{cfg.DevelDir}

	if cfg.IsRelease() {
		copied, err := fsutil.MirrorInto(buildSrc, cfg.WorkspaceDir, ".git", cfg.DevelDir)
		if err != nil {
			return p.fail(result, "copy_root", err)
		}
		staged = append(staged, copied...)
		result.Actions = append(result.Actions, publisher.PublishAction{
			Type:        "copy_root",
			Description: fmt.Sprintf("copied release docs for %s to repository root", cfg.Tag),
			Metadata:    map[string]string{"tag": cfg.Tag},
		})
	}

	if err := fsutil.CopyTree(buildSrc, develPath); err != nil {
		return p.fail(result, "copy_devel", err)
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "copy_devel",
		Description: fmt.Sprintf("copied docs into %s", cfg.DevelDir),
	})

	if err := client.Stage(staged...); err != nil {
		return p.fail(result, "stage", err)
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "stage",
		Description: fmt.Sprintf("staged %d entries", len(staged)),
	})

	if cfg.RemoteURL != "" {
		if err := client.SetRemoteURL(cfg.Remote, cfg.RemoteURL); err != nil {
			return p.fail(result, "set_remote_url", err)
		}
		result.Actions = append(result.Actions, publisher.PublishAction{
			Type:        "set_remote_url",
			Description: fmt.Sprintf("pointed remote %s at %s", cfg.Remote, cfg.RemoteURL),
		})
	}

	message := fmt.Sprintf("Publish documentation for %s", shortHash)
	hash, err := client.Commit(message, cfg.CommitterName, cfg.CommitterEmail)
	if err != nil {
		return p.fail(result, "commit", err)
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "commit",
		Description: message,
		Metadata:    map[string]string{"hash": hash},
	})

	if !cfg.Force {
		log.Warn("skipping push: force-push not confirmed", "branch", cfg.Branch)
		result.Actions = append(result.Actions, publisher.PublishAction{
			Type:        "push_skipped",
			Description: "force-push not confirmed; remote left untouched (pass --force to push)",
		})
		return result, nil
	}

	if err := client.ForcePush(ctx, cfg.Remote, cfg.Branch, cfg.Token); err != nil {
		return p.fail(result, "push", err)
	}
	result.Actions = append(result.Actions, publisher.PublishAction{
		Type:        "push",
		Description: fmt.Sprintf("force-pushed %s to %s", cfg.Branch, cfg.Remote),
	})

	if cfg.RequestPagesBuild {
		result.Actions = append(result.Actions, p.requestPagesBuild(ctx, client, cfg.Remote, cfg.RemoteURL))
	}

	return result, nil
}

// snapshotBuildDir copies the build output to a temp directory so it
// survives the branch switch. The returned cleanup removes the snapshot.
func snapshotBuildDir(dir string) (string, func(), error) {
	tmp, err := os.MkdirTemp("", "docpages-build-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := fsutil.CopyTree(dir, tmp); err != nil {
		os.RemoveAll(tmp)
		return "", nil, fmt.Errorf("failed to snapshot build directory: %w", err)
	}
	return tmp, func() { os.RemoveAll(tmp) }, nil
}

// requestPagesBuild asks GitHub for a Pages build. Failures never fail the
// publish: the push already happened and the site will build on the next
// scheduled pass anyway.
func (p *Publisher) requestPagesBuild(ctx context.Context, client *git.Client, remote, remoteURL string) publisher.PublishAction {
	skipped := func(reason string) publisher.PublishAction {
		log.Warn("skipping pages build request", "reason", reason)
		return publisher.PublishAction{
			Type:        "pages_build_skipped",
			Description: reason,
		}
	}

	if p.Builds == nil {
		return skipped("no GitHub client configured")
	}

	url := remoteURL
	if url == "" {
		resolved, err := client.RemoteURL(remote)
		if err != nil {
			return skipped(fmt.Sprintf("cannot resolve remote URL: %v", err))
		}
		url = resolved
	}

	repo, err := gh.ParseRemote(url)
	if err != nil {
		return skipped(fmt.Sprintf("remote is not a GitHub repository: %v", err))
	}

	build, err := p.Builds.RequestBuild(ctx, repo.Owner, repo.Name)
	if err != nil {
		return skipped(fmt.Sprintf("pages build request failed: %v", err))
	}

	return publisher.PublishAction{
		Type:        "pages_build",
		Description: fmt.Sprintf("requested pages build for %s", repo),
		Metadata:    map[string]string{"status": build.Status, "url": build.URL},
	}
}

func (p *Publisher) fail(result publisher.PublishResult, step string, err error) (publisher.PublishResult, error) {
	wrapped := fmt.Errorf("%s: %w", step, err)
	result.Success = false
	result.Errors = append(result.Errors, publisher.NewErrorWithAction(err.Error(), step))
	return result, wrapped
}
