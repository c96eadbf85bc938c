package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// initTestRepo creates a repository with one commit on the default branch
// and returns its path.
func initTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("readme\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	commitAll(t, repo, "initial commit")

	return dir
}

func commitAll(t *testing.T, repo *gogit.Repository, message string) plumbing.Hash {
	t.Helper()
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	if _, err := worktree.Add("."); err != nil {
		t.Fatalf("failed to stage: %v", err)
	}
	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

// createBranch creates a local branch pointing at HEAD.
func createBranch(t *testing.T, dir, name string) {
	t.Helper()
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("failed to get head: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), head.Hash())
	if err := repo.Storer.SetReference(ref); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}
}

func TestEnsureRepository(t *testing.T) {
	dir := initTestRepo(t)
	if err := NewClient(dir).EnsureRepository(); err != nil {
		t.Errorf("EnsureRepository() on a repo = %v", err)
	}

	err := NewClient(t.TempDir()).EnsureRepository()
	if !errors.Is(err, ErrNotARepository) {
		t.Errorf("EnsureRepository() on plain dir = %v, want ErrNotARepository", err)
	}
}

func TestBranchExists(t *testing.T) {
	dir := initTestRepo(t)
	createBranch(t, dir, "gh-pages")
	client := NewClient(dir)

	exists, err := client.BranchExists("gh-pages")
	if err != nil {
		t.Fatalf("BranchExists() error = %v", err)
	}
	if !exists {
		t.Error("BranchExists(gh-pages) = false, want true")
	}

	exists, err = client.BranchExists("no-such-branch")
	if err != nil {
		t.Fatalf("BranchExists() error = %v", err)
	}
	if exists {
		t.Error("BranchExists(no-such-branch) = true, want false")
	}
}

func TestCheckoutBranch(t *testing.T) {
	dir := initTestRepo(t)
	createBranch(t, dir, "gh-pages")
	client := NewClient(dir)

	if err := client.CheckoutBranch("gh-pages"); err != nil {
		t.Fatalf("CheckoutBranch() error = %v", err)
	}

	branch, err := client.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	if branch != "gh-pages" {
		t.Errorf("CurrentBranch() = %s, want gh-pages", branch)
	}
}

func TestCheckoutBranchMissing(t *testing.T) {
	dir := initTestRepo(t)
	err := NewClient(dir).CheckoutBranch("gh-pages")
	if !errors.Is(err, ErrBranchNotFound) {
		t.Errorf("CheckoutBranch(missing) = %v, want ErrBranchNotFound", err)
	}
}

func TestSetIdentity(t *testing.T) {
	dir := initTestRepo(t)
	client := NewClient(dir)

	if err := client.SetIdentity("Docs CI", "docs@example.com"); err != nil {
		t.Fatalf("SetIdentity() error = %v", err)
	}

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	cfg, err := repo.Config()
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if cfg.User.Name != "Docs CI" || cfg.User.Email != "docs@example.com" {
		t.Errorf("config user = %s <%s>, want Docs CI <docs@example.com>", cfg.User.Name, cfg.User.Email)
	}
}

func TestSetRemoteURL(t *testing.T) {
	dir := initTestRepo(t)
	client := NewClient(dir)

	// Creates the remote when missing.
	if err := client.SetRemoteURL("origin", "https://github.com/acme/docs.git"); err != nil {
		t.Fatalf("SetRemoteURL() error = %v", err)
	}
	// Rewrites the URL of an existing remote.
	if err := client.SetRemoteURL("origin", "https://github.com/acme/docs-v2.git"); err != nil {
		t.Fatalf("SetRemoteURL() rewrite error = %v", err)
	}

	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		t.Fatalf("failed to get remote: %v", err)
	}
	urls := remote.Config().URLs
	if len(urls) != 1 || urls[0] != "https://github.com/acme/docs-v2.git" {
		t.Errorf("remote URLs = %v, want the rewritten URL only", urls)
	}
}

func TestCommitAndHead(t *testing.T) {
	dir := initTestRepo(t)
	client := NewClient(dir)

	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html/>"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := client.Stage("index.html"); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	hash, err := client.Commit("Publish documentation for abcd1234", "Docs CI", "docs@example.com")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	head, err := client.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if head != hash {
		t.Errorf("Head() = %s, want commit hash %s", head, hash)
	}

	clean, err := client.IsClean()
	if err != nil {
		t.Fatalf("IsClean() error = %v", err)
	}
	if !clean {
		t.Error("IsClean() = false after committing everything")
	}
}

func TestCommitAllowsEmpty(t *testing.T) {
	dir := initTestRepo(t)
	client := NewClient(dir)

	before, err := client.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}

	hash, err := client.Commit("republish with no changes", "Docs CI", "docs@example.com")
	if err != nil {
		t.Fatalf("Commit() with clean tree error = %v", err)
	}
	if hash == before {
		t.Error("Commit() with clean tree did not create a new commit")
	}
}

func TestForcePushToLocalRemote(t *testing.T) {
	dir := initTestRepo(t)
	remoteDir := t.TempDir()
	if _, err := gogit.PlainInit(remoteDir, true); err != nil {
		t.Fatalf("failed to init bare remote: %v", err)
	}

	client := NewClient(dir)
	if err := client.SetRemoteURL("origin", remoteDir); err != nil {
		t.Fatalf("SetRemoteURL() error = %v", err)
	}

	branch, err := client.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}

	ctx := context.Background()
	if err := client.ForcePush(ctx, "origin", branch, ""); err != nil {
		t.Fatalf("ForcePush() error = %v", err)
	}
	// Pushing the same state again hits NoErrAlreadyUpToDate, which is
	// treated as success.
	if err := client.ForcePush(ctx, "origin", branch, ""); err != nil {
		t.Fatalf("ForcePush() repeat error = %v", err)
	}

	// Rewriting local history and force-pushing again must succeed.
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	commitAll(t, repo, "rewrite")
	if err := client.ForcePush(ctx, "origin", branch, ""); err != nil {
		t.Fatalf("ForcePush() after new commit error = %v", err)
	}

	remote, err := gogit.PlainOpen(remoteDir)
	if err != nil {
		t.Fatalf("failed to open remote: %v", err)
	}
	remoteRef, err := remote.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("failed to read remote branch: %v", err)
	}
	localHead, err := client.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if remoteRef.Hash().String() != localHead {
		t.Errorf("remote head = %s, want %s", remoteRef.Hash(), localHead)
	}
}

func TestPushMissingRemote(t *testing.T) {
	dir := initTestRepo(t)
	err := NewClient(dir).Push(context.Background(), "origin", "main", "")
	if err == nil {
		t.Error("Push() with no remote configured should fail")
	}
}
