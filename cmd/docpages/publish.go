package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/docpages/docpages/pkg/config"
	"github.com/docpages/docpages/pkg/github"
	"github.com/docpages/docpages/pkg/log"
	"github.com/docpages/docpages/pkg/preflight"
	"github.com/docpages/docpages/pkg/publisher"
	"github.com/docpages/docpages/pkg/publisher/pages"
)

var (
	publishBuildDir       string
	publishTag            string
	publishCommitterName  string
	publishCommitterEmail string
	publishRemote         string
	publishRemoteURL      string
	publishBranch         string
	publishDevelDir       string
	publishCommitSHA      string
	publishForce          bool
	publishDryRun         bool
	publishSkipPreflight  bool
	publishPagesBuild     bool
	publishResultPath     string
	publishConfigPath     string
)

var publishCmd = &cobra.Command{
	Use:   "publish [workspace]",
	Short: "Publish built documentation to the pages branch",
	Long: `Publish built documentation to the pages branch.

The workspace (default: current directory) must be a git repository that
already has the pages branch. The command checks out that branch, replaces
the development directory with the build output, mirrors the output to the
repository root when a release tag is set, commits as the configured
identity, and force-pushes.

Configuration is resolved from flags, environment variables (GIT_TAG,
GH_PAGES_TOKEN, GITHUB_SHA, GIT_AUTHOR_NAME, GIT_AUTHOR_EMAIL), an optional
.docpages.yaml in the workspace, and defaults, in that order. The push
token is only ever read from the environment.

The remote is not touched unless --force is passed: without it the commit
is created locally and the push is skipped.

Examples:
  docpages publish --force
  docpages publish ~/src/project --build-dir doc/build/html --dry-run
  GIT_TAG=v1.2 docpages publish --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		workspace := "."
		if len(args) == 1 {
			workspace = args[0]
		}
		absWorkspace, err := filepath.Abs(workspace)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace path: %w", err)
		}

		fileCfg, err := config.LoadProjectFile(absWorkspace, publishConfigPath)
		if err != nil {
			return err
		}

		cfg := config.Resolve(absWorkspace, config.Flags{
			BuildDir:          publishBuildDir,
			Tag:               publishTag,
			CommitterName:     publishCommitterName,
			CommitterEmail:    publishCommitterEmail,
			Remote:            publishRemote,
			RemoteURL:         publishRemoteURL,
			Branch:            publishBranch,
			DevelDir:          publishDevelDir,
			CommitSHA:         publishCommitSHA,
			Force:             publishForce,
			RequestPagesBuild: publishPagesBuild,
		}, fileCfg)

		checker := preflight.NewChecker(preflight.Config{
			Skip:    publishSkipPreflight,
			Publish: &cfg,
		})
		if err := checker.Run(ctx); err != nil {
			return err
		}

		registry := publisher.NewRegistry()
		pagesPub := pages.NewPublisher()
		if cfg.RequestPagesBuild && cfg.Token != "" {
			gh, err := github.NewClient(ctx, cfg.Token)
			if err != nil {
				return fmt.Errorf("failed to create GitHub client: %w", err)
			}
			pagesPub.Builds = gh
		}
		if err := registry.Register(pagesPub); err != nil {
			return fmt.Errorf("failed to register pages publisher: %w", err)
		}

		fmt.Printf("Publishing %s to %s/%s...\n", cfg.BuildDir, cfg.Remote, cfg.Branch)
		if publishDryRun {
			fmt.Println("Dry-run mode: no actual changes will be made")
		}

		result, publishErr := registry.Publish(ctx, pagesPub.Name(), publisher.PublishRequest{
			Target:       cfg.Branch,
			WorkspaceDir: absWorkspace,
			Config:       &cfg,
			DryRun:       publishDryRun,
		})

		resultPath := publishResultPath
		if resultPath == "" {
			resultPath = filepath.Join(filepath.Dir(cfg.BuildDir), "publish-result.json")
		}
		if result.Provider != "" {
			if err := publisher.WriteResult(resultPath, result); err != nil {
				log.Warn("failed to write publish result", "path", resultPath, "error", err)
			}
		}

		if publishErr != nil {
			printSummary(result, resultPath)
			return fmt.Errorf("publish failed: %w", publishErr)
		}

		fmt.Printf("\nPublish completed at %s\n", result.PublishedAt.Format(time.RFC3339))
		printSummary(result, resultPath)
		return nil
	},
}

func printSummary(result publisher.PublishResult, resultPath string) {
	if result.Provider == "" {
		return
	}
	fmt.Printf("Result written to: %s\n", resultPath)

	if len(result.Actions) > 0 {
		fmt.Printf("\nActions taken (%d):\n", len(result.Actions))
		for i, action := range result.Actions {
			fmt.Printf("  %d. %s: %s\n", i+1, action.Type, action.Description)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nErrors (%d):\n", len(result.Errors))
		for i, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %d. %s", i+1, e.Message)
			if e.Context != "" {
				fmt.Fprintf(os.Stderr, " (context: %s)", e.Context)
			}
			fmt.Fprintln(os.Stderr)
		}
	}
}

func init() {
	publishCmd.Flags().StringVarP(&publishBuildDir, "build-dir", "b", "", "Path to the built documentation (default: doc/build/html)")
	publishCmd.Flags().StringVarP(&publishTag, "tag", "t", "", "Release tag; also copies the docs to the repository root (default: $GIT_TAG)")
	publishCmd.Flags().StringVar(&publishCommitterName, "committer-name", "", "Committer name for the publish commit")
	publishCmd.Flags().StringVar(&publishCommitterEmail, "committer-email", "", "Committer email for the publish commit")
	publishCmd.Flags().StringVar(&publishRemote, "remote", "", "Git remote to push to (default: origin)")
	publishCmd.Flags().StringVar(&publishRemoteURL, "remote-url", "", "Rewrite the remote URL before pushing")
	publishCmd.Flags().StringVar(&publishBranch, "branch", "", "Branch hosting the published site (default: gh-pages)")
	publishCmd.Flags().StringVar(&publishDevelDir, "devel-dir", "", "Directory on the pages branch mirroring the build output (default: devel)")
	publishCmd.Flags().StringVar(&publishCommitSHA, "commit-sha", "", "Source commit referenced in the commit message (default: $GITHUB_SHA)")
	publishCmd.Flags().BoolVar(&publishForce, "force", false, "Confirm the force-push; without it the remote is left untouched")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Simulate publish without making changes")
	publishCmd.Flags().BoolVar(&publishSkipPreflight, "skip-preflight", false, "Skip preflight checks")
	publishCmd.Flags().BoolVar(&publishPagesBuild, "request-pages-build", false, "Request a GitHub Pages build after pushing")
	publishCmd.Flags().StringVar(&publishResultPath, "result-path", "", "Path to write publish-result.json (default: next to the build directory)")
	publishCmd.Flags().StringVarP(&publishConfigPath, "config", "c", "", "Path to the project config file (default: <workspace>/.docpages.yaml)")
	rootCmd.AddCommand(publishCmd)
}
