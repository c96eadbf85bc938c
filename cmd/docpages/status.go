package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docpages/docpages/pkg/config"
	"github.com/docpages/docpages/pkg/git"
	"github.com/docpages/docpages/pkg/github"
)

var statusRemote string

var statusCmd = &cobra.Command{
	Use:   "status [workspace]",
	Short: "Show the GitHub Pages status of the repository",
	Long: `Show the GitHub Pages status of the repository.

Looks up the configured remote, resolves the GitHub repository it points
at, and queries the Pages API for the site URL, build status, and source
branch. Requires GH_PAGES_TOKEN.`,
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

		remote := statusRemote
		if remote == "" {
			remote = config.DefaultRemote
		}
		remoteURL, err := git.NewClient(absWorkspace).RemoteURL(remote)
		if err != nil {
			return err
		}

		repo, err := github.ParseRemote(remoteURL)
		if err != nil {
			return fmt.Errorf("remote %q is not a GitHub repository: %w", remote, err)
		}

		token := os.Getenv(config.EnvToken)
		if token == "" {
			return fmt.Errorf("%s is required to query the Pages API", config.EnvToken)
		}

		client, err := github.NewClient(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to create GitHub client: %w", err)
		}

		info, err := client.GetSiteInfo(ctx, repo.Owner, repo.Name)
		if err != nil {
			return err
		}

		fmt.Printf("Repository: %s\n", repo)
		fmt.Printf("Site:       %s\n", info.HTMLURL)
		fmt.Printf("Status:     %s\n", info.Status)
		if info.SourceBranch != "" {
			fmt.Printf("Source:     %s\n", info.SourceBranch)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusRemote, "remote", "", "Git remote to resolve the repository from (default: origin)")
	rootCmd.AddCommand(statusCmd)
}
