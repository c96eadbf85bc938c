package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docpages/docpages/pkg/config"
	"github.com/docpages/docpages/pkg/preflight"
)

var (
	checkBuildDir   string
	checkBranch     string
	checkForce      bool
	checkConfigPath string
)

var checkCmd = &cobra.Command{
	Use:   "check [workspace]",
	Short: "Run preflight checks without publishing",
	Long: `Run preflight checks without publishing.

This verifies that a publish would have what it needs: the build output
exists and is non-empty, the workspace is a git repository with the pages
branch, a push token is available when one would be required, and the
committer identity is resolvable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspace := "."
		if len(args) == 1 {
			workspace = args[0]
		}
		absWorkspace, err := filepath.Abs(workspace)
		if err != nil {
			return fmt.Errorf("failed to resolve workspace path: %w", err)
		}

		fileCfg, err := config.LoadProjectFile(absWorkspace, checkConfigPath)
		if err != nil {
			return err
		}

		cfg := config.Resolve(absWorkspace, config.Flags{
			BuildDir: checkBuildDir,
			Branch:   checkBranch,
			Force:    checkForce,
		}, fileCfg)

		checker := preflight.NewChecker(preflight.Config{Publish: &cfg})
		if err := checker.Run(context.Background()); err != nil {
			return err
		}

		fmt.Println("All checks passed.")
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkBuildDir, "build-dir", "b", "", "Path to the built documentation (default: doc/build/html)")
	checkCmd.Flags().StringVar(&checkBranch, "branch", "", "Branch hosting the published site (default: gh-pages)")
	checkCmd.Flags().BoolVar(&checkForce, "force", false, "Check as if the publish would push to the remote")
	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "Path to the project config file (default: <workspace>/.docpages.yaml)")
	rootCmd.AddCommand(checkCmd)
}
