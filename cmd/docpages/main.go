package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docpages/docpages/pkg/log"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "docpages",
	Short: "Docpages publishes built documentation to a GitHub Pages branch.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(log.Config{Level: log.Level(logLevel)})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	defer func() { _ = log.Sync() }()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
