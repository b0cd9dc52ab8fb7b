package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/blogfront"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "blogfront",
	Short: "Single-page blog front-end served against the blog API",
	Long: `blogfront serves the blog's single-page front-end. It renders the post
list, post detail and post form views, handles login and signup against
the blog API, and keeps per-tab session state on the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config",
		blogfront.EnvOr(blogfront.EnvPrefix+"CONFIG", "blogfront.yaml"), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug || verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
