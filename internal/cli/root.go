// Package cli implements ferry's command line interface.
// This package provides Cobra commands that delegate to the config,
// engine, pipeline and registryclient layers.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ferry/pkg/logger"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var (
	configPath  string
	contextFlag string
	logLevel    string
)

// NewRootCmd creates the root command for the ferry CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ferry",
		Short: "Ferry - build and ship container images through remote engines",
		Long: `Ferry builds container images against a named remote Docker engine
and pushes them to a private registry.

Engines are saved as contexts: a TLS-secured endpoint plus the registry
credentials to use when pushing through it. Select a context once with
'ferry context use' and every build and push targets it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logger.GetLogger()
			log.ConfigureFromEnv()
			if logLevel != "" {
				log.SetLogLevel(logLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the contexts file (default ~/.config/ferry/contexts.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextFlag, "context", "c", "", "Context to target (overrides the active context)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newContextCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newShipCmd())
	rootCmd.AddCommand(newTagsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the CLI with version information from the build.
func Execute(version, commit, date string) {
	SetVersionInfo(version, commit, date)

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(version, commit, date string) {
	if version != "" {
		Version = version
	}
	if commit != "" {
		Commit = commit
	}
	if date != "" {
		BuildDate = date
	}
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("ferry %s\n", Version)
			cmd.Printf("Commit: %s\n", Commit)
			cmd.Printf("Build Date: %s\n", BuildDate)
		},
	}
}
