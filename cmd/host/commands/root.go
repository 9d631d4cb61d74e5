// Package commands implements the skytrack-host CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "skytrack-host",
	Short: "Telescope operator daemon",
	Long: `skytrack-host accepts a single skytrack-controller connection, tracks
celestial targets by re-resolving them every tick and issuing corrective
Move commands, and exposes an operator REPL plus a read-only HTTP status
API.

Use "skytrack-host [command] --help" for more information.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/skytrack/host.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("skytrack-host %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}
