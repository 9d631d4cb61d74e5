// Package commands implements the skytrack-controller CLI.
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
	Use:   "skytrack-controller",
	Short: "Telescope motion controller daemon",
	Long: `skytrack-controller drives the stepper motors and limit switches of a
telescope mount. It dials out to the skytrack-host process, accepts Move,
Focus, and Stop commands over a length-prefixed JSON protocol, and reports
its state back at a fixed rate.

Use "skytrack-controller [command] --help" for more information.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/skytrack/controller.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)

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
		cmd.Printf("skytrack-controller %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}
