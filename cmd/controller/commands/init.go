package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cascade-ridge/skytrack/internal/cliutil/prompt"
	"github.com/cascade-ridge/skytrack/internal/config"
)

var (
	initForce    bool
	initHost     string
	initPort     int
	initHardware string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a controller configuration file",
	Long: `Write a skytrack-controller configuration file.

When run without --host/--port/--hardware, prompts interactively for the
host address to dial and the hardware mode. Otherwise uses the given flag
values, defaulting anything unset.

By default the file is created at $XDG_CONFIG_HOME/skytrack/controller.yaml.
Use --config to pick a different path.

Examples:
  skytrack-controller init
  skytrack-controller init --host 192.168.1.10 --port 5555 --hardware real
  skytrack-controller init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().StringVar(&initHost, "host", "", "host address to dial")
	initCmd.Flags().IntVar(&initPort, "port", 0, "host port to dial")
	initCmd.Flags().StringVar(&initHardware, "hardware", "", "hardware mode (mock|real)")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = filepath.Join(config.GetConfigDir(), "controller.yaml")
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("%s already exists, overwrite", path), false)
		if err != nil {
			return err
		}
		if !confirmed {
			cmd.Println("Aborted.")
			return nil
		}
	}

	cfg := config.DefaultControllerConfig()

	hasFlags := cmd.Flags().Changed("host") || cmd.Flags().Changed("port") || cmd.Flags().Changed("hardware")
	if hasFlags {
		if cmd.Flags().Changed("host") {
			cfg.Network.Host = initHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Network.Port = initPort
		}
		if cmd.Flags().Changed("hardware") {
			cfg.Hardware = initHardware
		}
	} else {
		host, err := prompt.Input("Host address to dial", cfg.Network.Host)
		if err != nil {
			return err
		}
		port, err := prompt.InputPort("Host port to dial", cfg.Network.Port)
		if err != nil {
			return err
		}
		hardware, err := prompt.SelectString("Hardware mode", []string{"mock", "real"})
		if err != nil {
			return err
		}
		cfg.Network.Host = host
		cfg.Network.Port = port
		cfg.Hardware = hardware
	}

	if err := config.SaveControllerConfig(&cfg, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	cmd.Printf("Configuration file created at: %s\n", path)
	cmd.Printf("  network: %s:%d  hardware: %s\n", cfg.Network.Host, cfg.Network.Port, cfg.Hardware)
	cmd.Printf("Run: skytrack-controller start --config %s\n", path)
	return nil
}
