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
	initForce bool
	initPort  int
	initLat   float64
	initLon   float64
	initElev  float64
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a host configuration file",
	Long: `Write a skytrack-host configuration file.

When run without --port/--lat/--lon/--elev, prompts interactively for the
listen port and observer location. Otherwise uses the given flag values,
defaulting anything unset.

By default the file is created at $XDG_CONFIG_HOME/skytrack/host.yaml.
Use --config to pick a different path.

Examples:
  skytrack-host init
  skytrack-host init --port 5555 --lat 37.4275 --lon -122.1697 --elev 30
  skytrack-host init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().IntVar(&initPort, "port", 0, "port to listen for the controller on")
	initCmd.Flags().Float64Var(&initLat, "lat", 0, "observer latitude, degrees")
	initCmd.Flags().Float64Var(&initLon, "lon", 0, "observer longitude, degrees")
	initCmd.Flags().Float64Var(&initElev, "elev", 0, "observer elevation, meters")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = filepath.Join(config.GetConfigDir(), "host.yaml")
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

	cfg := config.DefaultHostConfig()

	hasFlags := cmd.Flags().Changed("port") || cmd.Flags().Changed("lat") ||
		cmd.Flags().Changed("lon") || cmd.Flags().Changed("elev")
	if hasFlags {
		if cmd.Flags().Changed("port") {
			cfg.Network.Port = initPort
		}
		if cmd.Flags().Changed("lat") {
			cfg.Observer.LatitudeDeg = initLat
		}
		if cmd.Flags().Changed("lon") {
			cfg.Observer.LongitudeDeg = initLon
		}
		if cmd.Flags().Changed("elev") {
			cfg.Observer.ElevationM = initElev
		}
	} else {
		port, err := prompt.InputPort("Port to listen for the controller on", cfg.Network.Port)
		if err != nil {
			return err
		}
		lat, err := prompt.InputFloat("Observer latitude, degrees", cfg.Observer.LatitudeDeg)
		if err != nil {
			return err
		}
		lon, err := prompt.InputFloat("Observer longitude, degrees", cfg.Observer.LongitudeDeg)
		if err != nil {
			return err
		}
		elev, err := prompt.InputFloat("Observer elevation, meters", cfg.Observer.ElevationM)
		if err != nil {
			return err
		}
		cfg.Network.Port = port
		cfg.Observer.LatitudeDeg = lat
		cfg.Observer.LongitudeDeg = lon
		cfg.Observer.ElevationM = elev
	}

	if err := config.SaveHostConfig(&cfg, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	cmd.Printf("Configuration file created at: %s\n", path)
	cmd.Printf("  listen port: %d  observer: lat=%.4f lon=%.4f elev=%.1f\n",
		cfg.Network.Port, cfg.Observer.LatitudeDeg, cfg.Observer.LongitudeDeg, cfg.Observer.ElevationM)
	cmd.Printf("Run: skytrack-host start --config %s\n", path)
	return nil
}
