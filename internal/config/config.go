// Package config loads ControllerConfig and HostConfig from YAML files,
// environment variables, and defaults, using the same viper/mapstructure/
// validator stack and precedence order as the filesystem server this
// project grew out of.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cascade-ridge/skytrack/internal/logger"
)

// LoggingConfig controls internal/logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled    bool             `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string           `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRate float64          `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
	Profiling  ProfilingConfig  `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls the pyroscope continuous profiler.
type ProfilingConfig struct {
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
	ServerAddress  string `mapstructure:"server_address" yaml:"server_address"`
	ApplicationName string `mapstructure:"application_name" yaml:"application_name"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Path    string `mapstructure:"path" validate:"required" yaml:"path"`
}

// NetworkConfig addresses the controller/host TCP link. The controller
// dials Host:Port; the host listens on Port.
type NetworkConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`
}

// ReconnectConfig bounds the controller's reconnect loop.
type ReconnectConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"required,gt=0" yaml:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay" validate:"required,gt=0" yaml:"delay"`
}

// MotionConfig overrides the default stepping/slew tuning in pkg/telescope.
type MotionConfig struct {
	MainLoopHz     float64 `mapstructure:"main_loop_hz" validate:"required,gt=0" yaml:"main_loop_hz"`
	StateReportHz  float64 `mapstructure:"state_report_hz" validate:"required,gt=0" yaml:"state_report_hz"`
	ChunkSteps     int     `mapstructure:"chunk_steps" validate:"required,gt=0" yaml:"chunk_steps"`
}

// SafetyConfig overrides watchdog/limit tuning.
type SafetyConfig struct {
	WatchdogTimeout time.Duration `mapstructure:"watchdog_timeout" validate:"required,gt=0" yaml:"watchdog_timeout"`
}

// ControllerConfig is the controller binary's full configuration.
type ControllerConfig struct {
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Reconnect ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`
	Motion    MotionConfig    `mapstructure:"motion" yaml:"motion"`
	Safety    SafetyConfig    `mapstructure:"safety" yaml:"safety"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Hardware  string          `mapstructure:"hardware" validate:"required,oneof=mock real" yaml:"hardware"`
}

// PIDConfig overrides the tracking loop's proportional/integral/derivative
// gains and output clamp.
type PIDConfig struct {
	Kp        float64 `mapstructure:"kp" yaml:"kp"`
	Ki        float64 `mapstructure:"ki" yaml:"ki"`
	Kd        float64 `mapstructure:"kd" yaml:"kd"`
	OutputMin float64 `mapstructure:"output_min" yaml:"output_min"`
	OutputMax float64 `mapstructure:"output_max" yaml:"output_max"`
}

// ObserverConfig is the site the host resolves Alt/Az targets for.
type ObserverConfig struct {
	LatitudeDeg  float64 `mapstructure:"latitude_deg" validate:"gte=-90,lte=90" yaml:"latitude_deg"`
	LongitudeDeg float64 `mapstructure:"longitude_deg" validate:"gte=-180,lte=180" yaml:"longitude_deg"`
	ElevationM   float64 `mapstructure:"elevation_m" yaml:"elevation_m"`
}

// HTTPAPIConfig controls the host's debug HTTP server.
type HTTPAPIConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required" yaml:"addr"`
}

// HostConfig is the host binary's full configuration.
type HostConfig struct {
	Network   NetworkConfig   `mapstructure:"network" yaml:"network"`
	Observer  ObserverConfig  `mapstructure:"observer" yaml:"observer"`
	PID       PIDConfig       `mapstructure:"pid" yaml:"pid"`
	HTTPAPI   HTTPAPIConfig   `mapstructure:"httpapi" yaml:"httpapi"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Simulate  bool            `mapstructure:"simulate" yaml:"simulate"`
	SessionLogCapacity int    `mapstructure:"session_log_capacity" validate:"required,gt=0" yaml:"session_log_capacity"`
}

var structValidator = validator.New()

// LoadController loads a ControllerConfig the same way LoadHost loads a
// HostConfig: env (SKYTRACK_*) overrides file overrides defaults. An
// environment variable only overrides a key the config file also sets; when
// no file is found the defaults are returned and the environment is not read.
func LoadController(configPath string) (*ControllerConfig, error) {
	v := viper.New()
	setupViper(v, "controller", configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := DefaultControllerConfig()
		return &cfg, nil
	}

	cfg := DefaultControllerConfig()
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal controller config: %w", err)
	}
	if err := structValidator.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("controller config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadHost loads a HostConfig from file, environment, and defaults.
func LoadHost(configPath string) (*HostConfig, error) {
	v := viper.New()
	setupViper(v, "host", configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := DefaultHostConfig()
		return &cfg, nil
	}

	cfg := DefaultHostConfig()
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal host config: %w", err)
	}
	if err := structValidator.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("host config validation failed: %w", err)
	}
	return &cfg, nil
}

// SaveControllerConfig writes cfg to path in YAML, matching SaveHostConfig.
func SaveControllerConfig(cfg *ControllerConfig, path string) error {
	return saveYAML(cfg, path)
}

// SaveHostConfig writes cfg to path in YAML.
func SaveHostConfig(cfg *HostConfig, path string) error {
	return saveYAML(cfg, path)
}

func saveYAML(cfg any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper wires SKYTRACK_<SECTION>_<KEY> env overrides (the same prefix
// for both binaries) and config file search at
// $XDG_CONFIG_HOME/skytrack/<binary>.yaml.
func setupViper(v *viper.Viper, binary, configPath string) {
	v.SetEnvPrefix("SKYTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName(binary)
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook lets config files write "30s"/"5m" for time.Duration
// fields instead of raw nanoseconds.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skytrack")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "skytrack")
}

// GetConfigDir exposes the resolved configuration directory, e.g. for an
// `init` subcommand that writes a starter file there.
func GetConfigDir() string {
	return getConfigDir()
}

// LoggerConfig adapts a LoggingConfig into the shape internal/logger.Init
// expects.
func (l LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{Level: l.Level, Format: l.Format, Output: l.Output}
}
