package config

import (
	"time"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// DefaultControllerConfig returns the configuration the controller binary
// runs with when no config file is found.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Network: NetworkConfig{
			Host: "0.0.0.0",
			Port: telescope.DefaultPort,
		},
		Reconnect: ReconnectConfig{
			MaxAttempts: 5,
			Delay:       2 * time.Second,
		},
		Motion: MotionConfig{
			MainLoopHz:    50.0,
			StateReportHz: 5.0,
			ChunkSteps:    10,
		},
		Safety: SafetyConfig{
			WatchdogTimeout: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			SampleRate: 1.0,
			Profiling: ProfilingConfig{
				Enabled:         false,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "skytrack.controller",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
		Hardware: "mock",
	}
}

// DefaultHostConfig returns the configuration the host binary runs with
// when no config file is found.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		Network: NetworkConfig{
			Host: "0.0.0.0",
			Port: telescope.DefaultPort,
		},
		Observer: ObserverConfig{
			LatitudeDeg:  37.4275,
			LongitudeDeg: -122.1697,
			ElevationM:   30,
		},
		PID: PIDConfig{
			Kp:        0.5,
			Ki:        0.05,
			Kd:        0.1,
			OutputMin: 0.05,
			OutputMax: 1.0,
		},
		HTTPAPI: HTTPAPIConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			SampleRate: 1.0,
			Profiling: ProfilingConfig{
				Enabled:         false,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "skytrack.host",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9091",
			Path:    "/metrics",
		},
		Simulate:           false,
		SessionLogCapacity: 1000,
	}
}
