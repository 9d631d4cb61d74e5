package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cascade-ridge/skytrack/internal/config"
	"github.com/cascade-ridge/skytrack/internal/controller/dispatch"
	"github.com/cascade-ridge/skytrack/internal/controller/hardware"
	"github.com/cascade-ridge/skytrack/internal/controller/motion"
	"github.com/cascade-ridge/skytrack/internal/controller/safety"
	"github.com/cascade-ridge/skytrack/internal/controller/session"
	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/internal/profiling"
	"github.com/cascade-ridge/skytrack/internal/telemetry"
)

var (
	startHost string
	startPort int
	startMock bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Connect to the host and run the motion dispatch loop",
	Long: `Start dials skytrack-host, then runs the fixed-rate dispatch loop:
feed the safety watchdog, run the safety tick, drain one inbound command,
send a periodic state report.

--host/--port/--mock override the config file, matching the source's
"host, port, mock-mode" startup arguments.

Examples:
  skytrack-controller start
  skytrack-controller start --config /etc/skytrack/controller.yaml
  skytrack-controller start --host 192.168.1.5 --port 5555 --mock`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startHost, "host", "", "host address to dial (overrides config)")
	startCmd.Flags().IntVar(&startPort, "port", 0, "host port to dial (overrides config)")
	startCmd.Flags().BoolVar(&startMock, "mock", false, "force mock hardware regardless of config")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadController(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Network.Host = startHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Network.Port = startPort
	}
	if cmd.Flags().Changed("mock") {
		if startMock {
			cfg.Hardware = "mock"
		} else {
			cfg.Hardware = "real"
		}
	}

	if err := logger.Init(cfg.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Named("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "skytrack-controller",
		ServiceVersion: Version,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			log.Error("telemetry shutdown error", logger.KeyError, err.Error())
		}
	}()

	profilingShutdown, err := profiling.Start(profiling.Config{
		Enabled:         cfg.Telemetry.Profiling.Enabled,
		ApplicationName: cfg.Telemetry.Profiling.ApplicationName,
		ServerAddress:   cfg.Telemetry.Profiling.ServerAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			log.Error("profiling shutdown error", logger.KeyError, err.Error())
		}
	}()

	metrics.Init(cfg.Metrics.Enabled)
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler()}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", logger.KeyError, err.Error())
			}
		}()
		log.Info("metrics enabled", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
	} else {
		log.Info("metrics disabled")
	}

	gpio, altMotor, azMotor, focusMotor, sensors := createHardware(cfg.Hardware)
	defer gpio.Cleanup()

	errs := state.NewErrorState()
	stateMgr := state.NewManager(errs)
	safetyMgr := safety.NewManager(sensors, stateMgr, errs, []safety.Stoppable{altMotor, azMotor, focusMotor}, cfg.Safety.WatchdogTimeout)
	motorCtrl := motion.NewMotorController(altMotor, azMotor, safetyMgr, stateMgr, errs, cfg.Motion.ChunkSteps)
	focusCtrl := motion.NewFocusController(focusMotor, stateMgr, errs)

	sess := session.New(cfg.Network.Host, cfg.Network.Port, cfg.Reconnect.MaxAttempts, cfg.Reconnect.Delay, errs)
	log.Info("connecting to host", "host", cfg.Network.Host, "port", cfg.Network.Port, "hardware", cfg.Hardware)
	if !sess.Connect() {
		log.Warn("initial connect failed, will retry from the receiver loop")
	}
	sess.StartReceiver()
	defer sess.Disconnect()

	loop := dispatch.New(sess.Inbound, sess, motorCtrl, focusCtrl, safetyMgr, stateMgr, errs, cfg.Motion.MainLoopHz, cfg.Motion.StateReportHz)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	log.Info("entering dispatch loop")
	loop.Run(ctx)

	if metricsServer != nil {
		_ = metricsServer.Close()
	}
	log.Info("shutdown complete")
	return nil
}

// createHardware wires either mock or GPIO-stub hardware per cfg.Hardware
// ("mock" or "real"), mirroring the source's create_hardware(use_mock).
func createHardware(mode string) (gpio hardware.GPIOProvider, altMotor, azMotor, focusMotor hardware.MotorDriver, sensors hardware.SensorReader) {
	if mode == "real" {
		g := hardware.NewHardwareGPIOProvider()
		hardware.Initialize(g, []hardware.MotorPins{hardware.AltMotor, hardware.AzMotor, hardware.FocusMotor}, hardware.Sensors)
		return g,
			hardware.NewStepperMotorDriver(g, hardware.AltMotor),
			hardware.NewStepperMotorDriver(g, hardware.AzMotor),
			hardware.NewStepperMotorDriver(g, hardware.FocusMotor),
			hardware.NewGPIOSensorReader(g, hardware.Sensors)
	}
	return hardware.NewMockGPIOProvider(),
		hardware.NewMockMotorDriver(),
		hardware.NewMockMotorDriver(),
		hardware.NewMockMotorDriver(),
		hardware.NewMockSensorReader()
}
