package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cascade-ridge/skytrack/internal/config"
	"github.com/cascade-ridge/skytrack/internal/host/autofocus"
	"github.com/cascade-ridge/skytrack/internal/host/mirror"
	"github.com/cascade-ridge/skytrack/internal/host/receiver"
	"github.com/cascade-ridge/skytrack/internal/host/resolve"
	"github.com/cascade-ridge/skytrack/internal/host/sender"
	"github.com/cascade-ridge/skytrack/internal/host/sessionlog"
	"github.com/cascade-ridge/skytrack/internal/host/simulate"
	"github.com/cascade-ridge/skytrack/internal/host/tracker"
	"github.com/cascade-ridge/skytrack/internal/httpapi"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/internal/profiling"
	"github.com/cascade-ridge/skytrack/internal/telemetry"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

var (
	startHost     string
	startPort     int
	startLat      float64
	startLon      float64
	startElev     float64
	startSimulate bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the operator session: accept the controller, track, and serve status",
	Long: `Start listens for a single skytrack-controller connection (or, with
--simulate / simulate: true in the config, runs entirely in-process against
a built-in simulator), runs the tracking loop, and drops into an operator
REPL that accepts move/focus/stop/track/autofocus/status/log commands.

--host/--port/--lat/--lon/--elev/--simulate override the config file,
matching the source's "host, port, lat, lon, elev, simulate" startup
arguments.

Examples:
  skytrack-host start
  skytrack-host start --config /etc/skytrack/host.yaml
  skytrack-host start --lat 37.4275 --lon -122.1697 --elev 30 --simulate`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startHost, "host", "", "listen address (overrides config)")
	startCmd.Flags().IntVar(&startPort, "port", 0, "listen port (overrides config)")
	startCmd.Flags().Float64Var(&startLat, "lat", 0, "observer latitude, degrees (overrides config)")
	startCmd.Flags().Float64Var(&startLon, "lon", 0, "observer longitude, degrees (overrides config)")
	startCmd.Flags().Float64Var(&startElev, "elev", 0, "observer elevation, meters (overrides config)")
	startCmd.Flags().BoolVar(&startSimulate, "simulate", false, "run against the in-process simulator instead of a real controller")
}

// commandSender is the subset of sender.Sender and the simulate adapter
// both satisfy, letting the REPL and autofocus/tracker share one interface
// regardless of which transport backs the session.
type commandSender interface {
	SendMove(alt, az, speed float64) (string, bool)
	SendFocus(direction string, steps int) (string, bool)
	SendStop(emergency bool) (string, bool)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadHost(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Network.Host = startHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Network.Port = startPort
	}
	if cmd.Flags().Changed("lat") {
		cfg.Observer.LatitudeDeg = startLat
	}
	if cmd.Flags().Changed("lon") {
		cfg.Observer.LongitudeDeg = startLon
	}
	if cmd.Flags().Changed("elev") {
		cfg.Observer.ElevationM = startElev
	}
	if cmd.Flags().Changed("simulate") {
		cfg.Simulate = startSimulate
	}

	if err := logger.Init(cfg.Logging.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Named("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "skytrack-host",
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

	state := mirror.New()
	session := sessionlog.New(cfg.SessionLogCapacity)
	resolver := resolve.NewCatalogResolver(nil)

	var cmdSender commandSender
	var stopTransport func()

	if cfg.Simulate {
		cmdSender, stopTransport = startSimulatedTransport(ctx, state)
		log.Info("running against in-process simulator, no controller connection expected")
	} else {
		realSender, realStopTransport, err := startListener(ctx, cfg.Network.Host, cfg.Network.Port, state, session)
		if err != nil {
			return fmt.Errorf("failed to start listener: %w", err)
		}
		cmdSender = realSender
		stopTransport = realStopTransport
	}
	defer stopTransport()

	pid := tracker.NewPID(cfg.PID.Kp, cfg.PID.Ki, cfg.PID.Kd, cfg.PID.OutputMin, cfg.PID.OutputMax)
	tracking := tracker.NewWithPID(cmdSender, state, session, cfg.Observer.LatitudeDeg, cfg.Observer.LongitudeDeg, cfg.Observer.ElevationM, resolver, pid)
	focus := autofocus.New(cmdSender, state, session)

	var apiServer *http.Server
	if cfg.HTTPAPI.Enabled {
		router := httpapi.NewRouter(state, tracking)
		apiServer = &http.Server{Addr: cfg.HTTPAPI.Addr, Handler: router}
		go func() {
			if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("http api server error", logger.KeyError, err.Error())
			}
		}()
		log.Info("http status api enabled", "addr", cfg.HTTPAPI.Addr)
	}

	trackingDone := runTrackingLoop(ctx, tracking)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	runREPL(ctx, cmd, cmdSender, tracking, focus, state, session)

	cancel()
	<-trackingDone
	if apiServer != nil {
		_ = apiServer.Close()
	}
	if metricsServer != nil {
		_ = metricsServer.Close()
	}
	log.Info("shutdown complete")
	return nil
}

// startListener opens cfg.Network's TCP listener and accepts a single
// controller connection at a time, rewiring the receiver/sender on every
// reconnect. It mirrors the source's single-client TCPServer.
func startListener(ctx context.Context, host string, port int, state *mirror.State, session *sessionlog.Log) (*sender.Sender, func(), error) {
	log := logger.Named("listener")
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	replies := make(chan telescope.Response, 64)
	send := sender.New(session, replies)
	recv := receiver.New(state, session)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					log.Error("accept error", logger.KeyError, err.Error())
					continue
				}
			}
			log.Info("controller connected", "remote", conn.RemoteAddr().String())
			send.SetConn(conn)
			recv.Start(conn)
			go forwardReplies(recv.Replies, replies)
		}
	}()

	log.Info("listening for controller", "addr", addr)

	stop := func() {
		_ = ln.Close()
		recv.Stop()
	}
	return send, stop, nil
}

// forwardReplies relays receiver.Receiver.Replies onto the sender's reply
// channel, whose dispatcher hands each reply to the matching
// sender.Sender.WaitForAck call; the two are separate channels so a
// fresh receiver can be installed across reconnects without the sender
// noticing.
func forwardReplies(from <-chan telescope.Response, to chan<- telescope.Response) {
	for resp := range from {
		to <- resp
	}
}

// simulatedSender adapts simulate.Simulator's synchronous SendCommand to
// the SendMove/SendFocus/SendStop shape tracker.Controller and
// autofocus.Controller expect, and feeds every resulting Snapshot into the
// mirror the same way the receiver does for a real controller.
type simulatedSender struct {
	sim *simulate.Simulator
}

func (a simulatedSender) SendMove(alt, az, speed float64) (string, bool) {
	cmd := telescope.NewMoveCommand(alt, az, &speed, nil)
	resp := a.sim.SendCommand(cmd)
	return resp.CommandID, resp.MessageType == telescope.MessageAck
}

func (a simulatedSender) SendFocus(direction string, steps int) (string, bool) {
	cmd := telescope.NewFocusCommand(direction, steps, nil)
	resp := a.sim.SendCommand(cmd)
	return resp.CommandID, resp.MessageType == telescope.MessageAck
}

func (a simulatedSender) SendStop(emergency bool) (string, bool) {
	cmd := telescope.NewStopCommand(emergency, "")
	resp := a.sim.SendCommand(cmd)
	return resp.CommandID, resp.MessageType == telescope.MessageAck
}

// startSimulatedTransport runs simulate.Simulator in-process and mirrors
// every snapshot it publishes, standing in for a controller connection.
func startSimulatedTransport(ctx context.Context, state *mirror.State) (commandSender, func()) {
	sim := simulate.New(0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-sim.States:
				if !ok {
					return
				}
				state.UpdateFromController(snap)
			}
		}
	}()
	return simulatedSender{sim: sim}, func() { <-done }
}

// runTrackingLoop ticks tracking.Update at the telescope package's
// tracking rate until ctx is cancelled, returning a channel closed once
// the loop has exited.
func runTrackingLoop(ctx context.Context, tracking *tracker.Controller) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(time.Duration(float64(time.Second) / telescope.TrackingLoopHz))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tracking.Update()
			}
		}
	}()
	return done
}

const helpText = `Commands:
  move <alt> <az> [speed]  - Slew to alt/az (speed 0.0-1.0, default 0.5)
  focus <in|out> <steps>   - Move focus motor
  stop [emergency]         - Stop movement (add 'emergency' for e-stop)
  track <name>             - Track a celestial object by name
  track stop               - Stop tracking
  autofocus                - Run autofocus routine
  status                   - Show telescope state
  tracking                 - Show tracking info
  log [count]              - Show recent log entries
  help                     - Show this help
  quit                     - Exit`

// runREPL reads operator commands from stdin until EOF, quit, or ctx is
// cancelled, mirroring host/ui/host_interface.py's command loop.
func runREPL(ctx context.Context, cmd *cobra.Command, send commandSender, tracking *tracker.Controller, focus *autofocus.Controller, state *mirror.State, session *sessionlog.Log) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, helpText)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Fprint(out, "skytrack> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if dispatchREPLCommand(out, line, send, tracking, focus, state, session) {
				return
			}
		}
	}
}

// dispatchREPLCommand runs one REPL line, returning true if the REPL
// should stop (a "quit" command).
func dispatchREPLCommand(out io.Writer, line string, send commandSender, tracking *tracker.Controller, focus *autofocus.Controller, state *mirror.State, session *sessionlog.Log) bool {
	parts := strings.Fields(line)
	replCmd := strings.ToLower(parts[0])
	cmdArgs := parts[1:]

	switch replCmd {
	case "move":
		replMove(out, cmdArgs, send)
	case "focus":
		replFocus(out, cmdArgs, send)
	case "stop":
		replStop(out, cmdArgs, send)
	case "track":
		replTrack(out, cmdArgs, tracking)
	case "autofocus":
		fmt.Fprintln(out, "Running autofocus...")
		if focus.RunAutofocus(nil) {
			fmt.Fprintln(out, "Autofocus improved focus position")
		} else {
			fmt.Fprintln(out, "Autofocus found no improvement")
		}
	case "status":
		fmt.Fprintln(out, formatState(state.Latest()))
	case "tracking":
		fmt.Fprintln(out, formatTrackingInfo(tracking.GetTrackingInfo()))
	case "log":
		replLog(out, cmdArgs, session)
	case "help":
		fmt.Fprintln(out, helpText)
	case "quit":
		return true
	default:
		fmt.Fprintf(out, "Unknown command: %s (type 'help' for commands)\n", replCmd)
	}
	return false
}

func replMove(out io.Writer, args []string, send commandSender) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: move <alt> <az> [speed]")
		return
	}
	alt, err1 := strconv.ParseFloat(args[0], 64)
	az, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(out, "alt and az must be numbers")
		return
	}
	speed := 0.5
	if len(args) > 2 {
		s, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintln(out, "speed must be a number")
			return
		}
		speed = s
	}
	if id, ok := send.SendMove(alt, az, speed); ok {
		fmt.Fprintf(out, "Move command sent (id=%s)\n", id)
	} else {
		fmt.Fprintln(out, "Failed to send move command")
	}
}

func replFocus(out io.Writer, args []string, send commandSender) {
	if len(args) < 2 {
		fmt.Fprintln(out, "Usage: focus <in|out> <steps>")
		return
	}
	direction := strings.ToLower(args[0])
	if direction != telescope.FocusIn && direction != telescope.FocusOut {
		fmt.Fprintln(out, "Direction must be 'in' or 'out'")
		return
	}
	steps, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(out, "steps must be an integer")
		return
	}
	if id, ok := send.SendFocus(direction, steps); ok {
		fmt.Fprintf(out, "Focus command sent (id=%s)\n", id)
	} else {
		fmt.Fprintln(out, "Failed to send focus command")
	}
}

func replStop(out io.Writer, args []string, send commandSender) {
	emergency := len(args) > 0 && strings.ToLower(args[0]) == "emergency"
	id, ok := send.SendStop(emergency)
	label := "Stop"
	if emergency {
		label = "Emergency stop"
	}
	if ok {
		fmt.Fprintf(out, "%s sent (id=%s)\n", label, id)
	} else {
		fmt.Fprintln(out, "Failed to send stop command")
	}
}

func replTrack(out io.Writer, args []string, tracking *tracker.Controller) {
	if len(args) == 0 {
		fmt.Fprintln(out, "Usage: track <name> | track stop")
		return
	}
	if strings.ToLower(args[0]) == "stop" {
		tracking.StopTracking()
		fmt.Fprintln(out, "Tracking stopped")
		return
	}
	name := strings.Join(args, " ")
	if tracking.StartTracking(name) {
		fmt.Fprintf(out, "Now tracking: %s\n", name)
	} else {
		fmt.Fprintf(out, "Failed to start tracking '%s'\n", name)
	}
}

func replLog(out io.Writer, args []string, session *sessionlog.Log) {
	count := 10
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			count = n
		}
	}
	entries := session.GetRecent(count)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No log entries.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "[%s] %s: %v\n", e.Timestamp.Format("15:04:05"), e.Category, e.Data)
	}
}

func formatState(snap *telescope.Snapshot) string {
	if snap == nil {
		return "No state received from controller yet."
	}
	const width = 48
	var b strings.Builder
	fmt.Fprintln(&b, strings.Repeat("=", width))
	fmt.Fprintf(&b, "  Position:  alt=%.4f  az=%.4f\n", snap.CurrentAltDeg, snap.CurrentAzDeg)
	if snap.TargetAltDeg != nil && snap.TargetAzDeg != nil {
		fmt.Fprintf(&b, "  Target:    alt=%.4f  az=%.4f\n", *snap.TargetAltDeg, *snap.TargetAzDeg)
	}
	fmt.Fprintf(&b, "  Status:    %s\n", string(snap.Status))
	if snap.FocusPosition != nil {
		fmt.Fprintf(&b, "  Focus:     %d\n", *snap.FocusPosition)
	}
	if snap.IsTracking {
		fmt.Fprintln(&b, "  Tracking:  YES")
	}
	if len(snap.ErrorCodes) > 0 {
		fmt.Fprintf(&b, "  Errors:    %v\n", snap.ErrorCodes)
	}
	fmt.Fprint(&b, strings.Repeat("=", width))
	return b.String()
}

func formatTrackingInfo(info tracker.Info) string {
	if !info.Tracking {
		return "Not tracking"
	}
	status := "CORRECTING"
	if info.WithinTolerance {
		status = "OK"
	}
	return fmt.Sprintf("Tracking %s | target alt=%.2f az=%.2f | error=%.4f deg | %s",
		info.Target, info.TargetAltDeg, info.TargetAzDeg, info.ErrorDeg, status)
}
