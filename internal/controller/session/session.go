// Package session manages the controller's single outbound TCP connection
// to the host: connect, framed send/receive, and bounded reconnect with a
// fixed delay between attempts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/internal/metrics"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
	"github.com/cascade-ridge/skytrack/pkg/wire"
)

// Session owns the controller's connection to the host and the background
// receive loop that feeds decoded commands onto Inbound.
type Session struct {
	host            string
	port            int
	maxReconnect    int
	reconnectDelay  time.Duration
	errors          *state.ErrorState
	log             *slog.Logger

	mu        sync.Mutex
	conn      net.Conn
	connected bool

	shutdown chan struct{}
	wg       sync.WaitGroup

	// Inbound delivers every command successfully decoded off the wire.
	// The dispatch loop drains it non-blockingly.
	Inbound chan telescope.Command
}

// New builds a Session that reconnects up to maxReconnect times with
// reconnectDelay between attempts, matching ReconnectConfig.
func New(host string, port int, maxReconnect int, reconnectDelay time.Duration, errs *state.ErrorState) *Session {
	return &Session{
		host:           host,
		port:           port,
		maxReconnect:   maxReconnect,
		reconnectDelay: reconnectDelay,
		errors:         errs,
		log:            logger.Named("session"),
		shutdown:       make(chan struct{}),
		Inbound:        make(chan telescope.Command, 64),
	}
}

// Connect dials the host with telescope.ConnectTimeout. On success it clears
// the comms-disconnect error; on failure it records one.
func (s *Session) Connect() bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", s.host, s.port), telescope.ConnectTimeout)
	if err != nil {
		s.log.Error("connect failed", logger.KeyError, err.Error())
		s.errors.AddError(telescope.ErrCommsDisconnect, err.Error())
		return false
	}

	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()

	s.errors.ClearError(telescope.ErrCommsDisconnect)
	s.log.Info("connected", logger.KeyRemoteAddr, conn.RemoteAddr().String())
	return true
}

// Disconnect signals the receiver loop to stop, closes the socket, and waits
// for the loop to exit.
func (s *Session) Disconnect() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}

	s.mu.Lock()
	s.connected = false
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("disconnected")
}

func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Send writes resp as a framed message. A write failure marks the session
// disconnected and records a comms error; the caller does not retry.
func (s *Session) Send(resp telescope.Response) bool {
	s.mu.Lock()
	conn := s.conn
	connected := s.connected
	s.mu.Unlock()

	if !connected || conn == nil {
		return false
	}

	if err := wire.WriteFrame(conn, resp); err != nil {
		s.log.Error("send failed", logger.KeyError, err.Error())
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		s.errors.AddError(telescope.ErrCommsDisconnect, err.Error())
		return false
	}
	return true
}

// receive blocks for one framed command. The second result is false on a
// read timeout, a malformed command, a read error or a peer close (the last
// two mark the connection disconnected). The third result is always false;
// receiverLoop watches the shutdown channel itself.
func (s *Session) receive() (telescope.Command, bool, bool) {
	s.mu.Lock()
	conn := s.conn
	connected := s.connected
	s.mu.Unlock()

	if !connected || conn == nil {
		return telescope.Command{}, false, false
	}

	_ = conn.SetReadDeadline(time.Now().Add(telescope.RecvTimeout))
	payload, err := wire.ReadFrame(conn)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return telescope.Command{}, false, false
		}
		s.log.Error("receive failed", logger.KeyError, err.Error())
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		s.errors.AddError(telescope.ErrCommsDisconnect, err.Error())
		return telescope.Command{}, false, false
	}
	if payload == nil {
		s.mu.Lock()
		s.connected = false
		s.mu.Unlock()
		return telescope.Command{}, false, false
	}

	cmd, err := telescope.DecodeCommand(payload)
	if err != nil {
		s.log.Warn("dropping malformed command", logger.KeyError, err.Error())
		return telescope.Command{}, false, false
	}
	return cmd, true, false
}

// StartReceiver launches the background loop that reads framed commands and
// publishes them on Inbound until Disconnect is called.
func (s *Session) StartReceiver() {
	s.shutdown = make(chan struct{})
	s.wg.Add(1)
	go s.receiverLoop()
}

func (s *Session) receiverLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.shutdown:
			return
		default:
		}

		cmd, ok, _ := s.receive()
		if ok {
			s.Inbound <- cmd
			continue
		}
		if !s.IsConnected() {
			if !s.Reconnect() {
				return
			}
		}
	}
}

// Reconnect retries Connect up to maxReconnect times, sleeping
// reconnectDelay between attempts. It returns false if shutdown fires first
// or every attempt is exhausted.
func (s *Session) Reconnect() bool {
	for attempt := 1; attempt <= s.maxReconnect; attempt++ {
		select {
		case <-s.shutdown:
			return false
		default:
		}

		s.log.Info("reconnect attempt", logger.KeyAttempt, attempt, logger.KeyMaxRetries, s.maxReconnect)
		metrics.RecordReconnectAttempt()

		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
			s.conn = nil
		}
		s.connected = false
		s.mu.Unlock()

		if s.Connect() {
			return true
		}

		select {
		case <-s.shutdown:
			return false
		case <-time.After(s.reconnectDelay):
		}
	}
	s.log.Error("reconnect exhausted", logger.KeyMaxRetries, s.maxReconnect)
	return false
}

// Context returns a context cancelled once Disconnect has been called,
// mirroring the shutdown-propagation pattern used elsewhere in the module.
func (s *Session) Context() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-s.shutdown
		cancel()
	}()
	return ctx
}
