// Package sender sends commands to the controller over an established TCP
// connection, correlating Ack/Error replies with the response queue the
// receiver package feeds.
package sender

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/internal/host/sessionlog"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
	"github.com/cascade-ridge/skytrack/pkg/validate"
	"github.com/cascade-ridge/skytrack/pkg/wire"
)

// Sender writes framed commands to the controller connection, validating
// outgoing commands before they hit the wire.
type Sender struct {
	session *sessionlog.Log
	replies <-chan telescope.Response

	mu      sync.Mutex
	conn    net.Conn
	waiters map[string]chan telescope.Response
	pending map[string]telescope.Response
	log     *slog.Logger
}

func New(session *sessionlog.Log, replies <-chan telescope.Response) *Sender {
	s := &Sender{
		session: session,
		replies: replies,
		waiters: make(map[string]chan telescope.Response),
		pending: make(map[string]telescope.Response),
		log:     logger.Named("sender"),
	}
	go s.dispatchReplies()
	return s
}

// dispatchReplies correlates every reply off the wire with the WaitForAck
// call for its command id, so two commands in flight at once (the tracker
// and the operator REPL can both issue one) never steal each other's reply.
// A reply that arrives before its WaitForAck call is parked in pending.
func (s *Sender) dispatchReplies() {
	for resp := range s.replies {
		s.mu.Lock()
		ch, ok := s.waiters[resp.CommandID]
		if ok {
			delete(s.waiters, resp.CommandID)
		} else {
			s.pending[resp.CommandID] = resp
		}
		s.mu.Unlock()
		if ok {
			ch <- resp
		}
	}
}

// SetConn installs the live connection to write commands to; passing nil
// disables sending until a new connection is set.
func (s *Sender) SetConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
}

// SendMove sends a Move command with the given target and speed.
func (s *Sender) SendMove(alt, az, speed float64) (string, bool) {
	cmd := telescope.NewMoveCommand(alt, az, &speed, nil)
	return s.sendCommand(cmd)
}

// SendFocus sends a Focus command.
func (s *Sender) SendFocus(direction string, steps int) (string, bool) {
	cmd := telescope.NewFocusCommand(direction, steps, nil)
	return s.sendCommand(cmd)
}

// SendStop sends a Stop command, optionally flagged emergency.
func (s *Sender) SendStop(emergency bool) (string, bool) {
	cmd := telescope.NewStopCommand(emergency, "")
	return s.sendCommand(cmd)
}

// SendStatusRequest asks the controller for an immediate state report,
// bypassing validation (it carries no variant fields).
func (s *Sender) SendStatusRequest() bool {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return false
	}
	if err := wire.WriteFrame(conn, telescope.NewStatusRequestCommand()); err != nil {
		s.log.Error("status request send failed", logger.KeyError, err.Error())
		return false
	}
	return true
}

// WaitForAck blocks until a reply correlated to commandID arrives or
// timeout elapses (telescope.CommandAckTimeout if timeout is zero). Replies
// for other in-flight command ids are left for their own waiters instead of
// being consumed here.
func (s *Sender) WaitForAck(commandID string, timeout time.Duration) (telescope.Response, bool) {
	if timeout == 0 {
		timeout = telescope.CommandAckTimeout
	}

	s.mu.Lock()
	if resp, ok := s.pending[commandID]; ok {
		delete(s.pending, commandID)
		s.mu.Unlock()
		return resp, true
	}
	ch := make(chan telescope.Response, 1)
	s.waiters[commandID] = ch
	s.mu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case resp := <-ch:
		return resp, true
	case <-deadline.C:
		s.mu.Lock()
		delete(s.waiters, commandID)
		s.mu.Unlock()
		s.log.Warn("ack timeout", logger.KeyCommandID, commandID)
		return telescope.Response{}, false
	}
}

func (s *Sender) sendCommand(cmd telescope.Command) (string, bool) {
	if errs := validate.Command(cmd); len(errs) > 0 {
		s.log.Error("validation failed", logger.KeyCommandID, cmd.CommandID)
		s.session.LogError("validation failed", map[string]any{"errors": errs})
		return "", false
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		s.log.Error("no connection, cannot send", logger.KeyCommandID, cmd.CommandID)
		return "", false
	}

	if err := wire.WriteFrame(conn, cmd); err != nil {
		s.log.Error("send failed", logger.KeyError, err.Error())
		s.session.LogError("send failed: "+err.Error(), nil)
		return "", false
	}

	s.log.Debug("command sent", logger.KeyCommandType, string(cmd.CommandType), logger.KeyCommandID, cmd.CommandID)
	s.session.LogCommand(string(cmd.CommandType), map[string]any{"command_id": cmd.CommandID})
	return cmd.CommandID, true
}
