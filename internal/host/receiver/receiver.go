// Package receiver reads framed messages from the controller connection and
// dispatches them: state reports update the mirror, acks/errors are
// correlated with outstanding commands via a reply channel.
package receiver

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/cascade-ridge/skytrack/internal/host/mirror"
	"github.com/cascade-ridge/skytrack/internal/host/sessionlog"
	"github.com/cascade-ridge/skytrack/internal/logger"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
	"github.com/cascade-ridge/skytrack/pkg/wire"
)

// Receiver runs the background read loop over a single controller
// connection, publishing Ack/Error replies on Replies.
type Receiver struct {
	state   *mirror.State
	session *sessionlog.Log
	log     *slog.Logger

	// Replies carries every ack/error message for sender.Sender.WaitForAck
	// to correlate against.
	Replies chan telescope.Response

	mu       sync.Mutex
	conn     net.Conn
	shutdown chan struct{}
	wg       sync.WaitGroup
	alive    bool
}

func New(state *mirror.State, session *sessionlog.Log) *Receiver {
	return &Receiver{
		state:   state,
		session: session,
		log:     logger.Named("receiver"),
		Replies: make(chan telescope.Response, 64),
	}
}

// Start begins reading framed messages off conn in a background goroutine.
func (r *Receiver) Start(conn net.Conn) {
	r.mu.Lock()
	r.conn = conn
	r.shutdown = make(chan struct{})
	r.alive = true
	r.mu.Unlock()

	r.wg.Add(1)
	go r.receiveLoop()
	r.log.Info("receiver started")
}

// Stop signals the read loop to exit and waits for it to finish.
func (r *Receiver) Stop() {
	r.mu.Lock()
	if r.shutdown != nil {
		select {
		case <-r.shutdown:
		default:
			close(r.shutdown)
		}
	}
	r.mu.Unlock()
	r.wg.Wait()
	r.log.Info("receiver stopped")
}

func (r *Receiver) IsAlive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alive
}

func (r *Receiver) receiveLoop() {
	defer r.wg.Done()
	defer func() {
		r.mu.Lock()
		r.alive = false
		r.mu.Unlock()
	}()

	for {
		select {
		case <-r.shutdown:
			return
		default:
		}

		_ = r.conn.SetReadDeadline(time.Now().Add(telescope.RecvTimeout))
		payload, err := wire.ReadFrame(r.conn)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			r.log.Error("receive error", logger.KeyError, err.Error())
			r.session.LogError("receive error: "+err.Error(), nil)
			return
		}
		if payload == nil {
			r.log.Warn("controller disconnected")
			r.session.LogError("controller disconnected", nil)
			return
		}

		resp, err := telescope.DecodeResponse(payload)
		if err != nil {
			r.log.Error("bad message", logger.KeyError, err.Error())
			r.session.LogError("bad message: "+err.Error(), nil)
			continue
		}
		r.dispatch(resp)
	}
}

func (r *Receiver) dispatch(resp telescope.Response) {
	switch resp.MessageType {
	case telescope.MessageStateReport:
		if resp.Snapshot == nil {
			r.log.Error("state report missing snapshot")
			r.session.LogError("bad state report: missing snapshot", nil)
			return
		}
		r.state.UpdateFromController(*resp.Snapshot)
		r.session.LogState(map[string]any{
			"current_alt_deg": resp.Snapshot.CurrentAltDeg,
			"current_az_deg":  resp.Snapshot.CurrentAzDeg,
			"status":          string(resp.Snapshot.Status),
		})

	case telescope.MessageAck, telescope.MessageError:
		select {
		case r.Replies <- resp:
		default:
			r.log.Warn("reply channel full, dropping", logger.KeyCommandID, resp.CommandID)
		}
		if resp.MessageType == telescope.MessageError {
			r.log.Warn("error from controller", logger.KeyError, resp.Error, logger.KeyCommandID, resp.CommandID)
		}

	default:
		r.log.Warn("unknown message type", "message_type", string(resp.MessageType))
	}
}
