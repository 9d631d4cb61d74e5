package receiver

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-ridge/skytrack/internal/host/mirror"
	"github.com/cascade-ridge/skytrack/internal/host/sessionlog"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
	"github.com/cascade-ridge/skytrack/pkg/wire"
)

func pipe(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverCh := make(chan net.Conn, 1)
	go func() {
		conn, _ := ln.Accept()
		serverCh <- conn
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server = <-serverCh
	return client, server
}

func TestReceiverUpdatesMirrorOnStateReport(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()

	state := mirror.New()
	session := sessionlog.New(10)
	r := New(state, session)
	r.Start(server)
	defer r.Stop()

	snap := telescope.Snapshot{CurrentAltDeg: 45, CurrentAzDeg: 180, Status: telescope.StatusIdle}
	require.NoError(t, wire.WriteFrame(client, telescope.NewStateReportResponse(snap)))

	require.Eventually(t, func() bool {
		alt, az, ok := state.Position()
		return ok && alt == 45 && az == 180
	}, time.Second, 10*time.Millisecond)
}

func TestReceiverRoutesAckToReplies(t *testing.T) {
	client, server := pipe(t)
	defer client.Close()

	r := New(mirror.New(), sessionlog.New(10))
	r.Start(server)
	defer r.Stop()

	require.NoError(t, wire.WriteFrame(client, telescope.NewAckResponse("cmd-7")))

	select {
	case resp := <-r.Replies:
		assert.Equal(t, "cmd-7", resp.CommandID)
		assert.Equal(t, telescope.MessageAck, resp.MessageType)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for ack on Replies channel")
	}
}

func TestReceiverStopsOnDisconnect(t *testing.T) {
	client, server := pipe(t)

	r := New(mirror.New(), sessionlog.New(10))
	r.Start(server)
	client.Close()

	require.Eventually(t, func() bool {
		return !r.IsAlive()
	}, 2*time.Second, 10*time.Millisecond)
	r.Stop()
}
