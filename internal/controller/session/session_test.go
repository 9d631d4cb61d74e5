package session

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-ridge/skytrack/internal/controller/state"
	"github.com/cascade-ridge/skytrack/pkg/telescope"
	"github.com/cascade-ridge/skytrack/pkg/wire"
)

func listenOn(t *testing.T) (net.Listener, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln, ln.Addr().(*net.TCPAddr).Port
}

func TestConnectSucceedsAndClearsError(t *testing.T) {
	ln, port := listenOn(t)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(50 * time.Millisecond)
		}
	}()

	errs := state.NewErrorState()
	s := New("127.0.0.1", port, telescope.MaxReconnectAttempt, telescope.ReconnectDelay, errs)
	assert.True(t, s.Connect())
	assert.True(t, s.IsConnected())
	_, hasErr := errs.Detail(telescope.ErrCommsDisconnect)
	assert.False(t, hasErr)
	s.Disconnect()
}

func TestConnectFailsRecordsError(t *testing.T) {
	errs := state.NewErrorState()
	s := New("127.0.0.1", 1, telescope.MaxReconnectAttempt, telescope.ReconnectDelay, errs) // port 1 refuses connections
	assert.False(t, s.Connect())
	_, hasErr := errs.Detail(telescope.ErrCommsDisconnect)
	assert.True(t, hasErr)
}

func TestSendWritesFrameToServer(t *testing.T) {
	ln, port := listenOn(t)
	defer ln.Close()

	received := make(chan telescope.Response, 1)
	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		defer conn.Close()
		payload, err := wire.ReadFrame(conn)
		require.NoError(t, err)
		resp, err := telescope.DecodeResponse(payload)
		require.NoError(t, err)
		received <- resp
	}()

	errs := state.NewErrorState()
	s := New("127.0.0.1", port, telescope.MaxReconnectAttempt, telescope.ReconnectDelay, errs)
	require.True(t, s.Connect())
	defer s.Disconnect()

	ok := s.Send(telescope.NewAckResponse("cmd-1"))
	require.True(t, ok)

	select {
	case resp := <-received:
		assert.Equal(t, "cmd-1", resp.CommandID)
		assert.Equal(t, telescope.MessageAck, resp.MessageType)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server to receive frame")
	}
}

func TestReceiverDeliversDecodedCommands(t *testing.T) {
	ln, port := listenOn(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		require.NoError(t, err)
		defer conn.Close()
		cmd := telescope.NewStatusRequestCommand()
		require.NoError(t, wire.WriteFrame(conn, cmd))
		time.Sleep(100 * time.Millisecond)
	}()

	errs := state.NewErrorState()
	s := New("127.0.0.1", port, telescope.MaxReconnectAttempt, telescope.ReconnectDelay, errs)
	require.True(t, s.Connect())
	s.StartReceiver()
	defer s.Disconnect()

	select {
	case cmd := <-s.Inbound:
		assert.Equal(t, telescope.CommandStatusRequest, cmd.CommandType)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound command")
	}
}

func TestSendFailsWhenNotConnected(t *testing.T) {
	errs := state.NewErrorState()
	s := New("127.0.0.1", 0, telescope.MaxReconnectAttempt, telescope.ReconnectDelay, errs)
	assert.False(t, s.Send(telescope.NewAckResponse("x")))
}
