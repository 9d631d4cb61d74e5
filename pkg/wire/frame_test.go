package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cmd := telescope.NewStatusRequestCommand()
	frame, err := EncodeFrame(cmd)
	require.NoError(t, err)

	payload, err := ReadFrame(bytes.NewReader(frame))
	require.NoError(t, err)

	decoded, err := telescope.DecodeCommand(payload)
	require.NoError(t, err)
	assert.Equal(t, cmd.CommandID, decoded.CommandID)
}

func TestEncodeFrameRejectsOversizedPayload(t *testing.T) {
	huge := strings.Repeat("x", telescope.MaxMessageSize+1)
	_, err := EncodeFrame(map[string]string{"data": huge})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestReadFrameRejectsOversizedHeader(t *testing.T) {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, telescope.MaxMessageSize+1)
	_, err := ReadFrame(bytes.NewReader(header))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestReadFrameCleanCloseBeforeHeader(t *testing.T) {
	payload, err := ReadFrame(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestReadFrameMidHeaderCloseIsProtocolError(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x00, 0x01}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestReadFrameMidPayloadCloseIsProtocolError(t *testing.T) {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, 10)
	buf := append(header, []byte("short")...)
	_, err := ReadFrame(bytes.NewReader(buf))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodePayloadRejectsNonObject(t *testing.T) {
	var v map[string]any
	err := DecodePayload([]byte(`[1,2,3]`), &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecodePayloadRejectsMalformedJSON(t *testing.T) {
	var v map[string]any
	err := DecodePayload([]byte(`{not json`), &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestWriteFrameThenReadFrameMultipleMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteFrame(buf, telescope.NewStopCommand(true, "test")))
	require.NoError(t, WriteFrame(buf, telescope.NewStatusRequestCommand()))

	first, err := ReadFrame(buf)
	require.NoError(t, err)
	cmd1, err := telescope.DecodeCommand(first)
	require.NoError(t, err)
	assert.Equal(t, telescope.CommandStop, cmd1.CommandType)

	second, err := ReadFrame(buf)
	require.NoError(t, err)
	cmd2, err := telescope.DecodeCommand(second)
	require.NoError(t, err)
	assert.Equal(t, telescope.CommandStatusRequest, cmd2.CommandType)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRecvExactPropagatesNonEOFError(t *testing.T) {
	_, err := ReadFrame(errReader{})
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
