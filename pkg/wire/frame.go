// Package wire implements the length-prefixed JSON framing used on the
// controller <-> host TCP link: a 4-byte big-endian length prefix followed
// by a JSON payload, capped at telescope.MaxMessageSize.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cascade-ridge/skytrack/pkg/telescope"
)

// ErrProtocol is wrapped around every framing violation: an oversized
// payload, a truncated header, or a non-object JSON body.
var ErrProtocol = errors.New("protocol error")

// EncodeFrame serializes v to JSON and prepends its 4-byte big-endian
// length. It returns ErrProtocol if the encoded payload exceeds
// telescope.MaxMessageSize.
func EncodeFrame(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	if len(payload) > telescope.MaxMessageSize {
		return nil, fmt.Errorf("%w: message size %d exceeds maximum %d", ErrProtocol, len(payload), telescope.MaxMessageSize)
	}
	header := make([]byte, telescope.HeaderSize)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	return append(header, payload...), nil
}

// WriteFrame encodes v and writes it to w in a single call.
func WriteFrame(w io.Writer, v any) error {
	frame, err := EncodeFrame(v)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadFrame reads one length-prefixed JSON payload from r and returns the
// raw bytes. It returns (nil, nil) if the peer closed the connection
// cleanly before any header bytes arrived — the caller's receive loop
// should treat that as a normal disconnect, not an error. A close in the
// middle of a header or payload is reported as ErrProtocol, since it
// indicates the peer died mid-frame rather than between frames.
func ReadFrame(r io.Reader) ([]byte, error) {
	header, err := recvExact(r, telescope.HeaderSize)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, nil // clean close before any frame started
	}

	length := binary.BigEndian.Uint32(header)
	if length > telescope.MaxMessageSize {
		return nil, fmt.Errorf("%w: payload size %d exceeds maximum %d", ErrProtocol, length, telescope.MaxMessageSize)
	}

	payload, err := recvExact(r, int(length))
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: connection closed while reading payload", ErrProtocol)
	}
	return payload, nil
}

// recvExact reads exactly n bytes from r. It returns (nil, nil) if the peer
// closed before any bytes were read, and ErrProtocol if it closed after a
// partial read.
func recvExact(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, 0, n)
	for len(buf) < n {
		chunk := make([]byte, n-len(buf))
		read, err := r.Read(chunk)
		if read > 0 {
			buf = append(buf, chunk[:read]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(buf) == 0 {
					return nil, nil
				}
				return nil, fmt.Errorf("%w: connection closed mid-read: got %d of %d bytes", ErrProtocol, len(buf), n)
			}
			return nil, err
		}
	}
	return buf, nil
}

// DecodePayload unmarshals a JSON object payload into v, rejecting any JSON
// value that is not an object.
func DecodePayload(payload []byte, v any) error {
	var probe json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	trimmed := firstNonSpace(probe)
	if trimmed != '{' {
		return fmt.Errorf("%w: payload must be a JSON object", ErrProtocol)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c
		}
	}
	return 0
}
