package telescope

import (
	"encoding/json"
	"fmt"
)

// MessageType names the discriminant of the Response tagged union.
type MessageType string

const (
	MessageAck         MessageType = "ack"
	MessageError       MessageType = "error"
	MessageStateReport MessageType = "state_report"
)

// Response is the common envelope for Ack/Error/StateReport messages sent
// from the controller back to the host.
type Response struct {
	MessageType MessageType `json:"message_type"`
	CommandID   string      `json:"command_id,omitempty"`
	Timestamp   float64     `json:"timestamp"`

	// Error fields.
	Error string `json:"error,omitempty"`

	// StateReport fields — identical shape to Snapshot, flattened onto the
	// envelope the way the source's build_state_response merges
	// state.to_dict() with message_type. MarshalJSON/UnmarshalJSON below
	// handle the flattening by hand since encoding/json has no inline tag.
	*Snapshot
}

// MarshalJSON flattens Snapshot's fields alongside the envelope, since Go's
// json package has no native "inline" tag support.
func (r Response) MarshalJSON() ([]byte, error) {
	type envelope struct {
		MessageType MessageType `json:"message_type"`
		CommandID   string      `json:"command_id,omitempty"`
		Timestamp   float64     `json:"timestamp"`
		Error       string      `json:"error,omitempty"`
	}
	base, err := json.Marshal(envelope{r.MessageType, r.CommandID, r.Timestamp, r.Error})
	if err != nil {
		return nil, err
	}
	if r.Snapshot == nil {
		return base, nil
	}
	snap, err := json.Marshal(r.Snapshot)
	if err != nil {
		return nil, err
	}
	return mergeJSONObjects(base, snap)
}

func (r *Response) UnmarshalJSON(data []byte) error {
	type envelope struct {
		MessageType MessageType `json:"message_type"`
		CommandID   string      `json:"command_id,omitempty"`
		Timestamp   float64     `json:"timestamp"`
		Error       string      `json:"error,omitempty"`
	}
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	r.MessageType = e.MessageType
	r.CommandID = e.CommandID
	r.Timestamp = e.Timestamp
	r.Error = e.Error

	if e.MessageType == MessageStateReport {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		r.Snapshot = &snap
	}
	return nil
}

func mergeJSONObjects(a, b []byte) ([]byte, error) {
	var ma, mb map[string]json.RawMessage
	if err := json.Unmarshal(a, &ma); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &mb); err != nil {
		return nil, err
	}
	for k, v := range mb {
		ma[k] = v
	}
	return json.Marshal(ma)
}

func NewAckResponse(commandID string) Response {
	return Response{MessageType: MessageAck, CommandID: commandID, Timestamp: nowUnix()}
}

func NewErrorResponse(commandID, errMsg string) Response {
	return Response{MessageType: MessageError, CommandID: commandID, Error: errMsg, Timestamp: nowUnix()}
}

func NewStateReportResponse(snap Snapshot) Response {
	return Response{MessageType: MessageStateReport, Timestamp: nowUnix(), Snapshot: &snap}
}

// DecodeResponse parses a raw JSON payload into a Response.
func DecodeResponse(raw []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, err
	}
	if resp.MessageType == "" {
		return Response{}, fmt.Errorf("%w: missing message_type", ErrInvalidMessage)
	}
	return resp, nil
}
