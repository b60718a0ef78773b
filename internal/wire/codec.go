package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrMalformed is returned when a frame cannot be decoded.
var ErrMalformed = errors.New("malformed message")

// Codec frames typed messages for one websocket connection.
type Codec interface {
	Name() string
	// FrameType is the websocket message type frames are sent as.
	FrameType() int
	Encode(msgType string, payload any) ([]byte, error)
	// DecodeEnvelope splits a frame into its type and raw payload.
	DecodeEnvelope(data []byte) (string, []byte, error)
	DecodePayload(raw []byte, v any) error
}

// Codec names accepted in the ?codec= query parameter.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// ByName returns the codec registered under name. An empty name selects JSON.
func ByName(name string) (Codec, bool) {
	switch name {
	case "", CodecJSON:
		return JSON, true
	case CodecMsgpack:
		return Msgpack, true
	}
	return nil, false
}

var (
	// JSON encodes envelopes as JSON text frames.
	JSON Codec = jsonCodec{}
	// Msgpack encodes envelopes as MessagePack binary frames.
	Msgpack Codec = msgpackCodec{}
)

type jsonCodec struct{}

type jsonEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (jsonCodec) Name() string   { return CodecJSON }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Encode(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	return json.Marshal(jsonEnvelope{Type: msgType, Payload: raw})
}

func (jsonCodec) DecodeEnvelope(data []byte) (string, []byte, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env.Type, env.Payload, nil
}

func (jsonCodec) DecodePayload(raw []byte, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

type msgpackCodec struct{}

type msgpackEnvelope struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

func (msgpackCodec) Name() string   { return CodecMsgpack }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(msgType string, payload any) ([]byte, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
	}
	return msgpack.Marshal(msgpackEnvelope{Type: msgType, Payload: raw})
}

func (msgpackCodec) DecodeEnvelope(data []byte) (string, []byte, error) {
	var env msgpackEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return "", nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env.Type, env.Payload, nil
}

func (msgpackCodec) DecodePayload(raw []byte, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	if err := msgpack.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
