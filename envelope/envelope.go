// Package envelope defines the wire contract of the EdgeTune event stream:
// a discriminated JSON envelope with a type tag and a type-specific body.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/DHRUVXJANI/EdgeTune/errors"
)

// Type is the envelope discriminator. The set is closed on the server side;
// unrecognized tags must be ignored by consumers for forward compatibility.
type Type string

// Envelope types emitted by the EdgeTune backend.
const (
	TypeTelemetry         Type = "telemetry"
	TypeAutopilotDecision Type = "autopilot_decision"
	TypeLLMExplanation    Type = "llm_explanation"
	TypeAdvisorSuggestion Type = "advisor_suggestion"
	TypeDetectionSummary  Type = "detection_summary"
	TypeSourceProgress    Type = "source_progress"
	TypeVideoFrame        Type = "video_frame"
	TypeStatus            Type = "status"
	TypePing              Type = "ping"
	TypePong              Type = "pong"
)

// Envelope wraps every message on the stream with type discrimination.
// Envelopes carry no sequence number; ordering is transport order.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Decode parses a raw text frame into an Envelope. A frame that is not
// well-formed JSON or lacks a type tag is an Invalid error; callers discard
// such frames without touching sink state.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"envelope", "Decode", "unmarshal frame")
	}

	if env.Type == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: missing type tag", errors.ErrInvalidData),
			"envelope", "Decode", "validate envelope")
	}

	return &env, nil
}

// Encode marshals an envelope with the given type and body for sending.
func Encode(t Type, data any) ([]byte, error) {
	env := struct {
		Type Type `json:"type"`
		Data any  `json:"data,omitempty"`
	}{Type: t, Data: data}

	raw, err := json.Marshal(env)
	if err != nil {
		return nil, errors.WrapInvalid(err, "envelope", "Encode", "marshal envelope")
	}
	return raw, nil
}

// DecodeData unmarshals the envelope body into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: empty data body for %s", errors.ErrInvalidData, e.Type),
			"envelope", "DecodeData", "validate body")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"envelope", "DecodeData",
			fmt.Sprintf("unmarshal %s body", e.Type))
	}
	return nil
}
