package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type ContentType string

const (
	ContentText  ContentType = "text"
	ContentVideo ContentType = "video"
)

// Recognised metadata keys.
const (
	MetadataPlatform           = "platform"
	MetadataDurationSeconds    = "duration_seconds"
	MetadataTranscriptProvided = "transcript_provided"
)

// EvaluationRequest is the inbound shape on the HTTP and stream boundaries.
// Unknown top-level keys are rejected; metadata stays open.
type EvaluationRequest struct {
	Type     ContentType `json:"type" validate:"required,oneof=text video"`
	Content  string      `json:"content" validate:"required"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata keeps a few typed keys and passes every other key through
// untouched. It is never rejected for carrying unknown keys.
type Metadata struct {
	Platform           *string
	DurationSeconds    *int    `validate:"omitempty,min=0"`
	TranscriptProvided *bool

	Extra map[string]any
}

// Map flattens the metadata into a fresh map. Unset typed keys are omitted.
func (m Metadata) Map() map[string]any {
	out := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Platform != nil {
		out[MetadataPlatform] = *m.Platform
	}
	if m.DurationSeconds != nil {
		out[MetadataDurationSeconds] = *m.DurationSeconds
	}
	if m.TranscriptProvided != nil {
		out[MetadataTranscriptProvided] = *m.TranscriptProvided
	}
	return out
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Map())
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("metadata must be a JSON object: %w", err)
	}

	out := Metadata{}
	for key, value := range raw {
		var err error
		switch key {
		case MetadataPlatform:
			err = decodeOptional(value, &out.Platform)
		case MetadataDurationSeconds:
			err = decodeOptional(value, &out.DurationSeconds)
		case MetadataTranscriptProvided:
			err = decodeOptional(value, &out.TranscriptProvided)
		default:
			var v any
			dec := json.NewDecoder(bytes.NewReader(value))
			dec.UseNumber()
			err = dec.Decode(&v)
			if err == nil {
				if out.Extra == nil {
					out.Extra = make(map[string]any)
				}
				out.Extra[key] = v
			}
		}
		if err != nil {
			return fmt.Errorf("metadata.%s: %w", key, err)
		}
	}

	*m = out
	return nil
}

// decodeOptional treats JSON null as unset.
func decodeOptional[T any](raw json.RawMessage, dst **T) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		*dst = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
