package assistant

import (
	"encoding/json"
	"errors"
)

// ErrEmptyCompletion indicates an invocation produced no text and no
// structured short-circuit. The backend legitimately returns an empty
// "thinking" placeholder mid-reasoning, so callers retry once before
// giving up.
var ErrEmptyCompletion = errors.New("assistant: completion was empty")

// SpaAvailabilityType is the only structured document shape the
// orchestrator understands.
const SpaAvailabilityType = "spa_availability"

// SpaAvailability is the structured availability document streamed back by
// the backend when the user asked about spa slots.
type SpaAvailability struct {
	ResponseType   string   `json:"response_type"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

// Fragment is one unit of a streamed backend response: plain text, a
// recognized structured document, an opaque structured document, or a
// terminal stream error.
type Fragment struct {
	Text         string
	Availability *SpaAvailability
	Unrecognized json.RawMessage
	Err          error
}

// DecodeFragment classifies one completion chunk. JSON objects carrying
// the spa availability tag become structured fragments, other JSON objects
// are passed through as opaque, everything else is plain text.
func DecodeFragment(data []byte) Fragment {
	trimmed := firstNonSpace(data)
	if trimmed != '{' {
		return Fragment{Text: string(data)}
	}

	var doc SpaAvailability
	if err := json.Unmarshal(data, &doc); err == nil && doc.ResponseType == SpaAvailabilityType {
		if doc.AvailableSlots == nil {
			doc.AvailableSlots = []string{}
		}
		return Fragment{Availability: &doc}
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil {
		return Fragment{Unrecognized: json.RawMessage(append([]byte(nil), data...))}
	}

	return Fragment{Text: string(data)}
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}
