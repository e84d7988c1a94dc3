package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/autoedit/internal/trace"
)

const jsonNull = "null"

// marshalSteps converts a step map to JSON TEXT for storage. A nil map is
// stored as "null".
func marshalSteps(steps map[string][]trace.Step) (string, error) {
	if steps == nil {
		return jsonNull, nil
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("marshal steps: %w", err)
	}
	return string(data), nil
}

// unmarshalSteps reverses marshalSteps.
func unmarshalSteps(text string) (map[string][]trace.Step, error) {
	if text == "" || text == jsonNull {
		return nil, nil
	}
	var steps map[string][]trace.Step
	if err := json.Unmarshal([]byte(text), &steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	return steps, nil
}

// marshalRaw validates raw JSON and returns it as TEXT. Empty input is
// stored as "null".
func marshalRaw(field string, raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return jsonNull, nil
	}
	if !json.Valid(raw) {
		return "", fmt.Errorf("marshal %s: invalid JSON", field)
	}
	return string(raw), nil
}

func unmarshalRaw(text string) json.RawMessage {
	if text == "" || text == jsonNull {
		return nil
	}
	return json.RawMessage(text)
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
