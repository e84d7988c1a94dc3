package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/autoedit/internal/trace"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var baseTime = time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)

// createTestTrace creates a finished trace with full detail. The start time
// is offset by n seconds so runs are distinguishable.
func createTestTrace(itemID, runID string, n int) trace.Trace {
	start := baseTime.Add(time.Duration(n) * time.Second)
	finish := start.Add(250 * time.Millisecond)
	return trace.Trace{
		RunID:           runID,
		Domain:          "automation",
		ItemID:          itemID,
		State:           trace.StateStopped,
		ScriptExecution: "finished",
		Trigger:         "time at 07:00",
		LastStep:        "action/0",
		Timestamp:       trace.Timestamp{Start: start, Finish: &finish},
		Steps: map[string][]trace.Step{
			"trigger/0": {{Path: "trigger/0", Timestamp: start}},
			"action/0": {{
				Path:             "action/0",
				Timestamp:        finish,
				ChangedVariables: map[string]any{"entity": "light.kitchen"},
				Result:           json.RawMessage(`{"params":{"domain":"light"}}`),
			}},
		},
		Config:  json.RawMessage(`{"id":"` + itemID + `","alias":"Morning"}`),
		Context: json.RawMessage(`{"id":"ctx-` + runID + `"}`),
	}
}

func runIDs(traces []trace.Trace) []string {
	ids := make([]string, 0, len(traces))
	for _, tr := range traces {
		ids = append(ids, tr.RunID)
	}
	return ids
}

// countTraces returns the stored row count for itemID, or for all items when
// itemID is empty.
func countTraces(t *testing.T, s *Store, itemID string) int {
	t.Helper()
	query := "SELECT COUNT(*) FROM traces"
	var args []any
	if itemID != "" {
		query += " WHERE item_id = ?"
		args = append(args, itemID)
	}
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count traces: %v", err)
	}
	return n
}
