package trace

import (
	"encoding/json"
	"time"
)

// Run states.
const (
	StateRunning = "running"
	StateStopped = "stopped"
)

// Trace is one recorded execution of one item.
//
// Steps, Config and Context make up the full detail; Summary drops them.
type Trace struct {
	RunID           string            `json:"run_id"`
	Domain          string            `json:"domain"`
	ItemID          string            `json:"item_id"`
	State           string            `json:"state"`
	ScriptExecution string            `json:"script_execution,omitempty"`
	Trigger         string            `json:"trigger,omitempty"`
	LastStep        string            `json:"last_step,omitempty"`
	Error           string            `json:"error,omitempty"`
	Timestamp       Timestamp         `json:"timestamp"`
	Steps           map[string][]Step `json:"trace,omitempty"`
	Config          json.RawMessage   `json:"config,omitempty"`
	Context         json.RawMessage   `json:"context,omitempty"`
}

// Timestamp brackets a run. Finish is nil while the run is in progress.
type Timestamp struct {
	Start  time.Time  `json:"start"`
	Finish *time.Time `json:"finish"`
}

// Step is one element executed during a run, keyed in Trace.Steps by its
// path (e.g. "trigger/0", "action/1").
type Step struct {
	Path             string          `json:"path"`
	Timestamp        time.Time       `json:"timestamp"`
	ChangedVariables map[string]any  `json:"changed_variables,omitempty"`
	Result           json.RawMessage `json:"result,omitempty"`
	Error            string          `json:"error,omitempty"`
}

// Summary returns a copy of t without the full-detail fields.
func (t Trace) Summary() Trace {
	t.Steps = nil
	t.Config = nil
	t.Context = nil
	return t
}

// Finished reports whether the run has a finish time.
func (t Trace) Finished() bool {
	return t.Timestamp.Finish != nil
}
