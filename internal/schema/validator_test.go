package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/autoedit/internal/record"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func parseBody(t *testing.T, src string) *record.Record {
	t.Helper()
	r := record.New()
	require.NoError(t, yaml.Unmarshal([]byte(src), r))
	return r
}

func TestValidate_Accepts(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty", "{}"},
		{"full automation", `
id: abc
alias: Morning lights
description: Turn on the kitchen at seven
mode: queued
max: 3
trigger:
  - platform: time
    at: "07:00:00"
condition:
  - condition: state
    entity_id: binary_sensor.home
    state: "on"
  - "{{ is_state('sun.sun', 'below_horizon') }}"
action:
  - service: light.turn_on
    target:
      entity_id: light.kitchen
`},
		{"single trigger mapping", "trigger:\n  platform: sun\n  event: sunset\n"},
		{"unknown field", "alias: x\nblueprint_input: {}\n"},
		{"trace settings", "trace:\n  stored_traces: 10\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, v.Validate(context.Background(), parseBody(t, tt.body)))
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name     string
		body     string
		wantPath string
	}{
		{"scalar trigger", "trigger: sun\n", "trigger"},
		{"unknown mode", "mode: sometimes\n", "mode"},
		{"zero max", "max: 0\n", "max"},
		{"numeric alias", "alias: 12\n", "alias"},
		{"empty id", "id: \"\"\n", "id"},
		{"scalar in action list", "action:\n  - just text\n", "action"},
		{"zero stored traces", "trace:\n  stored_traces: 0\n", "trace.stored_traces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), parseBody(t, tt.body))
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %T", err)
			assert.Contains(t, verr.Path, tt.wantPath)
		})
	}
}

func TestValidate_NilBody(t *testing.T) {
	assert.NoError(t, newValidator(t).Validate(context.Background(), nil))
}

func TestValidate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newValidator(t).Validate(ctx, record.New())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "mode: bad value", (&ValidationError{Path: "mode", Message: "bad value"}).Error())
	assert.Equal(t, "bad value", (&ValidationError{Message: "bad value"}).Error())
}
