package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/autoedit/internal/trace"
)

func TestAppend_RequiresIDs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Append(ctx, trace.Trace{ItemID: "a"})
	require.Error(t, err)
	err = s.Append(ctx, trace.Trace{RunID: "r1"})
	require.Error(t, err)
}

func TestAppend_RejectsInvalidJSON(t *testing.T) {
	s := createTestStore(t)

	tr := createTestTrace("a", "r1", 0)
	tr.Config = json.RawMessage(`{not json`)
	err := s.Append(context.Background(), tr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")

	assert.Zero(t, countTraces(t, s, ""))
}

func TestAppend_RetentionKeepsNewest(t *testing.T) {
	s := createTestStore(t, WithRetention(3))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Append(ctx, createTestTrace("a", fmt.Sprintf("r%d", i), i)))
	}
	require.NoError(t, s.Append(ctx, createTestTrace("b", "other", 0)))

	got, err := s.Fetch(ctx, "a", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r4", "r5"}, runIDs(got["a"]))

	assert.Equal(t, 1, countTraces(t, s, "b"), "retention is per item")
}

func TestAppend_SameRunUpdatesInPlace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	running := createTestTrace("a", "r1", 0)
	running.State = trace.StateRunning
	running.ScriptExecution = ""
	running.Timestamp.Finish = nil
	require.NoError(t, s.Append(ctx, running))
	require.NoError(t, s.Append(ctx, createTestTrace("a", "r2", 1)))

	require.NoError(t, s.Append(ctx, createTestTrace("a", "r1", 0)))

	got, err := s.Fetch(ctx, "a", false)
	require.NoError(t, err)
	require.Equal(t, []string{"r1", "r2"}, runIDs(got["a"]))
	assert.Equal(t, trace.StateStopped, got["a"][0].State)
	assert.True(t, got["a"][0].Finished())
}

func TestAppend_RunCannotChangeItem(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, createTestTrace("a", "r1", 0)))

	err := s.Append(ctx, createTestTrace("b", "r1", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "belongs to item a")

	got, err := s.Fetch(ctx, "", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, runIDs(got["a"]))
	assert.NotContains(t, got, "b")
	assert.Equal(t, 1, countTraces(t, s, ""))
}
