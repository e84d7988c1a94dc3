package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/autoedit/internal/trace"
)

// Append records a run and trims the item's history to the retention.
//
// Appending a run_id that already exists replaces its columns but keeps its
// position, so a running trace can be appended again once it finishes. A run
// never moves between items.
func (s *Store) Append(ctx context.Context, t trace.Trace) error {
	if t.RunID == "" || t.ItemID == "" {
		return errors.New("append trace: run_id and item_id are required")
	}

	steps, err := marshalSteps(t.Steps)
	if err != nil {
		return fmt.Errorf("append trace: %w", err)
	}
	config, err := marshalRaw("config", t.Config)
	if err != nil {
		return fmt.Errorf("append trace: %w", err)
	}
	traceCtx, err := marshalRaw("context", t.Context)
	if err != nil {
		return fmt.Errorf("append trace: %w", err)
	}

	var finished sql.NullInt64
	if t.Timestamp.Finish != nil {
		finished = sql.NullInt64{Int64: toMillis(*t.Timestamp.Finish), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append trace: begin: %w", err)
	}
	defer tx.Rollback()

	var storedItem string
	err = tx.QueryRowContext(ctx, `SELECT item_id FROM traces WHERE run_id = ?`, t.RunID).Scan(&storedItem)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("append trace: %w", err)
	case storedItem != t.ItemID:
		return fmt.Errorf("append trace: run %s belongs to item %s, not %s", t.RunID, storedItem, t.ItemID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO traces
		(run_id, domain, item_id, state, script_execution, trigger_desc, last_step, error,
		 started_at, finished_at, steps, config, context)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			domain = excluded.domain,
			state = excluded.state,
			script_execution = excluded.script_execution,
			trigger_desc = excluded.trigger_desc,
			last_step = excluded.last_step,
			error = excluded.error,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			steps = excluded.steps,
			config = excluded.config,
			context = excluded.context
	`,
		t.RunID,
		t.Domain,
		t.ItemID,
		t.State,
		t.ScriptExecution,
		t.Trigger,
		t.LastStep,
		t.Error,
		toMillis(t.Timestamp.Start),
		finished,
		steps,
		config,
		traceCtx,
	)
	if err != nil {
		return fmt.Errorf("append trace: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM traces
		WHERE item_id = ?
		  AND seq NOT IN (
			SELECT seq FROM traces
			WHERE item_id = ?
			ORDER BY seq DESC
			LIMIT ?
		  )
	`, t.ItemID, t.ItemID, s.retention)
	if err != nil {
		return fmt.Errorf("append trace: trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append trace: commit: %w", err)
	}
	return nil
}
