package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/autoedit/internal/trace"
)

var _ trace.Source = (*Store)(nil)

const traceColumns = `run_id, domain, item_id, state, script_execution, trigger_desc, last_step, error,
	started_at, finished_at, steps, config, context`

// Fetch returns stored runs grouped by item id, oldest first within each
// item. An empty itemID selects every item. With summary set, step maps,
// config and context are left out.
//
// Returns an empty map (not nil) when nothing matches.
func (s *Store) Fetch(ctx context.Context, itemID string, summary bool) (map[string][]trace.Trace, error) {
	query := `SELECT ` + traceColumns + ` FROM traces`
	var args []any
	if itemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query traces: %w", err)
	}
	defer rows.Close()

	result := map[string][]trace.Trace{}
	for rows.Next() {
		t, err := scanTrace(rows)
		if err != nil {
			return nil, err
		}
		if summary {
			t = t.Summary()
		}
		result[t.ItemID] = append(result[t.ItemID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traces: %w", err)
	}

	return result, nil
}

func scanTrace(rows *sql.Rows) (trace.Trace, error) {
	var (
		t                        trace.Trace
		startedAt                int64
		finishedAt               sql.NullInt64
		steps, config, traceCtxt string
	)

	err := rows.Scan(
		&t.RunID,
		&t.Domain,
		&t.ItemID,
		&t.State,
		&t.ScriptExecution,
		&t.Trigger,
		&t.LastStep,
		&t.Error,
		&startedAt,
		&finishedAt,
		&steps,
		&config,
		&traceCtxt,
	)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("scan trace: %w", err)
	}

	t.Timestamp.Start = fromMillis(startedAt)
	if finishedAt.Valid {
		finish := fromMillis(finishedAt.Int64)
		t.Timestamp.Finish = &finish
	}

	t.Steps, err = unmarshalSteps(steps)
	if err != nil {
		return trace.Trace{}, fmt.Errorf("trace %s: %w", t.RunID, err)
	}
	t.Config = unmarshalRaw(config)
	t.Context = unmarshalRaw(traceCtxt)

	return t, nil
}
