// Package trace answers read-only questions about recorded runs.
//
// Query is a thin layer over a Source: it never mutates or caches traces and
// holds no state of its own, so it is safe for concurrent use whenever the
// Source is.
package trace

import (
	"context"
	"fmt"
)

// Source fetches recorded runs grouped by item id.
//
// An empty itemID means every item. With summary set, returned traces carry
// no full-detail fields.
type Source interface {
	Fetch(ctx context.Context, itemID string, summary bool) (map[string][]Trace, error)
}

// Query reads traces from a Source.
type Query struct {
	source Source
}

// NewQuery returns a Query over source.
func NewQuery(source Source) *Query {
	return &Query{source: source}
}

// GetAll returns full traces for every item.
func (q *Query) GetAll(ctx context.Context) (map[string][]Trace, error) {
	return q.fetch(ctx, "", false)
}

// GetFor returns full traces for one item. The result always holds exactly
// one key, id, whose value is an empty slice when the item never ran.
func (q *Query) GetFor(ctx context.Context, id string) (map[string][]Trace, error) {
	all, err := q.fetch(ctx, id, false)
	if err != nil {
		return nil, err
	}
	traces := all[id]
	if traces == nil {
		traces = []Trace{}
	}
	return map[string][]Trace{id: traces}, nil
}

// GetAllSummarized returns summaries for every item.
func (q *Query) GetAllSummarized(ctx context.Context) (map[string][]Trace, error) {
	return q.fetch(ctx, "", true)
}

// Get returns every item's traces when id is empty, otherwise those of id.
func (q *Query) Get(ctx context.Context, id string) (map[string][]Trace, error) {
	if id == "" {
		return q.GetAll(ctx)
	}
	return q.GetFor(ctx, id)
}

// List is GetAllSummarized.
func (q *Query) List(ctx context.Context) (map[string][]Trace, error) {
	return q.GetAllSummarized(ctx)
}

func (q *Query) fetch(ctx context.Context, itemID string, summary bool) (map[string][]Trace, error) {
	result, err := q.source.Fetch(ctx, itemID, summary)
	if err != nil {
		return nil, fmt.Errorf("fetch traces: %w", err)
	}
	if result == nil {
		result = map[string][]Trace{}
	}
	return result, nil
}
