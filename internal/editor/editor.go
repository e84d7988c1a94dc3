// Package editor applies create, update and delete requests to the record
// collection and runs the post-write hook.
//
// Each operation reads the collection fresh, computes a new snapshot with the
// record package, writes it back, and only then fires the hook. The editor
// holds no lock of its own; writer exclusion is the document's concern.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/autoedit/internal/record"
)

// Action names the kind of mutation reported to the hook.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var (
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrInvalid is returned for malformed requests and validator rejections.
	ErrInvalid = errors.New("invalid record")
)

// Document loads and persists the full collection.
type Document interface {
	Read(ctx context.Context) (record.Collection, error)
	Write(ctx context.Context, c record.Collection) error
}

// Validator checks a request body before it is merged.
type Validator interface {
	Validate(ctx context.Context, body *record.Record) error
}

// Hook runs after every persisted mutation. Its error is logged, never returned.
type Hook interface {
	OnWrite(ctx context.Context, action Action, id string) error
}

// Request is an inbound mutation. Body is ignored for deletes.
type Request struct {
	ID     string
	Action Action
	Body   *record.Record
}

// Result describes a completed write.
type Result struct {
	ID     string `json:"id"`
	Index  int    `json:"index"`
	Action Action `json:"action"`
}

// Editor edits one collection through a Document.
type Editor struct {
	doc       Document
	validator Validator
	hook      Hook
	gen       record.IDGenerator
	logger    *slog.Logger
}

// Option configures an Editor.
type Option func(*Editor)

// WithValidator sets the body validator. Without one, bodies are accepted as-is.
func WithValidator(v Validator) Option {
	return func(e *Editor) {
		e.validator = v
	}
}

// WithHook sets the post-write hook.
func WithHook(h Hook) Option {
	return func(e *Editor) {
		e.hook = h
	}
}

// WithIDGenerator overrides the backfill token generator (for testing).
func WithIDGenerator(g record.IDGenerator) Option {
	return func(e *Editor) {
		e.gen = g
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// New creates an Editor over doc.
func New(doc Document, opts ...Option) *Editor {
	e := &Editor{
		doc:    doc,
		gen:    record.RandomGenerator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NormalizeID returns id in Unicode NFC form so that composed and decomposed
// spellings address the same record.
func NormalizeID(id string) string {
	return norm.NFC.String(id)
}

// List returns the current collection.
func (e *Editor) List(ctx context.Context) (record.Collection, error) {
	c, err := e.doc.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return c, nil
}

// Get returns the record with the given id.
func (e *Editor) Get(ctx context.Context, id string) (*record.Record, error) {
	id = NormalizeID(id)

	c, err := e.List(ctx)
	if err != nil {
		return nil, err
	}
	_, index := locate(c, id)
	if index < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c[index], nil
}

// Upsert merges body into the record with the given id, creating it when absent.
//
// Ids match after NFC normalization; an existing record keeps its stored
// spelling. A body "id" field, when present, must equal id. The hook runs only
// after the document write succeeds; a hook failure does not fail the call.
func (e *Editor) Upsert(ctx context.Context, id string, body *record.Record) (Result, error) {
	id = NormalizeID(id)
	if id == "" {
		return Result{}, fmt.Errorf("%w: id is required", ErrInvalid)
	}

	current, err := e.List(ctx)
	if err != nil {
		return Result{}, err
	}

	action := ActionUpdate
	target, found := locate(current, id)
	if found < 0 {
		action = ActionCreate
	}

	body, err = e.prepareBody(id, target, body)
	if err != nil {
		return Result{}, err
	}
	if e.validator != nil {
		if err := e.validator.Validate(ctx, body); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	updated, index := record.Upsert(current, target, body, e.gen)
	if err := e.doc.Write(ctx, updated); err != nil {
		return Result{}, fmt.Errorf("write document: %w", err)
	}

	e.logger.Info("record written", "id", target, "action", action, "index", index)
	e.runHook(ctx, action, target)

	return Result{ID: target, Index: index, Action: action}, nil
}

// Delete removes the record with the given id.
func (e *Editor) Delete(ctx context.Context, id string) error {
	_, err := e.remove(ctx, id)
	return err
}

// remove deletes the matching record and returns its stored id.
func (e *Editor) remove(ctx context.Context, id string) (string, error) {
	id = NormalizeID(id)

	current, err := e.List(ctx)
	if err != nil {
		return "", err
	}

	target, index := locate(current, id)
	if index < 0 {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	updated, _ := record.Remove(current, target)
	if err := e.doc.Write(ctx, updated); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	e.logger.Info("record deleted", "id", target)
	e.runHook(ctx, ActionDelete, target)
	return target, nil
}

// Apply dispatches a mutation request. Create and update share the upsert
// path; the returned Result reports which one actually happened.
func (e *Editor) Apply(ctx context.Context, req Request) (Result, error) {
	switch req.Action {
	case ActionCreate, ActionUpdate:
		return e.Upsert(ctx, req.ID, req.Body)
	case ActionDelete:
		target, err := e.remove(ctx, req.ID)
		if err != nil {
			return Result{}, err
		}
		return Result{ID: target, Index: -1, Action: ActionDelete}, nil
	default:
		return Result{}, fmt.Errorf("%w: unknown action %q", ErrInvalid, req.Action)
	}
}

// prepareBody checks the body id against the requested id and returns a copy
// whose id, if any, is spelled as target.
func (e *Editor) prepareBody(id, target string, body *record.Record) (*record.Record, error) {
	if body == nil {
		return record.New(), nil
	}
	raw, ok := body.Get(record.IDKey)
	if !ok {
		return body, nil
	}
	bodyID, isString := raw.(string)
	if !isString || NormalizeID(bodyID) != id {
		return nil, fmt.Errorf("%w: body id %v does not match %q", ErrInvalid, raw, id)
	}
	out := body.Clone()
	out.Set(record.IDKey, target)
	return out, nil
}

// locate finds the first record whose id normalizes to id. It returns the id
// as stored along with its index; when absent it returns id and -1.
func locate(c record.Collection, id string) (string, int) {
	for i, r := range c {
		if stored, ok := r.ID(); ok && NormalizeID(stored) == id {
			return stored, i
		}
	}
	return id, -1
}

func (e *Editor) runHook(ctx context.Context, action Action, id string) {
	if e.hook == nil {
		return
	}
	if err := e.hook.OnWrite(ctx, action, id); err != nil {
		e.logger.Warn("post-write hook failed", "id", id, "action", action, "error", err)
	}
}
