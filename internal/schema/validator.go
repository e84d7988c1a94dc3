// Package schema validates automation request bodies against an embedded
// CUE definition.
package schema

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/autoedit/internal/record"
)

//go:embed automation.cue
var automationCUE string

// ValidationError describes the first violation found in a body.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validator checks bodies against #Automation. It is safe for concurrent
// use; evaluation is serialized.
type Validator struct {
	mu   sync.Mutex
	cctx *cue.Context
	def  cue.Value
}

// New compiles the embedded definition.
func New() (*Validator, error) {
	cctx := cuecontext.New()
	root := cctx.CompileString(automationCUE, cue.Filename("automation.cue"))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	def := root.LookupPath(cue.ParsePath("#Automation"))
	if !def.Exists() {
		return nil, fmt.Errorf("compile schema: #Automation not defined")
	}

	return &Validator{cctx: cctx, def: def}, nil
}

// Validate reports whether body satisfies #Automation.
func (v *Validator) Validate(ctx context.Context, body *record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if body == nil {
		body = record.New()
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	val := v.cctx.Encode(body.ToMap())
	if err := val.Err(); err != nil {
		return formatCUEError(err)
	}

	unified := v.def.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError reduces a CUE error list to its first entry.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	return &ValidationError{
		Path:    strings.Join(first.Path(), "."),
		Message: fmt.Sprintf(format, args...),
	}
}
