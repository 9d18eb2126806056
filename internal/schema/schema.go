// Package schema applies an optional CUE schema to ledger records.
//
// The schema is a CUE file whose top-level value is unified with each record's
// JSON. Any conflict, or any field the schema leaves non-concrete, is a
// violation. The schema adds constraints; it cannot relax the built-in ledger
// checks.
package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/cdmledger/internal/record"
)

// Schema is a compiled CUE constraint set. It is not safe for concurrent use.
type Schema struct {
	ctx   *cue.Context
	value cue.Value
	name  string
}

// Load reads and compiles a CUE schema file.
func Load(path string) (*Schema, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return Compile(path, src)
}

// Compile compiles CUE source. name is used in diagnostics.
func Compile(name string, src []byte) (*Schema, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema %s: %s", name, details(err))
	}
	return &Schema{ctx: ctx, value: value, name: name}, nil
}

// Name returns the schema's file name.
func (s *Schema) Name() string {
	return s.name
}

// Validate unifies the record with the schema and requires a concrete result.
func (s *Schema) Validate(rec *record.Record) error {
	data := s.ctx.CompileBytes(rec.JSON(), cue.Filename(rec.Source))
	if err := data.Err(); err != nil {
		return errors.New(details(err))
	}
	unified := s.value.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return errors.New(details(err))
	}
	return nil
}

// details flattens a CUE error list into one line.
func details(err error) string {
	msg := strings.TrimSpace(cueerrors.Details(err, nil))
	return strings.Join(strings.Fields(strings.ReplaceAll(msg, "\n", "; ")), " ")
}
