// Package query evaluates path expressions over raw decoded data. Expressions
// use the jq language; results are produced lazily.
package query

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/itchyny/gojq"
)

var (
	// ErrInvalidExpression reports an expression that does not parse or compile.
	ErrInvalidExpression = errors.New("query: invalid expression")
	// ErrNoMatch is returned by First when the expression yields nothing.
	ErrNoMatch = errors.New("query: no match")
)

// Evaluator compiles expressions once and runs them against data.
type Evaluator struct {
	mu    sync.Mutex
	codes map[string]*gojq.Code
}

// New returns an Evaluator with an empty compiled-expression cache.
func New() *Evaluator {
	return &Evaluator{codes: make(map[string]*gojq.Code)}
}

// Compile parses and compiles expr, reusing an earlier compilation.
func (e *Evaluator) Compile(expr string) (*gojq.Code, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if code, ok := e.codes[expr]; ok {
		return code, nil
	}
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidExpression, expr, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidExpression, expr, err)
	}
	e.codes[expr] = code
	return code, nil
}

// Find returns the lazy sequence of values expr matches in data. Errors
// raised while evaluating are yielded in the sequence and end it.
func (e *Evaluator) Find(data any, expr string) (iter.Seq2[any, error], error) {
	code, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	return func(yield func(any, error) bool) {
		it := code.Run(data)
		for {
			v, ok := it.Next()
			if !ok {
				return
			}
			if err, isErr := v.(error); isErr {
				yield(nil, fmt.Errorf("query %q: %w", expr, err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}, nil
}

// First returns the first value expr matches in data.
func (e *Evaluator) First(data any, expr string) (any, error) {
	seq, err := e.Find(data, expr)
	if err != nil {
		return nil, err
	}
	for v, err := range seq {
		return v, err
	}
	return nil, fmt.Errorf("%w for %q", ErrNoMatch, expr)
}

// All collects every value expr matches in data.
func (e *Evaluator) All(data any, expr string) ([]any, error) {
	seq, err := e.Find(data, expr)
	if err != nil {
		return nil, err
	}
	out := []any{}
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
