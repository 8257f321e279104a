package graph

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hanpama/objectgraph/internal/query"
)

// Scope is what resolver functions run against: path queries over raw data
// and access to the root resolver for nested resolution.
type Scope struct {
	resolver *Resolver
	queries  *query.Evaluator
}

// NewScope returns a Scope bound to r.
func NewScope(r *Resolver) *Scope {
	s := &Scope{resolver: r}
	if r != nil {
		s.queries = r.queries
	}
	if s.queries == nil {
		s.queries = query.New()
	}
	return s
}

// Root returns the resolver the scope is bound to.
func (s *Scope) Root() *Resolver { return s.resolver }

// Query returns the lazy sequence of values expr matches in data.
func (s *Scope) Query(data any, expr string) (iter.Seq2[any, error], error) {
	seq, err := s.queries.Find(data, expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrQuery, expr, err)
	}
	return seq, nil
}

// First returns the first value expr matches in data, or nil when nothing
// matches.
func (s *Scope) First(data any, expr string) (any, error) {
	v, err := s.queries.First(data, expr)
	switch {
	case errors.Is(err, query.ErrNoMatch):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("%w %q: %w", ErrQuery, expr, err)
	}
	return v, nil
}
