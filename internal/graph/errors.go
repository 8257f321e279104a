package graph

import (
	"errors"

	"github.com/hanpama/objectgraph/internal/scalar"
)

var (
	// ErrUnknownType reports a schema or node type name missing from the registry.
	ErrUnknownType = errors.New("graph: type does not exist")
	// ErrNotSchema reports a registered type used where a schema type is required.
	ErrNotSchema = errors.New("graph: type must extend Schema")
	// ErrNotNode reports a registered type used where a node type is required.
	ErrNotNode = errors.New("graph: type must extend GraphNode")
	// ErrUnsupportedKind reports a kind array resolution cannot handle.
	ErrUnsupportedKind = errors.New("graph: unsupported kind")
	// ErrInvalidKind reports a value that is not one of the Kind constants.
	ErrInvalidKind = errors.New("graph: invalid kind")
	// ErrEmptyName reports an empty context key.
	ErrEmptyName = errors.New("graph: property must have a name")
	// ErrImmutable reports a write or delete on a resolved node.
	ErrImmutable = errors.New("graph: node is immutable")
	// ErrNotRecord reports data that cannot be wrapped into a node.
	ErrNotRecord = errors.New("graph: value is not a record")
	// ErrNotList reports data that cannot be resolved as an array.
	ErrNotList = errors.New("graph: value is not a list")
	// ErrQuery reports a failed path-query evaluation.
	ErrQuery = errors.New("graph: cannot evaluate query")
	// ErrDuplicateType reports a type name registered twice.
	ErrDuplicateType = errors.New("graph: type already registered")
)

// IsConfigError reports whether err is a configuration error: a programming
// mistake in schema setup rather than a problem with the data being resolved.
func IsConfigError(err error) bool {
	for _, target := range []error{
		ErrUnknownType, ErrNotSchema, ErrNotNode, ErrUnsupportedKind,
		ErrInvalidKind, ErrEmptyName, ErrDuplicateType, scalar.ErrInvalidType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
