package graph

import "fmt"

// Kind controls how a field's raw value is coerced into its resolved value.
type Kind string

const (
	// KindAuto detects the kind from the value being resolved.
	KindAuto           Kind = ""
	KindScalar         Kind = "scalar"
	KindGraphNode      Kind = "graph_node"
	KindArray          Kind = "array"
	KindRaw            Kind = "raw"
	KindScalarArray    Kind = "scalar_array"
	KindGraphNodeArray Kind = "graph_node_array"
)

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindAuto, KindScalar, KindGraphNode, KindArray, KindRaw, KindScalarArray, KindGraphNodeArray:
		return k, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidKind, s)
	}
}

func (k Kind) String() string {
	if k == KindAuto {
		return "auto"
	}
	return string(k)
}
