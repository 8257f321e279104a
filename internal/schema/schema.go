// Package schema declares schema types in GraphQL SDL. Every object type of a
// document becomes a graph.SchemaType; directives carry what the SDL type
// system cannot express:
//
//	type VideoSchema @strict @node(type: "Video") {
//	  id: ID @alias(of: "videoId")
//	  title: String @query(expr: ".snippet.title")
//	  published: DateTime
//	  views: Int @default(value: 0)
//	  channel: Channel
//	  tags: [String]
//	  extra: JSON
//	}
package schema

import (
	"fmt"
	"sort"

	"github.com/hanpama/objectgraph/internal/graph"
)

// Document is a loaded set of SDL declarations.
type Document struct {
	Types   []*Type
	Scalars []*Scalar

	types map[string]*Type
}

// Type returns the object type declared as name.
func (d *Document) Type(name string) (*Type, bool) {
	t, ok := d.types[name]
	return t, ok
}

// NodeTypes returns the node type names the document's types refer to,
// sorted. The base node type is not included.
func (d *Document) NodeTypes() []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range d.Types {
		if t.Node == "" || t.Node == graph.BaseNodeType || seen[t.Node] {
			continue
		}
		seen[t.Node] = true
		names = append(names, t.Node)
	}
	sort.Strings(names)
	return names
}

// Register adds the node types and then the schema types of d to reg.
func (d *Document) Register(reg *graph.Registry) error {
	for _, name := range d.NodeTypes() {
		if err := reg.RegisterNode(name); err != nil {
			return fmt.Errorf("register node type: %w", err)
		}
	}
	for _, t := range d.Types {
		if err := reg.RegisterSchema(t.Name, t); err != nil {
			return fmt.Errorf("register schema type: %w", err)
		}
	}
	return nil
}

// Type is an SDL object type. It implements graph.SchemaType.
type Type struct {
	Name        string
	Description string
	IsStrict    bool
	// Node is the node type named by @node, empty for the base node type.
	Node   string
	Fields []*Field
}

func (t *Type) Strict() bool { return t.IsStrict }

func (t *Type) NodeType() string {
	if t.Node == "" {
		return graph.BaseNodeType
	}
	return t.Node
}

// Build declares the type's fields in SDL order.
func (t *Type) Build(b *graph.SchemaBuilder) {
	for _, f := range t.Fields {
		f.declare(b)
	}
}

// Field is a field of an SDL object type.
type Field struct {
	Name        string
	Description string
	// SDLType is the field type as written, e.g. "[Student!]".
	SDLType string
	Kind    graph.Kind
	// Target is the scalar type tag or the schema type name, by Kind.
	Target string
	Alias  string
	// Default is the @default value; DefaultSDL is its SDL literal.
	Default    any
	DefaultSDL string
	Query      string
	Raw        bool
}

func (f *Field) declare(b *graph.SchemaBuilder) {
	fb := b.AddField(f.Name)
	switch f.Kind {
	case graph.KindScalar:
		fb.AsScalarValue(f.Target)
	case graph.KindScalarArray:
		fb.AsScalarArray(f.Target)
	case graph.KindGraphNode:
		fb.AsGraphNode(f.Target)
	case graph.KindGraphNodeArray:
		fb.AsGraphNodeArray(f.Target)
	case graph.KindArray:
		fb.AsArray(f.Target)
	case graph.KindAuto:
		fb.AsAuto(f.Target)
	default:
		fb.AsRawData()
	}
	if f.Alias != "" {
		fb.AsAliasOf(f.Alias)
	}
	if f.Default != nil {
		fb.WithDefaultValue(f.Default)
	}
	if f.Query != "" {
		fb.WithResolver(queryResolver(f.Query))
	}
}

// queryResolver reads a field from the first value expr matches in the raw data.
func queryResolver(expr string) graph.ResolverFunc {
	return func(s *graph.Scope, data map[string]any, _ *graph.Context) (any, error) {
		return s.First(data, expr)
	}
}

// Scalar is a custom scalar or enum declaration. Custom scalars resolve as
// raw data and enums as strings.
type Scalar struct {
	Name        string
	Description string
	// Values lists enum values; it is nil for scalars.
	Values []string
}

func (s *Scalar) IsEnum() bool { return s.Values != nil }
