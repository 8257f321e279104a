package graph

import (
	"fmt"
	"time"

	"github.com/hanpama/objectgraph/internal/eventbus"
	"github.com/hanpama/objectgraph/internal/events"
	"github.com/hanpama/objectgraph/internal/scalar"
)

// Schema is the resolved field table of a schema type, bound to a resolver
// and a Context. The resolver builds one Schema per type and hands out
// context-bound copies of it.
type Schema struct {
	typeName string
	def      SchemaType
	resolver *Resolver
	ctx      *Context

	scope  *Scope
	fields []string
	defs   map[string]*Definition
}

// NewSchema builds the schema of def, registered or not, under typeName.
func NewSchema(r *Resolver, typeName string, def SchemaType) *Schema {
	if r == nil {
		r = NewResolver()
	}
	s := newSchema(r, typeName, def)
	s.rebuildFields()
	return s
}

// newSchema stores references only; rebuildFields must run before use.
func newSchema(r *Resolver, typeName string, def SchemaType) *Schema {
	return &Schema{typeName: typeName, def: def, resolver: r, ctx: NewContext(nil)}
}

// rebuildFields runs the schema type's Build hook against a fresh builder.
// Field tables are never copied or persisted; they are always rebuilt.
func (s *Schema) rebuildFields() {
	s.scope = NewScope(s.resolver)
	b := NewSchemaBuilder(s.scope)
	s.def.Build(b)
	s.fields = b.Fields()
	s.defs = b.Definitions()
}

func (s *Schema) TypeName() string    { return s.typeName }
func (s *Schema) Type() SchemaType    { return s.def }
func (s *Schema) Context() *Context   { return s.ctx }
func (s *Schema) Resolver() *Resolver { return s.resolver }

// Strict reports whether nodes expose declared fields only.
func (s *Schema) Strict() bool { return s.def.Strict() }

// Fields returns the declared field names in declaration order.
func (s *Schema) Fields() []string { return append([]string(nil), s.fields...) }

// NodeType returns the node type name nodes of this schema get.
func (s *Schema) NodeType() string {
	if t := s.def.NodeType(); t != "" {
		return t
	}
	return BaseNodeType
}

// Definition returns the definition of a declared field.
func (s *Schema) Definition(field string) (*Definition, bool) {
	d, ok := s.defs[field]
	return d, ok
}

// WithContext returns a copy of the schema bound to ctx. The field table and
// resolver are shared with s.
func (s *Schema) WithContext(ctx *Context) *Schema {
	c := *s
	c.ctx = ctx
	return &c
}

// Resolve computes the value of field from raw. Undeclared fields are read
// from raw and passed through as they are.
func (s *Schema) Resolve(field string, raw map[string]any) (value any, err error) {
	def, declared := s.defs[field]
	if !declared {
		def = NewDefinition()
	}
	if eventbus.Active[events.FieldResolved]() {
		start := time.Now()
		defer func() {
			s.resolver.publish(events.FieldResolved{
				Schema:   s.typeName,
				Field:    field,
				Kind:     def.Kind().String(),
				Declared: declared,
				Err:      err,
				Duration: time.Since(start),
			})
		}()
	}

	ctx := s.ctx.Derive()
	if fn := def.Resolver(); fn != nil {
		value, err = fn(s.scope, raw, ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve %s.%s: %w", s.typeName, field, err)
		}
	} else {
		value = raw[def.Source(field)]
	}
	// Zero, false and empty values fall back to the default like nil does.
	if scalar.Empty(value) {
		value = def.Default()
	}
	value, err = s.resolver.coerce(value, def.Kind(), def.Type(), ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve %s.%s: %w", s.typeName, field, err)
	}
	return value, nil
}

// SchemaState is the serializable part of a schema: the registered type name
// and the context values. Field tables hold functions and are rebuilt from
// the schema type on restore.
type SchemaState struct {
	Type    string         `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// State captures the schema for later reconstruction with Resolver.Restore.
func (s *Schema) State() SchemaState {
	return SchemaState{Type: s.typeName, Context: s.ctx.Values()}
}
