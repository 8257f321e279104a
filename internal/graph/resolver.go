package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/hanpama/objectgraph/internal/eventbus"
	"github.com/hanpama/objectgraph/internal/events"
	"github.com/hanpama/objectgraph/internal/query"
	"github.com/hanpama/objectgraph/internal/rawdata"
	"github.com/hanpama/objectgraph/internal/scalar"
)

// SchemaSelector picks the schema type for a record. It receives the schema
// type requested by the caller, empty when none was, and may return it as is.
type SchemaSelector func(data map[string]any, schemaType string) (string, error)

// Resolver turns raw data into nodes. It owns a cache holding one Schema per
// schema type; the cache is never shared with other resolvers.
type Resolver struct {
	registry *Registry
	ctx      *Context
	caster   *scalar.Caster
	queries  *query.Evaluator
	selector SchemaSelector
	traceCtx context.Context

	schemas map[string]*Schema
}

type Option func(*Resolver)

// WithRegistry sets the type registry. Defaults to NewRegistry().
func WithRegistry(reg *Registry) Option { return func(r *Resolver) { r.registry = reg } }

// WithContext sets the Context used when a call passes none.
func WithContext(ctx *Context) Option { return func(r *Resolver) { r.ctx = ctx } }

// WithCaster sets the scalar caster. Defaults to scalar.New().
func WithCaster(c *scalar.Caster) Option { return func(r *Resolver) { r.caster = c } }

// WithSchemaSelector lets fn choose the schema type of every resolved record.
func WithSchemaSelector(fn SchemaSelector) Option { return func(r *Resolver) { r.selector = fn } }

// WithTraceContext sets the context resolution events are published with.
func WithTraceContext(ctx context.Context) Option { return func(r *Resolver) { r.traceCtx = ctx } }

// NewResolver returns a Resolver with an empty schema cache.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{schemas: make(map[string]*Schema)}
	for _, o := range opts {
		o(r)
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	if r.ctx == nil {
		r.ctx = NewContext(nil)
	}
	if r.caster == nil {
		r.caster = scalar.New()
	}
	if r.queries == nil {
		r.queries = query.New()
	}
	if r.traceCtx == nil {
		r.traceCtx = context.Background()
	}
	return r
}

func (r *Resolver) Registry() *Registry { return r.registry }

// KindOf classifies v structurally: nil and primitives are scalars, records
// are graph nodes, lists are arrays and anything else is raw.
func (r *Resolver) KindOf(v any) Kind {
	switch {
	case rawdata.IsScalar(v):
		return KindScalar
	case isNode(v):
		return KindRaw
	}
	if _, ok := rawdata.Record(v); ok {
		return KindGraphNode
	}
	if _, ok := rawdata.List(v); ok {
		return KindArray
	}
	return KindRaw
}

func isNode(v any) bool {
	_, ok := v.(*Node)
	return ok
}

// ResolveScalar casts v to the scalar type typ.
func (r *Resolver) ResolveScalar(v any, typ string) (any, error) {
	return r.caster.Cast(v, typ)
}

// Schema returns the cached schema of schemaType, building it on first use.
func (r *Resolver) Schema(schemaType string) (*Schema, error) {
	if schemaType == "" {
		schemaType = BaseSchemaType
	}
	if s, ok := r.schemas[schemaType]; ok {
		return s, nil
	}
	def, err := r.registry.Schema(schemaType)
	if err != nil {
		return nil, err
	}
	s := newSchema(r, schemaType, def)
	s.rebuildFields()
	r.schemas[schemaType] = s
	return s, nil
}

// ResolveObject wraps data into a node of schemaType, the base schema when
// empty. Nil and empty records resolve to a nil node. A nil ctx uses the
// resolver's default Context.
func (r *Resolver) ResolveObject(data any, schemaType string, ctx *Context) (*Node, error) {
	if n, ok := data.(*Node); ok {
		return n, nil
	}
	if data == nil {
		return nil, nil
	}
	rec, ok := rawdata.Record(data)
	if !ok {
		return nil, fmt.Errorf("%w: cannot resolve %T as %s", ErrNotRecord, data, orBase(schemaType))
	}
	if len(rec) == 0 {
		return nil, nil
	}
	start := time.Now()
	if r.selector != nil {
		selected, err := r.selector(rec, schemaType)
		if err != nil {
			return nil, err
		}
		schemaType = selected
	}
	schema, err := r.Schema(schemaType)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = r.ctx
	}
	schema = schema.WithContext(ctx)
	nodeType := schema.NodeType()
	if err := r.registry.CheckNode(nodeType); err != nil {
		return nil, err
	}
	n := newNode(rec, schema, nodeType)
	r.publish(events.ObjectResolved{
		Schema:   schema.TypeName(),
		NodeType: nodeType,
		Fields:   len(schema.fields),
		Duration: time.Since(start),
	})
	return n, nil
}

func orBase(schemaType string) string {
	if schemaType == "" {
		return BaseSchemaType
	}
	return schemaType
}

// ResolveArray resolves every element of data according to kind, keeping
// order. Nil and empty input resolve to an empty slice, never nil.
//
// KindRaw passes elements through, KindArray and KindAuto detect each
// element's kind, KindScalar and KindScalarArray cast each element to typ,
// and KindGraphNode and KindGraphNodeArray resolve each element as a node
// of schema type typ.
func (r *Resolver) ResolveArray(data any, kind Kind, typ string, ctx *Context) ([]any, error) {
	if data == nil {
		return []any{}, nil
	}
	list, ok := rawdata.List(data)
	if !ok {
		return nil, fmt.Errorf("%w: cannot resolve %T as a list", ErrNotList, data)
	}
	out := make([]any, len(list))
	for i, elem := range list {
		v, err := r.resolveElement(elem, kind, typ, ctx)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (r *Resolver) resolveElement(elem any, kind Kind, typ string, ctx *Context) (any, error) {
	switch kind {
	case KindRaw:
		return elem, nil
	case KindArray, KindAuto:
		switch r.KindOf(elem) {
		case KindScalar:
			return r.ResolveScalar(elem, typ)
		case KindGraphNode:
			return r.resolveNode(elem, typ, ctx)
		case KindArray:
			return r.ResolveArray(elem, KindArray, typ, ctx)
		default:
			return elem, nil
		}
	case KindScalar, KindScalarArray:
		return r.ResolveScalar(elem, typ)
	case KindGraphNode, KindGraphNodeArray:
		return r.resolveNode(elem, typ, ctx)
	default:
		return nil, fmt.Errorf("%w %q for array elements", ErrUnsupportedKind, kind)
	}
}

// coerce turns a field's raw value into its resolved value by kind.
func (r *Resolver) coerce(value any, kind Kind, typ string, ctx *Context) (any, error) {
	if kind == KindAuto {
		kind = r.KindOf(value)
	}
	switch kind {
	case KindScalar:
		return r.ResolveScalar(value, typ)
	case KindGraphNode:
		return r.resolveNode(value, typ, ctx)
	case KindArray:
		return r.ResolveArray(value, KindArray, typ, ctx)
	case KindScalarArray:
		return r.ResolveArray(value, KindScalar, typ, ctx)
	case KindGraphNodeArray:
		return r.ResolveArray(value, KindGraphNode, typ, ctx)
	case KindRaw:
		return value, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedKind, kind)
	}
}

// resolveNode is ResolveObject with a nil node reported as an untyped nil.
func (r *Resolver) resolveNode(data any, schemaType string, ctx *Context) (any, error) {
	n, err := r.ResolveObject(data, schemaType, ctx)
	if err != nil || n == nil {
		return nil, err
	}
	return n, nil
}

// Restore rebuilds a schema from captured state. The field table comes from
// the schema type's Build hook, not from the state.
func (r *Resolver) Restore(st SchemaState) (*Schema, error) {
	schemaType := orBase(st.Type)
	def, err := r.registry.Schema(schemaType)
	if err != nil {
		return nil, err
	}
	s := newSchema(r, schemaType, def)
	s.ctx = NewContext(st.Context)
	s.rebuildFields()
	return s, nil
}

// RestoreNode rebuilds a node from captured state.
func (r *Resolver) RestoreNode(st NodeState) (*Node, error) {
	s, err := r.Restore(st.Schema)
	if err != nil {
		return nil, err
	}
	nodeType := s.NodeType()
	if err := r.registry.CheckNode(nodeType); err != nil {
		return nil, err
	}
	data := st.Data
	if data == nil {
		data = map[string]any{}
	}
	return newNode(data, s, nodeType), nil
}

// publish sends e to the global event bus; subscribers match on e's dynamic type.
func (r *Resolver) publish(e any) {
	eventbus.Publish(r.traceCtx, e)
}
