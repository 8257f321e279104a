package graph

import (
	"fmt"
	"sort"
	"sync"
)

// Names of the base schema and node types every registry starts with.
const (
	BaseSchemaType = "Schema"
	BaseNodeType   = "GraphNode"
)

// SchemaType declares the fields of a schema and its node policy. Embed
// BaseSchema and override what differs.
type SchemaType interface {
	// Build declares the schema's fields.
	Build(b *SchemaBuilder)
	// Strict reports whether only declared fields are visible on nodes.
	Strict() bool
	// NodeType names the registered node type nodes of this schema get.
	NodeType() string
}

// BaseSchema is the lenient schema with no declared fields.
type BaseSchema struct{}

func (BaseSchema) Build(*SchemaBuilder) {}
func (BaseSchema) Strict() bool         { return false }
func (BaseSchema) NodeType() string     { return BaseNodeType }

type registryEntry struct {
	schema SchemaType
	node   bool
}

// Registry maps type names to schema types and node types. Both share one
// namespace, so a name can be checked for being the wrong sort of type.
type Registry struct {
	mu    sync.RWMutex
	types map[string]registryEntry
}

// NewRegistry returns a registry holding the base schema and node types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]registryEntry)}
	r.types[BaseSchemaType] = registryEntry{schema: BaseSchema{}}
	r.types[BaseNodeType] = registryEntry{node: true}
	return r
}

// RegisterSchema adds a schema type under name.
func (r *Registry) RegisterSchema(name string, t SchemaType) error {
	if name == "" {
		return fmt.Errorf("%w: schema type", ErrEmptyName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateType, name)
	}
	r.types[name] = registryEntry{schema: t}
	return nil
}

// RegisterNode adds a node type under name. Registering an existing node
// type again is a no-op.
func (r *Registry) RegisterNode(name string) error {
	if name == "" {
		return fmt.Errorf("%w: node type", ErrEmptyName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.types[name]; ok {
		if e.node {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrDuplicateType, name)
	}
	r.types[name] = registryEntry{node: true}
	return nil
}

// Schema returns the schema type registered under name.
func (r *Registry) Schema(name string) (SchemaType, error) {
	r.mu.RLock()
	e, ok := r.types[name]
	r.mu.RUnlock()
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	case e.schema == nil:
		return nil, fmt.Errorf("%w: %q", ErrNotSchema, name)
	}
	return e.schema, nil
}

// CheckNode verifies name is a registered node type.
func (r *Registry) CheckNode(name string) error {
	r.mu.RLock()
	e, ok := r.types[name]
	r.mu.RUnlock()
	switch {
	case !ok:
		return fmt.Errorf("%w: %q", ErrUnknownType, name)
	case !e.node:
		return fmt.Errorf("%w: %q", ErrNotNode, name)
	}
	return nil
}

// Names returns all registered type names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
