package graph

// ResolverFunc computes a field's raw value from the node's raw data. The
// returned value goes through the same default substitution and kind coercion
// as a value read from the data directly.
type ResolverFunc func(s *Scope, data map[string]any, ctx *Context) (any, error)

// Definition describes how one schema field is resolved.
type Definition struct {
	defaultValue any
	resolver     ResolverFunc
	kind         Kind
	typ          string
	alias        string
}

// NewDefinition returns the definition of a plain field: raw kind, no
// resolver, no default and no type.
func NewDefinition() *Definition {
	return &Definition{kind: KindRaw}
}

func (d *Definition) Default() any           { return d.defaultValue }
func (d *Definition) Resolver() ResolverFunc { return d.resolver }
func (d *Definition) Kind() Kind             { return d.kind }
func (d *Definition) Type() string           { return d.typ }
func (d *Definition) Alias() string          { return d.alias }

func (d *Definition) SetDefault(v any) *Definition {
	d.defaultValue = v
	return d
}

// SetResolver sets the resolver function; nil removes it.
func (d *Definition) SetResolver(fn ResolverFunc) *Definition {
	d.resolver = fn
	return d
}

// SetType sets the target schema type name or scalar type tag.
func (d *Definition) SetType(typ string) *Definition {
	d.typ = typ
	return d
}

// SetAlias sets the raw property read when no resolver function is set.
func (d *Definition) SetAlias(name string) *Definition {
	d.alias = name
	return d
}

// Source returns the raw property name the field reads.
func (d *Definition) Source(field string) string {
	if d.alias != "" {
		return d.alias
	}
	return field
}

// Clone returns an independent copy.
func (d *Definition) Clone() *Definition {
	c := *d
	return &c
}
