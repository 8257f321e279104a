package graph

// SchemaBuilder collects field definitions while a schema type's Build hook
// runs.
type SchemaBuilder struct {
	scope *Scope
	proto *FieldBuilder
	order []string
	defs  map[string]*Definition
}

// NewSchemaBuilder returns a builder whose resolver functions run in scope.
func NewSchemaBuilder(scope *Scope) *SchemaBuilder {
	return &SchemaBuilder{
		scope: scope,
		proto: NewFieldBuilder(),
		defs:  make(map[string]*Definition),
	}
}

// AddField registers name with a plain definition and returns a builder for
// it. Adding a name again replaces its definition but keeps its position.
func (b *SchemaBuilder) AddField(name string) *FieldBuilder {
	fb := b.proto.clone()
	if _, ok := b.defs[name]; !ok {
		b.order = append(b.order, name)
	}
	b.defs[name] = fb.def
	return fb
}

// Fields returns field names in declaration order.
func (b *SchemaBuilder) Fields() []string {
	return append([]string(nil), b.order...)
}

// Definitions returns the field table.
func (b *SchemaBuilder) Definitions() map[string]*Definition {
	return b.defs
}

func (b *SchemaBuilder) Scope() *Scope { return b.scope }

// FieldBuilder mutates the definition of a single field.
type FieldBuilder struct {
	def *Definition
}

func NewFieldBuilder() *FieldBuilder {
	return &FieldBuilder{def: NewDefinition()}
}

func (f *FieldBuilder) clone() *FieldBuilder {
	return &FieldBuilder{def: f.def.Clone()}
}

// Definition returns the definition being built.
func (f *FieldBuilder) Definition() *Definition { return f.def }

func (f *FieldBuilder) WithDefaultValue(v any) *FieldBuilder {
	f.def.SetDefault(v)
	return f
}

// WithResolver computes the field with fn. A nil fn restores reading the raw
// property.
func (f *FieldBuilder) WithResolver(fn ResolverFunc) *FieldBuilder {
	f.def.SetResolver(fn)
	return f
}

// AsAliasOf reads the field from the raw property name instead of its own name.
func (f *FieldBuilder) AsAliasOf(name string) *FieldBuilder {
	f.def.SetAlias(name)
	return f
}

// AsGraphNode resolves the field as a node of the given schema type, the base
// schema when omitted.
func (f *FieldBuilder) AsGraphNode(schemaType ...string) *FieldBuilder {
	return f.as(KindGraphNode, typeOr(schemaType, BaseSchemaType))
}

// AsGraphNodeArray resolves every element as a node of the given schema type.
func (f *FieldBuilder) AsGraphNodeArray(schemaType ...string) *FieldBuilder {
	return f.as(KindGraphNodeArray, typeOr(schemaType, BaseSchemaType))
}

// AsScalarValue casts the field to the given scalar type, if any.
func (f *FieldBuilder) AsScalarValue(scalarType ...string) *FieldBuilder {
	return f.as(KindScalar, typeOr(scalarType, ""))
}

// AsScalarArray casts every element to the given scalar type, if any.
func (f *FieldBuilder) AsScalarArray(scalarType ...string) *FieldBuilder {
	return f.as(KindScalarArray, typeOr(scalarType, ""))
}

// AsArray resolves every element by the kind detected from the element.
func (f *FieldBuilder) AsArray(typ ...string) *FieldBuilder {
	return f.as(KindArray, typeOr(typ, ""))
}

// AsRawData passes the value through untouched.
func (f *FieldBuilder) AsRawData() *FieldBuilder {
	return f.as(KindRaw, "")
}

// AsAuto resolves the field by the kind detected from its value.
func (f *FieldBuilder) AsAuto(typ ...string) *FieldBuilder {
	return f.as(KindAuto, typeOr(typ, ""))
}

func (f *FieldBuilder) as(k Kind, typ string) *FieldBuilder {
	f.def.kind = k
	f.def.SetType(typ)
	return f
}

func typeOr(types []string, fallback string) string {
	if len(types) > 0 && types[0] != "" {
		return types[0]
	}
	return fallback
}
