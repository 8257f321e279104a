package schema

import (
	"strings"

	"github.com/hanpama/objectgraph/internal/graph"
	language "github.com/hanpama/objectgraph/internal/language"
	"github.com/hanpama/objectgraph/internal/query"
	"github.com/hanpama/objectgraph/internal/scalar"
)

// Source is one SDL input.
type Source struct {
	Name  string
	Input string
}

// Load parses and validates a single SDL source.
func Load(name, sdl string) (*Document, error) {
	return LoadSources(Source{Name: name, Input: sdl})
}

// LoadSources parses every source and builds one document from all of them.
// Object types may be extended across sources. Syntax errors are returned as
// is; declaration problems are collected into a ValidationError.
func LoadSources(srcs ...Source) (*Document, error) {
	b := &builder{
		objects: make(map[string]*objectDecl),
		scalars: make(map[string]*Scalar),
		queries: query.New(),
	}
	var extensions []*language.Definition
	for _, src := range srcs {
		doc, err := language.ParseSchema(src.Name, src.Input)
		if err != nil {
			return nil, err
		}
		for _, def := range doc.Definitions {
			b.collect(def)
		}
		extensions = append(extensions, doc.Extensions...)
	}
	for _, ext := range extensions {
		b.extend(ext)
	}
	doc := b.build()
	if len(b.violations) > 0 {
		return nil, b.violations
	}
	return doc, nil
}

type objectDecl struct {
	def        *language.Definition
	fields     language.FieldList
	directives language.DirectiveList
}

type builder struct {
	order      []*objectDecl
	objects    map[string]*objectDecl
	scalarList []*Scalar
	scalars    map[string]*Scalar
	queries    *query.Evaluator
	violations ValidationError
}

func (b *builder) report(v *Violation) {
	b.violations = append(b.violations, v)
}

func (b *builder) collect(def *language.Definition) {
	if _, builtin := builtinScalars[def.Name]; builtin || def.Name == graph.BaseSchemaType || def.Name == graph.BaseNodeType {
		b.report(violationReservedTypeName(def.Name, def.Position))
		return
	}
	if b.objects[def.Name] != nil || b.scalars[def.Name] != nil {
		b.report(violationDuplicateType(def.Name, def.Position))
		return
	}
	switch def.Kind {
	case language.Object:
		decl := &objectDecl{def: def, fields: def.Fields, directives: def.Directives}
		b.objects[def.Name] = decl
		b.order = append(b.order, decl)
	case language.Scalar:
		s := &Scalar{Name: def.Name, Description: def.Description}
		b.scalars[def.Name] = s
		b.scalarList = append(b.scalarList, s)
	case language.Enum:
		s := &Scalar{Name: def.Name, Description: def.Description, Values: []string{}}
		for _, v := range def.EnumValues {
			s.Values = append(s.Values, v.Name)
		}
		b.scalars[def.Name] = s
		b.scalarList = append(b.scalarList, s)
	default:
		b.report(violationUnsupportedDefinition(def.Kind, def.Name, def.Position))
	}
}

func (b *builder) extend(ext *language.Definition) {
	decl, ok := b.objects[ext.Name]
	if !ok || ext.Kind != language.Object {
		b.report(violationUnknownExtension(ext.Name, ext.Position))
		return
	}
	decl.fields = append(decl.fields, ext.Fields...)
	decl.directives = append(decl.directives, ext.Directives...)
}

func (b *builder) build() *Document {
	doc := &Document{types: make(map[string]*Type)}
	for _, decl := range b.order {
		t := b.buildType(decl)
		doc.Types = append(doc.Types, t)
		doc.types[t.Name] = t
	}
	doc.Scalars = b.scalarList
	return doc
}

func (b *builder) buildType(decl *objectDecl) *Type {
	def := decl.def
	t := &Type{Name: def.Name, Description: def.Description}
	for _, d := range decl.directives {
		switch d.Name {
		case directiveStrict:
			b.checkArguments(d)
			t.IsStrict = true
		case directiveNode:
			node, ok := b.stringArgument(d, "type")
			if !ok {
				continue
			}
			if b.objects[node] != nil || b.scalars[node] != nil || node == graph.BaseSchemaType {
				b.report(violationNodeTypeConflict(node, t.Name, d.Position))
				continue
			}
			t.Node = node
		default:
			b.report(violationUnknownDirectiveOnType(d.Name, t.Name, d.Position))
		}
	}

	seen := make(map[string]bool)
	for _, fd := range decl.fields {
		if strings.HasPrefix(fd.Name, "__") {
			b.report(violationReservedFieldPrefix(fd.Name, fd.Position))
			continue
		}
		if seen[fd.Name] {
			b.report(violationDuplicateField(fd.Name, t.Name, fd.Position))
			continue
		}
		seen[fd.Name] = true
		if f := b.buildField(t.Name, fd); f != nil {
			t.Fields = append(t.Fields, f)
		}
	}
	return t
}

func (b *builder) buildField(owner string, fd *language.FieldDefinition) *Field {
	kind, target, ok := b.fieldKind(fd.Type)
	if !ok {
		b.report(violationUnknownType(fd.Type.Name(), fd.Name, owner, fd.Type.Position))
		return nil
	}
	f := &Field{
		Name:        fd.Name,
		Description: fd.Description,
		SDLType:     fd.Type.String(),
		Kind:        kind,
		Target:      target,
	}
	for _, d := range fd.Directives {
		switch d.Name {
		case directiveAlias:
			f.Alias, _ = b.stringArgument(d, "of")
		case directiveQuery:
			expr, ok := b.stringArgument(d, "expr")
			if !ok {
				continue
			}
			if _, err := b.queries.Compile(expr); err != nil {
				b.report(violationInvalidQuery(fd.Name, err, d.Position))
				continue
			}
			f.Query = expr
		case directiveDefault:
			b.checkArguments(d, "value")
			arg := d.Arguments.ForName("value")
			if arg == nil || arg.Value == nil {
				b.report(violationMissingDirectiveArgument(d.Name, "value", d.Position))
				continue
			}
			v, err := arg.Value.Value(nil)
			if err != nil {
				b.report(violationInvalidDefault(fd.Name, err, arg.Position))
				continue
			}
			f.Default, f.DefaultSDL = v, arg.Value.String()
		case directiveRaw:
			b.checkArguments(d)
			f.Raw = true
			f.Kind, f.Target = graph.KindRaw, ""
		default:
			b.report(violationUnknownDirectiveOnField(d.Name, fd.Name, owner, d.Position))
		}
	}
	if f.Alias != "" && f.Query != "" {
		b.report(violationConflictingSource(fd.Name, fd.Position))
	}
	return f
}

// fieldKind maps an SDL field type to a kind and target. Non-null wrappers
// carry no meaning here.
func (b *builder) fieldKind(t *language.Type) (graph.Kind, string, bool) {
	if t.Elem == nil {
		return b.namedKind(t.NamedType)
	}
	if t.Elem.Elem != nil {
		if _, _, ok := b.namedKind(t.Name()); !ok {
			return "", "", false
		}
		return graph.KindArray, "", true
	}
	kind, target, ok := b.namedKind(t.Elem.NamedType)
	if !ok {
		return "", "", false
	}
	switch kind {
	case graph.KindScalar:
		return graph.KindScalarArray, target, true
	case graph.KindGraphNode:
		return graph.KindGraphNodeArray, target, true
	}
	return graph.KindArray, "", true
}

func (b *builder) namedKind(name string) (graph.Kind, string, bool) {
	if s, ok := builtinScalars[name]; ok {
		return s.kind, s.tag, true
	}
	if _, ok := b.objects[name]; ok {
		return graph.KindGraphNode, name, true
	}
	if s, ok := b.scalars[name]; ok {
		if s.IsEnum() {
			return graph.KindScalar, scalar.String, true
		}
		return graph.KindRaw, "", true
	}
	return "", "", false
}

// stringArgument returns the string argument name of d, reporting a missing
// or non-string value and any unknown argument.
func (b *builder) stringArgument(d *language.Directive, name string) (string, bool) {
	b.checkArguments(d, name)
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil || (arg.Value.Kind != language.StringValue && arg.Value.Kind != language.BlockValue) || arg.Value.Raw == "" {
		b.report(violationMissingDirectiveArgument(d.Name, name, d.Position))
		return "", false
	}
	return arg.Value.Raw, true
}

func (b *builder) checkArguments(d *language.Directive, allowed ...string) {
	for _, arg := range d.Arguments {
		known := false
		for _, name := range allowed {
			if arg.Name == name {
				known = true
				break
			}
		}
		if !known {
			b.report(violationUnknownDirectiveArgument(d.Name, arg.Name, arg.Position))
		}
	}
}
