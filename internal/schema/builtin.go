package schema

import (
	"github.com/hanpama/objectgraph/internal/graph"
	"github.com/hanpama/objectgraph/internal/scalar"
)

type builtinScalar struct {
	kind graph.Kind
	tag  string
}

// builtinScalars maps the predeclared SDL scalar names to field kinds.
var builtinScalars = map[string]builtinScalar{
	"String":    {graph.KindScalar, scalar.String},
	"ID":        {graph.KindScalar, scalar.String},
	"Int":       {graph.KindScalar, scalar.Integer},
	"Float":     {graph.KindScalar, scalar.Float},
	"Boolean":   {graph.KindScalar, scalar.Boolean},
	"DateTime":  {graph.KindScalar, scalar.DateTime},
	"Timestamp": {graph.KindScalar, scalar.Timestamp},
	"JSON":      {graph.KindRaw, ""},
	"Raw":       {graph.KindRaw, ""},
	"Any":       {graph.KindAuto, ""},
}

// Directive names understood on object types and fields.
const (
	directiveStrict  = "strict"
	directiveNode    = "node"
	directiveAlias   = "alias"
	directiveDefault = "default"
	directiveQuery   = "query"
	directiveRaw     = "raw"
)

// directiveDeclarations is the SDL declaration of every directive, rendered
// after the types so rendered documents are self-describing.
const directiveDeclarations = `"""
Exposes declared fields only.
"""
directive @strict on OBJECT

"""
Names the node type nodes of this schema get.
"""
directive @node(type: String!) on OBJECT

"""
Reads the field from another raw property.
"""
directive @alias(of: String!) on FIELD_DEFINITION

"""
Value used when the raw value is empty.
"""
directive @default(value: Any) on FIELD_DEFINITION

"""
Computes the field from the first match of a jq expression over the raw data.
"""
directive @query(expr: String!) on FIELD_DEFINITION

"""
Passes the raw value through without coercion.
"""
directive @raw on FIELD_DEFINITION
`
