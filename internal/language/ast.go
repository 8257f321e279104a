package language

import "github.com/vektah/gqlparser/v2/ast"

// SDL syntax tree types used by schema declarations.
type (
	SchemaDocument      = ast.SchemaDocument
	Definition          = ast.Definition
	DefinitionList      = ast.DefinitionList
	FieldDefinition     = ast.FieldDefinition
	FieldList           = ast.FieldList
	EnumValueDefinition = ast.EnumValueDefinition
	Directive           = ast.Directive
	DirectiveList       = ast.DirectiveList
	Argument            = ast.Argument
	Value               = ast.Value
	Type                = ast.Type
	Position            = ast.Position
)

type DefinitionKind = ast.DefinitionKind

type ValueKind = ast.ValueKind

const (
	Object      DefinitionKind = ast.Object
	Interface   DefinitionKind = ast.Interface
	Union       DefinitionKind = ast.Union
	Scalar      DefinitionKind = ast.Scalar
	Enum        DefinitionKind = ast.Enum
	InputObject DefinitionKind = ast.InputObject

	Variable    ValueKind = ast.Variable
	StringValue ValueKind = ast.StringValue
	BlockValue  ValueKind = ast.BlockValue
)
