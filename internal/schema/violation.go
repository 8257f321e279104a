package schema

import (
	"fmt"

	language "github.com/hanpama/objectgraph/internal/language"
)

type Violation struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationError lists every problem found while loading a document.
type ValidationError []*Violation

func (e ValidationError) Error() string {
	msg := "violations found:\n"
	for _, v := range e {
		line := "- " + v.Message
		if v.File != "" {
			line += fmt.Sprintf(" %s:%d:%d", v.File, v.Line, v.Column)
		}
		msg += line + "\n"
	}
	return msg
}

func violationWithPosition(message string, pos *language.Position) *Violation {
	v := &Violation{Message: message}
	if pos == nil {
		return v
	}
	v.Line, v.Column = pos.Line, pos.Column
	if pos.Src != nil {
		v.File = pos.Src.Name
	}
	return v
}

// Keep messages stable; tests match on them.

func violationUnsupportedDefinition(kind language.DefinitionKind, name string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Unsupported %s definition %q", kind, name), pos)
}

func violationDuplicateType(name string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Duplicate type %q", name), pos)
}

func violationReservedTypeName(name string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Type name %q is reserved", name), pos)
}

func violationUnknownExtension(name string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Cannot extend unknown object type %q", name), pos)
}

func violationDuplicateField(field, typeName string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Duplicate field %q found in type %q", field, typeName), pos)
}

func violationReservedFieldPrefix(field string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Field name %q cannot start with '__' (reserved prefix)", field), pos)
}

func violationUnknownType(typeName, field, owner string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Unknown type %q for field %s of type %s", typeName, field, owner), pos)
}

func violationUnknownDirectiveOnField(directive, field, typeName string, pos *language.Position) *Violation {
	return violationWithPosition("Unknown directive @"+directive+" on field "+field+" of type "+typeName, pos)
}

func violationUnknownDirectiveOnType(directive, typeName string, pos *language.Position) *Violation {
	return violationWithPosition("Unknown directive @"+directive+" on type "+typeName, pos)
}

func violationUnknownDirectiveArgument(directive, arg string, pos *language.Position) *Violation {
	return violationWithPosition("Unknown argument '"+arg+"' in @"+directive+" directive", pos)
}

func violationMissingDirectiveArgument(directive, arg string, pos *language.Position) *Violation {
	return violationWithPosition("Missing string argument '"+arg+"' in @"+directive+" directive", pos)
}

func violationInvalidDefault(field string, err error, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Invalid @default value on field %s: %v", field, err), pos)
}

func violationInvalidQuery(field string, err error, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Invalid @query expression on field %s: %v", field, err), pos)
}

func violationConflictingSource(field string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Field %s cannot use both @alias and @query", field), pos)
}

func violationNodeTypeConflict(node, typeName string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Node type %q of type %s collides with a schema type name", node, typeName), pos)
}
