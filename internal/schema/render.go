package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the document, followed by the directive
// declarations. Deterministic ordering: scalars and types sorted by name,
// fields in declaration order. Rendered output loads back into an
// equivalent document.
func Render(d *Document) string {
	if d == nil {
		return ""
	}
	var b strings.Builder

	scalars := append([]*Scalar(nil), d.Scalars...)
	sort.Slice(scalars, func(i, j int) bool { return scalars[i].Name < scalars[j].Name })
	for _, s := range scalars {
		if s.IsEnum() {
			renderEnum(&b, s)
		} else {
			renderScalar(&b, s)
		}
	}

	types := append([]*Type(nil), d.Types...)
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	for _, t := range types {
		renderObject(&b, t)
	}

	b.WriteString(directiveDeclarations)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// ----- render helpers -----

func renderDescription(b *strings.Builder, desc, indent string) {
	if desc == "" {
		return
	}
	b.WriteString(indent + "\"\"\"\n")
	escaped := strings.ReplaceAll(desc, "\"\"\"", "\\\"\"\"")
	for _, line := range strings.Split(escaped, "\n") {
		b.WriteString(indent + line + "\n")
	}
	b.WriteString(indent + "\"\"\"\n")
}

func renderScalar(b *strings.Builder, s *Scalar) {
	renderDescription(b, s.Description, "")
	b.WriteString("scalar ")
	b.WriteString(s.Name)
	b.WriteString("\n\n")
}

func renderEnum(b *strings.Builder, s *Scalar) {
	renderDescription(b, s.Description, "")
	b.WriteString("enum ")
	b.WriteString(s.Name)
	b.WriteString(" {\n")
	for _, v := range s.Values {
		b.WriteString("  ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
}

func renderObject(b *strings.Builder, t *Type) {
	renderDescription(b, t.Description, "")
	b.WriteString("type ")
	b.WriteString(t.Name)
	if t.IsStrict {
		b.WriteString(" @" + directiveStrict)
	}
	if t.Node != "" {
		b.WriteString(" @" + directiveNode + "(type: " + strconv.Quote(t.Node) + ")")
	}
	b.WriteString(" {\n")
	for _, f := range t.Fields {
		renderField(b, f)
	}
	b.WriteString("}\n\n")
}

func renderField(b *strings.Builder, f *Field) {
	renderDescription(b, f.Description, "  ")
	b.WriteString("  ")
	b.WriteString(f.Name)
	b.WriteString(": ")
	b.WriteString(f.SDLType)
	if f.Alias != "" {
		b.WriteString(" @" + directiveAlias + "(of: " + strconv.Quote(f.Alias) + ")")
	}
	if f.Query != "" {
		b.WriteString(" @" + directiveQuery + "(expr: " + strconv.Quote(f.Query) + ")")
	}
	if f.Default != nil {
		lit := f.DefaultSDL
		if lit == "" {
			lit = renderValue(f.Default)
		}
		b.WriteString(" @" + directiveDefault + "(value: " + lit + ")")
	}
	if f.Raw {
		b.WriteString(" @" + directiveRaw)
	}
	b.WriteString("\n")
}

// renderValue renders a Go value as an SDL literal.
func renderValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		var parts []string
		for _, item := range v {
			parts = append(parts, renderValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, k+": "+renderValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}
