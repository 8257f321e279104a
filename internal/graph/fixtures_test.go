package graph

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hanpama/objectgraph/internal/scalar"
	"github.com/stretchr/testify/require"
)

type studentSchema struct{ BaseSchema }

func (studentSchema) NodeType() string { return "Student" }
func (studentSchema) Build(b *SchemaBuilder) {
	b.AddField("firstName")
	b.AddField("lastName")
	b.AddField("enrolled").AsScalarValue(scalar.DateTime)
}

type studentsArraySchema struct{ BaseSchema }

func (studentsArraySchema) Build(b *SchemaBuilder) {
	b.AddField("students").AsGraphNodeArray("StudentSchema")
}

type scalarArraySchema struct{ BaseSchema }

func (scalarArraySchema) Build(b *SchemaBuilder) {
	b.AddField("field").AsScalarArray(scalar.Integer)
}

// User schemas describe the same entity in two data layouts.
type userSchemaV1 struct{ BaseSchema }

func (userSchemaV1) Strict() bool     { return true }
func (userSchemaV1) NodeType() string { return "User" }
func (userSchemaV1) Build(b *SchemaBuilder) {
	b.AddField("firstName").WithResolver(func(_ *Scope, data map[string]any, _ *Context) (any, error) {
		first, _ := splitName(data["userName"])
		return first, nil
	})
	b.AddField("lastName").WithResolver(func(_ *Scope, data map[string]any, _ *Context) (any, error) {
		_, last := splitName(data["userName"])
		return last, nil
	})
	b.AddField("fullName").AsAliasOf("userName")
	b.AddField("dateOfBirth").AsAliasOf("dob").AsScalarValue(scalar.DateTime)
	b.AddField("email").AsAliasOf("emailAddress")
	b.AddField("schema").WithDefaultValue("v1")
}

func splitName(v any) (first, last any) {
	s, _ := v.(string)
	parts := strings.Fields(s)
	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
		return parts[0], nil
	}
	return parts[0], strings.Join(parts[1:], " ")
}

type userSchemaV2 struct{ BaseSchema }

func (userSchemaV2) Strict() bool     { return true }
func (userSchemaV2) NodeType() string { return "User" }
func (userSchemaV2) Build(b *SchemaBuilder) {
	b.AddField("firstName")
	b.AddField("lastName")
	b.AddField("fullName").WithResolver(func(_ *Scope, data map[string]any, _ *Context) (any, error) {
		if scalar.Empty(data["firstName"]) || scalar.Empty(data["lastName"]) {
			return nil, nil
		}
		return data["firstName"].(string) + " " + data["lastName"].(string), nil
	})
	b.AddField("dateOfBirth").AsScalarValue(scalar.DateTime)
	b.AddField("email")
	b.AddField("schema").WithDefaultValue("v2")
}

var errUnknownUser = errors.New("unable to detect schema from the user data")

func selectUserSchema(data map[string]any, _ string) (string, error) {
	has := func(k string) bool { return data[k] != nil }
	switch {
	case has("firstName") && has("lastName"), has("dateOfBirth"):
		return "UserV2", nil
	case has("userName"), has("dob"), has("emailAddress"):
		return "UserV1", nil
	}
	return "", errUnknownUser
}

type youtubeSchema struct{ BaseSchema }

func (youtubeSchema) NodeType() string { return "Youtube" }
func (youtubeSchema) Build(b *SchemaBuilder) {
	b.AddField("kind")
	b.AddField("etag")
	b.AddField("pageInfo").AsGraphNode("PageInfo")
	b.AddField("items").AsGraphNodeArray("Item")
}

type pageInfoSchema struct{ BaseSchema }

func (pageInfoSchema) Strict() bool { return true }
func (pageInfoSchema) Build(b *SchemaBuilder) {
	b.AddField("totalResults").AsScalarValue(scalar.Integer)
	b.AddField("resultsPerPage").AsScalarValue(scalar.Integer)
}

type itemSchema struct{ BaseSchema }

func (itemSchema) Build(b *SchemaBuilder) {
	b.AddField("kind")
	b.AddField("etag")
	b.AddField("id").AsGraphNode("Id")
}

type idSchema struct{ BaseSchema }

func (idSchema) Strict() bool { return true }
func (idSchema) Build(b *SchemaBuilder) {
	b.AddField("kind")
	b.AddField("channelId")
	b.AddField("videoId")
}

// newTestRegistry registers every fixture schema and node type.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, name := range []string{"Student", "User", "Youtube"} {
		require.NoError(t, reg.RegisterNode(name))
	}
	for name, st := range map[string]SchemaType{
		"StudentSchema": studentSchema{},
		"StudentsArray": studentsArraySchema{},
		"ScalarArray":   scalarArraySchema{},
		"UserV1":        userSchemaV1{},
		"UserV2":        userSchemaV2{},
		"YoutubeSearch": youtubeSchema{},
		"PageInfo":      pageInfoSchema{},
		"Item":          itemSchema{},
		"Id":            idSchema{},
	} {
		require.NoError(t, reg.RegisterSchema(name, st))
	}
	return reg
}

func newTestResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	base := []Option{WithRegistry(newTestRegistry(t)), WithCaster(scalar.New(scalar.WithLocation(time.UTC)))}
	return NewResolver(append(base, opts...)...)
}

func loadFixture(t *testing.T, name string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal(b, &data))
	return data
}
