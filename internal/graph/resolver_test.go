package graph

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/objectgraph/internal/eventbus"
	"github.com/hanpama/objectgraph/internal/events"
	"github.com/hanpama/objectgraph/internal/scalar"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	r := NewResolver()
	f, err := os.CreateTemp(t.TempDir(), "kind")
	require.NoError(t, err)
	defer f.Close()

	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil", nil, KindScalar},
		{"int", 1, KindScalar},
		{"float", 1.0, KindScalar},
		{"string", "dummy", KindScalar},
		{"bool", false, KindScalar},
		{"list", []any{}, KindArray},
		{"typed list", []string{"a"}, KindArray},
		{"record", map[string]any{}, KindGraphNode},
		{"node", NewNode(nil, NewSchema(r, BaseSchemaType, BaseSchema{})), KindRaw},
		{"file handle", f, KindRaw},
		{"bytes", []byte("ab"), KindRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, r.KindOf(tt.value))
		})
	}
}

func TestResolveObject_Boundaries(t *testing.T) {
	r := NewResolver()

	t.Run("nil data resolves to nil", func(t *testing.T) {
		n, err := r.ResolveObject(nil, "", nil)
		require.NoError(t, err)
		require.Nil(t, n)
	})

	t.Run("empty record resolves to nil", func(t *testing.T) {
		n, err := r.ResolveObject(map[string]any{}, "", nil)
		require.NoError(t, err)
		require.Nil(t, n)
	})

	t.Run("non-record fails", func(t *testing.T) {
		_, err := r.ResolveObject("x", "", nil)
		require.ErrorIs(t, err, ErrNotRecord)
		require.False(t, IsConfigError(err))
	})

	t.Run("node passes through", func(t *testing.T) {
		n, err := r.ResolveObject(map[string]any{"a": 1}, "", nil)
		require.NoError(t, err)
		again, err := r.ResolveObject(n, "", nil)
		require.NoError(t, err)
		require.Same(t, n, again)
	})

	t.Run("default schema and node type", func(t *testing.T) {
		n, err := r.ResolveObject(map[string]any{"a": 1}, "", nil)
		require.NoError(t, err)
		require.Equal(t, BaseSchemaType, n.Schema().TypeName())
		require.Equal(t, BaseNodeType, n.TypeName())
	})
}

type misdirectedSchema struct{ BaseSchema }

func (misdirectedSchema) NodeType() string { return "StudentSchema" }

func TestResolveObject_ConfigErrors(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, reg.RegisterSchema("Misdirected", misdirectedSchema{}))
	r := NewResolver(WithRegistry(reg))
	data := map[string]any{"a": 1}

	tests := []struct {
		name       string
		schemaType string
		want       error
	}{
		{"unknown schema type", "dummy", ErrUnknownType},
		{"node type used as schema", BaseNodeType, ErrNotSchema},
		{"schema type used as node", "Misdirected", ErrNotNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ResolveObject(data, tt.schemaType, nil)
			require.ErrorIs(t, err, tt.want)
			require.True(t, IsConfigError(err))
		})
	}
}

func TestResolver_SchemaCache(t *testing.T) {
	r := newTestResolver(t)
	a, err := r.Schema("StudentSchema")
	require.NoError(t, err)
	b, err := r.Schema("StudentSchema")
	require.NoError(t, err)
	require.Same(t, a, b)

	base, err := r.Schema("")
	require.NoError(t, err)
	require.Equal(t, BaseSchemaType, base.TypeName())

	// each resolver owns its cache
	other, err := newTestResolver(t).Schema("StudentSchema")
	require.NoError(t, err)
	require.NotSame(t, a, other)
}

func TestResolveArray(t *testing.T) {
	r := newTestResolver(t)

	t.Run("nil resolves to empty slice", func(t *testing.T) {
		got, err := r.ResolveArray(nil, KindRaw, "", nil)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	})

	t.Run("raw elements pass through", func(t *testing.T) {
		in := []any{map[string]any{"a": 1}, "x", []any{1}}
		got, err := r.ResolveArray(in, KindRaw, "", nil)
		require.NoError(t, err)
		require.Equal(t, in, got)
	})

	t.Run("array detects each element", func(t *testing.T) {
		got, err := r.ResolveArray([]any{"1", map[string]any{"a": 1}, []any{2}, nil}, KindArray, "", nil)
		require.NoError(t, err)
		require.Len(t, got, 4)
		require.Equal(t, "1", got[0])
		node, ok := got[1].(*Node)
		require.True(t, ok)
		v, err := node.Get("a")
		require.NoError(t, err)
		require.Equal(t, 1, v)
		require.Equal(t, []any{2}, got[2])
		require.Nil(t, got[3])
	})

	t.Run("scalar elements are cast", func(t *testing.T) {
		got, err := r.ResolveArray([]any{"1", "2x", 3.7}, KindScalarArray, scalar.Integer, nil)
		require.NoError(t, err)
		require.Equal(t, []any{int64(1), int64(2), int64(3)}, got)
	})

	t.Run("graph node elements keep order", func(t *testing.T) {
		got, err := r.ResolveArray([]map[string]any{{"firstName": "A"}, {"firstName": "B"}}, KindGraphNodeArray, "StudentSchema", nil)
		require.NoError(t, err)
		var names []any
		for _, e := range got {
			n := e.(*Node)
			require.Equal(t, "Student", n.TypeName())
			v, err := n.Get("firstName")
			require.NoError(t, err)
			names = append(names, v)
		}
		require.Equal(t, []any{"A", "B"}, names)
	})

	t.Run("unsupported kind fails", func(t *testing.T) {
		_, err := r.ResolveArray([]any{1}, Kind("bogus"), "", nil)
		require.ErrorIs(t, err, ErrUnsupportedKind)
		require.True(t, IsConfigError(err))
	})

	t.Run("non-list fails", func(t *testing.T) {
		_, err := r.ResolveArray("x", KindArray, "", nil)
		require.ErrorIs(t, err, ErrNotList)
	})

	t.Run("element errors carry the index", func(t *testing.T) {
		_, err := r.ResolveArray([]any{"2020-01-01", "nope"}, KindScalar, scalar.DateTime, nil)
		require.ErrorIs(t, err, scalar.ErrInvalidValue)
		require.Contains(t, err.Error(), "element 1")
	})
}

// Pattern: Scenario comparison
func TestResolver_Scenarios(t *testing.T) {
	t.Run("lenient schema passes raw data through", func(t *testing.T) {
		data := map[string]any{"firstName": "Bob", "lastName": "Marley", "albums": []any{"A", "B", "C"}}
		n, err := NewResolver().ResolveObject(data, "", nil)
		require.NoError(t, err)
		got, err := n.AsMap()
		require.NoError(t, err)
		if diff := cmp.Diff(data, got); diff != "" {
			t.Fatalf("node mismatch (-want +got):\n%s", diff)
		}
		require.Equal(t, []string{"albums", "firstName", "lastName"}, n.Fields())
	})

	t.Run("graph node array of students", func(t *testing.T) {
		r := newTestResolver(t)
		n, err := r.ResolveObject(map[string]any{
			"students": []any{map[string]any{"firstName": "A", "lastName": "B"}},
		}, "StudentsArray", nil)
		require.NoError(t, err)
		got, err := n.AsMap()
		require.NoError(t, err)
		want := map[string]any{
			"students": []any{map[string]any{"firstName": "A", "lastName": "B", "enrolled": nil}},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("node mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("students fixture", func(t *testing.T) {
		r := newTestResolver(t)
		n, err := r.ResolveObject(loadFixture(t, "students.json"), "StudentsArray", nil)
		require.NoError(t, err)
		got, err := n.AsMap()
		require.NoError(t, err)
		want := map[string]any{
			"students": []any{
				map[string]any{"firstName": "Ada", "lastName": "Lovelace", "enrolled": time.Date(1833, 6, 5, 0, 0, 0, 0, time.UTC)},
				map[string]any{"firstName": "Alan", "lastName": "Turing", "enrolled": nil},
				nil,
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("node mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("youtube fixture", func(t *testing.T) {
		r := newTestResolver(t)
		n, err := r.ResolveObject(loadFixture(t, "youtube.json"), "YoutubeSearch", nil)
		require.NoError(t, err)
		require.Equal(t, "Youtube", n.TypeName())
		require.Equal(t, []string{"kind", "etag", "pageInfo", "items", "nextPageToken", "regionCode"}, n.Fields())

		got, err := n.AsMap()
		require.NoError(t, err)
		want := map[string]any{
			"kind":          "youtube#searchListResponse",
			"etag":          "q1",
			"nextPageToken": "CAUQAA",
			"regionCode":    "AU",
			"pageInfo":      map[string]any{"totalResults": int64(1000000), "resultsPerPage": int64(2)},
			"items": []any{
				map[string]any{
					"kind": "youtube#searchResult",
					"etag": "e1",
					"id":   map[string]any{"kind": "youtube#video", "channelId": nil, "videoId": "dQw4w9WgXcQ"},
				},
				map[string]any{
					"kind": "youtube#searchResult",
					"etag": "e2",
					"id":   map[string]any{"kind": "youtube#channel", "channelId": "UC38IQsAvIsxxjztdMZQtwHA", "videoId": nil},
				},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("node mismatch (-want +got):\n%s", diff)
		}

		info, err := n.Get("pageInfo")
		require.NoError(t, err)
		require.Equal(t, BaseNodeType, info.(*Node).TypeName())
	})
}

func TestResolver_SchemaSelector(t *testing.T) {
	r := newTestResolver(t, WithSchemaSelector(selectUserSchema))
	dob := time.Date(1945, 2, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		data map[string]any
		want map[string]any
	}{
		{
			name: "v1 layout",
			data: map[string]any{"userName": "Bob Marley", "dob": "1945-02-06", "emailAddress": "bob@example.com", "band": "Wailers"},
			want: map[string]any{"firstName": "Bob", "lastName": "Marley", "fullName": "Bob Marley", "dateOfBirth": dob, "email": "bob@example.com", "schema": "v1"},
		},
		{
			name: "v2 layout",
			data: map[string]any{"firstName": "Bob", "lastName": "Marley", "dateOfBirth": "1945-02-06", "email": "bob@example.com"},
			want: map[string]any{"firstName": "Bob", "lastName": "Marley", "fullName": "Bob Marley", "dateOfBirth": dob, "email": "bob@example.com", "schema": "v2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := r.ResolveObject(tt.data, "", nil)
			require.NoError(t, err)
			require.Equal(t, "User", n.TypeName())
			got, err := n.AsMap()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("user mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("undetectable layout", func(t *testing.T) {
		_, err := r.ResolveObject(map[string]any{"nick": "bob"}, "", nil)
		require.ErrorIs(t, err, errUnknownUser)
	})
}

func TestResolver_PublishesEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	type key struct{}
	var objects []events.ObjectResolved
	var fields []events.FieldResolved
	var sawTrace bool
	eventbus.Subscribe[events.ObjectResolved](func(ctx context.Context, e events.ObjectResolved) {
		sawTrace = ctx.Value(key{}) == "trace"
		objects = append(objects, e)
	})
	eventbus.Subscribe[events.FieldResolved](func(_ context.Context, e events.FieldResolved) { fields = append(fields, e) })

	r := newTestResolver(t, WithTraceContext(context.WithValue(context.Background(), key{}, "trace")))
	n, err := r.ResolveObject(loadFixture(t, "students.json"), "StudentsArray", nil)
	require.NoError(t, err)
	_, err = n.Get("students")
	require.NoError(t, err)

	require.True(t, sawTrace)
	// the empty third student resolves to nil without an event
	require.Len(t, objects, 3)
	require.Equal(t, "StudentsArray", objects[0].Schema)
	require.Equal(t, BaseNodeType, objects[0].NodeType)
	require.Equal(t, 1, objects[0].Fields)
	require.Equal(t, "Student", objects[1].NodeType)

	require.Len(t, fields, 1)
	require.Equal(t, "students", fields[0].Field)
	require.Equal(t, KindGraphNodeArray.String(), fields[0].Kind)
	require.True(t, fields[0].Declared)
	require.NoError(t, fields[0].Err)
}

func TestResolver_RestoreNode(t *testing.T) {
	r := newTestResolver(t, WithContext(NewContext(map[string]any{"locale": "en"})))
	n, err := r.ResolveObject(map[string]any{
		"firstName":   "Bob",
		"lastName":    "Marley",
		"dateOfBirth": "1945-02-06",
	}, "UserV2", nil)
	require.NoError(t, err)

	b, err := json.Marshal(n.State())
	require.NoError(t, err)
	var st NodeState
	require.NoError(t, json.Unmarshal(b, &st))

	restored, err := newTestResolver(t).RestoreNode(st)
	require.NoError(t, err)
	require.Equal(t, "User", restored.TypeName())
	require.Equal(t, "en", restored.Schema().Context().Get("locale"))
	require.Equal(t, n.Fields(), restored.Fields())

	want, err := n.AsMap()
	require.NoError(t, err)
	got, err := restored.AsMap()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("restored node mismatch (-want +got):\n%s", diff)
	}

	t.Run("unknown schema type", func(t *testing.T) {
		_, err := r.RestoreNode(NodeState{Schema: SchemaState{Type: "Gone"}})
		require.ErrorIs(t, err, ErrUnknownType)
	})

	t.Run("nil data restores an empty node", func(t *testing.T) {
		n, err := r.RestoreNode(NodeState{})
		require.NoError(t, err)
		require.Empty(t, n.Fields())
		require.NotNil(t, n.RawData())
	})
}
