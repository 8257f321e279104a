package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	eventbus "github.com/hanpama/objectgraph/internal/eventbus"
	events "github.com/hanpama/objectgraph/internal/events"
	graph "github.com/hanpama/objectgraph/internal/graph"
	schema "github.com/hanpama/objectgraph/internal/schema"
	"github.com/stretchr/testify/require"
)

const testSDL = `
type Video @strict {
  title: String
  views: Int @default(value: 1)
  published: DateTime
  channel: Channel
}

type Channel @strict {
  name: String @query(expr: ".snippet.name")
}
`

func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	doc, err := schema.Load("test.graphql", testSDL)
	require.NoError(t, err)
	reg := graph.NewRegistry()
	require.NoError(t, doc.Register(reg))
	h, err := New(reg, append([]Option{WithLocation(time.UTC)}, opts...)...)
	require.NoError(t, err)
	return h
}

func post(h http.Handler, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", target, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestResolveObject(t *testing.T) {
	h := newTestHandler(t)
	w := post(h, "/?type=Video", "application/json",
		`{"title":"Intro","published":"2021-03-04","channel":{"snippet":{"name":"Ch"}}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t,
		`{"data":{"title":"Intro","views":1,"published":"2021-03-04T00:00:00Z","channel":{"name":"Ch"}}}`+"\n",
		w.Body.String())
}

func TestResolveListYAML(t *testing.T) {
	h := newTestHandler(t)
	w := post(h, "/?type=Video&format=map", "application/yaml", "- title: a\n  views: 7\n- {}\n")
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	want := map[string]any{"data": []any{
		map[string]any{"title": "a", "views": float64(7), "published": nil, "channel": nil},
		nil,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestErrors(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(64))
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		status      int
	}{
		{"unknown schema type", "/?type=Nope", "", `{"a":1}`, http.StatusBadRequest},
		{"not a record", "/?type=Video", "", `"text"`, http.StatusUnprocessableEntity},
		{"invalid field value", "/?type=Video", "", `{"published":"not a date"}`, http.StatusUnprocessableEntity},
		{"invalid json", "/", "application/json", `{`, http.StatusBadRequest},
		{"empty body", "/", "", ` `, http.StatusBadRequest},
		{"unsupported content type", "/", "text/plain", `{}`, http.StatusUnsupportedMediaType},
		{"body too large", "/", "", `{"title":"` + string(bytes.Repeat([]byte("x"), 64)) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(h, tt.target, tt.contentType, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			var res result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			require.Len(t, res.Errors, 1)
			require.Nil(t, res.Data)
		})
	}

	t.Run("method not allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, WithCORS("*"))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"title":"x"}`))
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))
}

func TestRequestID(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var resolved, finished []int64
	defer eventbus.Subscribe[events.FieldResolved](func(ctx context.Context, e events.FieldResolved) {
		id, _ := events.RunID(ctx)
		resolved = append(resolved, id)
	})()
	defer eventbus.Subscribe[events.RunFinish](func(ctx context.Context, e events.RunFinish) {
		id, _ := events.RunID(ctx)
		finished = append(finished, id)
	})()

	h := newTestHandler(t)
	w := post(h, "/?type=Video", "", `{"title":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	id, err := strconv.ParseInt(w.Header().Get(RequestIDHeader), 10, 64)
	require.NoError(t, err)
	require.NotEmpty(t, resolved)
	for _, got := range resolved {
		require.Equal(t, id, got)
	}
	require.Equal(t, []int64{id}, finished)
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
