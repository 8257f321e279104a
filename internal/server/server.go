package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	eventbus "github.com/hanpama/objectgraph/internal/eventbus"
	events "github.com/hanpama/objectgraph/internal/events"
	graph "github.com/hanpama/objectgraph/internal/graph"
	rawdata "github.com/hanpama/objectgraph/internal/rawdata"
	scalar "github.com/hanpama/objectgraph/internal/scalar"
)

// RequestIDHeader carries the id events of a request were published with.
const RequestIDHeader = "X-Request-Id"

// Handler is an http.Handler that resolves posted documents against the
// schema types of a registry. Every request gets its own resolver, so schema
// caches are never shared between requests.
type Handler struct {
	reg *graph.Registry
	opt Options
}

type Options struct {
	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// Location is used for DateTime fields. Defaults to time.Local.
	Location *time.Location
}

type Option func(*Options)

func WithPretty() Option              { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithLocation(loc *time.Location) Option { return func(o *Options) { o.Location = loc } }

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a handler resolving documents with the types of reg.
func New(reg *graph.Registry, opts ...Option) (*Handler, error) {
	if reg == nil {
		return nil, errors.New("server: registry is required")
	}
	op := Options{Location: time.Local}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{reg: reg, opt: op}, nil
}

// ServeHTTP resolves the request body as the schema type named by the "type"
// query parameter, the base schema when absent. A "format=map" parameter
// returns objects with sorted keys instead of declaration order.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, rid := events.WithRun(r.Context())
	w.Header().Set(RequestIDHeader, strconv.FormatInt(rid, 10))

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse("method not allowed"), h.opt.Pretty)
		return
	}

	schemaType := r.URL.Query().Get("type")
	var err error
	eventbus.Publish(ctx, events.RunStart{Command: "serve", SchemaType: schemaType})
	defer func() { eventbus.Publish(ctx, events.RunFinish{Err: err}) }()

	data, status, err := parseRequest(r, h.opt.MaxBodyBytes)
	if err != nil {
		writeJSON(w, status, errorResponse(err.Error()), h.opt.Pretty)
		return
	}

	var out any
	out, err = h.resolve(ctx, data, schemaType, r.URL.Query().Get("format") != "map")
	if err != nil {
		status = http.StatusUnprocessableEntity
		if graph.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse(err.Error()), h.opt.Pretty)
		return
	}
	writeJSON(w, http.StatusOK, result{Data: out}, h.opt.Pretty)
}

func (h *Handler) resolve(ctx context.Context, data any, schemaType string, asObject bool) (any, error) {
	r := graph.NewResolver(
		graph.WithRegistry(h.reg),
		graph.WithCaster(scalar.New(scalar.WithLocation(h.opt.Location))),
		graph.WithTraceContext(ctx),
	)
	if _, ok := rawdata.List(data); ok {
		nodes, err := r.ResolveArray(data, graph.KindGraphNodeArray, schemaType, nil)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(nodes))
		for i, n := range nodes {
			if out[i], err = materialize(n, asObject); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return out, nil
	}
	n, err := r.ResolveObject(data, schemaType, nil)
	if err != nil {
		return nil, err
	}
	return materialize(n, asObject)
}

func materialize(v any, asObject bool) (any, error) {
	n, ok := v.(*graph.Node)
	if !ok || n == nil {
		return nil, nil
	}
	if asObject {
		return n.AsObject()
	}
	return n.AsMap()
}

// ------------------ Request parsing ------------------

func parseRequest(r *http.Request, maxBody int64) (any, int, error) {
	format := rawdata.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, http.StatusUnsupportedMediaType, errors.New("unsupported Content-Type")
		}
		switch mt {
		case "application/json":
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = rawdata.FormatYAML
		default:
			return nil, http.StatusUnsupportedMediaType, errors.New("unsupported Content-Type")
		}
	}

	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, http.StatusBadRequest, errors.New("failed to read body")
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return nil, http.StatusRequestEntityTooLarge, errors.New(errBodyTooLargeMessage)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, http.StatusBadRequest, errors.New("empty body")
	}

	data, err := rawdata.Decode(bytes.NewReader(body), format)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return data, http.StatusOK, nil
}

// ------------------ Response formatting ------------------

type resultError struct {
	Message string `json:"message"`
}

type result struct {
	Data   any           `json:"data"`
	Errors []resultError `json:"errors,omitempty"`
}

func errorResponse(msg string) result {
	return result{Errors: []resultError{{Message: msg}}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowed := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" || o == origin {
			allowed = true
			break
		}
	}
	if !allowed {
		return
	}
	if contains(opts.AllowedOrigins, "*") {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST,OPTIONS")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
