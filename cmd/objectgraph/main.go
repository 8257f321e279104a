package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/hanpama/objectgraph/internal/eventbus"
	"github.com/hanpama/objectgraph/internal/events"
	"github.com/hanpama/objectgraph/internal/graph"
	"github.com/hanpama/objectgraph/internal/logging"
	"github.com/hanpama/objectgraph/internal/otel"
	"github.com/hanpama/objectgraph/internal/rawdata"
	"github.com/hanpama/objectgraph/internal/scalar"
	"github.com/hanpama/objectgraph/internal/schema"
	"github.com/hanpama/objectgraph/internal/server"
)

const rootUsage = `objectgraph: typed object graphs over raw data

USAGE:
  objectgraph <command> [flags]

COMMANDS:
  resolve          Resolve a JSON or YAML document through SDL schemas
  serve            Run an HTTP endpoint resolving posted documents
  compile-sdl      Merge & validate SDL schemas into a single document
  help             Show help for any command
`

const resolveUsage = `resolve FLAGS:
  -schema.root <dir>       SDL schema root (default: .)
  -schema.type <name>      Schema type of the document (default: Schema)
  -input <file>            Input document, - for stdin (default: -)
  -input.format <fmt>      json, yaml or protojson (default: json)
  -format <fmt>            json, object or dump (default: object)
                             json:   keys sorted
                             object: keys in field declaration order
                             dump:   Go value dump of the resolved map
  -pretty                  Indent JSON output
  -timezone <name>         Location for DateTime fields (default: Local)
  -log.level <level>       logrus level (default: warning)
  -log.format <fmt>        text or json (default: text)
  -otel.endpoint <addr>    OTLP collector endpoint
  -otel.service <name>     OpenTelemetry service name (default: objectgraph)
`

const serveUsage = `serve FLAGS:
  -schema.root <dir>              SDL schema root (default: .)
  -server.addr <addr>             HTTP listen address (default: :8080)
  -server.pretty                  Pretty-print JSON responses
  -server.max-body-bytes <n>      Request body limit in bytes (default: 1048576)
  -server.cors-origin <origin>    Allowed CORS origin. Repeatable
  -timezone <name>                Location for DateTime fields (default: Local)
  -log.level <level>              logrus level (default: info)
  -log.format <fmt>               text or json (default: text)
  -otel.endpoint <addr>           OTLP collector endpoint
  -otel.service <name>            OpenTelemetry service name (default: objectgraph)
`

const compileSDLUsage = `compile-sdl FLAGS:
  -schema.root <dir>   SDL schema root (default: .)
  -out  <file>         Write compiled SDL to file (default: stdout)
  (Validation always runs; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("objectgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "resolve":
		return cmdResolve(cmdArgs, stdin, stdout, stderr)
	case "serve":
		return cmdServe(cmdArgs, stderr)
	case "compile-sdl":
		return cmdCompileSDL(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "resolve":
		fmt.Fprint(stdout, resolveUsage)
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "compile-sdl":
		fmt.Fprint(stdout, compileSDLUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type resolveConfig struct {
	rootDir      string
	schemaType   string
	input        string
	inputFormat  string
	format       string
	pretty       bool
	timezone     string
	logLevel     string
	logFormat    string
	otelEndpoint string
	otelService  string
}

func cmdResolve(args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	cfg := resolveConfig{
		rootDir:     ".",
		input:       "-",
		inputFormat: string(rawdata.FormatJSON),
		format:      "object",
		logLevel:    "warning",
		logFormat:   "text",
		otelService: "objectgraph",
	}
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&cfg.rootDir, "schema.root", cfg.rootDir, "SDL schema root")
	fs.StringVar(&cfg.schemaType, "schema.type", cfg.schemaType, "Schema type of the document")
	fs.StringVar(&cfg.input, "input", cfg.input, "Input document")
	fs.StringVar(&cfg.inputFormat, "input.format", cfg.inputFormat, "Input format")
	fs.StringVar(&cfg.format, "format", cfg.format, "Output format")
	fs.BoolVar(&cfg.pretty, "pretty", cfg.pretty, "Indent JSON output")
	fs.StringVar(&cfg.timezone, "timezone", cfg.timezone, "Location for DateTime fields")
	fs.StringVar(&cfg.logLevel, "log.level", cfg.logLevel, "Log level")
	fs.StringVar(&cfg.logFormat, "log.format", cfg.logFormat, "Log format")
	fs.StringVar(&cfg.otelEndpoint, "otel.endpoint", cfg.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&cfg.otelService, "otel.service", cfg.otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, resolveUsage)
		return err
	}
	switch cfg.format {
	case "json", "object", "dump":
	default:
		fmt.Fprint(stderr, resolveUsage)
		return fmt.Errorf("unsupported output format %q", cfg.format)
	}
	format, err := rawdata.ParseFormat(cfg.inputFormat)
	if err != nil {
		return err
	}
	loc, err := loadLocation(cfg.timezone)
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	defer logging.Subscribe(logger)()
	shutdown, err := otel.Setup(cfg.otelEndpoint, cfg.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx, _ := events.WithRun(context.Background())
	eventbus.Publish(ctx, events.RunStart{Command: "resolve", SchemaType: cfg.schemaType})
	defer func() { eventbus.Publish(ctx, events.RunFinish{Err: err}) }()

	data, err := readInput(cfg.input, format, stdin)
	if err != nil {
		return err
	}
	doc, err := schema.LoadDir(cfg.rootDir)
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}
	reg := graph.NewRegistry()
	if err := doc.Register(reg); err != nil {
		return fmt.Errorf("register schemas: %w", err)
	}
	r := graph.NewResolver(
		graph.WithRegistry(reg),
		graph.WithCaster(scalar.New(scalar.WithLocation(loc))),
		graph.WithTraceContext(ctx),
	)

	var resolved any
	if _, isList := rawdata.List(data); isList {
		resolved, err = r.ResolveArray(data, graph.KindGraphNodeArray, cfg.schemaType, nil)
	} else {
		resolved, err = r.ResolveObject(data, cfg.schemaType, nil)
	}
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	return writeOutput(stdout, resolved, cfg.format, cfg.pretty)
}

// loadLocation returns time.Local for an empty name.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return loc, nil
}

func readInput(path string, format rawdata.Format, stdin io.Reader) (any, error) {
	if path == "-" {
		return rawdata.Decode(stdin, format)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return rawdata.Decode(f, format)
}

// materialize converts resolved nodes, possibly inside a list, to plain
// values. Ordered objects are kept when asObject is set.
func materialize(v any, asObject bool) (any, error) {
	switch v := v.(type) {
	case *graph.Node:
		if v == nil {
			return nil, nil
		}
		if asObject {
			return v.AsObject()
		}
		return v.AsMap()
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			m, err := materialize(elem, asObject)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return out, nil
	default:
		return v, nil
	}
}

func writeOutput(w io.Writer, resolved any, format string, pretty bool) error {
	out, err := materialize(resolved, format == "object")
	if err != nil {
		return fmt.Errorf("materialize: %w", err)
	}
	if format == "dump" {
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		cfg.Fdump(w, out)
		return nil
	}
	var b []byte
	if pretty {
		b, err = json.MarshalIndent(out, "", "  ")
	} else {
		b, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type serveConfig struct {
	rootDir      string
	addr         string
	pretty       bool
	maxBodyBytes int64
	corsOrigins  stringListFlag
	timezone     string
	logLevel     string
	logFormat    string
	otelEndpoint string
	otelService  string
}

func cmdServe(args []string, stderr io.Writer) error {
	cfg := serveConfig{
		rootDir:      ".",
		addr:         ":8080",
		maxBodyBytes: 1 << 20,
		logLevel:     "info",
		logFormat:    "text",
		otelService:  "objectgraph",
	}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&cfg.rootDir, "schema.root", cfg.rootDir, "SDL schema root")
	fs.StringVar(&cfg.addr, "server.addr", cfg.addr, "HTTP listen address")
	fs.BoolVar(&cfg.pretty, "server.pretty", cfg.pretty, "Pretty-print JSON responses")
	fs.Int64Var(&cfg.maxBodyBytes, "server.max-body-bytes", cfg.maxBodyBytes, "Request body limit")
	fs.Var(&cfg.corsOrigins, "server.cors-origin", "Allowed CORS origin")
	fs.StringVar(&cfg.timezone, "timezone", cfg.timezone, "Location for DateTime fields")
	fs.StringVar(&cfg.logLevel, "log.level", cfg.logLevel, "Log level")
	fs.StringVar(&cfg.logFormat, "log.format", cfg.logFormat, "Log format")
	fs.StringVar(&cfg.otelEndpoint, "otel.endpoint", cfg.otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&cfg.otelService, "otel.service", cfg.otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}

	logger, err := logging.Setup(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		return fmt.Errorf("logging setup: %w", err)
	}
	h, err := newServeHandler(cfg)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	defer logging.Subscribe(logger)()
	shutdown, err := otel.Setup(cfg.otelEndpoint, cfg.otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	mux := http.NewServeMux()
	mux.Handle("/resolve", h)

	logger.Infof("objectgraph listening on %s", cfg.addr)
	return http.ListenAndServe(cfg.addr, mux)
}

func newServeHandler(cfg serveConfig) (*server.Handler, error) {
	loc, err := loadLocation(cfg.timezone)
	if err != nil {
		return nil, err
	}
	doc, err := schema.LoadDir(cfg.rootDir)
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}
	reg := graph.NewRegistry()
	if err := doc.Register(reg); err != nil {
		return nil, fmt.Errorf("register schemas: %w", err)
	}

	sopts := []server.Option{server.WithLocation(loc)}
	if cfg.pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if cfg.maxBodyBytes > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(cfg.maxBodyBytes))
	}
	if len(cfg.corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.corsOrigins...))
	}
	h, err := server.New(reg, sopts...)
	if err != nil {
		return nil, fmt.Errorf("server init: %w", err)
	}
	return h, nil
}

func cmdCompileSDL(args []string, stdout, stderr io.Writer) error {
	rootDir := "."
	outFile := ""
	fs := flag.NewFlagSet("compile-sdl", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&rootDir, "schema.root", rootDir, "SDL schema root")
	fs.StringVar(&outFile, "out", outFile, "Write compiled SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, compileSDLUsage)
		return err
	}

	doc, err := schema.LoadDir(rootDir)
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}
	sdl := schema.Render(doc)
	if outFile == "" {
		fmt.Fprint(stdout, sdl)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(sdl), 0644); err != nil {
		return err
	}
	return nil
}
