package rawdata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// Format names an input serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatProtoJSON is a JSON object read as a google.protobuf.Struct.
	FormatProtoJSON Format = "protojson"
)

// ErrUnsupportedFormat reports an unknown input format.
var ErrUnsupportedFormat = errors.New("rawdata: unsupported format")

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatYAML, FormatProtoJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
	}
}

// Decode reads one document of the given format from r.
func Decode(r io.Reader, format Format) (any, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(r)
	case FormatYAML:
		return DecodeYAML(r)
	case FormatProtoJSON:
		return DecodeProtoJSON(r)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// DecodeJSON reads a JSON document. Numbers decode as float64.
func DecodeJSON(r io.Reader) (any, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// DecodeYAML reads a YAML document and normalizes its mappings into records.
func DecodeYAML(r io.Reader) (any, error) {
	var v any
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return Normalize(v), nil
}

// DecodeProtoJSON reads a JSON object through google.protobuf.Struct.
func DecodeProtoJSON(r io.Reader) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read protojson: %w", err)
	}
	var s structpb.Struct
	if err := protojson.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode protojson: %w", err)
	}
	return FromStruct(&s), nil
}

// FromStruct converts a protobuf Struct into a record.
func FromStruct(s *structpb.Struct) map[string]any {
	if s == nil {
		return nil
	}
	return s.AsMap()
}

// FromValue converts a protobuf Value into raw data.
func FromValue(v *structpb.Value) any {
	if v == nil {
		return nil
	}
	return v.AsInterface()
}
