// Package scalar coerces raw scalar values into the primitive and date/time
// representations a schema field asks for.
package scalar

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cast"
)

// Scalar type tags accepted by Caster.Cast.
const (
	Boolean   = "bool"
	Integer   = "int"
	Float     = "float"
	String    = "string"
	DateTime  = "datetime"
	Timestamp = "timestamp"
)

var (
	// ErrInvalidType reports an unknown scalar type tag.
	ErrInvalidType = errors.New("scalar: invalid type")
	// ErrInvalidValue reports a value that cannot be coerced into the requested type.
	ErrInvalidValue = errors.New("scalar: invalid value")
)

// ParseType validates a scalar type tag. The empty tag is valid and means
// "leave the value as is".
func ParseType(typ string) (string, error) {
	switch typ {
	case "", Boolean, Integer, Float, String, DateTime, Timestamp:
		return typ, nil
	default:
		return "", fmt.Errorf("%w %q, must be one of %s", ErrInvalidType, typ,
			strings.Join([]string{Boolean, Integer, Float, String, DateTime, Timestamp}, ", "))
	}
}

// Caster casts raw values into scalar types. Date and time values are
// converted into the caster's location.
type Caster struct {
	loc *time.Location
}

type Option func(*Caster)

// WithLocation sets the location parsed date/time values are converted to.
func WithLocation(loc *time.Location) Option {
	return func(c *Caster) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// New returns a Caster. The location defaults to time.Local at construction.
func New(opts ...Option) *Caster {
	c := &Caster{loc: time.Local}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Location returns the location date/time values are converted to.
func (c *Caster) Location() *time.Location { return c.loc }

// Cast coerces value into typ. An empty typ returns value unchanged.
func (c *Caster) Cast(value any, typ string) (any, error) {
	switch typ {
	case "":
		return value, nil
	case Boolean:
		return asBoolean(value), nil
	case Integer:
		return asInteger(value), nil
	case Float:
		return asFloat(value), nil
	case String:
		return asString(value), nil
	case DateTime:
		return c.asDateTime(value, false)
	case Timestamp:
		return c.asDateTime(value, true)
	default:
		_, err := ParseType(typ)
		return nil, err
	}
}

// asString writes booleans as "1" and "".
func asString(value any) string {
	if b, ok := value.(bool); ok {
		if b {
			return "1"
		}
		return ""
	}
	return cast.ToString(value)
}

func asBoolean(value any) bool {
	if s, ok := value.(string); ok {
		switch strings.ToLower(s) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return !Empty(value)
}

// asInteger truncates toward zero and saturates at the int64 bounds.
func asInteger(value any) int64 {
	switch v := value.(type) {
	case string:
		return integerString(v)
	case json.Number:
		return integerString(v.String())
	case float64:
		return clampInt(v)
	case float32:
		return clampInt(float64(v))
	case uint:
		return clampUint(uint64(v))
	case uint64:
		return clampUint(v)
	}
	return cast.ToInt64(value)
}

func integerString(s string) int64 {
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return n
	}
	return clampInt(numericPrefix(s))
}

func clampInt(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

// asFloat never returns NaN or an infinity, so cast values always encode
// as JSON.
func asFloat(value any) float64 {
	switch v := value.(type) {
	case string:
		return numericPrefix(v)
	case json.Number:
		return numericPrefix(v.String())
	}
	return finite(cast.ToFloat64(value))
}

// finite maps NaN to 0 and infinities to the largest finite float of the
// same sign.
func finite(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

// numericPrefix parses the longest leading decimal number of s, so "12abc"
// is 12 and "abc" is 0. Spellings such as "inf", "nan" and hex floats are
// not numbers here. Exponents past the float range saturate.
func numericPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
scan:
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			seenDigit = true
			end = i + 1
		case (ch == '+' || ch == '-') && (i == 0 || s[i-1] == 'e' || s[i-1] == 'E'):
		case ch == '.' && !seenDot && !seenExp:
			seenDot = true
		case (ch == 'e' || ch == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0
	}
	// ParseFloat reports ErrRange with a ±Inf or zero result; both are kept.
	f, _ := strconv.ParseFloat(s[:end], 64)
	return finite(f)
}

func (c *Caster) asDateTime(value any, asTimestamp bool) (any, error) {
	if value == nil {
		return nil, nil
	}
	var t time.Time
	switch v := value.(type) {
	case time.Time:
		t = v
	default:
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot cast %v into a date/time: %w", ErrInvalidValue, value, err)
		}
		t, err = dateparse.ParseIn(strings.TrimSpace(s), c.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot cast %q into a date/time: %w", ErrInvalidValue, s, err)
		}
	}
	t = t.In(c.loc)
	if asTimestamp {
		return t.Unix(), nil
	}
	return t, nil
}
