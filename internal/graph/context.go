package graph

import (
	"fmt"
	"maps"
)

// Context is a key/value side channel passed down through nested resolution.
// Each resolution step works on a derived copy, so values set by a resolver
// function are visible to the nested resolutions it triggers and nowhere else.
type Context struct {
	data map[string]any
}

// NewContext returns a Context holding a copy of values.
func NewContext(values map[string]any) *Context {
	c := &Context{data: make(map[string]any, len(values))}
	maps.Copy(c.data, values)
	return c
}

// Get returns the value stored under key, or nil.
func (c *Context) Get(key string) any {
	if c == nil {
		return nil
	}
	return c.data[key]
}

// Has reports whether a non-nil value is stored under key.
func (c *Context) Has(key string) bool {
	return c.Get(key) != nil
}

// Set stores value under key.
func (c *Context) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: cannot set context value", ErrEmptyName)
	}
	c.data[key] = value
	return nil
}

// Delete removes key.
func (c *Context) Delete(key string) {
	delete(c.data, key)
}

// Derive returns an independent copy. Stored references are shared.
func (c *Context) Derive() *Context {
	if c == nil {
		return NewContext(nil)
	}
	return NewContext(c.data)
}

// Values returns a copy of the stored values.
func (c *Context) Values() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	return maps.Clone(c.data)
}
