package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is an ordered record, the attribute-style materialization of a node.
type Object struct {
	keys   []string
	values map[string]any
}

func newObject(size int) *Object {
	return &Object{keys: make([]string, 0, size), values: make(map[string]any, size)}
}

func (o *Object) set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Keys returns the keys in field order.
func (o *Object) Keys() []string { return append([]string(nil), o.keys...) }

func (o *Object) Len() int { return len(o.keys) }

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Map converts o, and every Object nested in it, into plain maps.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = objectsToMaps(o.values[k])
	}
	return out
}

func objectsToMaps(v any) any {
	switch x := v.(type) {
	case *Object:
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = objectsToMaps(e)
		}
		return out
	}
	return v
}

// MarshalJSON encodes o as a JSON object with keys in field order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AsObject materializes every visible field recursively: nested nodes become
// Objects, lists are mapped element by element and other values are kept.
func (n *Node) AsObject() (*Object, error) {
	fields := n.Fields()
	o := newObject(len(fields))
	for _, f := range fields {
		v, err := n.materializeField(f, true)
		if err != nil {
			return nil, err
		}
		o.set(f, v)
	}
	return o, nil
}

// AsMap materializes the node like AsObject, with plain maps in place of
// Objects at every level.
func (n *Node) AsMap() (map[string]any, error) {
	fields := n.Fields()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := n.materializeField(f, false)
		if err != nil {
			return nil, err
		}
		m[f] = v
	}
	return m, nil
}

func (n *Node) materializeField(field string, asObject bool) (any, error) {
	v, err := n.Get(field)
	if err != nil {
		return nil, err
	}
	return materialize(v, asObject)
}

func materialize(v any, asObject bool) (any, error) {
	switch x := v.(type) {
	case *Node:
		if asObject {
			o, err := x.AsObject()
			if err != nil {
				return nil, err
			}
			return o, nil
		}
		m, err := x.AsMap()
		if err != nil {
			return nil, err
		}
		return m, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			mv, err := materialize(e, asObject)
			if err != nil {
				return nil, err
			}
			out[i] = mv
		}
		return out, nil
	}
	return v, nil
}
