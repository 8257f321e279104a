package graph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Node is an immutable view of raw data shaped by a schema. Field values are
// resolved on first read and cached for the node's lifetime.
type Node struct {
	raw      map[string]any
	schema   *Schema
	memo     *Memo
	typeName string
}

// NewNode wraps raw with schema. The node type is the schema's node type.
func NewNode(raw map[string]any, schema *Schema) *Node {
	if raw == nil {
		raw = map[string]any{}
	}
	return newNode(raw, schema, schema.NodeType())
}

func newNode(raw map[string]any, schema *Schema, typeName string) *Node {
	return &Node{raw: raw, schema: schema, memo: NewMemo(), typeName: typeName}
}

// RawData returns the data the node wraps. It is not a copy and must not be
// modified.
func (n *Node) RawData() map[string]any { return n.raw }

func (n *Node) Schema() *Schema { return n.schema }

// TypeName returns the registered node type of n.
func (n *Node) TypeName() string { return n.typeName }

// Get returns the resolved value of field.
func (n *Node) Get(field string) (any, error) {
	return n.memo.Get(field, func() (any, error) {
		return n.schema.Resolve(field, n.raw)
	})
}

// Has reports whether field resolves to a non-nil value. Resolution errors
// count as absent.
func (n *Node) Has(field string) bool {
	v, err := n.Get(field)
	return err == nil && v != nil
}

// Set always fails: nodes are immutable.
func (n *Node) Set(field string, _ any) error {
	return fmt.Errorf("%w: cannot set %q on %s", ErrImmutable, field, n.typeName)
}

// Delete always fails: nodes are immutable.
func (n *Node) Delete(field string) error {
	return fmt.Errorf("%w: cannot delete %q on %s", ErrImmutable, field, n.typeName)
}

// Fields returns the fields visible on the node: the declared fields in
// declaration order, followed, unless the schema is strict, by the remaining
// raw data keys in sorted order.
func (n *Node) Fields() []string {
	fields := n.schema.Fields()
	if n.schema.Strict() {
		return fields
	}
	extra := make([]string, 0, len(n.raw))
	for k := range n.raw {
		if _, declared := n.schema.defs[k]; !declared {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(fields, extra...)
}

// MarshalJSON encodes the node as its materialized object, keeping field order.
func (n *Node) MarshalJSON() ([]byte, error) {
	o, err := n.AsObject()
	if err != nil {
		return nil, err
	}
	return json.Marshal(o)
}

// NodeState is the serializable form of a node: its schema state and the raw
// data it wraps. Resolved values are not kept.
type NodeState struct {
	Schema SchemaState    `json:"schema"`
	Data   map[string]any `json:"data"`
}

// State captures the node for later reconstruction with Resolver.RestoreNode.
func (n *Node) State() NodeState {
	return NodeState{Schema: n.schema.State(), Data: n.raw}
}
