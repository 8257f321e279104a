// Package graph maps loosely typed decoded data onto immutable, lazily
// resolved nodes shaped by declarative schemas.
//
// # Overview
//
// A Resolver turns raw data (records, lists and scalars as produced by
// encoding/json or the rawdata package) into Nodes. Every node is bound to a
// Schema that declares its fields: where each field is read from, its default,
// how the value is coerced and, optionally, a resolver function computing it.
//
//	r := graph.NewResolver(graph.WithRegistry(reg))
//	n, err := r.ResolveObject(data, "Youtube", nil)
//	title, err := n.Get("title")
//
// # Schema types
//
// Schema types implement SchemaType, usually by embedding BaseSchema, and are
// registered by name in a Registry together with the node types their nodes
// carry. Schema and node names share one namespace; the base types are named
// BaseSchemaType and BaseNodeType and are present in every registry.
//
// A resolver builds each schema type's field table once, on first use, and
// binds it to the Context of every resolution with a cheap copy. Field tables
// hold functions and are never serialized: SchemaState and NodeState keep the
// type name, context values and raw data, and Resolver.Restore rebuilds the
// table by running the schema type's Build hook again.
//
// # Field resolution
//
// Reading a field resolves it at most once per node:
//  1. The declared Definition is used, or a raw pass-through one for
//     undeclared fields.
//  2. The value comes from the resolver function when set, else from the raw
//     property named by the alias or the field name.
//  3. Empty values (nil, false, zero, "", "0" and empty lists or records) are
//     replaced by the field default.
//  4. The value is coerced by the field Kind, recursing into nested nodes and
//     arrays with a Context derived for this field.
//
// Lenient schemas expose undeclared raw properties after the declared fields;
// strict schemas expose declared fields only.
package graph
