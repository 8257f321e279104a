package events

import "time"

// ObjectResolved is emitted when the resolver wraps raw data into a node.
type ObjectResolved struct {
	Schema   string
	NodeType string
	Fields   int
	Duration time.Duration
}

// FieldResolved is emitted after a schema resolves one field of a node.
type FieldResolved struct {
	Schema   string
	Field    string
	Kind     string
	Declared bool
	Err      error
	Duration time.Duration
}
