package events

// RunStart is emitted when a command starts resolving a document.
type RunStart struct {
	Command    string
	SchemaType string
}

// RunFinish is emitted when the command is done, successfully or not.
type RunFinish struct {
	Err error
}
