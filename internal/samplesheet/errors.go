package samplesheet

import "strings"

// Diagnostic is a single validation finding: the field it concerns, the
// offending value, and a human-readable message.
type Diagnostic struct {
	Field   string
	Value   string
	Message string
}

func (d Diagnostic) String() string {
	if strings.TrimSpace(d.Field) == "" {
		return d.Message
	}
	return d.Field + ": " + d.Message
}

// ValidationError aggregates samplesheet validation findings. Every schema
// and per-record failure is collected; a sheet is valid only when no
// diagnostic was recorded.
type ValidationError struct {
	Diagnostics []Diagnostic
}

func (e *ValidationError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "samplesheet validation failed"
	}
	msgs := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		msgs = append(msgs, d.String())
	}
	return "samplesheet validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, value, message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	e.Diagnostics = append(e.Diagnostics, Diagnostic{Field: field, Value: value, Message: message})
}

func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Diagnostics) == 0 {
		return nil
	}
	return e
}
