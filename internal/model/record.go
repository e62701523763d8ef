// Package model defines the core data structures shared by the log viewer.
package model

import "github.com/GabrielNunesIT/logview/internal/level"

// LogRecord is one normalized log line.
// Records are values: every transformation returns new slices and never
// mutates the records it was given.
type LogRecord struct {
	// Timestamp is kept verbatim as extracted from the line. It is not
	// guaranteed to parse as a date.
	Timestamp string `json:"timestamp"`

	// Level is the normalized severity, possibly an unknown level.
	Level level.Level `json:"level"`

	// Message is the remainder of the line. It may be empty.
	Message string `json:"message"`

	// Module is reserved for structured sources that carry it.
	Module string `json:"module,omitempty"`
}

// Fields returns the record as a flat document for sinks that index maps.
func (r LogRecord) Fields() map[string]any {
	doc := map[string]any{
		"timestamp": r.Timestamp,
		"level":     string(r.Level),
		"message":   r.Message,
	}
	if r.Module != "" {
		doc["module"] = r.Module
	}
	return doc
}
