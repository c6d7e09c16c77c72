package domain

import "time"

// SchemaSnapshot is a schema captured from a collection at a point in time.
type SchemaSnapshot struct {
	// ID is the unique identifier for the snapshot.
	ID string

	// Collection is the collection the schema was read from.
	Collection string

	// Note is an optional free-text label.
	Note string

	// CapturedAt is when the schema was read.
	CapturedAt time.Time

	// Schema is the captured schema.
	Schema SchemaDefinition
}
