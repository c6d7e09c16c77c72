package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Schema Errors.

	// ErrValidation indicates a schema value was built without its mandatory attributes.
	// It is detected locally and never reaches the engine.
	ErrValidation = errors.New("schema validation failed")

	// ErrSchemaAccess indicates the schema could not be fetched or parsed.
	ErrSchemaAccess = errors.New("schema access failed")

	// ErrSchemaModification indicates the engine rejected a schema mutation.
	ErrSchemaModification = errors.New("schema modification rejected")

	// ErrEngineUnavailable indicates no schema engine is configured.
	ErrEngineUnavailable = errors.New("schema engine unavailable")
)

// ValidationError reports a missing or malformed attribute on a schema value.
type ValidationError struct {
	// Entity identifies what was being built (e.g. "field title_s").
	Entity string

	// Attribute is the offending attribute.
	Attribute string

	// Reason describes the problem.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Attribute, e.Reason)
}

// Is matches ErrValidation and ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrInvalidInput
}

// SchemaAccessError reports a failed schema read.
type SchemaAccessError struct {
	// Collection is the collection whose schema was read.
	Collection string

	// Operation is the read that failed (e.g. "read schema").
	Operation string

	// StatusCode is the HTTP-style status reported by the endpoint, 0 if none.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

func (e *SchemaAccessError) Error() string {
	msg := fmt.Sprintf("%s for collection %q", e.Operation, e.Collection)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SchemaAccessError) Unwrap() error { return e.Err }

// Is matches ErrSchemaAccess.
func (e *SchemaAccessError) Is(target error) bool { return target == ErrSchemaAccess }

// SchemaModificationError reports a mutation rejected by the engine or lost in transit.
type SchemaModificationError struct {
	// Collection is the collection whose schema was modified.
	Collection string

	// Command is the mutation command (e.g. "delete-field").
	Command string

	// Target identifies the field or copy-field the command addressed.
	Target string

	// StatusCode is the HTTP-style status reported by the endpoint, 0 if none.
	StatusCode int

	// Messages holds the engine's rejection details.
	Messages []string

	// Err is set when the request never completed.
	Err error
}

func (e *SchemaModificationError) Error() string {
	msg := fmt.Sprintf("%s %s on collection %q", e.Command, e.Target, e.Collection)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" rejected (status %d)", e.StatusCode)
	} else {
		msg += " failed"
	}
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SchemaModificationError) Unwrap() error { return e.Err }

// Is matches ErrSchemaModification.
func (e *SchemaModificationError) Is(target error) bool { return target == ErrSchemaModification }

// IsValidation checks if the error is a local validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsSchemaAccess checks if the error is a failed schema read.
func IsSchemaAccess(err error) bool {
	return errors.Is(err, ErrSchemaAccess)
}

// IsSchemaModification checks if the error is a rejected schema mutation.
func IsSchemaModification(err error) bool {
	return errors.Is(err, ErrSchemaModification)
}
