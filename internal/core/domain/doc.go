// Package domain defines the core schema entities for schemasync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FieldDefinition: A named, typed field with indexing flags
//   - CopyFieldDefinition: An index-time copy from one field to another
//   - SchemaDefinition: An immutable snapshot of a collection schema
//   - SchemaDiff: The changes that move one schema towards another
//   - SchemaSnapshot: A stored schema with capture metadata
//
// Values are built through builders (NewFieldDefinition,
// NewCopyFieldDefinition) whose Create methods validate mandatory
// attributes and return *ValidationError.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
