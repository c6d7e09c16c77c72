// Package embedded provides an in-process schema engine implementing the
// SchemaTransport port.
//
// The engine answers the same request paths as a remote Solr node's Schema
// API and produces response bodies in the same shape, including the
// "error.details[].errorMessages" layout used for rejected commands. It is
// used by the CLI when engine = "embedded" and by the service tests.
//
// # Seeding
//
// Every collection starts from a seed document. The bundled seed is the
// data-driven example schema; LoadSeed reads a custom one from disk.
//
// # Semantics
//
//   - A payload's commands are applied together or not at all.
//   - The schema version never changes.
//   - The uniqueKey field and _version_ cannot be deleted.
//   - Fields referenced by a copy-field directive cannot be deleted.
package embedded
