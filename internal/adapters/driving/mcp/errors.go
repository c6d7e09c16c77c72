// Package mcp provides an MCP (Model Context Protocol) server adapter for schemasync.
// It lets AI assistants inspect and evolve the schema of the bound collection.
package mcp

import "errors"

// ErrMissingSchemaOperations is returned when the schema operations are not provided.
var ErrMissingSchemaOperations = errors.New("mcp: schema operations are required")
