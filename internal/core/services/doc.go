// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// SchemaReader and SchemaMutator speak the engine's JSON schema protocol
// over a SchemaTransport; SchemaOperations binds both to one collection and
// is the entry point used by the CLI and MCP adapters.
package services
