// Package memory provides in-memory implementations of the ConfigStore and
// SnapshotStore ports, used by tests and by --ephemeral runs.
package memory
