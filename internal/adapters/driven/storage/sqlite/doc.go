// Package sqlite provides a SQLite-based SnapshotStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Each snapshot row stores the schema as an engine-format
// JSON document alongside its collection, note and capture time.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.schemasync/data/snapshots.db
package sqlite
