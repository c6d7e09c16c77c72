package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/schemasync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

// dbFile is the database file name inside the data directory.
const dbFile = "snapshots.db"

// Store is a SQLite-backed snapshot store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.SnapshotStore = (*Store)(nil)

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.schemasync/data/snapshots.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".schemasync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// WAL mode lets the watcher and a concurrent CLI invocation share the file.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_snapshots.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores or replaces a snapshot.
func (s *Store) Save(ctx context.Context, snapshot domain.SchemaSnapshot) error {
	if snapshot.ID == "" {
		return fmt.Errorf("%w: snapshot id is required", domain.ErrInvalidInput)
	}

	schemaJSON, err := schemacodec.Encode(snapshot.Schema)
	if err != nil {
		return fmt.Errorf("marshalling schema: %w", err)
	}

	if snapshot.CapturedAt.IsZero() {
		snapshot.CapturedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, collection, note, schema_name, schema_version, schema_json, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			note = excluded.note,
			schema_name = excluded.schema_name,
			schema_version = excluded.schema_version,
			schema_json = excluded.schema_json,
			captured_at = excluded.captured_at
	`, snapshot.ID, snapshot.Collection, snapshot.Note,
		snapshot.Schema.Name(), snapshot.Schema.Version(), string(schemaJSON),
		snapshot.CapturedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.SchemaSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, collection, note, schema_json, captured_at
		FROM snapshots WHERE id = ?
	`, id)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// List returns snapshots of collection, newest first. An empty collection lists all.
func (s *Store) List(ctx context.Context, collection string) ([]domain.SchemaSnapshot, error) {
	query := `
		SELECT id, collection, note, schema_json, captured_at
		FROM snapshots`
	var args []any
	if collection != "" {
		query += " WHERE collection = ?"
		args = append(args, collection)
	}
	query += " ORDER BY captured_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.SchemaSnapshot //nolint:prealloc // size unknown from query
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Delete removes a snapshot.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*domain.SchemaSnapshot, error) {
	var snapshot domain.SchemaSnapshot
	var schemaJSON string
	var capturedAt int64
	if err := row.Scan(&snapshot.ID, &snapshot.Collection, &snapshot.Note, &schemaJSON, &capturedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	schema, err := schemacodec.Decode([]byte(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling schema for snapshot %s: %w", snapshot.ID, err)
	}
	snapshot.Schema = schema
	snapshot.CapturedAt = time.Unix(0, capturedAt).UTC()

	return &snapshot, nil
}
