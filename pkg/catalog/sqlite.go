package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS details (
	collection  TEXT NOT NULL,
	key         TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	author      TEXT NOT NULL DEFAULT '',
	year        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	tags        TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (collection, key)
)`

// SQLiteStore keeps a catalog collection in a local SQLite database file.
type SQLiteStore struct {
	conn       *sql.DB
	collection string
	Path       string
}

// OpenSQLite opens (or creates) a SQLite database with WAL mode enabled and
// ensures the details table exists.
func OpenSQLite(path, collection string) (*SQLiteStore, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name cannot be empty")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{conn: conn, collection: collection, Path: path}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// GetEntry returns the entry stored under key, or ErrNotFound.
func (s *SQLiteStore) GetEntry(ctx context.Context, key string) (*Entry, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT key, title, author, year, description, image_url, tags
		 FROM details WHERE collection = ? AND key = ?`, s.collection, key)

	var e Entry
	var tagsJSON string
	err := row.Scan(&e.Key, &e.Title, &e.Author, &e.Year, &e.Description, &e.ImageURL, &tagsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying entry %s: %w", key, err)
	}

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", key, err)
		}
	}
	if len(e.Tags) == 0 {
		e.Tags = nil
	}

	return &e, nil
}

// SetEntry inserts or replaces an entry.
func (s *SQLiteStore) SetEntry(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("invalid entry: %w", err)
	}

	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO details (collection, key, title, author, year, description, image_url, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.collection, e.Key, e.Title, e.Author, e.Year, e.Description, e.ImageURL, string(tagsJSON))
	if err != nil {
		return fmt.Errorf("writing entry %s: %w", e.Key, err)
	}
	return nil
}

// DeleteEntry removes an entry. Missing keys are ignored.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM details WHERE collection = ? AND key = ?`, s.collection, key); err != nil {
		return fmt.Errorf("deleting entry %s: %w", key, err)
	}
	return nil
}

// ListKeys returns entry keys matching a glob pattern, sorted.
// SQLite's GLOB operator uses the same wildcard syntax as Redis MATCH.
func (s *SQLiteStore) ListKeys(ctx context.Context, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT key FROM details WHERE collection = ? AND key GLOB ? ORDER BY key`, s.collection, pattern)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
