package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a key has no stored document.
var ErrNotFound = errors.New("not found")

// Store is the on-device fallback document store. It keeps one JSON
// document per {collection}:{id} key in a local SQLite file and is the
// durability floor when the remote store is unreachable.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the fallback store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback store: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS documents (
    key TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    doc BLOB NOT NULL,
    stored_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(collection, id string) string {
	return collection + ":" + id
}

// Get retrieves the document stored under {collection}:{id}.
func (s *Store) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE key = ?`, key(collection, id),
	).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// Put stores doc under {collection}:{id}, replacing any previous copy.
func (s *Store) Put(ctx context.Context, collection, id string, doc json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, collection, doc, stored_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, stored_at = excluded.stored_at
	`, key(collection, id), collection, []byte(doc), time.Now())

	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}

	return nil
}

// Delete removes the document under {collection}:{id}. Deleting an
// absent key is a no-op success.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE key = ?`, key(collection, id))
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// ListCollection returns every document stored under collection. Owner
// filtering and ordering happen in the gateway; the fallback store only
// knows keys and opaque documents.
func (s *Store) ListCollection(ctx context.Context, collection string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}
