package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS annotation_documents (
	project_id  TEXT NOT NULL,
	artifact_id TEXT NOT NULL,
	payload     TEXT NOT NULL,
	updated_by  TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (project_id, artifact_id)
);`

// SQLite is a Store backed by a local SQLite database. It stands in for
// the hosted document store when working offline; the payload column
// holds the JSON document verbatim so the wire format matches the hosted
// service.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. Use
// ":memory:" for tests.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open document store %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize document store: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, key Key) (*Document, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM annotation_documents WHERE project_id = ? AND artifact_id = ?`,
		key.ProjectID, key.ArtifactID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s/%s: %w", key.ProjectID, key.ArtifactID, err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s/%s: %w", key.ProjectID, key.ArtifactID, err)
	}
	return &doc, nil
}

// Upsert implements Store: the whole document is replaced each time.
func (s *SQLite) Upsert(ctx context.Context, key Key, doc *Document) error {
	doc.ProjectID = key.ProjectID
	doc.ArtifactID = key.ArtifactID
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s/%s: %w", key.ProjectID, key.ArtifactID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO annotation_documents (project_id, artifact_id, payload, updated_by, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (project_id, artifact_id)
		 DO UPDATE SET payload = excluded.payload, updated_by = excluded.updated_by, updated_at = excluded.updated_at`,
		key.ProjectID, key.ArtifactID, string(payload), doc.UpdatedBy, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("store document %s/%s: %w", key.ProjectID, key.ArtifactID, err)
	}
	return nil
}

// List returns the keys of every stored document, most recently updated
// first.
func (s *SQLite) List(ctx context.Context) ([]Key, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, artifact_id FROM annotation_documents ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var keys []Key
	for rows.Next() {
		var k Key
		if err := rows.Scan(&k.ProjectID, &k.ArtifactID); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
