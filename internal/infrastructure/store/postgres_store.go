package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	version    INTEGER     NOT NULL,
	state      JSONB       NOT NULL,
	keys       JSONB       NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_keys_idx ON documents USING GIN (keys);
`

// PostgresStore keeps every collection in one documents table with jsonb
// state and keys columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the documents table when it is missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT collection, id, version, state, keys, updated_at
		 FROM documents
		 WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &doc, nil
}

func (s *PostgresStore) Find(ctx context.Context, collection, key, value string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, id, version, state, keys, updated_at
		 FROM documents
		 WHERE collection = $1 AND keys->>$2 = $3
		 ORDER BY id ASC`,
		collection, key, value,
	)
	if err != nil {
		return nil, fmt.Errorf("find %s by %s: %w", collection, key, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) Put(ctx context.Context, doc Document, expectedVersion int) (int, error) {
	keys, err := json.Marshal(nonNilKeys(doc.Keys))
	if err != nil {
		return 0, fmt.Errorf("marshal keys: %w", err)
	}
	next := expectedVersion + 1
	now := time.Now().UTC()

	var res sql.Result
	if expectedVersion == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO documents (collection, id, version, state, keys, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (collection, id) DO NOTHING`,
			doc.Collection, doc.ID, next, []byte(doc.State), keys, now,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE documents
			 SET version = $3, state = $4, keys = $5, updated_at = $6
			 WHERE collection = $1 AND id = $2 AND version = $7`,
			doc.Collection, doc.ID, next, []byte(doc.State), keys, now, expectedVersion,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("put %s/%s: %w", doc.Collection, doc.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("put %s/%s: %w", doc.Collection, doc.ID, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s/%s expected version %d", ErrVersionConflict, doc.Collection, doc.ID, expectedVersion)
	}
	return next, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc   Document
		state []byte
		keys  []byte
	)
	if err := row.Scan(&doc.Collection, &doc.ID, &doc.Version, &state, &keys, &doc.UpdatedAt); err != nil {
		return Document{}, err
	}
	doc.State = json.RawMessage(state)
	if len(keys) > 0 {
		if err := json.Unmarshal(keys, &doc.Keys); err != nil {
			return Document{}, fmt.Errorf("unmarshal keys: %w", err)
		}
	}
	return doc, nil
}

func nonNilKeys(keys map[string]string) map[string]string {
	if keys == nil {
		return map[string]string{}
	}
	return keys
}

// ConnectPostgres opens and pings a lib/pq connection pool.
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
