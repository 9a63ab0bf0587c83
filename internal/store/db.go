package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// documentsSchema keeps every collection in one JSONB table, mirroring a
// document store layout.
const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents (collection, created_at);
`

// EnsureSchema creates the documents table if it does not exist.
func (d *DB) EnsureSchema(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, documentsSchema)
	return err
}

// ListDocuments returns every document of collection in insertion order.
func (d *DB) ListDocuments(ctx context.Context, collection string) ([]map[string]any, error) {
	rows, err := d.Client.QueryContext(ctx, `
		SELECT data FROM documents
		WHERE collection = $1
		ORDER BY created_at, id
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []map[string]any{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode document in %s: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// documentNamespace seeds the name-based ids of documents without an "id".
var documentNamespace = uuid.MustParse("6f1c3a52-8d7e-4b0f-9a61-2c4e5d7f8a90")

// documentID returns doc's string "id" field, or a UUID derived from the
// collection and position so that re-seeding the same fixture upserts.
func documentID(collection string, index int, doc map[string]any) string {
	if id, _ := doc["id"].(string); id != "" {
		return id
	}
	return uuid.NewSHA1(documentNamespace, []byte(fmt.Sprintf("%s/%d", collection, index))).String()
}

// PutDocuments upserts docs into collection in one transaction. Ids come
// from documentID. Creation times are spaced so ListDocuments returns docs in
// the given order.
func (d *DB) PutDocuments(ctx context.Context, collection string, docs []map[string]any) error {
	tx, err := d.Client.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	base := time.Now().UTC()
	for i, doc := range docs {
		id := documentID(collection, i, doc)
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document %s/%s: %w", collection, id, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (collection, id, data, created_at)
			VALUES ($1, $2, $3::jsonb, $4)
			ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data
		`, collection, id, string(raw), base.Add(time.Duration(i)*time.Microsecond))
		if err != nil {
			return fmt.Errorf("insert %s/%s: %w", collection, id, err)
		}
	}
	return tx.Commit()
}

// Healthy reports whether the database answers a ping.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}
