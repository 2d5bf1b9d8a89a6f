package pgstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"aora/plain"
	"aora/schemas"
	"aora/storage"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS documents (
		id         TEXT NOT NULL,
		collection TEXT NOT NULL,
		fields     JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (collection, id)
	);
	CREATE INDEX IF NOT EXISTS documents_collection_id_desc ON documents (collection, id DESC);
`

// PostgresRepo stores documents of every collection in one JSONB table.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, db *pgxpool.Pool) (*PostgresRepo, error) {
	if _, err := db.Exec(ctx, schemaDDL); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresRepo{db: db}, nil
}

func (r *PostgresRepo) CreateDocument(ctx context.Context, collection string, fields schemas.Fields) (*schemas.Document, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal fields: %s", storage.ErrInvalidArgument, err.Error())
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &schemas.Document{
		ID:         schemas.NewPostId().String(),
		Collection: collection,
		Fields:     fields.Copy(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	query := `
		INSERT INTO documents (id, collection, fields, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
	`
	_, err = r.db.Exec(ctx, query, doc.ID, collection, string(fieldsJSON), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insertion failed: %s", storage.StorageError, err.Error())
	}
	return doc, nil
}

func (r *PostgresRepo) GetDocument(ctx context.Context, collection, id string) (*schemas.Document, error) {
	query := `SELECT id, collection, fields, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`

	row := r.db.QueryRow(ctx, query, collection, id)
	return r.scanDocument(row, collection, id)
}

func (r *PostgresRepo) UpdateDocument(ctx context.Context, collection, id string, fields schemas.Fields) (*schemas.Document, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal fields: %s", storage.ErrInvalidArgument, err.Error())
	}

	// jsonb || replaces top-level keys only
	query := `
		UPDATE documents
		SET fields = fields || $1::jsonb, updated_at = $2
		WHERE collection = $3 AND id = $4
		RETURNING id, collection, fields, created_at, updated_at
	`
	row := r.db.QueryRow(ctx, query, string(fieldsJSON), time.Now().UTC(), collection, id)
	return r.scanDocument(row, collection, id)
}

func (r *PostgresRepo) DeleteDocument(ctx context.Context, collection, id string) error {
	cmdTag, err := r.db.Exec(ctx, "DELETE FROM documents WHERE collection = $1 AND id = $2", collection, id)
	if err != nil {
		return fmt.Errorf("%w: deletion failed: %s", storage.StorageError, err.Error())
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
	}
	return nil
}

func (r *PostgresRepo) ListDocuments(ctx context.Context, collection string, query plain.ListQuery) ([]*schemas.Document, string, error) {
	query, size, err := plain.CorrectDestruct(query)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", storage.ErrInvalidArgument, err.Error())
	}

	sql, args := buildListQuery(collection, query, size+1)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, "", fmt.Errorf("%w: search failed: %s", storage.StorageError, err.Error())
	}
	defer rows.Close()

	var docs []*schemas.Document
	for rows.Next() {
		doc, err := r.scanDocumentRows(rows)
		if err != nil {
			return nil, "", err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("%w: search failed: %s", storage.StorageError, err.Error())
	}

	nextCursor := ""
	if len(docs) > size {
		docs = docs[:size]
		nextCursor = docs[size-1].ID
	}
	return docs, nextCursor, nil
}

func buildListQuery(collection string, query plain.ListQuery, limit int) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{collection}
	sb.WriteString("SELECT id, collection, fields, created_at, updated_at FROM documents WHERE collection = $1")

	fields := make([]string, 0, len(query.Equal))
	for field := range query.Equal {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		args = append(args, field, query.Equal[field])
		fmt.Fprintf(&sb, " AND fields->>$%d = $%d", len(args)-1, len(args))
	}
	if query.SearchTerm != "" {
		args = append(args, query.SearchField, "%"+escapeLike(query.SearchTerm)+"%")
		fmt.Fprintf(&sb, " AND fields->>$%d ILIKE $%d", len(args)-1, len(args))
	}
	if query.LastSeenID != "" {
		args = append(args, query.LastSeenID)
		fmt.Fprintf(&sb, " AND id < $%d", len(args))
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY id DESC LIMIT $%d", len(args))
	return sb.String(), args
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func (r *PostgresRepo) scanDocument(row pgx.Row, collection, id string) (*schemas.Document, error) {
	doc, err := r.scanDocumentRows(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", storage.ErrNotFound, collection, id)
		}
		return nil, err
	}
	return doc, nil
}

func (r *PostgresRepo) scanDocumentRows(row pgx.Row) (*schemas.Document, error) {
	var doc schemas.Document
	var fieldsJSON []byte
	if err := row.Scan(&doc.ID, &doc.Collection, &fieldsJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: scan failed: %s", storage.StorageError, err.Error())
	}
	doc.Fields = schemas.Fields{}
	if err := json.Unmarshal(fieldsJSON, &doc.Fields); err != nil {
		return nil, fmt.Errorf("%w: fields mapping failed: %s", storage.StorageError, err.Error())
	}
	return &doc, nil
}
