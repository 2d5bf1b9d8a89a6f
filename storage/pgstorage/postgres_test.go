package pgstorage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aora/plain"
	"aora/schemas"
	"aora/storage"
)

func TestBuildListQuery(t *testing.T) {
	query := plain.ListQuery{
		Equal:       map[string]string{"title": "x", "creatorId": "u1"},
		SearchField: "title",
		SearchTerm:  "50%_off",
		LastSeenID:  "abc",
	}
	sql, args := buildListQuery("videos", query, 11)

	assert.Equal(t,
		"SELECT id, collection, fields, created_at, updated_at FROM documents WHERE collection = $1"+
			" AND fields->>$2 = $3 AND fields->>$4 = $5"+
			" AND fields->>$6 ILIKE $7"+
			" AND id < $8 ORDER BY id DESC LIMIT $9",
		sql)
	assert.Equal(t, []interface{}{"videos", "creatorId", "u1", "title", "x", "title", `%50\%\_off%`, "abc", 11}, args)
}

func TestBuildListQueryPlain(t *testing.T) {
	sql, args := buildListQuery("videos", plain.ListQuery{}, 8)
	assert.Equal(t, "SELECT id, collection, fields, created_at, updated_at FROM documents WHERE collection = $1 ORDER BY id DESC LIMIT $2", sql)
	assert.Equal(t, []interface{}{"videos", 8}, args)
}

func newTestRepo(t *testing.T) *PostgresRepo {
	url := os.Getenv("POSTGRES_TEST_URL")
	if url == "" {
		t.Skip("POSTGRES_TEST_URL is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	repo, err := NewPostgresRepo(ctx, pool)
	require.NoError(t, err)
	return repo
}

func TestDocumentLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	collection := "test-" + uuid.NewString()

	first, err := repo.CreateDocument(ctx, collection, schemas.Fields{"title": "First clip", "creatorId": "u1"})
	require.NoError(t, err)
	second, err := repo.CreateDocument(ctx, collection, schemas.Fields{"title": "Second clip", "creatorId": "u2"})
	require.NoError(t, err)

	updated, err := repo.UpdateDocument(ctx, collection, first.ID, schemas.Fields{"title": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Fields["title"])
	assert.Equal(t, "u1", updated.Fields["creatorId"])

	docs, next, err := repo.ListDocuments(ctx, collection, plain.ListQuery{Size: 1})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, second.ID, docs[0].ID)
	assert.Equal(t, second.ID, next)

	docs, next, err = repo.ListDocuments(ctx, collection, plain.ListQuery{Size: 1, LastSeenID: next})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Empty(t, next)

	docs, _, err = repo.ListDocuments(ctx, collection, plain.ListQuery{SearchField: "title", SearchTerm: "renam"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, first.ID, docs[0].ID)

	require.NoError(t, repo.DeleteDocument(ctx, collection, first.ID))
	_, err = repo.GetDocument(ctx, collection, first.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, repo.DeleteDocument(ctx, collection, first.ID), storage.ErrNotFound)
}
