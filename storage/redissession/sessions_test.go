package redissession

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aora/schemas"
	"aora/storage"
)

func newTestStorage(t *testing.T) *SessionStorage {
	redisURL := os.Getenv("REDIS_TEST_URL")
	if redisURL == "" {
		t.Skip("REDIS_TEST_URL is not set")
	}
	client, err := Connect(context.Background(), redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStorage(client, "aora-test-"+uuid.NewString())
}

func TestSessionLifecycle(t *testing.T) {
	ss := newTestStorage(t)
	ctx := context.Background()

	session := &schemas.Session{
		ID:        uuid.NewString(),
		AccountID: "account-1",
		Token:     "token",
		ExpiresAt: time.Now().Add(time.Minute).UTC().Truncate(time.Second),
	}
	require.NoError(t, ss.PutSession(ctx, session))

	stored, err := ss.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.AccountID, stored.AccountID)
	assert.True(t, session.ExpiresAt.Equal(stored.ExpiresAt))

	require.NoError(t, ss.DeleteSession(ctx, session.ID))
	_, err = ss.GetSession(ctx, session.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, ss.DeleteSession(ctx, session.ID), storage.ErrNotFound)
}

func TestExpiredSessionIsNotStored(t *testing.T) {
	ss := newTestStorage(t)
	ctx := context.Background()

	session := &schemas.Session{ID: uuid.NewString(), ExpiresAt: time.Now().Add(-time.Second)}
	require.NoError(t, ss.PutSession(ctx, session))
	_, err := ss.GetSession(ctx, session.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionKey(t *testing.T) {
	ss := &SessionStorage{prefix: "aora"}
	assert.Equal(t, "aora:sessions:abc", ss.getKeyForSession("abc"))
}
