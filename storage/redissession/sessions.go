package redissession

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-redis/redis/v8"

	"aora/schemas"
	"aora/storage"
	"aora/storage/redissession/redisgeneral"
)

// SessionStorage keeps sessions in redis until they expire.
type SessionStorage struct {
	sessions *redisgeneral.Storage
	prefix   string
}

func NewSessionStorage(client *redis.Client, prefix string) *SessionStorage {
	return &SessionStorage{
		sessions: redisgeneral.NewStorage(client, reflect.TypeOf(schemas.Session{})),
		prefix:   prefix,
	}
}

func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("bad redis url: %w", err)
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (ss *SessionStorage) PutSession(ctx context.Context, session *schemas.Session) error {
	err := ss.sessions.SetUntil(ctx, ss.getKeyForSession(session.ID), session, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%w: %s", storage.StorageError, err.Error())
	}
	return nil
}

func (ss *SessionStorage) GetSession(ctx context.Context, id string) (*schemas.Session, error) {
	cached, found, err := ss.sessions.Get(ctx, ss.getKeyForSession(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", storage.StorageError, err.Error())
	}
	if !found {
		return nil, fmt.Errorf("%w: session %s", storage.ErrNotFound, id)
	}
	return cached.(*schemas.Session), nil
}

func (ss *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	existed, err := ss.sessions.DeleteExisting(ctx, ss.getKeyForSession(id))
	if err != nil {
		return fmt.Errorf("%w: %s", storage.StorageError, err.Error())
	}
	if !existed {
		return fmt.Errorf("%w: session %s", storage.ErrNotFound, id)
	}
	return nil
}

func (ss *SessionStorage) getKeyForSession(id string) string {
	return fmt.Sprintf("%s:sessions:%s", ss.prefix, id)
}
