package inmemory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"aora/schemas"
	"aora/storage"
)

type AccountStorage struct {
	mu sync.RWMutex

	accountById    map[schemas.UserId]*storage.AccountRecord
	accountByEmail map[string]*storage.AccountRecord
}

func NewAccountStorage() *AccountStorage {
	return &AccountStorage{
		accountById:    map[schemas.UserId]*storage.AccountRecord{},
		accountByEmail: map[string]*storage.AccountRecord{},
	}
}

func (s *AccountStorage) PutAccount(_ context.Context, record *storage.AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(record.Email)
	if _, ok := s.accountByEmail[email]; ok {
		return fmt.Errorf("%w: email %s", storage.ErrCollision, email)
	}
	if _, ok := s.accountById[record.ID]; ok {
		return fmt.Errorf("%w: account %s", storage.ErrCollision, record.ID)
	}

	stored := *record
	s.accountById[record.ID] = &stored
	s.accountByEmail[email] = &stored
	return nil
}

func (s *AccountStorage) GetAccount(_ context.Context, id schemas.UserId) (*storage.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.accountById[id]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", storage.ErrNotFound, id)
	}
	result := *record
	return &result, nil
}

func (s *AccountStorage) GetAccountByEmail(_ context.Context, email string) (*storage.AccountRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.accountByEmail[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: email %s", storage.ErrNotFound, email)
	}
	result := *record
	return &result, nil
}

type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[string]*schemas.Session
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{sessions: map[string]*schemas.Session{}}
}

func (s *SessionStorage) PutSession(_ context.Context, session *schemas.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *SessionStorage) GetSession(_ context.Context, id string) (*schemas.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", storage.ErrNotFound, id)
	}
	result := *session
	return &result, nil
}

func (s *SessionStorage) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: session %s", storage.ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}
