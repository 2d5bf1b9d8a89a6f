package gateway

import (
	"context"
	"sync"

	"aora/schemas"
	"aora/storage"
)

// Session is the signed-in user shared by the screens of one app instance.
// It is populated on sign-in, cleared on sign-out and read everywhere else.
type Session struct {
	mu      sync.RWMutex
	account *schemas.Account
	token   string
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Populate(account *schemas.Account, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account.Copy()
	s.token = token
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = nil
	s.token = ""
}

func (s *Session) Account() (*schemas.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil, false
	}
	return s.account.Copy(), true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) IsLogged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account != nil && s.token != ""
}

// Context attaches the session token to ctx for backend calls.
func (s *Session) Context(ctx context.Context) context.Context {
	return storage.WithToken(ctx, s.Token())
}

func (s *Session) refresh(account *schemas.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		s.account = account.Copy()
	}
}
