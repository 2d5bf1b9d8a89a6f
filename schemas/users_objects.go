package schemas

import (
	"time"
)

type Account struct {
	ID        UserId    `json:"id" bson:"_id"`
	Email     string    `json:"email" bson:"email"`
	Username  string    `json:"username" bson:"username"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (a Account) Copy() *Account {
	return &a
}

func (a *Account) AsCreator() Creator {
	return Creator{
		ID:       a.ID,
		Username: a.Username,
		Avatar:   a.Avatar,
	}
}

// Session is what a successful sign-in hands back. Token is presented on every later call.
type Session struct {
	ID        string    `json:"id"`
	AccountID UserId    `json:"accountId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
