package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"aora/plain"
	"aora/schemas"
)

var (
	StorageError          = errors.New("storage")
	ErrCollision          = fmt.Errorf("%w.collision", StorageError)
	ErrNotFound           = fmt.Errorf("%w.not_found", StorageError)
	ErrInvalidArgument    = fmt.Errorf("%w.invalid_argument", StorageError)
	ErrUnauthenticated    = fmt.Errorf("%w.unauthenticated", StorageError)
	ErrInvalidCredentials = fmt.Errorf("%w.invalid_credentials", StorageError)
	ErrUpload             = fmt.Errorf("%w.upload", StorageError)
	ErrTransport          = fmt.Errorf("%w.transport", StorageError)
)

// Accounts is the auth contract of the backend. The session token, when needed, is read from the context.
type Accounts interface {
	SignUp(ctx context.Context, email, password, username string) (*schemas.Account, error)
	SignIn(ctx context.Context, email, password string) (*schemas.Session, error)
	GetCurrentUser(ctx context.Context) (*schemas.Account, error)
	SignOut(ctx context.Context) error
}

type Documents interface {
	CreateDocument(ctx context.Context, collection string, fields schemas.Fields) (*schemas.Document, error)
	GetDocument(ctx context.Context, collection, id string) (*schemas.Document, error)
	UpdateDocument(ctx context.Context, collection, id string, fields schemas.Fields) (*schemas.Document, error)
	DeleteDocument(ctx context.Context, collection, id string) error
	ListDocuments(ctx context.Context, collection string, query plain.ListQuery) (_ []*schemas.Document, nextCursor string, _ error)
}

type Files interface {
	UploadFile(ctx context.Context, bucket string, upload schemas.FileUpload) (fileID string, _ error)
	GetFileURL(ctx context.Context, bucket, fileID string) (string, error)
	OpenFile(ctx context.Context, bucket, fileID string) (io.ReadCloser, *schemas.FileInfo, error)
	DeleteFile(ctx context.Context, bucket, fileID string) error
}

// Backend is everything the client core consumes from the backend-as-a-service.
type Backend interface {
	Accounts
	Documents
	Files
}

// AccountRecord is an account as persisted, with its password hash.
type AccountRecord struct {
	schemas.Account `bson:",inline"`
	PasswordHash    string `bson:"passwordHash"`
}

type AccountStore interface {
	PutAccount(ctx context.Context, record *AccountRecord) error
	GetAccount(ctx context.Context, id schemas.UserId) (*AccountRecord, error)
	GetAccountByEmail(ctx context.Context, email string) (*AccountRecord, error)
}

type SessionStore interface {
	PutSession(ctx context.Context, session *schemas.Session) error
	GetSession(ctx context.Context, id string) (*schemas.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type tokenKey struct{}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
