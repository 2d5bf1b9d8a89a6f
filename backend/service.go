package backend

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"aora/plain"
	"aora/schemas"
	"aora/storage"
	"aora/storage/inmemory"
	"aora/users"
)

type Authorizer interface {
	storage.Accounts
	Authorize(ctx context.Context) (*schemas.Account, *schemas.Session, error)
}

// Purger removes files out of band.
type Purger interface {
	PublishPurgeFile(bucket, fileID string) error
}

// Service is the backend-as-a-service: accounts plus session-guarded documents and files.
type Service struct {
	accounts  Authorizer
	documents storage.Documents
	files     storage.Files
	purger    Purger
	log       logrus.FieldLogger
}

func NewService(accounts Authorizer, documents storage.Documents, files storage.Files, purger Purger, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{accounts: accounts, documents: documents, files: files, purger: purger, log: log}
}

var _ storage.Backend = (*Service)(nil)

// NewInMemory builds a self-contained backend with no external services and inline file deletion.
func NewInMemory(publicURL, sessionSecret string, sessionTTL time.Duration, log logrus.FieldLogger, opts ...users.Option) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	opts = append([]users.Option{users.WithLogger(log)}, opts...)
	accounts := users.NewUsersManager(
		inmemory.NewAccountStorage(),
		inmemory.NewSessionStorage(),
		users.NewTokenIssuer(sessionSecret, nil),
		sessionTTL,
		publicURL,
		opts...,
	)
	return NewService(accounts, inmemory.NewInMemoryStorage(), inmemory.NewFileStorageAt(publicURL), nil, log)
}

func (s *Service) SignUp(ctx context.Context, email, password, username string) (*schemas.Account, error) {
	return s.accounts.SignUp(ctx, email, password, username)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*schemas.Session, error) {
	return s.accounts.SignIn(ctx, email, password)
}

func (s *Service) GetCurrentUser(ctx context.Context) (*schemas.Account, error) {
	return s.accounts.GetCurrentUser(ctx)
}

func (s *Service) SignOut(ctx context.Context) error {
	return s.accounts.SignOut(ctx)
}

func (s *Service) CreateDocument(ctx context.Context, collection string, fields schemas.Fields) (*schemas.Document, error) {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return nil, err
	}
	return s.documents.CreateDocument(ctx, collection, fields)
}

func (s *Service) GetDocument(ctx context.Context, collection, id string) (*schemas.Document, error) {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return nil, err
	}
	return s.documents.GetDocument(ctx, collection, id)
}

func (s *Service) UpdateDocument(ctx context.Context, collection, id string, fields schemas.Fields) (*schemas.Document, error) {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return nil, err
	}
	return s.documents.UpdateDocument(ctx, collection, id, fields)
}

func (s *Service) DeleteDocument(ctx context.Context, collection, id string) error {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return err
	}
	return s.documents.DeleteDocument(ctx, collection, id)
}

func (s *Service) ListDocuments(ctx context.Context, collection string, query plain.ListQuery) ([]*schemas.Document, string, error) {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return nil, "", err
	}
	return s.documents.ListDocuments(ctx, collection, query)
}

func (s *Service) UploadFile(ctx context.Context, bucket string, upload schemas.FileUpload) (string, error) {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return "", err
	}
	return s.files.UploadFile(ctx, bucket, upload)
}

func (s *Service) GetFileURL(ctx context.Context, bucket, fileID string) (string, error) {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return "", err
	}
	return s.files.GetFileURL(ctx, bucket, fileID)
}

// OpenFile is public: file URLs are handed to video players that carry no session.
func (s *Service) OpenFile(ctx context.Context, bucket, fileID string) (io.ReadCloser, *schemas.FileInfo, error) {
	return s.files.OpenFile(ctx, bucket, fileID)
}

// DeleteFile checks the file exists, then hands the removal to the purger when one is configured.
func (s *Service) DeleteFile(ctx context.Context, bucket, fileID string) error {
	if _, _, err := s.accounts.Authorize(ctx); err != nil {
		return err
	}
	if s.purger == nil {
		return s.files.DeleteFile(ctx, bucket, fileID)
	}

	if _, err := s.files.GetFileURL(ctx, bucket, fileID); err != nil {
		return err
	}
	if err := s.purger.PublishPurgeFile(bucket, fileID); err != nil {
		s.log.WithError(err).WithField("file", fileID).Warn("purge task was not published, deleting inline")
		return s.files.DeleteFile(ctx, bucket, fileID)
	}
	return nil
}

// PurgeFile is the worker side of DeleteFile. A file that is already gone counts as purged.
func (s *Service) PurgeFile(ctx context.Context, bucket, fileID string) error {
	err := s.files.DeleteFile(ctx, bucket, fileID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	s.log.WithField("file", fileID).Debug("file purged")
	return nil
}
