package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"aora/schemas"
	"aora/storage"
)

type signUpRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Username string `validate:"required,min=3,max=64"`
}

// UsersManager owns accounts and their sessions. It implements storage.Accounts.
type UsersManager struct {
	accounts   storage.AccountStore
	sessions   storage.SessionStore
	tokens     *TokenIssuer
	sessionTTL time.Duration
	publicURL  string
	now        func() time.Time
	validate   *validator.Validate
	log        logrus.FieldLogger
}

type Option func(*UsersManager)

func WithClock(now func() time.Time) Option {
	return func(um *UsersManager) { um.now = now }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(um *UsersManager) { um.log = log }
}

func NewUsersManager(accounts storage.AccountStore, sessions storage.SessionStore, tokens *TokenIssuer, sessionTTL time.Duration, publicURL string, opts ...Option) *UsersManager {
	um := &UsersManager{
		accounts:   accounts,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		publicURL:  publicURL,
		now:        time.Now,
		validate:   validator.New(),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(um)
	}
	return um
}

func (um *UsersManager) SignUp(ctx context.Context, email, password, username string) (*schemas.Account, error) {
	request := signUpRequest{Email: strings.TrimSpace(email), Password: password, Username: strings.TrimSpace(username)}
	if err := um.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidArgument, describeValidation(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %s", storage.StorageError, err.Error())
	}

	record := &storage.AccountRecord{
		Account: schemas.Account{
			ID:        schemas.UserId(uuid.NewString()),
			Email:     strings.ToLower(request.Email),
			Username:  request.Username,
			Avatar:    AvatarURL(um.publicURL, request.Username),
			CreatedAt: um.now().UTC(),
		},
		PasswordHash: string(hash),
	}
	if err := um.accounts.PutAccount(ctx, record); err != nil {
		return nil, err
	}

	um.log.WithField("account", record.ID).Info("account created")
	return record.Account.Copy(), nil
}

func (um *UsersManager) SignIn(ctx context.Context, email, password string) (*schemas.Session, error) {
	record, err := um.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown email", storage.ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: password mismatch", storage.ErrInvalidCredentials)
	}

	session := &schemas.Session{
		ID:        uuid.NewString(),
		AccountID: record.ID,
		ExpiresAt: um.now().Add(um.sessionTTL).UTC(),
	}
	session.Token, err = um.tokens.Issue(session)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", storage.StorageError, err.Error())
	}
	if err := um.sessions.PutSession(ctx, session); err != nil {
		return nil, err
	}

	um.log.WithFields(logrus.Fields{"account": record.ID, "session": session.ID}).Info("session opened")
	return session, nil
}

func (um *UsersManager) GetCurrentUser(ctx context.Context) (*schemas.Account, error) {
	account, _, err := um.Authorize(ctx)
	return account, err
}

func (um *UsersManager) SignOut(ctx context.Context) error {
	_, session, err := um.Authorize(ctx)
	if err != nil {
		return err
	}
	err = um.sessions.DeleteSession(ctx, session.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	um.log.WithField("session", session.ID).Info("session closed")
	return nil
}

// Authorize resolves the session token carried by ctx. Every failure is storage.ErrUnauthenticated
// unless the session store itself is broken.
func (um *UsersManager) Authorize(ctx context.Context) (*schemas.Account, *schemas.Session, error) {
	token := storage.TokenFrom(ctx)
	if token == "" {
		return nil, nil, fmt.Errorf("%w: no session", storage.ErrUnauthenticated)
	}
	claims, err := um.tokens.Parse(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", storage.ErrUnauthenticated, err.Error())
	}

	session, err := um.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: session revoked", storage.ErrUnauthenticated)
		}
		return nil, nil, err
	}
	if session.Token != token || session.Expired(um.now()) {
		return nil, nil, fmt.Errorf("%w: session expired", storage.ErrUnauthenticated)
	}

	record, err := um.accounts.GetAccount(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: account gone", storage.ErrUnauthenticated)
		}
		return nil, nil, err
	}
	return record.Account.Copy(), session, nil
}

func describeValidation(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
