package screens

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"aora/notify"
	"aora/schemas"
	"aora/submission"
)

var credentialsValidator = validator.New()

type credentials struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type signUpCredentials struct {
	Username string `validate:"required"`
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

func checkCredentials(form interface{}) error {
	err := credentialsValidator.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	fields := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return schemas.NewValidationError(fields...)
}

// SignIn is the sign-in screen: two fields and a submit button.
type SignIn struct {
	accounts   Accounts
	navigator  Navigator
	controller *submission.Controller

	mu       sync.Mutex
	email    string
	password string
}

func NewSignIn(accounts Accounts, navigator Navigator, notifier notify.Notifier, log logrus.FieldLogger) *SignIn {
	return &SignIn{
		accounts:   accounts,
		navigator:  navigator,
		controller: submission.NewController(notifier, log),
	}
}

func (s *SignIn) SetEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
}

func (s *SignIn) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.password = password
}

func (s *SignIn) Controller() *submission.Controller {
	return s.controller
}

func (s *SignIn) Submit(ctx context.Context) error {
	s.mu.Lock()
	form := credentials{Email: strings.TrimSpace(s.email), Password: s.password}
	s.mu.Unlock()

	return s.controller.Submit(ctx, submission.Request{
		Validate: func() error { return checkCredentials(form) },
		Action: func(ctx context.Context) error {
			_, err := s.accounts.SignIn(ctx, form.Email, form.Password)
			return err
		},
		OnSuccess: func() { s.navigator.Replace(RouteHome) },
	})
}

type SignUp struct {
	accounts   Accounts
	navigator  Navigator
	controller *submission.Controller

	mu   sync.Mutex
	form signUpCredentials
}

func NewSignUp(accounts Accounts, navigator Navigator, notifier notify.Notifier, log logrus.FieldLogger) *SignUp {
	return &SignUp{
		accounts:   accounts,
		navigator:  navigator,
		controller: submission.NewController(notifier, log),
	}
}

func (s *SignUp) SetUsername(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Username = username
}

func (s *SignUp) SetEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Email = email
}

func (s *SignUp) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Password = password
}

func (s *SignUp) Controller() *submission.Controller {
	return s.controller
}

func (s *SignUp) Submit(ctx context.Context) error {
	s.mu.Lock()
	form := s.form
	s.mu.Unlock()
	form.Username = strings.TrimSpace(form.Username)
	form.Email = strings.TrimSpace(form.Email)

	return s.controller.Submit(ctx, submission.Request{
		Validate: func() error { return checkCredentials(form) },
		Action: func(ctx context.Context) error {
			_, err := s.accounts.SignUp(ctx, form.Email, form.Password, form.Username)
			return err
		},
		OnSuccess: func() { s.navigator.Replace(RouteHome) },
	})
}
