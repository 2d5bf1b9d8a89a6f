package schemas

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ClientError         = errors.New("client")
	ErrValidation       = fmt.Errorf("%w.validation", ClientError)
	ErrAuth             = fmt.Errorf("%w.auth", ClientError)
	ErrNotAuthenticated = fmt.Errorf("%w.not_authenticated", ClientError)
	ErrNotFound         = fmt.Errorf("%w.not_found", ClientError)
	ErrStorage          = fmt.Errorf("%w.storage", ClientError)
	ErrNetwork          = fmt.Errorf("%w.network", ClientError)
)

// ValidationError lists the draft or form fields that failed the pre-flight check.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "Please provide all fields"
	}
	return fmt.Sprintf("Please provide all fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindValidation       ErrorKind = "validation"
	KindAuth             ErrorKind = "auth"
	KindNotAuthenticated ErrorKind = "not_authenticated"
	KindNotFound         ErrorKind = "not_found"
	KindStorage          ErrorKind = "storage"
	KindNetwork          ErrorKind = "network"
	KindUnknown          ErrorKind = "unknown"
)

func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	default:
		return KindUnknown
	}
}
