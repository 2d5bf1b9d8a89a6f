package gateway

import (
	"context"
	"errors"
	"strings"

	"aora/schemas"
	"aora/storage"
)

// Error is a backend failure translated into the client taxonomy. Both the kind and the
// original storage error stay reachable through errors.Is.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, schemas.ClientError) {
		return err
	}

	switch {
	case errors.Is(err, storage.ErrInvalidCredentials):
		return newError(schemas.ErrAuth, "Invalid credentials. Please check the email and password.", err)
	case errors.Is(err, storage.ErrCollision):
		return newError(schemas.ErrAuth, "A user with the same email already exists.", err)
	case errors.Is(err, storage.ErrUnauthenticated):
		return newError(schemas.ErrNotAuthenticated, "Your session has expired. Please sign in again.", err)
	case errors.Is(err, storage.ErrNotFound):
		return newError(schemas.ErrNotFound, "Document with the requested ID could not be found.", err)
	case errors.Is(err, storage.ErrInvalidArgument):
		return newError(schemas.ErrValidation, detail(err), err)
	case errors.Is(err, storage.ErrUpload):
		return newError(schemas.ErrStorage, "Media upload failed.", err)
	case errors.Is(err, storage.ErrTransport), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return newError(schemas.ErrNetwork, "Network request failed.", err)
	default:
		return newError(schemas.ErrStorage, "Storage request failed.", err)
	}
}

// uploadFailure keeps session expiry visible and reports everything else as a storage failure.
func uploadFailure(err error) error {
	translated := translate(err)
	if errors.Is(translated, schemas.ErrNotAuthenticated) {
		return translated
	}
	return newError(schemas.ErrStorage, "Media upload failed.", err)
}

// detail drops the sentinel prefix of a storage error message.
func detail(err error) string {
	message := err.Error()
	if _, rest, ok := strings.Cut(message, ": "); ok {
		return rest
	}
	return message
}
