package handlers

import (
	"errors"
	"net/http"

	"aora/schemas"
	"aora/storage"
)

const SessionHeader = "X-Session-Token"

type SignUpRequestData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type SignInRequestData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DocumentRequestData struct {
	Data schemas.Fields `json:"data"`
}

type ListDocumentsResponse struct {
	Documents  []*schemas.Document `json:"documents"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

type UploadFileResponse struct {
	ID string `json:"id"`
}

type FileURLResponse struct {
	URL string `json:"url"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	CodeInvalidArgument    = "invalid_argument"
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidCredentials = "invalid_credentials"
	CodeNotFound           = "not_found"
	CodeCollision          = "collision"
	CodeUpload             = "upload"
	CodeStorage            = "storage"
)

var codeErrors = map[string]error{
	CodeInvalidArgument:    storage.ErrInvalidArgument,
	CodeUnauthenticated:    storage.ErrUnauthenticated,
	CodeInvalidCredentials: storage.ErrInvalidCredentials,
	CodeNotFound:           storage.ErrNotFound,
	CodeCollision:          storage.ErrCollision,
	CodeUpload:             storage.ErrUpload,
	CodeStorage:            storage.StorageError,
}

// ErrorFromCode is the inverse of the status mapping, used by clients of this API.
func ErrorFromCode(code string) error {
	if err, ok := codeErrors[code]; ok {
		return err
	}
	return storage.StorageError
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrInvalidArgument):
		return http.StatusBadRequest, CodeInvalidArgument
	case errors.Is(err, storage.ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials
	case errors.Is(err, storage.ErrUnauthenticated):
		return http.StatusUnauthorized, CodeUnauthenticated
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, storage.ErrCollision):
		return http.StatusConflict, CodeCollision
	case errors.Is(err, storage.ErrUpload):
		return http.StatusBadGateway, CodeUpload
	default:
		return http.StatusInternalServerError, CodeStorage
	}
}
