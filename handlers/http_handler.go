package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"aora/plain"
	"aora/schemas"
	"aora/storage"
	"aora/users"
)

const maxUploadSize = 512 << 20

func NewHTTPHandler(backend storage.Backend, log logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{
		Backend: backend,
		log:     log,
	}
}

type HTTPHandler struct {
	Backend storage.Backend
	log     logrus.FieldLogger
}

// Router registers every route of the API.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.sessionMiddleware)

	r.HandleFunc("/v1/account", h.HandleSignUp).Methods(http.MethodPost)
	r.HandleFunc("/v1/account", h.HandleGetAccount).Methods(http.MethodGet)
	r.HandleFunc("/v1/account/sessions", h.HandleSignIn).Methods(http.MethodPost)
	r.HandleFunc("/v1/account/sessions/current", h.HandleSignOut).Methods(http.MethodDelete)

	r.HandleFunc("/v1/databases/{collection}/documents", h.HandleCreateDocument).Methods(http.MethodPost)
	r.HandleFunc("/v1/databases/{collection}/documents", h.HandleListDocuments).Methods(http.MethodGet)
	r.HandleFunc("/v1/databases/{collection}/documents/{documentId}", h.HandleGetDocument).Methods(http.MethodGet)
	r.HandleFunc("/v1/databases/{collection}/documents/{documentId}", h.HandleUpdateDocument).Methods(http.MethodPatch)
	r.HandleFunc("/v1/databases/{collection}/documents/{documentId}", h.HandleDeleteDocument).Methods(http.MethodDelete)

	r.HandleFunc("/v1/storage/buckets/{bucket}/files", h.HandleUploadFile).Methods(http.MethodPost)
	r.HandleFunc("/v1/storage/buckets/{bucket}/files/{fileId}", h.HandleGetFileURL).Methods(http.MethodGet)
	r.HandleFunc("/v1/storage/buckets/{bucket}/files/{fileId}/view", h.HandleViewFile).Methods(http.MethodGet)
	r.HandleFunc("/v1/storage/buckets/{bucket}/files/{fileId}", h.HandleDeleteFile).Methods(http.MethodDelete)

	r.HandleFunc("/v1/avatars/initials", h.HandleAvatar).Methods(http.MethodGet)
	r.HandleFunc("/maintenance/ping", h.HandlePing).Methods(http.MethodGet)
	return r
}

// Handler is the router behind CORS, for web builds of the client.
func (h *HTTPHandler) Handler(allowedOrigins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
	})
	return c.Handler(h.Router())
}

func (h *HTTPHandler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get(SessionHeader); token != "" {
			r = r.WithContext(storage.WithToken(r.Context(), token))
		}
		next.ServeHTTP(rw, r)
	})
}

func (h *HTTPHandler) HandleSignUp(rw http.ResponseWriter, r *http.Request) {
	var data SignUpRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.writeError(rw, fmt.Errorf("%w: bad body", storage.ErrInvalidArgument))
		return
	}

	account, err := h.Backend.SignUp(r.Context(), data.Email, data.Password, data.Username)
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusCreated, account)
}

func (h *HTTPHandler) HandleSignIn(rw http.ResponseWriter, r *http.Request) {
	var data SignInRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.writeError(rw, fmt.Errorf("%w: bad body", storage.ErrInvalidArgument))
		return
	}

	session, err := h.Backend.SignIn(r.Context(), data.Email, data.Password)
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusCreated, session)
}

func (h *HTTPHandler) HandleGetAccount(rw http.ResponseWriter, r *http.Request) {
	account, err := h.Backend.GetCurrentUser(r.Context())
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusOK, account)
}

func (h *HTTPHandler) HandleSignOut(rw http.ResponseWriter, r *http.Request) {
	if err := h.Backend.SignOut(r.Context()); err != nil {
		h.writeError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) HandleCreateDocument(rw http.ResponseWriter, r *http.Request) {
	var data DocumentRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil || data.Data == nil {
		h.writeError(rw, fmt.Errorf("%w: bad body", storage.ErrInvalidArgument))
		return
	}

	doc, err := h.Backend.CreateDocument(r.Context(), mux.Vars(r)["collection"], data.Data)
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusCreated, doc)
}

func (h *HTTPHandler) HandleGetDocument(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := h.Backend.GetDocument(r.Context(), vars["collection"], vars["documentId"])
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusOK, doc)
}

func (h *HTTPHandler) HandleUpdateDocument(rw http.ResponseWriter, r *http.Request) {
	var data DocumentRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.writeError(rw, fmt.Errorf("%w: bad body", storage.ErrInvalidArgument))
		return
	}

	vars := mux.Vars(r)
	doc, err := h.Backend.UpdateDocument(r.Context(), vars["collection"], vars["documentId"], data.Data)
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusOK, doc)
}

func (h *HTTPHandler) HandleDeleteDocument(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Backend.DeleteDocument(r.Context(), vars["collection"], vars["documentId"]); err != nil {
		h.writeError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) HandleListDocuments(rw http.ResponseWriter, r *http.Request) {
	query, err := ParseListQuery(r.URL.Query())
	if err != nil {
		h.writeError(rw, err)
		return
	}

	docs, nextCursor, err := h.Backend.ListDocuments(r.Context(), mux.Vars(r)["collection"], query)
	if err != nil {
		h.writeError(rw, err)
		return
	}
	if docs == nil {
		docs = []*schemas.Document{}
	}
	h.writeJSON(rw, http.StatusOK, ListDocumentsResponse{Documents: docs, NextCursor: nextCursor})
}

func (h *HTTPHandler) HandleUploadFile(rw http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(rw, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(rw, fmt.Errorf("%w: multipart field \"file\" is required", storage.ErrInvalidArgument))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	fileID, err := h.Backend.UploadFile(r.Context(), mux.Vars(r)["bucket"], schemas.FileUpload{
		Name:     header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Content:  file,
	})
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusCreated, UploadFileResponse{ID: fileID})
}

func (h *HTTPHandler) HandleGetFileURL(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	url, err := h.Backend.GetFileURL(r.Context(), vars["bucket"], vars["fileId"])
	if err != nil {
		h.writeError(rw, err)
		return
	}
	h.writeJSON(rw, http.StatusOK, FileURLResponse{URL: url})
}

func (h *HTTPHandler) HandleViewFile(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	content, info, err := h.Backend.OpenFile(r.Context(), vars["bucket"], vars["fileId"])
	if err != nil {
		h.writeError(rw, err)
		return
	}
	defer content.Close()

	if info.MimeType != "" {
		rw.Header().Set("Content-Type", info.MimeType)
	}
	rw.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if _, err := io.Copy(rw, content); err != nil {
		h.log.WithError(err).WithField("file", info.ID).Warn("file streaming interrupted")
	}
}

func (h *HTTPHandler) HandleDeleteFile(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.Backend.DeleteFile(r.Context(), vars["bucket"], vars["fileId"]); err != nil {
		h.writeError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) HandleAvatar(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "image/svg+xml")
	rw.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = io.WriteString(rw, users.AvatarSVG(r.URL.Query().Get("name")))
}

func (h *HTTPHandler) HandlePing(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)
}

// ParseListQuery reads filter=<field>:<value> (repeatable), search=<field>:<term>, cursor and size.
func ParseListQuery(values map[string][]string) (plain.ListQuery, error) {
	var query plain.ListQuery
	for _, filter := range values["filter"] {
		field, value, ok := strings.Cut(filter, ":")
		if !ok || field == "" {
			return query, fmt.Errorf("%w: bad filter %q", storage.ErrInvalidArgument, filter)
		}
		query = query.WithEqual(field, value)
	}
	if search := first(values["search"]); search != "" {
		field, term, ok := strings.Cut(search, ":")
		if !ok || field == "" {
			return query, fmt.Errorf("%w: bad search %q", storage.ErrInvalidArgument, search)
		}
		query.SearchField, query.SearchTerm = field, term
	}
	query.LastSeenID = first(values["cursor"])
	if rawSize := first(values["size"]); rawSize != "" {
		parsedSize, err := strconv.ParseInt(rawSize, 10, 32)
		if err != nil {
			return query, fmt.Errorf("%w: invalid page size: %s", storage.ErrInvalidArgument, err.Error())
		}
		query.Size = int(parsedSize)
	}
	return query, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (h *HTTPHandler) writeJSON(rw http.ResponseWriter, status int, payload interface{}) {
	rawResponse, err := json.Marshal(payload)
	if err != nil {
		h.writeError(rw, err)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if _, err := rw.Write(rawResponse); err != nil {
		h.log.WithError(err).Warn("response write failed")
	}
}

func (h *HTTPHandler) writeError(rw http.ResponseWriter, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
	}
	rawResponse, _ := json.Marshal(ErrorResponse{Code: code, Message: err.Error()})
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_, _ = rw.Write(rawResponse)
}
