package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"aora/handlers"
	"aora/plain"
	"aora/schemas"
	"aora/storage"
)

// Client talks to the REST surface of the backend. It implements storage.Backend.
type Client struct {
	endpoint   string
	project    string
	httpClient *http.Client
}

func NewClient(endpoint, project string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		project:    project,
		httpClient: httpClient,
	}
}

var _ storage.Backend = (*Client)(nil)

func (c *Client) SignUp(ctx context.Context, email, password, username string) (*schemas.Account, error) {
	var account schemas.Account
	err := c.doJSON(ctx, http.MethodPost, "/v1/account", handlers.SignUpRequestData{Email: email, Password: password, Username: username}, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*schemas.Session, error) {
	var session schemas.Session
	err := c.doJSON(ctx, http.MethodPost, "/v1/account/sessions", handlers.SignInRequestData{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*schemas.Account, error) {
	var account schemas.Account
	if err := c.doJSON(ctx, http.MethodGet, "/v1/account", nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/account/sessions/current", nil, nil)
}

func (c *Client) CreateDocument(ctx context.Context, collection string, fields schemas.Fields) (*schemas.Document, error) {
	var doc schemas.Document
	err := c.doJSON(ctx, http.MethodPost, documentsPath(collection), handlers.DocumentRequestData{Data: fields}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) GetDocument(ctx context.Context, collection, id string) (*schemas.Document, error) {
	var doc schemas.Document
	if err := c.doJSON(ctx, http.MethodGet, documentPath(collection, id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UpdateDocument(ctx context.Context, collection, id string, fields schemas.Fields) (*schemas.Document, error) {
	var doc schemas.Document
	err := c.doJSON(ctx, http.MethodPatch, documentPath(collection, id), handlers.DocumentRequestData{Data: fields}, &doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) DeleteDocument(ctx context.Context, collection, id string) error {
	return c.doJSON(ctx, http.MethodDelete, documentPath(collection, id), nil, nil)
}

func (c *Client) ListDocuments(ctx context.Context, collection string, query plain.ListQuery) ([]*schemas.Document, string, error) {
	var response handlers.ListDocumentsResponse
	path := documentsPath(collection)
	if encoded := EncodeListQuery(query); encoded != "" {
		path += "?" + encoded
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, "", err
	}
	return response.Documents, response.NextCursor, nil
}

func (c *Client) UploadFile(ctx context.Context, bucket string, upload schemas.FileUpload) (string, error) {
	if upload.Content == nil {
		return "", fmt.Errorf("%w: empty content", storage.ErrUpload)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(upload.Name)))
	if upload.MimeType != "" {
		header.Set("Content-Type", upload.MimeType)
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("%w: %s", storage.ErrUpload, err.Error())
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return "", fmt.Errorf("%w: reading asset: %s", storage.ErrUpload, err.Error())
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %s", storage.ErrUpload, err.Error())
	}

	var response handlers.UploadFileResponse
	err = c.do(ctx, http.MethodPost, filesPath(bucket), &body, writer.FormDataContentType(), &response)
	if err != nil {
		return "", err
	}
	return response.ID, nil
}

func (c *Client) GetFileURL(ctx context.Context, bucket, fileID string) (string, error) {
	var response handlers.FileURLResponse
	if err := c.doJSON(ctx, http.MethodGet, filePath(bucket, fileID), nil, &response); err != nil {
		return "", err
	}
	return response.URL, nil
}

func (c *Client) OpenFile(ctx context.Context, bucket, fileID string) (io.ReadCloser, *schemas.FileInfo, error) {
	resp, err := c.send(ctx, http.MethodGet, filePath(bucket, fileID)+"/view", nil, "")
	if err != nil {
		return nil, nil, err
	}
	size, _ := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	info := &schemas.FileInfo{
		ID:       fileID,
		Bucket:   bucket,
		MimeType: resp.Header.Get("Content-Type"),
		Size:     size,
	}
	return resp.Body, info, nil
}

func (c *Client) DeleteFile(ctx context.Context, bucket, fileID string) error {
	return c.doJSON(ctx, http.MethodDelete, filePath(bucket, fileID), nil, nil)
}

// EncodeListQuery is the client side of handlers.ParseListQuery.
func EncodeListQuery(query plain.ListQuery) string {
	values := url.Values{}
	for field, value := range query.Equal {
		values.Add("filter", field+":"+value)
	}
	if query.SearchTerm != "" {
		values.Set("search", query.SearchField+":"+query.SearchTerm)
	}
	if query.LastSeenID != "" {
		values.Set("cursor", query.LastSeenID)
	}
	if query.Size != 0 {
		values.Set("size", strconv.Itoa(query.Size))
	}
	return values.Encode()
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, result interface{}) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%w: %s", storage.ErrInvalidArgument, err.Error())
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, result)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result interface{}) error {
	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: bad response body: %s", storage.ErrTransport, err.Error())
	}
	return nil
}

// send returns the response only for 2xx statuses. The caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrInvalidArgument, err.Error())
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.project != "" {
		req.Header.Set("X-Project", c.project)
	}
	if token := storage.TokenFrom(ctx); token != "" {
		req.Header.Set(handlers.SessionHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %s", storage.ErrTransport, method, path, err.Error())
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

func decodeError(resp *http.Response) error {
	var apiErr handlers.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Code == "" {
		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("%w: status %d", storage.ErrTransport, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", storage.StorageError, resp.StatusCode)
	}
	return fmt.Errorf("%w: %s", handlers.ErrorFromCode(apiErr.Code), apiErr.Message)
}

func documentsPath(collection string) string {
	return fmt.Sprintf("/v1/databases/%s/documents", url.PathEscape(collection))
}

func documentPath(collection, id string) string {
	return fmt.Sprintf("%s/%s", documentsPath(collection), url.PathEscape(id))
}

func filesPath(bucket string) string {
	return fmt.Sprintf("/v1/storage/buckets/%s/files", url.PathEscape(bucket))
}

func filePath(bucket, fileID string) string {
	return fmt.Sprintf("%s/%s", filesPath(bucket), url.PathEscape(fileID))
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
