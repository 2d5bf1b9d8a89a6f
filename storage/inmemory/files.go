package inmemory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aora/schemas"
	"aora/storage"
)

type storedFile struct {
	info    schemas.FileInfo
	content []byte
}

// FileStorage keeps uploaded files in memory. Without a public URL, file URLs take the form mem://<bucket>/<id>.
type FileStorage struct {
	mu        sync.RWMutex
	files     map[string]*storedFile
	publicURL string
}

func NewFileStorage() *FileStorage {
	return &FileStorage{files: map[string]*storedFile{}}
}

// NewFileStorageAt serves file URLs from the view route of the REST surface.
func NewFileStorageAt(publicURL string) *FileStorage {
	return &FileStorage{files: map[string]*storedFile{}, publicURL: strings.TrimRight(publicURL, "/")}
}

func (s *FileStorage) UploadFile(_ context.Context, bucket string, upload schemas.FileUpload) (string, error) {
	if upload.Content == nil {
		return "", fmt.Errorf("%w: empty content", storage.ErrUpload)
	}
	content, err := io.ReadAll(upload.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %s", storage.ErrUpload, err.Error())
	}

	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[docKey(bucket, id)] = &storedFile{
		info: schemas.FileInfo{
			ID:        id,
			Bucket:    bucket,
			Name:      upload.Name,
			MimeType:  upload.MimeType,
			Size:      int64(len(content)),
			CreatedAt: time.Now().UTC(),
		},
		content: content,
	}
	return id, nil
}

func (s *FileStorage) GetFileURL(_ context.Context, bucket, fileID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[docKey(bucket, fileID)]; !ok {
		return "", fmt.Errorf("%w: file %s/%s", storage.ErrNotFound, bucket, fileID)
	}
	if s.publicURL != "" {
		return fmt.Sprintf("%s/v1/storage/buckets/%s/files/%s/view", s.publicURL, bucket, fileID), nil
	}
	return fmt.Sprintf("mem://%s/%s", bucket, fileID), nil
}

func (s *FileStorage) OpenFile(_ context.Context, bucket, fileID string) (io.ReadCloser, *schemas.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.files[docKey(bucket, fileID)]
	if !ok {
		return nil, nil, fmt.Errorf("%w: file %s/%s", storage.ErrNotFound, bucket, fileID)
	}
	info := file.info
	return io.NopCloser(bytes.NewReader(file.content)), &info, nil
}

func (s *FileStorage) DeleteFile(_ context.Context, bucket, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := docKey(bucket, fileID)
	if _, ok := s.files[key]; !ok {
		return fmt.Errorf("%w: file %s/%s", storage.ErrNotFound, bucket, fileID)
	}
	delete(s.files, key)
	return nil
}

func (s *FileStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
