package mongostorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aora/schemas"
	"aora/storage"
)

type gridFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   struct {
		MimeType string `bson:"mimeType"`
	} `bson:"metadata"`
}

// FileStorage keeps every bucket as a GridFS bucket of the same database.
type FileStorage struct {
	db        *mongo.Database
	publicURL string
}

func NewFileStorage(db *mongo.Database, publicURL string) *FileStorage {
	return &FileStorage{
		db:        db,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// gridfs.Bucket keeps per-stream buffers, so every call gets its own.
func (s *FileStorage) bucket(name string) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("%w: bucket %s: %s", storage.StorageError, name, err.Error())
	}
	return b, nil
}

func parseFileID(bucket, fileID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: file %s/%s", storage.ErrNotFound, bucket, fileID)
	}
	return oid, nil
}

func (s *FileStorage) UploadFile(_ context.Context, bucket string, upload schemas.FileUpload) (string, error) {
	if upload.Content == nil {
		return "", fmt.Errorf("%w: empty content", storage.ErrUpload)
	}
	b, err := s.bucket(bucket)
	if err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"mimeType": upload.MimeType})
	oid, err := b.UploadFromStream(upload.Name, upload.Content, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %s", storage.ErrUpload, err.Error())
	}
	return oid.Hex(), nil
}

func (s *FileStorage) findFile(ctx context.Context, bucket, fileID string) (*gridfs.Bucket, *gridFile, error) {
	oid, err := parseFileID(bucket, fileID)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, nil, err
	}

	cursor, err := b.Find(bson.M{"_id": oid})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: file lookup failed: %s", storage.StorageError, err.Error())
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, nil, fmt.Errorf("%w: file %s/%s", storage.ErrNotFound, bucket, fileID)
	}
	var file gridFile
	if err := cursor.Decode(&file); err != nil {
		return nil, nil, fmt.Errorf("%w: file mapping failed: %s", storage.StorageError, err.Error())
	}
	return b, &file, nil
}

func (s *FileStorage) GetFileURL(ctx context.Context, bucket, fileID string) (string, error) {
	if _, _, err := s.findFile(ctx, bucket, fileID); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/v1/storage/buckets/%s/files/%s/view", s.publicURL, bucket, fileID), nil
}

func (s *FileStorage) OpenFile(ctx context.Context, bucket, fileID string) (io.ReadCloser, *schemas.FileInfo, error) {
	b, file, err := s.findFile(ctx, bucket, fileID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := b.OpenDownloadStream(file.ID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, fmt.Errorf("%w: file %s/%s", storage.ErrNotFound, bucket, fileID)
		}
		return nil, nil, fmt.Errorf("%w: download failed: %s", storage.StorageError, err.Error())
	}
	return stream, &schemas.FileInfo{
		ID:        fileID,
		Bucket:    bucket,
		Name:      file.Filename,
		MimeType:  file.Metadata.MimeType,
		Size:      file.Length,
		CreatedAt: file.UploadDate,
	}, nil
}

func (s *FileStorage) DeleteFile(_ context.Context, bucket, fileID string) error {
	oid, err := parseFileID(bucket, fileID)
	if err != nil {
		return err
	}
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}

	if err := b.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("%w: file %s/%s", storage.ErrNotFound, bucket, fileID)
		}
		return fmt.Errorf("%w: file deletion failed: %s", storage.StorageError, err.Error())
	}
	return nil
}
