package schemas

import (
	"fmt"
	"io"
	"time"
)

type Fields map[string]interface{}

func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (f Fields) Copy() Fields {
	result := make(Fields, len(f))
	for k, v := range f {
		result[k] = v
	}
	return result
}

// Merge returns a copy of f with every key of patch replaced. Nested values are not merged.
func (f Fields) Merge(patch Fields) Fields {
	result := f.Copy()
	for k, v := range patch {
		result[k] = v
	}
	return result
}

type Document struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Fields     Fields    `json:"fields"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (d Document) Copy() *Document {
	d.Fields = d.Fields.Copy()
	return &d
}

// Asset is a locally picked media file, before upload.
type Asset struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Name     string `json:"fileName"`
	Size     int64  `json:"fileSize"`
}

type FileUpload struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

type FileInfo struct {
	ID        string    `json:"id" bson:"_id"`
	Bucket    string    `json:"bucket" bson:"bucket"`
	Name      string    `json:"name" bson:"name"`
	MimeType  string    `json:"mimeType" bson:"mimeType"`
	Size      int64     `json:"size" bson:"size"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
