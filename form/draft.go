package form

import (
	"fmt"

	"aora/schemas"
)

type Field string

const (
	FieldTitle     Field = "title"
	FieldPrompt    Field = "prompt"
	FieldVideo     Field = "video"
	FieldThumbnail Field = "thumbnail"
)

type Origin int

const (
	OriginUnset Origin = iota
	// OriginLocal is a freshly picked asset that still has to be uploaded.
	OriginLocal
	// OriginRemote is a reference to media that is already stored.
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return ""
	}
}

// MediaSelection is the same shape for picked assets and hydrated remote references.
type MediaSelection struct {
	Origin   Origin
	URI      string
	MimeType string
	Name     string
	Size     int64
}

func Local(asset schemas.Asset) MediaSelection {
	return MediaSelection{
		Origin:   OriginLocal,
		URI:      asset.URI,
		MimeType: asset.MimeType,
		Name:     asset.Name,
		Size:     asset.Size,
	}
}

func Remote(uri string) MediaSelection {
	if uri == "" {
		return MediaSelection{}
	}
	return MediaSelection{Origin: OriginRemote, URI: uri}
}

func (m MediaSelection) IsSet() bool {
	return m.Origin != OriginUnset
}

func (m MediaSelection) Asset() schemas.Asset {
	return schemas.Asset{URI: m.URI, MimeType: m.MimeType, Name: m.Name, Size: m.Size}
}

type Draft struct {
	Title     string
	Prompt    string
	Video     MediaSelection
	Thumbnail MediaSelection
}

// With returns a copy of d with one field replaced.
func (d Draft) With(field Field, value interface{}) (Draft, error) {
	switch field {
	case FieldTitle, FieldPrompt:
		text, ok := value.(string)
		if !ok {
			return d, fmt.Errorf("field %s takes a string, got %T", field, value)
		}
		if field == FieldTitle {
			d.Title = text
		} else {
			d.Prompt = text
		}
	case FieldVideo, FieldThumbnail:
		var media MediaSelection
		switch v := value.(type) {
		case MediaSelection:
			media = v
		case schemas.Asset:
			media = Local(v)
		case nil:
		default:
			return d, fmt.Errorf("field %s takes a media selection, got %T", field, value)
		}
		if field == FieldVideo {
			d.Video = media
		} else {
			d.Thumbnail = media
		}
	default:
		return d, fmt.Errorf("unknown field %q", field)
	}
	return d, nil
}

func (d Draft) Media(field Field) MediaSelection {
	if field == FieldVideo {
		return d.Video
	}
	return d.Thumbnail
}

// FromPost wraps the bare media URIs of post into remote selections.
func FromPost(post *schemas.Post) Draft {
	return Draft{
		Title:     post.Title,
		Prompt:    post.Prompt,
		Video:     Remote(post.Video),
		Thumbnail: Remote(post.Thumbnail),
	}
}
