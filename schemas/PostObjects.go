package schemas

import (
	"time"
)

type UserId string

type Creator struct {
	ID       UserId `json:"id" bson:"id"`
	Username string `json:"username" bson:"username"`
	Avatar   string `json:"avatar" bson:"avatar"`
}

type Post struct {
	ID              PostId
	Title           string
	Prompt          string
	Video           string
	Thumbnail       string
	VideoFileID     string
	ThumbnailFileID string
	Creator         Creator
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (p Post) Copy() *Post {
	return &p
}

// PostPatch carries the metadata an update may change. Nil fields are left as they are.
type PostPatch struct {
	Title  *string
	Prompt *string
}
