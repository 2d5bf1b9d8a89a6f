package gateway

import (
	"aora/schemas"
)

const (
	fieldTitle           = "title"
	fieldPrompt          = "prompt"
	fieldVideo           = "video"
	fieldThumbnail       = "thumbnail"
	fieldVideoFileID     = "videoFileId"
	fieldThumbnailFileID = "thumbnailFileId"
	fieldCreatorID       = "creatorId"
	fieldCreatorUsername = "creatorUsername"
	fieldCreatorAvatar   = "creatorAvatar"
)

func postFields(post *schemas.Post) schemas.Fields {
	return schemas.Fields{
		fieldTitle:           post.Title,
		fieldPrompt:          post.Prompt,
		fieldVideo:           post.Video,
		fieldThumbnail:       post.Thumbnail,
		fieldVideoFileID:     post.VideoFileID,
		fieldThumbnailFileID: post.ThumbnailFileID,
		fieldCreatorID:       string(post.Creator.ID),
		fieldCreatorUsername: post.Creator.Username,
		fieldCreatorAvatar:   post.Creator.Avatar,
	}
}

func postFromDocument(doc *schemas.Document) *schemas.Post {
	return &schemas.Post{
		ID:              schemas.PostId(doc.ID),
		Title:           doc.Fields.String(fieldTitle),
		Prompt:          doc.Fields.String(fieldPrompt),
		Video:           doc.Fields.String(fieldVideo),
		Thumbnail:       doc.Fields.String(fieldThumbnail),
		VideoFileID:     doc.Fields.String(fieldVideoFileID),
		ThumbnailFileID: doc.Fields.String(fieldThumbnailFileID),
		Creator: schemas.Creator{
			ID:       schemas.UserId(doc.Fields.String(fieldCreatorID)),
			Username: doc.Fields.String(fieldCreatorUsername),
			Avatar:   doc.Fields.String(fieldCreatorAvatar),
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func postsFromDocuments(docs []*schemas.Document) []*schemas.Post {
	posts := make([]*schemas.Post, len(docs))
	for i, doc := range docs {
		posts[i] = postFromDocument(doc)
	}
	return posts
}
