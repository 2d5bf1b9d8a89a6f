package feed

import (
	"aora/schemas"
)

// OnDeleted returns posts without the post with the given id, keeping the order of the rest.
// When no post has that id, posts itself is returned. The input slice is never modified.
func OnDeleted(posts []*schemas.Post, id schemas.PostId) []*schemas.Post {
	index := -1
	for i, post := range posts {
		if post.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return posts
	}

	result := make([]*schemas.Post, 0, len(posts)-1)
	result = append(result, posts[:index]...)
	return append(result, posts[index+1:]...)
}
