package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aora/schemas"
)

var (
	clipAsset  = schemas.Asset{URI: "file:///clip.mp4", MimeType: "video/mp4", Name: "clip.mp4", Size: 2048}
	thumbAsset = schemas.Asset{URI: "file:///thumb.png", MimeType: "image/png", Name: "thumb.png", Size: 512}
)

func TestSetFieldKeepsOtherFields(t *testing.T) {
	h := NewHolder()
	require.NoError(t, h.SetField(FieldTitle, "My Clip"))
	require.NoError(t, h.SetField(FieldVideo, clipAsset))
	require.NoError(t, h.SetField(FieldPrompt, "a prompt"))
	require.NoError(t, h.SetField(FieldThumbnail, Local(thumbAsset)))

	draft := h.Draft()
	assert.Equal(t, "My Clip", draft.Title)
	assert.Equal(t, "a prompt", draft.Prompt)
	assert.Equal(t, Local(clipAsset), draft.Video)
	assert.Equal(t, Local(thumbAsset), draft.Thumbnail)

	require.NoError(t, h.SetField(FieldTitle, "Renamed"))
	draft = h.Draft()
	assert.Equal(t, "Renamed", draft.Title)
	assert.Equal(t, Local(clipAsset), draft.Video)
}

func TestSetFieldRejectsWrongValues(t *testing.T) {
	h := NewHolder()
	require.NoError(t, h.SetField(FieldTitle, "kept"))

	require.Error(t, h.SetField(FieldTitle, 42))
	require.Error(t, h.SetField(FieldVideo, "file:///clip.mp4"))
	require.Error(t, h.SetField(Field("duration"), "10s"))
	assert.Equal(t, Draft{Title: "kept"}, h.Draft())

	require.NoError(t, h.SetField(FieldVideo, clipAsset))
	require.NoError(t, h.SetField(FieldVideo, nil))
	assert.False(t, h.Draft().Video.IsSet())
}

func TestHydrateWrapsRemoteMedia(t *testing.T) {
	post := &schemas.Post{
		ID:        "p1",
		Title:     "Existing",
		Prompt:    "prompt",
		Video:     "https://cdn.example/video.mp4",
		Thumbnail: "https://cdn.example/thumb.png",
		CreatedAt: time.Now(),
	}
	h := NewHolder()
	h.Hydrate(post)

	draft := h.Draft()
	assert.Equal(t, "Existing", draft.Title)
	assert.Equal(t, "prompt", draft.Prompt)
	assert.Equal(t, MediaSelection{Origin: OriginRemote, URI: post.Video}, draft.Video)
	assert.Equal(t, MediaSelection{Origin: OriginRemote, URI: post.Thumbnail}, draft.Thumbnail)
	require.NoError(t, Validate(draft, FlowEdit))

	h.Reset()
	assert.Equal(t, Draft{}, h.Draft())
}

func TestValidateCreate(t *testing.T) {
	full := Draft{Title: "My Clip", Video: Local(clipAsset), Thumbnail: Local(thumbAsset)}
	require.NoError(t, Validate(full, FlowCreate))

	err := Validate(Draft{}, FlowCreate)
	require.ErrorIs(t, err, schemas.ErrValidation)
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"title", "video", "thumbnail"}, validationErr.Fields)

	blankTitle := full
	blankTitle.Title = "   "
	require.ErrorAs(t, Validate(blankTitle, FlowCreate), &validationErr)
	assert.Equal(t, []string{"title"}, validationErr.Fields)

	remoteVideo := full
	remoteVideo.Video = Remote("https://cdn.example/video.mp4")
	require.ErrorAs(t, Validate(remoteVideo, FlowCreate), &validationErr)
	assert.Equal(t, []string{"video"}, validationErr.Fields)
}

func TestValidateEditAndMetadata(t *testing.T) {
	noThumb := Draft{Title: "t", Video: Remote("v")}
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, Validate(noThumb, FlowEdit), &validationErr)
	assert.Equal(t, []string{"thumbnail"}, validationErr.Fields)

	require.NoError(t, Validate(Draft{Title: "only title"}, FlowMetadata))
	require.ErrorAs(t, Validate(Draft{Prompt: "p"}, FlowMetadata), &validationErr)
	assert.Equal(t, "Please provide all fields: title", validationErr.Error())
}
