package screens

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aora/backend"
	"aora/feed"
	"aora/form"
	"aora/gateway"
	"aora/logger"
	"aora/media"
	"aora/notify"
	"aora/schemas"
	"aora/submission"
)

var (
	assetA = schemas.Asset{URI: "file:///a.mp4", MimeType: "video/mp4", Name: "a.mp4", Size: 1}
	assetB = schemas.Asset{URI: "file:///b.png", MimeType: "image/png", Name: "b.png", Size: 1}
)

type navigation struct {
	Route   string
	Params  map[string]string
	Replace bool
}

type recordingNavigator struct {
	mu    sync.Mutex
	moves []navigation
}

func (n *recordingNavigator) Push(route string, params map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moves = append(n.moves, navigation{Route: route, Params: params})
}

func (n *recordingNavigator) Replace(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moves = append(n.moves, navigation{Route: route, Replace: true})
}

func (n *recordingNavigator) all() []navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]navigation(nil), n.moves...)
}

// spyPosts counts the calls that reach the gateway.
type spyPosts struct {
	Posts

	mu      sync.Mutex
	creates []form.Draft
	updates int
}

func (sp *spyPosts) CreatePost(ctx context.Context, draft form.Draft) (*schemas.Post, error) {
	sp.mu.Lock()
	sp.creates = append(sp.creates, draft)
	sp.mu.Unlock()
	return sp.Posts.CreatePost(ctx, draft)
}

func (sp *spyPosts) UpdatePost(ctx context.Context, id schemas.PostId, patch schemas.PostPatch) (*schemas.Post, error) {
	sp.mu.Lock()
	sp.updates++
	sp.mu.Unlock()
	return sp.Posts.UpdatePost(ctx, id, patch)
}

type app struct {
	gateway   *gateway.Gateway
	posts     *spyPosts
	navigator *recordingNavigator
	alerts    *notify.Recorder
	picks     map[media.Kind]media.PickResult
}

func newApp(t *testing.T) *app {
	service := backend.NewInMemory("http://aora.test", "secret", time.Hour, logger.Discard())
	assets := gateway.AssetOpenerFunc(func(_ context.Context, asset schemas.Asset) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(asset.Name)), nil
	})
	g := gateway.New(service, gateway.NewSession(), gateway.WithAssets(assets), gateway.WithLogger(logger.Discard()))
	return &app{
		gateway:   g,
		posts:     &spyPosts{Posts: g},
		navigator: &recordingNavigator{},
		alerts:    &notify.Recorder{},
		picks: map[media.Kind]media.PickResult{
			media.KindVideo: {Assets: []schemas.Asset{assetA}},
			media.KindImage: {Assets: []schemas.Asset{assetB}},
		},
	}
}

func (a *app) picker() media.Picker {
	return media.PickerFunc(func(_ context.Context, kind media.Kind) (media.PickResult, error) {
		return a.picks[kind], nil
	})
}

func (a *app) signUp(t *testing.T) {
	screen := NewSignUp(a.gateway, a.navigator, a.alerts, logger.Discard())
	screen.SetUsername("jsmastery")
	screen.SetEmail(gofakeit.Email())
	screen.SetPassword("password123")
	require.NoError(t, screen.Submit(context.Background()))
}

func (a *app) createPost(t *testing.T, title string) *schemas.Post {
	screen := NewCreate(a.posts, a.picker(), a.navigator, a.alerts, logger.Discard())
	require.NoError(t, screen.Form().SetField(form.FieldTitle, title))
	require.NoError(t, screen.Pick(context.Background(), media.KindVideo))
	require.NoError(t, screen.Pick(context.Background(), media.KindImage))
	require.NoError(t, screen.Submit(context.Background()))

	posts, err := a.gateway.ListUserPosts(context.Background(), mustAccount(t, a).ID)
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	return posts[0]
}

func mustAccount(t *testing.T, a *app) *schemas.Account {
	account, ok := a.gateway.Session().Account()
	require.True(t, ok)
	return account
}

func TestSignInScreen(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()
	_, err := a.gateway.SignUp(ctx, "jane@example.com", "password123", "jane")
	require.NoError(t, err)
	require.NoError(t, a.gateway.SignOut(ctx))

	screen := NewSignIn(a.gateway, a.navigator, a.alerts, logger.Discard())
	err = screen.Submit(ctx)
	require.ErrorIs(t, err, schemas.ErrValidation)
	assert.Empty(t, a.navigator.all())

	screen.SetEmail("jane@example.com")
	screen.SetPassword("wrong-password")
	require.ErrorIs(t, screen.Submit(ctx), schemas.ErrAuth)
	last, _ := a.alerts.Last()
	assert.Equal(t, "Error", last.Title)
	assert.False(t, a.gateway.Session().IsLogged())

	screen.SetPassword("password123")
	require.NoError(t, screen.Submit(ctx))
	assert.True(t, a.gateway.Session().IsLogged())
	assert.Equal(t, []navigation{{Route: RouteHome, Replace: true}}, a.navigator.all())
	assert.False(t, screen.Controller().Busy())
}

func TestSignUpScreenValidation(t *testing.T) {
	a := newApp(t)
	screen := NewSignUp(a.gateway, a.navigator, a.alerts, logger.Discard())
	screen.SetEmail("x@example.com")
	screen.SetPassword("password123")

	err := screen.Submit(context.Background())
	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"username"}, validationErr.Fields)
	assert.False(t, a.gateway.Session().IsLogged())
}

func TestCreateScenario(t *testing.T) {
	a := newApp(t)
	a.signUp(t)
	nav := &recordingNavigator{}
	screen := NewCreate(a.posts, a.picker(), nav, a.alerts, logger.Discard())

	var states []submission.State
	screen.Controller().Observe(func(tr submission.Transition) { states = append(states, tr.To) })

	ctx := context.Background()
	require.NoError(t, screen.Form().SetField(form.FieldTitle, "My Clip"))
	require.NoError(t, screen.Pick(ctx, media.KindVideo))
	require.NoError(t, screen.Pick(ctx, media.KindImage))
	require.NoError(t, screen.Submit(ctx))

	require.Len(t, a.posts.creates, 1)
	sent := a.posts.creates[0]
	assert.Equal(t, "My Clip", sent.Title)
	assert.Equal(t, form.Local(assetA), sent.Video)
	assert.Equal(t, form.Local(assetB), sent.Thumbnail)

	assert.Equal(t, []submission.State{submission.StateInFlight, submission.StateSucceeded, submission.StateIdle}, states)
	assert.Equal(t, []navigation{{Route: RouteHome}}, nav.all())
	assert.Equal(t, form.Draft{}, screen.Form().Draft())
	last, _ := a.alerts.Last()
	assert.Equal(t, "Post uploaded successfully", last.Message)
}

func TestCreateWithEmptyTitleNeverCallsGateway(t *testing.T) {
	a := newApp(t)
	a.signUp(t)
	nav := &recordingNavigator{}
	screen := NewCreate(a.posts, a.picker(), nav, a.alerts, logger.Discard())

	var states []submission.State
	screen.Controller().Observe(func(tr submission.Transition) { states = append(states, tr.To) })

	ctx := context.Background()
	require.NoError(t, screen.Pick(ctx, media.KindVideo))
	require.NoError(t, screen.Pick(ctx, media.KindImage))
	err := screen.Submit(ctx)

	require.ErrorIs(t, err, schemas.ErrValidation)
	assert.Empty(t, a.posts.creates)
	assert.Empty(t, states)
	assert.Equal(t, submission.StateIdle, screen.Controller().State())
	assert.Empty(t, nav.all())
	assert.True(t, screen.Form().Draft().Video.IsSet())
}

func TestEditRoundTripKeepsPost(t *testing.T) {
	a := newApp(t)
	a.signUp(t)
	original := a.createPost(t, "Original title")
	ctx := context.Background()

	nav := &recordingNavigator{}
	screen := NewEdit(a.posts, a.picker(), nav, a.alerts, logger.Discard())
	require.NoError(t, screen.Open(ctx, map[string]string{ParamPostID: original.ID.String()}))
	assert.Equal(t, form.FromPost(original), screen.Form().Draft())

	require.NoError(t, screen.Submit(ctx))
	assert.Equal(t, 1, a.posts.updates)

	updated, err := a.gateway.GetPostByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.Title, updated.Title)
	assert.Equal(t, original.Prompt, updated.Prompt)
	assert.Equal(t, original.Video, updated.Video)
	assert.Equal(t, original.Thumbnail, updated.Thumbnail)
	assert.Equal(t, []navigation{{Route: RouteHome}}, nav.all())
	last, _ := a.alerts.Last()
	assert.Equal(t, "Post updated successfully", last.Message)
}

func TestEditEmptyTitle(t *testing.T) {
	a := newApp(t)
	a.signUp(t)
	original := a.createPost(t, "Original title")
	ctx := context.Background()

	screen := NewEdit(a.posts, a.picker(), &recordingNavigator{}, a.alerts, logger.Discard())
	require.NoError(t, screen.Open(ctx, map[string]string{ParamPostID: original.ID.String()}))
	require.NoError(t, screen.Form().SetField(form.FieldTitle, ""))

	require.ErrorIs(t, screen.Submit(ctx), schemas.ErrValidation)
	assert.Equal(t, 0, a.posts.updates)
	assert.Equal(t, submission.StateIdle, screen.Controller().State())
}

func TestEditLoadFailure(t *testing.T) {
	a := newApp(t)
	a.signUp(t)

	screen := NewEdit(a.posts, a.picker(), &recordingNavigator{}, a.alerts, logger.Discard())
	err := screen.Open(context.Background(), map[string]string{ParamPostID: "does-not-exist"})
	require.ErrorIs(t, err, schemas.ErrNotFound)
	last, _ := a.alerts.Last()
	assert.Equal(t, notify.Alert{Level: notify.LevelError, Title: "Error", Message: "Failed to load post data."}, last)
	assert.Equal(t, form.Draft{}, screen.Form().Draft())
}

func TestHomeDeleteAndEditNavigation(t *testing.T) {
	a := newApp(t)
	a.signUp(t)
	p1 := a.createPost(t, "first")
	p2 := a.createPost(t, "second")
	p3 := a.createPost(t, "third")
	ctx := context.Background()

	nav := &recordingNavigator{}
	home := NewHome(feed.New(a.gateway, a.alerts, logger.Discard()), a.gateway, nav, a.alerts)
	require.NoError(t, home.Focus(ctx))
	require.Equal(t, []schemas.PostId{p3.ID, p2.ID, p1.ID}, postIDs(home.Posts()))
	assert.Len(t, home.Latest(), 3)

	require.NoError(t, home.Delete(ctx, p3.ID))
	assert.Equal(t, []schemas.PostId{p2.ID, p1.ID}, postIDs(home.Posts()))
	require.ErrorIs(t, home.Delete(ctx, p3.ID), schemas.ErrNotFound)

	home.Edit(p2.ID)
	assert.Equal(t, []navigation{{Route: RouteEdit, Params: map[string]string{ParamPostID: p2.ID.String()}}}, nav.all())

	found, err := home.Search(ctx, "sec")
	require.NoError(t, err)
	assert.Equal(t, []schemas.PostId{p2.ID}, postIDs(found))
}

func TestProfileLogout(t *testing.T) {
	a := newApp(t)
	a.signUp(t)
	a.createPost(t, "mine")
	ctx := context.Background()

	nav := &recordingNavigator{}
	profile := NewProfile(a.gateway.Session(), a.gateway, a.gateway, nav, a.alerts)
	posts, err := profile.Posts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	require.NoError(t, profile.Logout(ctx))
	assert.False(t, a.gateway.Session().IsLogged())
	assert.Equal(t, []navigation{{Route: RouteSignIn, Replace: true}}, nav.all())

	_, err = profile.Posts(ctx)
	require.ErrorIs(t, err, schemas.ErrNotAuthenticated)
}

func postIDs(posts []*schemas.Post) []schemas.PostId {
	result := make([]schemas.PostId, len(posts))
	for i, post := range posts {
		result[i] = post.ID
	}
	return result
}
