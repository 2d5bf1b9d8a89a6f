package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"aora/form"
	"aora/plain"
	"aora/schemas"
	"aora/storage"
)

const (
	DefaultPostsCollection = "videos"
	DefaultMediaBucket     = "media"
	latestPostsLimit       = 7
)

// Gateway is the only way the client core reaches the backend. Every error it returns belongs to
// the client taxonomy in schemas.
type Gateway struct {
	backend storage.Backend
	session *Session
	posts   string
	bucket  string
	assets  AssetOpener
	log     logrus.FieldLogger
}

type Option func(*Gateway)

func WithCollections(posts, bucket string) Option {
	return func(g *Gateway) {
		g.posts = posts
		g.bucket = bucket
	}
}

func WithAssets(assets AssetOpener) Option {
	return func(g *Gateway) { g.assets = assets }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Gateway) { g.log = log }
}

func New(backend storage.Backend, session *Session, opts ...Option) *Gateway {
	g := &Gateway{
		backend: backend,
		session: session,
		posts:   DefaultPostsCollection,
		bucket:  DefaultMediaBucket,
		assets:  LocalFiles{},
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Session() *Session {
	return g.session
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*schemas.Account, error) {
	session, err := g.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, g.fail("sign in", err)
	}
	account, err := g.backend.GetCurrentUser(storage.WithToken(ctx, session.Token))
	if err != nil {
		if signOutErr := g.backend.SignOut(storage.WithToken(context.WithoutCancel(ctx), session.Token)); signOutErr != nil {
			g.log.WithError(signOutErr).Warn("failed to close the session")
		}
		return nil, g.fail("current user", err)
	}
	g.session.Populate(account, session.Token)
	return account, nil
}

// SignUp creates the account and signs it in.
func (g *Gateway) SignUp(ctx context.Context, email, password, username string) (*schemas.Account, error) {
	if _, err := g.backend.SignUp(ctx, email, password, username); err != nil {
		return nil, g.fail("sign up", err)
	}
	return g.SignIn(ctx, email, password)
}

// SignOut always clears the local session, even when the backend call fails.
func (g *Gateway) SignOut(ctx context.Context) error {
	defer g.session.Clear()
	if !g.session.IsLogged() {
		return nil
	}
	if err := g.backend.SignOut(g.session.Context(ctx)); err != nil {
		return g.fail("sign out", err)
	}
	return nil
}

func (g *Gateway) GetCurrentUser(ctx context.Context) (*schemas.Account, error) {
	if g.session.Token() == "" {
		return nil, newError(schemas.ErrNotAuthenticated, "No active session.", storage.ErrUnauthenticated)
	}
	account, err := g.backend.GetCurrentUser(g.session.Context(ctx))
	if err != nil {
		return nil, g.fail("current user", err)
	}
	g.session.refresh(account)
	return account, nil
}

func (g *Gateway) GetPostByID(ctx context.Context, id schemas.PostId) (*schemas.Post, error) {
	doc, err := g.backend.GetDocument(g.session.Context(ctx), g.posts, id.String())
	if err != nil {
		return nil, g.fail("get post", err)
	}
	return postFromDocument(doc), nil
}

type uploaded struct {
	fileID string
	url    string
}

// CreatePost uploads both media, then writes the post. No post is written when an upload fails,
// and files uploaded for a post that was not written are removed best-effort.
func (g *Gateway) CreatePost(ctx context.Context, draft form.Draft) (*schemas.Post, error) {
	if err := form.Validate(draft, form.FlowCreate); err != nil {
		return nil, err
	}
	account, ok := g.session.Account()
	if !ok {
		return nil, newError(schemas.ErrNotAuthenticated, "No active session.", storage.ErrUnauthenticated)
	}
	ctx = g.session.Context(ctx)

	var (
		mu    sync.Mutex
		files []string
		video uploaded
		thumb uploaded
	)
	upload := func(ctx context.Context, media form.MediaSelection, into *uploaded) error {
		result, err := g.upload(ctx, media.Asset())
		if result.fileID != "" {
			mu.Lock()
			files = append(files, result.fileID)
			mu.Unlock()
		}
		*into = result
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return upload(groupCtx, draft.Thumbnail, &thumb) })
	group.Go(func() error { return upload(groupCtx, draft.Video, &video) })
	if err := group.Wait(); err != nil {
		g.removeFiles(ctx, files)
		return nil, g.fail("upload media", uploadFailure(err))
	}

	post := &schemas.Post{
		Title:           strings.TrimSpace(draft.Title),
		Prompt:          draft.Prompt,
		Video:           video.url,
		Thumbnail:       thumb.url,
		VideoFileID:     video.fileID,
		ThumbnailFileID: thumb.fileID,
		Creator:         account.AsCreator(),
	}
	doc, err := g.backend.CreateDocument(ctx, g.posts, postFields(post))
	if err != nil {
		g.removeFiles(ctx, files)
		return nil, g.fail("create post", err)
	}
	return postFromDocument(doc), nil
}

func (g *Gateway) upload(ctx context.Context, asset schemas.Asset) (uploaded, error) {
	content, err := g.assets.Open(ctx, asset)
	if err != nil {
		return uploaded{}, newError(schemas.ErrStorage, "Media upload failed.", errors.Join(storage.ErrUpload, err))
	}
	defer content.Close()

	fileID, err := g.backend.UploadFile(ctx, g.bucket, schemas.FileUpload{
		Name:     asset.Name,
		MimeType: asset.MimeType,
		Size:     asset.Size,
		Content:  content,
	})
	if err != nil {
		return uploaded{}, err
	}
	url, err := g.backend.GetFileURL(ctx, g.bucket, fileID)
	if err != nil {
		return uploaded{fileID: fileID}, err
	}
	return uploaded{fileID: fileID, url: url}, nil
}

func (g *Gateway) removeFiles(ctx context.Context, fileIDs []string) {
	ctx = context.WithoutCancel(ctx)
	for _, fileID := range fileIDs {
		if err := g.backend.DeleteFile(ctx, g.bucket, fileID); err != nil {
			g.log.WithError(err).WithField("file", fileID).Warn("orphaned media file left behind")
		}
	}
}

// UpdatePost changes post metadata only. Media stays as it is.
func (g *Gateway) UpdatePost(ctx context.Context, id schemas.PostId, patch schemas.PostPatch) (*schemas.Post, error) {
	fields := schemas.Fields{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, schemas.NewValidationError("title")
		}
		fields[fieldTitle] = title
	}
	if patch.Prompt != nil {
		fields[fieldPrompt] = *patch.Prompt
	}

	doc, err := g.backend.UpdateDocument(g.session.Context(ctx), g.posts, id.String(), fields)
	if err != nil {
		return nil, g.fail("update post", err)
	}
	return postFromDocument(doc), nil
}

// DeletePost removes the post, then its media best-effort. A second delete of the same id fails
// with a not-found error.
func (g *Gateway) DeletePost(ctx context.Context, id schemas.PostId) error {
	ctx = g.session.Context(ctx)
	doc, err := g.backend.GetDocument(ctx, g.posts, id.String())
	if err != nil {
		return g.fail("delete post", err)
	}
	if err := g.backend.DeleteDocument(ctx, g.posts, id.String()); err != nil {
		return g.fail("delete post", err)
	}

	post := postFromDocument(doc)
	var files []string
	for _, fileID := range []string{post.VideoFileID, post.ThumbnailFileID} {
		if fileID != "" {
			files = append(files, fileID)
		}
	}
	g.removeFiles(ctx, files)
	return nil
}

// ListPosts returns one page of the feed, most recent first.
func (g *Gateway) ListPosts(ctx context.Context, cursor string) ([]*schemas.Post, string, error) {
	return g.list(ctx, plain.ListQuery{LastSeenID: cursor})
}

func (g *Gateway) ListLatestPosts(ctx context.Context) ([]*schemas.Post, error) {
	posts, _, err := g.list(ctx, plain.ListQuery{Size: latestPostsLimit})
	return posts, err
}

func (g *Gateway) SearchPosts(ctx context.Context, term string) ([]*schemas.Post, error) {
	if strings.TrimSpace(term) == "" {
		return nil, schemas.NewValidationError("query")
	}
	posts, _, err := g.list(ctx, plain.ListQuery{SearchField: fieldTitle, SearchTerm: strings.TrimSpace(term), Size: plain.MaxPageSize})
	return posts, err
}

func (g *Gateway) ListUserPosts(ctx context.Context, creator schemas.UserId) ([]*schemas.Post, error) {
	query := plain.ListQuery{Size: plain.MaxPageSize}.WithEqual(fieldCreatorID, string(creator))
	posts, _, err := g.list(ctx, query)
	return posts, err
}

func (g *Gateway) list(ctx context.Context, query plain.ListQuery) ([]*schemas.Post, string, error) {
	docs, next, err := g.backend.ListDocuments(g.session.Context(ctx), g.posts, query)
	if err != nil {
		return nil, "", g.fail("list posts", err)
	}
	return postsFromDocuments(docs), next, nil
}

// fail translates err and drops the session when the backend no longer accepts it.
func (g *Gateway) fail(operation string, err error) error {
	translated := translate(err)
	if errors.Is(translated, schemas.ErrNotAuthenticated) {
		g.session.Clear()
	}
	g.log.WithError(err).WithFields(logrus.Fields{
		"operation": operation,
		"kind":      schemas.KindOf(translated),
	}).Debug("backend call failed")
	return translated
}
