package screens

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"aora/form"
	"aora/media"
	"aora/notify"
	"aora/schemas"
	"aora/submission"
)

// Edit changes the metadata of an existing post. Picking new media only changes the preview;
// the update sends title and prompt.
type Edit struct {
	posts      Posts
	navigator  Navigator
	notifier   notify.Notifier
	log        logrus.FieldLogger
	holder     *form.Holder
	resolver   *media.Resolver
	controller *submission.Controller

	mu     sync.RWMutex
	postID schemas.PostId
}

func NewEdit(posts Posts, picker media.Picker, navigator Navigator, notifier notify.Notifier, log logrus.FieldLogger) *Edit {
	if log == nil {
		log = logrus.StandardLogger()
	}
	holder := form.NewHolder()
	return &Edit{
		posts:      posts,
		navigator:  navigator,
		notifier:   notifier,
		log:        log,
		holder:     holder,
		resolver:   media.NewResolver(holder, picker, notifier, log),
		controller: submission.NewController(notifier, log),
	}
}

// Open loads the post and hydrates the draft from it.
func (e *Edit) Open(ctx context.Context, params map[string]string) error {
	id := schemas.PostId(params[ParamPostID])
	if id == "" {
		return nil
	}
	e.mu.Lock()
	e.postID = id
	e.mu.Unlock()

	post, err := e.posts.GetPostByID(ctx, id)
	if err != nil {
		e.log.WithError(err).WithField("post", id).Warn("failed to fetch post")
		notify.Error(e.notifier, "Failed to load post data.")
		return err
	}
	e.holder.Hydrate(post)
	return nil
}

func (e *Edit) Form() *form.Holder {
	return e.holder
}

func (e *Edit) Controller() *submission.Controller {
	return e.controller
}

func (e *Edit) Pick(ctx context.Context, kind media.Kind) error {
	return e.resolver.Pick(ctx, kind)
}

// Submit sends the metadata update. The feed is not patched; it catches up on its next refresh.
func (e *Edit) Submit(ctx context.Context) error {
	e.mu.RLock()
	id := e.postID
	e.mu.RUnlock()
	draft := e.holder.Draft()

	return e.controller.Submit(ctx, submission.Request{
		Validate: func() error { return form.Validate(draft, form.FlowEdit) },
		Action: func(ctx context.Context) error {
			_, err := e.posts.UpdatePost(ctx, id, schemas.PostPatch{Title: &draft.Title, Prompt: &draft.Prompt})
			return err
		},
		OnSuccess:      func() { e.navigator.Push(RouteHome, nil) },
		SuccessMessage: "Post updated successfully",
	})
}
