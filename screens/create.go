package screens

import (
	"context"

	"github.com/sirupsen/logrus"

	"aora/form"
	"aora/media"
	"aora/notify"
	"aora/submission"
)

// Create is the upload screen: a draft, two pickers and a publish button.
type Create struct {
	posts      Posts
	navigator  Navigator
	holder     *form.Holder
	resolver   *media.Resolver
	controller *submission.Controller
}

func NewCreate(posts Posts, picker media.Picker, navigator Navigator, notifier notify.Notifier, log logrus.FieldLogger) *Create {
	holder := form.NewHolder()
	return &Create{
		posts:      posts,
		navigator:  navigator,
		holder:     holder,
		resolver:   media.NewResolver(holder, picker, notifier, log),
		controller: submission.NewController(notifier, log),
	}
}

func (c *Create) Form() *form.Holder {
	return c.holder
}

func (c *Create) Controller() *submission.Controller {
	return c.controller
}

func (c *Create) Pick(ctx context.Context, kind media.Kind) error {
	return c.resolver.Pick(ctx, kind)
}

// Submit publishes the draft. The draft is discarded only after a successful upload.
func (c *Create) Submit(ctx context.Context) error {
	draft := c.holder.Draft()
	return c.controller.Submit(ctx, submission.Request{
		Validate: func() error { return form.Validate(draft, form.FlowCreate) },
		Action: func(ctx context.Context) error {
			_, err := c.posts.CreatePost(ctx, draft)
			return err
		},
		OnSuccess: func() {
			c.holder.Reset()
			c.navigator.Push(RouteHome, nil)
		},
		SuccessMessage: "Post uploaded successfully",
	})
}
