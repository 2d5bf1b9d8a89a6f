package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"aora/notify"
	"aora/schemas"
	"aora/submission"
)

const maxRefreshPages = 20

type Source interface {
	ListPosts(ctx context.Context, cursor string) ([]*schemas.Post, string, error)
	DeletePost(ctx context.Context, id schemas.PostId) error
}

// Feed is the post list behind the home screen. It is replaced wholesale on Refresh and only
// loses elements between refreshes; edits elsewhere show up on the next Refresh.
type Feed struct {
	source   Source
	notifier notify.Notifier
	log      logrus.FieldLogger

	mu    sync.RWMutex
	posts []*schemas.Post
	cards map[schemas.PostId]*submission.Controller
}

func New(source Source, notifier notify.Notifier, log logrus.FieldLogger) *Feed {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Feed{
		source:   source,
		notifier: notifier,
		log:      log,
		cards:    map[schemas.PostId]*submission.Controller{},
	}
}

func (f *Feed) Posts() []*schemas.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]*schemas.Post(nil), f.posts...)
}

// Refresh refetches the whole feed, most recent first. On failure the current posts are kept.
func (f *Feed) Refresh(ctx context.Context) error {
	var posts []*schemas.Post
	cursor := ""
	for page := 0; page < maxRefreshPages; page++ {
		batch, next, err := f.source.ListPosts(ctx, cursor)
		if err != nil {
			notify.Error(f.notifier, err.Error())
			return err
		}
		posts = append(posts, batch...)
		if next == "" {
			break
		}
		cursor = next
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = posts
	for id, card := range f.cards {
		if !card.Busy() {
			delete(f.cards, id)
		}
	}
	return nil
}

// Delete removes the post remotely and then from the feed. Each card allows one delete at a time.
func (f *Feed) Delete(ctx context.Context, id schemas.PostId) error {
	card := f.card(id)
	err := card.Submit(ctx, submission.Request{
		Action: func(ctx context.Context) error {
			return f.source.DeletePost(ctx, id)
		},
		OnSuccess: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.posts = OnDeleted(f.posts, id)
		},
		SuccessMessage: "Post deleted successfully",
	})
	if !errors.Is(err, submission.ErrBusy) {
		f.forget(id, card)
	}
	return err
}

// Deleting reports whether a delete of id is in flight, for disabling the card's menu.
func (f *Feed) Deleting(id schemas.PostId) bool {
	f.mu.RLock()
	card, ok := f.cards[id]
	f.mu.RUnlock()
	return ok && card.Busy()
}

func (f *Feed) card(id schemas.PostId) *submission.Controller {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[id]
	if !ok {
		card = submission.NewController(f.notifier, f.log.WithField("post", id))
		f.cards[id] = card
	}
	return card
}

func (f *Feed) forget(id schemas.PostId, card *submission.Controller) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cards[id] == card && !card.Busy() {
		delete(f.cards, id)
	}
}
