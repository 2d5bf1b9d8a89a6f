package screens

import (
	"context"
	"sync"

	"aora/feed"
	"aora/notify"
	"aora/schemas"
)

// Home shows the feed and the latest posts. Both are refetched whenever the screen gets focus.
type Home struct {
	feed      *feed.Feed
	listings  Listings
	navigator Navigator
	notifier  notify.Notifier

	mu     sync.RWMutex
	latest []*schemas.Post
}

func NewHome(posts *feed.Feed, listings Listings, navigator Navigator, notifier notify.Notifier) *Home {
	return &Home{feed: posts, listings: listings, navigator: navigator, notifier: notifier}
}

func (h *Home) Focus(ctx context.Context) error {
	if err := h.feed.Refresh(ctx); err != nil {
		return err
	}
	latest, err := h.listings.ListLatestPosts(ctx)
	if err != nil {
		notify.Error(h.notifier, err.Error())
		return err
	}
	h.mu.Lock()
	h.latest = latest
	h.mu.Unlock()
	return nil
}

func (h *Home) Posts() []*schemas.Post {
	return h.feed.Posts()
}

func (h *Home) Latest() []*schemas.Post {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*schemas.Post(nil), h.latest...)
}

func (h *Home) Delete(ctx context.Context, id schemas.PostId) error {
	return h.feed.Delete(ctx, id)
}

func (h *Home) Edit(id schemas.PostId) {
	h.navigator.Push(RouteEdit, map[string]string{ParamPostID: id.String()})
}

// Search runs a title search. The results are not part of the feed.
func (h *Home) Search(ctx context.Context, term string) ([]*schemas.Post, error) {
	posts, err := h.listings.SearchPosts(ctx, term)
	if err != nil {
		notify.Error(h.notifier, err.Error())
		return nil, err
	}
	return posts, nil
}
