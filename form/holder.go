package form

import (
	"sync"

	"aora/schemas"
)

// Holder keeps the draft of one screen. It never talks to the backend.
type Holder struct {
	mu    sync.RWMutex
	draft Draft
}

func NewHolder() *Holder {
	return &Holder{}
}

// SetField replaces one field and keeps the others.
func (h *Holder) SetField(field Field, value interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	updated, err := h.draft.With(field, value)
	if err != nil {
		return err
	}
	h.draft = updated
	return nil
}

func (h *Holder) Hydrate(post *schemas.Post) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draft = FromPost(post)
}

func (h *Holder) Draft() Draft {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.draft
}

func (h *Holder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draft = Draft{}
}
