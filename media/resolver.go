package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"aora/form"
	"aora/notify"
	"aora/schemas"
)

type Kind int

const (
	KindVideo Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "video"
}

// Field is the draft field a pick of this kind fills.
func (k Kind) Field() form.Field {
	if k == KindImage {
		return form.FieldThumbnail
	}
	return form.FieldVideo
}

type PickResult struct {
	Canceled bool
	Assets   []schemas.Asset
}

// Picker is the platform media library.
type Picker interface {
	Pick(ctx context.Context, kind Kind) (PickResult, error)
}

type PickerFunc func(ctx context.Context, kind Kind) (PickResult, error)

func (f PickerFunc) Pick(ctx context.Context, kind Kind) (PickResult, error) {
	return f(ctx, kind)
}

var ErrPickInFlight = errors.New("a pick for this field is already open")

// Resolver turns picks into draft media selections. Picks for different fields run independently.
type Resolver struct {
	holder   *form.Holder
	picker   Picker
	notifier notify.Notifier
	log      logrus.FieldLogger

	mu       sync.Mutex
	inFlight map[form.Field]bool
}

func NewResolver(holder *form.Holder, picker Picker, notifier notify.Notifier, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{
		holder:   holder,
		picker:   picker,
		notifier: notifier,
		log:      log,
		inFlight: map[form.Field]bool{},
	}
}

// Pick opens the picker for kind and stores the first picked asset in the draft. A cancelled pick
// leaves the draft as it was and only raises an informational alert.
func (r *Resolver) Pick(ctx context.Context, kind Kind) error {
	field := kind.Field()
	if !r.acquire(field) {
		return ErrPickInFlight
	}
	defer r.release(field)

	result, err := r.picker.Pick(ctx, kind)
	if err != nil {
		r.log.WithError(err).WithField("kind", kind.String()).Warn("media picker failed")
		return fmt.Errorf("pick %s: %w", kind, err)
	}
	if result.Canceled || len(result.Assets) == 0 {
		notify.Info(r.notifier, "Document picked", fmt.Sprintf("No %s was selected.", kind))
		return nil
	}

	asset := result.Assets[0]
	if asset.MimeType == "" {
		asset.MimeType = defaultMimeType(kind)
	}
	return r.holder.SetField(field, form.Local(asset))
}

func (r *Resolver) Picking(field form.Field) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight[field]
}

func (r *Resolver) acquire(field form.Field) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[field] {
		return false
	}
	r.inFlight[field] = true
	return true
}

func (r *Resolver) release(field form.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, field)
}

func defaultMimeType(kind Kind) string {
	if kind == KindImage {
		return "image/jpeg"
	}
	return "video/mp4"
}
