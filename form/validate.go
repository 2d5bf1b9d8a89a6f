package form

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"aora/schemas"
)

type Flow int

const (
	// FlowCreate needs a title and two freshly picked assets.
	FlowCreate Flow = iota
	// FlowEdit needs a title and both media already present.
	FlowEdit
	FlowMetadata
)

type createRules struct {
	Title     string `validate:"required"`
	Video     string `validate:"required,eq=local"`
	Thumbnail string `validate:"required,eq=local"`
}

type editRules struct {
	Title     string `validate:"required"`
	Video     string `validate:"required"`
	Thumbnail string `validate:"required"`
}

type metadataRules struct {
	Title string `validate:"required"`
}

var validate = validator.New()

// Validate checks that draft has what flow needs. It returns a *schemas.ValidationError naming the
// failed fields in draft order.
func Validate(draft Draft, flow Flow) error {
	title := strings.TrimSpace(draft.Title)

	var rules interface{}
	switch flow {
	case FlowCreate:
		rules = createRules{Title: title, Video: draft.Video.Origin.String(), Thumbnail: draft.Thumbnail.Origin.String()}
	case FlowEdit:
		rules = editRules{Title: title, Video: draft.Video.Origin.String(), Thumbnail: draft.Thumbnail.Origin.String()}
	default:
		rules = metadataRules{Title: title}
	}

	err := validate.Struct(rules)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return schemas.NewValidationError()
	}
	fields := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return schemas.NewValidationError(fields...)
}
