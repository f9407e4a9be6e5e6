package api

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/todo-api/internal/api/shared"
)

// validationErrorsFrom converts validator.ValidationErrors into the
// field/message list of the response envelope, with messages phrased the
// way the clients already display them.
func validationErrorsFrom(err error) []shared.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []shared.ValidationError{{Field: "", Message: "Validation failed"}}
	}

	out := make([]shared.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, shared.ValidationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be less than " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
