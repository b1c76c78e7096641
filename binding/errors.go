package binding

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/drblury/weavekit/responder"
)

var (
	// ErrInvalidInput matches every *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyBody is reported when a JSON body is required but absent.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrNotObject is reported when a JSON body is not an object.
	ErrNotObject = errors.New("request body must be a JSON object")
)

const reasonRequired = "field required"

// FieldError describes why a single property was rejected.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError reports input that could not be bound to its model.
type ValidationError struct {
	Location string
	Model    string
	Fields   []FieldError
	Err      error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s input for %s", e.Location, e.Model)
	for i, f := range e.Fields {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		if f.Field != "" {
			b.WriteString(f.Field)
			b.WriteString(": ")
		}
		b.WriteString(f.Reason)
	}
	if len(e.Fields) == 0 && e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidInput) hold for any validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// HTTPStatus implements responder.StatusCoder.
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// InvalidParams implements responder.InvalidParamsProvider.
func (e *ValidationError) InvalidParams() []responder.InvalidParam {
	params := make([]responder.InvalidParam, 0, len(e.Fields))
	for _, f := range e.Fields {
		params = append(params, responder.InvalidParam{Name: f.Field, In: e.Location, Reason: f.Reason})
	}
	return params
}
