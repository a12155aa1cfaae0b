package v1

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMissingField is returned when a field the conversion cannot default is absent
var ErrMissingField = errors.New("missing required field")

// MissingFieldError names the absent field using its JSON path
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

// Unwrap allows errors.Is(err, ErrMissingField)
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that every required field of the task definition is present.
// The first violation is returned as a *MissingFieldError.
func (t *TaskDefinition) Validate() error {
	if t == nil {
		return &MissingFieldError{Field: "taskDefinition"}
	}
	return toMissingField(validate.Struct(t))
}

// Validate checks the service definition. All of its fields are optional.
func (s *ServiceDefinition) Validate() error {
	if s == nil {
		return &MissingFieldError{Field: "service"}
	}
	return toMissingField(validate.Struct(s))
}

func toMissingField(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate definition: %w", err)
	}
	return &MissingFieldError{Field: fieldPath(verrs[0].Namespace())}
}

// fieldPath strips the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
