package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s and reports the first failing field as a validation error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return apperrors.FieldInvalid(fieldPath(fe.Namespace()), messageForTag(fe.Tag(), fe.Param()))
	}
	return apperrors.ErrBadRequest.WithCause(err)
}

// Var validates a single value against tag.
func Var(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return apperrors.FieldInvalid(field, messageForTag(ve[0].Tag(), ve[0].Param()))
	}
	return apperrors.ErrBadRequest.WithCause(err)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be " + param + " or more"
	case "oneof":
		return "must be one of " + param
	case "json":
		return "must be valid JSON"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "url":
		return "must be a valid URL"
	default:
		return "is not valid (" + tag + ")"
	}
}
