package httpserver

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/pscheid92/postpulse/internal/platform/errors"
)

// requestValidator adapts go-playground/validator to echo.Validator, reporting JSON field names.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (v *requestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.InvalidInput("invalid request", err)
	}

	out := apperrors.InvalidInput("invalid request", err)
	for _, fe := range fieldErrs {
		out.WithContext(fieldPath(fe), describe(fe))
	}
	return out
}

// Var validates a single value, such as a path parameter.
func (v *requestValidator) Var(name string, value any, tag string) error {
	if err := v.validate.Var(value, tag); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("invalid %s", name), err).WithContext("field", name)
	}
	return nil
}

// fieldPath drops the root struct name and embedded request structs:
// "evaluateRequest.recommendRequest.sentiment.polarity" -> "sentiment.polarity".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	out := parts[:0]
	for i, p := range parts {
		if i == 0 || p == "recommendRequest" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "max":
		return "must have at most " + fe.Param() + " items or characters"
	case "min":
		return "must have at least " + fe.Param() + " items or characters"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
