// Package validation checks request bodies against their struct tags and
// cleans free text before it is placed in a model prompt.
//
// Struct rejects out-of-bounds input. Sanitize neutralizes input that was accepted.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/justsurfingit/hireme-ai/internal/apperr"
)

// FieldError is one violated rule, addressed by its JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Errors lists violations in struct field order.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return ve[0].Message
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns Errors on failure.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// BindJSON decodes the request body into dst and validates it. Every failure
// comes back as an apperr validation error carrying the first message.
func (v *Validator) BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation(decodeMessage(err))
	}
	if err := v.Struct(dst); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be %s", typeErr.Field, article(typeErr.Type))
	}
	if errors.Is(err, io.EOF) {
		return "Request body is required"
	}
	return "Invalid JSON body"
}

func article(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32, reflect.Uint, reflect.Uint64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.Pointer:
		return article(t.Elem())
	default:
		return "an object"
	}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
		default:
			return fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
	case "max", "lte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%s must contain at most %s entries", field, fe.Param())
		default:
			return fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url", "http_url":
		return field + " must be a valid URL"
	default:
		return field + " is invalid"
	}
}
