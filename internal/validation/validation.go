// Package validation wraps go-playground/validator and turns its errors
// into field-level messages that can be returned to API clients as is.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

type FieldErrors []FieldError

func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(f))
	for _, e := range f {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

// Map indexes the messages by field name.
func (f FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, e := range f {
		m[e.Field] = e.Message
	}
	return m
}

// Validator validates request structs using `validate` tags.  Field names in
// messages are taken from the json tag so they match the request payload.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// phone: digits with an optional leading +, 7 to 15 digits.
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s.  It returns FieldErrors for tag failures and nil when
// s is valid.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return translate(verrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) FieldErrors {
	out := make(FieldErrors, 0, len(errs))
	for _, err := range errs {
		msg := err.Error()
		switch err.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", err.Field())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			msg = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "lte":
			msg = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "email":
			msg = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "phone":
			msg = fmt.Sprintf("%s must be a valid phone number", err.Field())
		case "len":
			msg = fmt.Sprintf("%s must have length %s", err.Field(), err.Param())
		case "numeric":
			msg = fmt.Sprintf("%s must contain only digits", err.Field())
		case "gtfield":
			msg = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}
		out = append(out, FieldError{Field: err.Field(), Message: msg})
	}
	return out
}
