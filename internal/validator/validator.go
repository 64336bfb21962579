package validator

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"
)

var structValidator = newStructValidator()

func newStructValidator() *playground.Validate {
	validate := playground.New(playground.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

type Validator struct {
	Errors map[string]string
}

func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// Struct runs the `validate` struct tags of s and records every failing field
// under the name given by its json tag.
func (v *Validator) Struct(s any) {
	err := structValidator.Struct(s)
	if err == nil {
		return
	}

	var fieldErrors playground.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		v.AddError("body", err.Error())
		return
	}

	for _, fe := range fieldErrors {
		v.AddError(fieldKey(fe), messageFor(fe))
	}
}

func MaxChars(value string, n int) bool {
	return utf8.RuneCountInString(value) <= n
}

func fieldKey(fe playground.FieldError) string {
	if fe.Field() == "" {
		return "body"
	}
	return fe.Field()
}

func messageFor(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be provided"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must not be more than " + fe.Param() + " characters long"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}
