// Package validator provides a custom Validator type for accumulating
// field-level validation errors and returning them as a map.
//
// Constraints are declared as `validate` struct tags and applied with Struct,
// which runs them through go-playground/validator and records each failure
// under the field's JSON name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// structValidator is shared by every Validator. playground.Validate caches
// struct metadata and is safe for concurrent use.
var structValidator = newStructValidator()

func newStructValidator() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())

	// Report fields by their JSON name so errors line up with request bodies.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank rejects strings made only of whitespace.
	v.RegisterValidation("notblank", func(fl playground.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
}

// FieldError is a single violation, in the shape sent to clients.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Struct evaluates the `validate` tags on s and records every failing field.
// s must be a struct or a pointer to one.
func (v *Validator) Struct(s any) {
	err := structValidator.Struct(s)
	if err == nil {
		return
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.AddError("_", err.Error())
		return
	}

	for _, fe := range fieldErrs {
		v.AddError(fe.Field(), messageFor(fe))
	}
}

// List returns the recorded errors ordered by field name.
func (v *Validator) List() []FieldError {
	list := make([]FieldError, 0, len(v.Errors))
	for field, message := range v.Errors {
		list = append(list, FieldError{Field: field, Message: message})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Field < list[j].Field })
	return list
}

// messageFor turns a validator tag failure into a client-facing message.
func messageFor(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "must be provided"
	case "max":
		return fmt.Sprintf("must not be more than %s characters long", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	default:
		return "is invalid"
	}
}
