// Package validator wraps go-playground/validator with the custom rules the
// API needs.
package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// slugPattern matches presentation slugs: lowercase alphanumerics separated
// by single hyphens, as used in topic and leaderboard keys.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validator provides methods for struct validation using the underlying
// validator library.
type Validator struct {
	cli *validator.Validate
}

// ValidationError represents an error encountered during validation of a
// struct field.
type ValidationError struct {
	Field   string
	Message interface{}
}

func (v *Validator) formatError(err error) []ValidationError {
	errors := make([]ValidationError, 0)
	for _, err := range err.(validator.ValidationErrors) {
		msg := err.Error()
		errors = append(errors, ValidationError{
			Field:   err.StructField(),
			Message: msg,
		})
	}

	return errors
}

// ValidateStruct validates the provided struct using the underlying
// validator and returns a slice of validation errors.
func (v *Validator) ValidateStruct(s interface{}) []ValidationError {
	err := v.cli.Struct(s)
	if err != nil {
		return v.formatError(err)
	}
	return nil
}

// Validate checks the provided value against the specified validation tags
// and returns a slice of validation errors.
func (v *Validator) Validate(value interface{}, tag string) []ValidationError {
	err := v.cli.Var(value, tag)
	if err != nil {
		return v.formatError(err)
	}
	return nil
}

// New initializes and returns a new instance of the Validator. The slug rule
// is registered for presentation identifiers.
func New() *Validator {
	cli := validator.New(validator.WithRequiredStructEnabled())
	err := cli.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		// Registration only fails on an empty tag or nil func, so a failure
		// here is a programming error.
		panic(fmt.Errorf("register slug rule: %w", err))
	}
	return &Validator{
		cli: cli,
	}
}
