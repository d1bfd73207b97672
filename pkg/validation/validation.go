package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "deedgate/pkg/domain-errors"
	s "deedgate/pkg/string"
)

var defaultValidator = newValidator()

// phonePattern accepts an optional leading + followed by digits, spaces, dots, dashes and parens.
var phonePattern = regexp.MustCompile(`^\+?[0-9 ().-]{7,20}$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return s.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		return IsContact(fl.Field().String())
	})
	return v
}

// IsContact reports whether value is an email address or a phone number.
func IsContact(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	if strings.Contains(value, "@") {
		addr, err := mail.ParseAddress(value)
		return err == nil && addr.Address == value
	}
	return phonePattern.MatchString(value)
}

// Validate validates a struct using the default validator and returns a domain error
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	field := s.ToSnakeCase(fieldName)

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid url", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "contact":
		return fmt.Sprintf("%s must be a phone number or an email", field)
	case "eth_addr":
		return fmt.Sprintf("%s must be a valid wallet address", field)
	case "numeric", "number":
		return fmt.Sprintf("%s must be a number", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
