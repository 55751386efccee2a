// Package validation wraps go-playground/validator and converts its
// output into apperr validation errors with field→message maps.
package validation

import (
	"fmt"
	"regexp"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"food-delivery-backend/apperr"
)

var validate = newValidator()

var phoneRe = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// phone: international number, 10-15 digits, optional leading +
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})

	// password: at least one upper-case letter, one digit and one
	// non-alphanumeric character (length is a separate min rule)
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var upper, digit, special bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsDigit(r):
				digit = true
			case !unicode.IsLetter(r) && !unicode.IsDigit(r):
				special = true
			}
		}
		return upper && digit && special
	})

	// adult: date of birth at least 18 years in the past
	v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		dob, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return dob.Before(time.Now().UTC().AddDate(-18, 0, 0))
	})

	return v
}

// Struct validates s and returns an apperr validation error listing every
// failed field, or nil if s is valid.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Internal(err)
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], messageFor(fe))
	}
	return apperr.Validation("validation failed", fields)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "phone":
		return "must be a valid phone number"
	case "password":
		return "must contain an upper-case letter, a digit and a special character"
	case "adult":
		return "must be at least 18 years in the past"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "dive":
		return "contains invalid entries"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
