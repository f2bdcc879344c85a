package portal

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"eventportal/internal/apperr"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check validates in against its schema and reports the first violation as
// a validation error.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.Validation("Invalid request"), err)
	}
	fe := verrs[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "All fields are required: " + field + " is missing"
	case "email":
		msg = "Invalid email format"
	case "eqfield":
		msg = "Passwords do not match"
	case "min":
		msg = field + " must be at least " + fe.Param() + " characters long"
	case "max":
		msg = field + " must be at most " + fe.Param() + " characters long"
	case "datetime":
		msg = field + " must be a date in YYYY-MM-DD format"
	default:
		msg = field + " is invalid"
	}
	return apperr.Validation(msg)
}
