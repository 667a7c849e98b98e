package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"staffleave/internal/domain/apperr"
)

const (
	TagRequiredText   = "required_text"
	TagIdentityNumber = "identity_number"
)

// New returns a validator with the domain tags registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation(TagRequiredText, func(fl validator.FieldLevel) bool {
		return RequiredText(fl.Field().String())
	})
	_ = v.RegisterValidation(TagIdentityNumber, func(fl validator.FieldLevel) bool {
		return IdentityNumber(fl.Field().String())
	})
	return v
}

// Struct validates payload and converts failures into an *apperr.ValidationError.
func Struct(v *validator.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, apperr.FieldError{Field: fe.Field(), Reason: reasonFor(fe)})
	}
	return out
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", TagRequiredText:
		return fe.Field() + " is required"
	case TagIdentityNumber:
		return fe.Field() + " must be a 12 digit identity number"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "len":
		return fe.Field() + " must be exactly " + fe.Param() + " characters"
	case "numeric":
		return fe.Field() + " must contain only digits"
	case "email":
		return fe.Field() + " must be a valid email"
	}
	return fe.Field() + " is invalid"
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
