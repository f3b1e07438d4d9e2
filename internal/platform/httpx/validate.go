package httpx

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// NewValidator returns a validator that reports fields by their json tag
// so problem responses name the wire-level field.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct converts the first validator failure into a
// shared.ValidationError so handlers and services speak the same taxonomy.
func ValidateStruct(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return shared.Validation(fe.Field(), "failed "+fe.Tag()+" validation")
	}
	return shared.Validation("body", "invalid request")
}

// IsBusinessError reports whether err is an expected business failure
// rather than an infrastructure fault.
func IsBusinessError(err error) bool {
	var vErr shared.ValidationError
	var cErr shared.ConflictError
	return errors.Is(err, shared.ErrNotFound) || errors.As(err, &vErr) || errors.As(err, &cErr)
}
