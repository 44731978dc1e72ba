package validator

import (
	"fmt"
	"reflect"
	"strings"

	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

// NewValidator builds the process wide validator. Field errors are reported by json
// name and decimals validate as their string form, so required rejects a zero value.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	validate = v
	return v
}

func GetValidator() *validator.Validate {
	return validate
}

// describe renders one field error for API callers, ex "required" or "max=255"
func describe(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fmt.Sprintf("failed on '%s'", fe.Tag())
	}
	return fmt.Sprintf("failed on '%s=%s'", fe.Tag(), fe.Param())
}

// ValidateRequest runs struct tags on req and marks failures ErrValidation with one
// detail per failing field
func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	details := make(map[string]any)
	var fieldErrs validator.ValidationErrors
	if ierr.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			// drop the root struct name, ex CreateTariffPlanRequest.tiers[0].unit_price
			_, field, _ := strings.Cut(fe.Namespace(), ".")
			details[field] = describe(fe)
		}
	}
	return ierr.WithError(err).
		WithHint("Request validation failed").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
