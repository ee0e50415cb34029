package lifecycle

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "channelling/pkg/domain-errors"
)

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func validateStruct(v *validator.Validate, rec any) error {
	err := v.Struct(rec)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate record")
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fieldMessage(fe))
	}
	return dErrors.Validation("validation failed", fields...)
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", name)
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", name, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%s: must contain only letters and digits", name)
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s]", name, fe.Param())
	case "email":
		return fmt.Sprintf("%s: must be a valid email address", name)
	case "url":
		return fmt.Sprintf("%s: must be a valid URL", name)
	case "datetime":
		return fmt.Sprintf("%s: must match the format %s", name, fe.Param())
	case "gt", "gte", "lt", "lte", "min":
		return fmt.Sprintf("%s: must satisfy %s=%s", name, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s", name, fe.Tag())
	}
}
