package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/viewport/config.go
//   type Config struct {
//       ListItemHeight float64 `validate:"gt=0"`
//       CenterYStart   float64
//       CenterYEnd     float64 `validate:"notltfield=CenterYStart"`
//       ...
//   }
//
// Besides the built-in tags, notltfield ("not less than field") is registered here.

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails on an empty tag or nil func.
		_ = validatorInst.RegisterValidation("notltfield", notLessThanField)
	})
	return validatorInst
}

// notLessThanField fails only when the field is strictly less than the named sibling.
// Unlike gtefield, an unordered NaN comparison passes.
func notLessThanField(fl validator.FieldLevel) bool {
	other, kind, _, ok := fl.GetStructFieldOKAdvanced2(fl.Parent(), fl.Param())
	if !ok || kind != fl.Field().Kind() {
		return false
	}
	switch kind { //nolint:exhaustive // only numeric kinds are meaningful here
	case reflect.Float32, reflect.Float64:
		return !(fl.Field().Float() < other.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fl.Field().Int() >= other.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fl.Field().Uint() >= other.Uint()
	default:
		return false
	}
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
