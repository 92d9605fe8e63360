package config

import (
	"reflect"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// Validator is implemented by configuration structs with checks beyond
// `required` tags. [Loader.Load] calls Validate after the required check
// passes. An *sserr.Error is returned unchanged; any other error is
// wrapped with [sserr.CodeValidation].
//
// Validate may also apply defaults, as [sentry.Config.Validate] does for
// the flush timeout.
type Validator interface {
	Validate() error
}

func validate(cfg any, rv reflect.Value) error {
	if err := validateRequired(rv, ""); err != nil {
		return err
	}

	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		if _, isSSErr := sserr.AsError(err); isSSErr {
			return err
		}
		return sserr.Wrap(err, sserr.CodeValidation, "config: custom validation failed")
	}
	return nil
}

// validateRequired reports the first zero field tagged `required:"true"`,
// naming it by its dotted path (e.g. "Journal.KeyPrefix").
func validateRequired(rv reflect.Value, path string) error {
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		fieldPath := sf.Name
		if path != "" {
			fieldPath = path + "." + sf.Name
		}

		if field.Kind() == reflect.Struct {
			if err := validateRequired(field, fieldPath); err != nil {
				return err
			}
			continue
		}
		if sf.Tag.Get("required") == "true" && field.IsZero() {
			return sserr.Newf(sserr.CodeValidationRequired,
				"config: required field %q is empty", fieldPath)
		}
	}
	return nil
}
