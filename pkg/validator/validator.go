// Package validator validates structs using `validate` field tags.
//
// Supported rules: required, email, min=N, max=N, len=N, oneof=a b c.
// For strings min/max/len constrain length; for numeric fields they
// constrain the value. Validation failures are collected per field into
// ValidationErrors; structural problems (bad target, bad tag) are
// returned as ordinary errors.
package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
)

// ErrNotStructPointer is returned when the target is not a pointer to a struct.
var ErrNotStructPointer = errors.New("validator: target must be a non-nil struct pointer")

// ValidationErrors maps field names (json tag names) to their rule violations.
type ValidationErrors map[string][]string

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(ve))
	for f := range ve {
		fields = append(fields, f)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// Add appends a violation message for a field.
func (ve ValidationErrors) Add(field, msg string) {
	ve[field] = append(ve[field], msg)
}

// Has reports whether the field has any violations.
func (ve ValidationErrors) Has(field string) bool {
	return len(ve[field]) > 0
}

// IsValidationError reports whether err is a ValidationErrors value.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors from err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// ValidateStruct validates v against its `validate` tags.
// Returns ValidationErrors when any rule fails, nil when all pass.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}

	ve := make(ValidationErrors)
	if err := validateValue(rv.Elem(), ve); err != nil {
		return err
	}
	if len(ve) > 0 {
		return ve
	}
	return nil
}

func validateValue(rv reflect.Value, ve ValidationErrors) error {
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)

		// Recurse into nested structs first so inner violations are reported too.
		switch fv.Kind() {
		case reflect.Struct:
			if field.Tag.Get("validate") == "" {
				if err := validateValue(fv, ve); err != nil {
					return err
				}
				continue
			}
		case reflect.Pointer:
			if !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
				if err := validateValue(fv.Elem(), ve); err != nil {
					return err
				}
				continue
			}
		}

		tag := field.Tag.Get("validate")
		if tag == "" || tag == "-" {
			continue
		}

		name := fieldName(field)
		for rule := range strings.SplitSeq(tag, ",") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			if err := applyRule(name, rule, fv, ve); err != nil {
				return err
			}
		}
	}
	return nil
}

// fieldName prefers the json tag name, falling back to the Go field name.
func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}

func applyRule(name, rule string, fv reflect.Value, ve ValidationErrors) error {
	key, arg, _ := strings.Cut(rule, "=")
	switch key {
	case "required":
		if isZero(fv) {
			ve.Add(name, "this field is required")
		}
	case "email":
		s := stringValue(fv)
		if s == "" {
			return nil // empty handled by required
		}
		if _, err := mail.ParseAddress(s); err != nil {
			ve.Add(name, "must be a valid email address")
		}
	case "min":
		return compareRule(name, key, arg, fv, ve)
	case "max":
		return compareRule(name, key, arg, fv, ve)
	case "len":
		return compareRule(name, key, arg, fv, ve)
	case "oneof":
		s := stringValue(fv)
		if s == "" {
			return nil
		}
		allowed := strings.Fields(arg)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		ve.Add(name, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	default:
		return fmt.Errorf("validator: unknown rule %q on field %s", key, name)
	}
	return nil
}

func compareRule(name, key, arg string, fv reflect.Value, ve ValidationErrors) error {
	limit, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return fmt.Errorf("validator: bad %s argument %q on field %s", key, arg, name)
	}

	var actual float64
	var unit string
	switch fv.Kind() {
	case reflect.String:
		actual = float64(len([]rune(fv.String())))
		unit = "characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		actual = float64(fv.Len())
		unit = "items"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		actual = float64(fv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		actual = float64(fv.Uint())
	case reflect.Float32, reflect.Float64:
		actual = fv.Float()
	default:
		return fmt.Errorf("validator: rule %s not applicable to field %s", key, name)
	}

	switch key {
	case "min":
		if actual < limit {
			if unit != "" {
				ve.Add(name, fmt.Sprintf("must be at least %s %s", arg, unit))
			} else {
				ve.Add(name, fmt.Sprintf("must be at least %s", arg))
			}
		}
	case "max":
		if actual > limit {
			if unit != "" {
				ve.Add(name, fmt.Sprintf("must be at most %s %s", arg, unit))
			} else {
				ve.Add(name, fmt.Sprintf("must be at most %s", arg))
			}
		}
	case "len":
		if actual != limit {
			ve.Add(name, fmt.Sprintf("must be exactly %s %s", arg, unit))
		}
	}
	return nil
}

func stringValue(fv reflect.Value) string {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return ""
		}
		fv = fv.Elem()
	}
	if fv.Kind() == reflect.String {
		return fv.String()
	}
	return ""
}

func isZero(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.Slice, reflect.Map:
		return fv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return fv.IsNil()
	default:
		return fv.IsZero()
	}
}
