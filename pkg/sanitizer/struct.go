package sanitizer

import (
	"errors"
	"reflect"
	"strings"
)

// ErrNotStructPointer is returned when the target is not a pointer to a struct.
var ErrNotStructPointer = errors.New("sanitizer: target must be a non-nil struct pointer")

// SanitizeStruct applies the operations listed in each field's `sanitize`
// tag to string fields, in tag order. Nested and embedded structs are
// walked recursively. Supported operations:
//
//	trim       - strip leading/trailing whitespace
//	lower      - lowercase
//	upper      - uppercase
//	strip_html - remove all HTML (strict policy)
//	html       - keep safe formatting tags only
//
// Unknown operations are ignored so struct definitions stay forward
// compatible with future additions.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	sanitizeValue(rv.Elem())
	return nil
}

func sanitizeValue(rv reflect.Value) {
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)

		switch fv.Kind() {
		case reflect.Struct:
			sanitizeValue(fv)
			continue
		case reflect.Pointer:
			if !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
				sanitizeValue(fv.Elem())
				continue
			}
		}

		tag := field.Tag.Get("sanitize")
		if tag == "" || tag == "-" {
			continue
		}

		apply := func(s string) string {
			for op := range strings.SplitSeq(tag, ",") {
				s = applyOp(strings.TrimSpace(op), s)
			}
			return s
		}

		switch {
		case fv.Kind() == reflect.String:
			fv.SetString(apply(fv.String()))
		case fv.Kind() == reflect.Pointer && !fv.IsNil() && fv.Elem().Kind() == reflect.String:
			fv.Elem().SetString(apply(fv.Elem().String()))
		case fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() == reflect.String:
			for j := range fv.Len() {
				fv.Index(j).SetString(apply(fv.Index(j).String()))
			}
		}
	}
}

func applyOp(op, s string) string {
	switch op {
	case "trim":
		return strings.TrimSpace(s)
	case "lower":
		return strings.ToLower(s)
	case "upper":
		return strings.ToUpper(s)
	case "strip_html":
		return StripHTML(s)
	case "html":
		return SanitizeHTML(s)
	default:
		return s
	}
}
