// Package binder maps HTTP request data onto Go structs.
//
// A Binder extracts data from one part of the request (JSON body, form
// body, query string) and assigns it to struct fields by tag. Form
// binding uses the `form` tag, query binding the `query` tag; both fall
// back to the `json` tag, then the lowercased field name.
package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Binder binds HTTP request data to a Go value.
type Binder func(r *http.Request, v any) error

// Errors.
var (
	ErrNotStructPointer = errors.New("binder: target must be a non-nil struct pointer")
	ErrInvalidJSON      = errors.New("binder: invalid JSON payload")
	ErrUnsupportedField = errors.New("binder: unsupported field type")
)

// maxFormMemory bounds in-memory multipart parsing; larger parts spill to disk.
const maxFormMemory = 32 << 20 // 32MB

// JSON returns a Binder that decodes the request body as JSON.
func JSON() Binder {
	return func(r *http.Request, v any) error {
		if err := checkTarget(v); err != nil {
			return err
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("binder: read body: %w", err)
		}
		if len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, v); err != nil {
			return errors.Join(ErrInvalidJSON, err)
		}
		return nil
	}
}

// Form returns a Binder that maps form fields (urlencoded or multipart)
// onto struct fields by `form` tag.
func Form() Binder {
	return func(r *http.Request, v any) error {
		if err := checkTarget(v); err != nil {
			return err
		}
		ct := r.Header.Get("Content-Type")
		if strings.HasPrefix(ct, "multipart/form-data") {
			if err := r.ParseMultipartForm(maxFormMemory); err != nil {
				return fmt.Errorf("binder: parse multipart form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return fmt.Errorf("binder: parse form: %w", err)
		}
		return bindValues(r.Form, v, "form")
	}
}

// Query returns a Binder that maps query string parameters onto struct
// fields by `query` tag.
func Query() Binder {
	return func(r *http.Request, v any) error {
		if err := checkTarget(v); err != nil {
			return err
		}
		return bindValues(r.URL.Query(), v, "query")
	}
}

func checkTarget(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}
	return nil
}

func bindValues(values url.Values, v any, tagName string) error {
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		fv := rv.Field(i)

		// Inline embedded structs so composed request types work.
		if field.Anonymous && fv.Kind() == reflect.Struct {
			if err := bindValues(values, fv.Addr().Interface(), tagName); err != nil {
				return err
			}
			continue
		}

		name := lookupName(field, tagName)
		if name == "-" {
			continue
		}
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}

		if err := setField(fv, vals); err != nil {
			return fmt.Errorf("binder: field %s: %w", field.Name, err)
		}
	}
	return nil
}

func lookupName(field reflect.StructField, tagName string) string {
	for _, tn := range []string{tagName, "json"} {
		if tag, ok := field.Tag.Lookup(tn); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name != "" {
				return name
			}
		}
	}
	return strings.ToLower(field.Name)
}

func setField(fv reflect.Value, vals []string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv = fv.Elem()
	}

	if fv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(fv.Type(), len(vals), len(vals))
		for i, raw := range vals {
			if err := setScalar(out.Index(i), raw); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	}

	return setScalar(fv, vals[0])
}

func setScalar(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("parse bool %q: %w", raw, err)
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse int %q: %w", raw, err)
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse uint %q: %w", raw, err)
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return fmt.Errorf("parse float %q: %w", raw, err)
		}
		fv.SetFloat(f)
	default:
		return ErrUnsupportedField
	}
	return nil
}
