// Package serializer converts arbitrary record values into JSON-ready
// structures. It walks structs, slices, maps, and sets recursively,
// with a Spec controlling field selection, computed fields, and nested
// serialization of related records.
package serializer

import (
	"encoding"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode"
)

// Serializable lets a type provide its own serialized view. The
// returned value is walked again, so a Spec still applies to it.
type Serializable interface {
	Serialize() any
}

// Collection is a lazily-evaluated set of records, the queryset analog.
// Implementations expose their items for element-wise serialization.
type Collection interface {
	Items() []any
}

// Spec controls how a record serializes.
type Spec struct {
	// Fields whitelists output names; empty means all. Unknown names
	// are ignored.
	Fields []string

	// Exclude drops output names, applied after Fields.
	Exclude []string

	// Computed adds derived fields. Each function receives the source
	// record and its result is serialized with default rules.
	Computed map[string]func(v any) any

	// Related serializes the named fields with their own Spec. A nil
	// entry means default rules.
	Related map[string]*Spec

	// Flatten merges this record's keys into the parent map instead of
	// nesting them under the field name. Only meaningful on a Spec
	// used as a Related entry, and only when the result is a map.
	Flatten bool
}

func (s *Spec) includes(name string) bool {
	if s == nil {
		return true
	}
	if len(s.Fields) > 0 && !slices.Contains(s.Fields, name) {
		return false
	}
	return !slices.Contains(s.Exclude, name)
}

func (s *Spec) related(name string) (*Spec, bool) {
	if s == nil {
		return nil, false
	}
	sub, ok := s.Related[name]
	return sub, ok
}

// Serialize converts src into JSON-ready data. Structs become
// map[string]any keyed by json tag names, slices become []any,
// map[K]struct{} sets become sorted []any, and scalar values pass
// through unchanged.
func Serialize(src any, spec *Spec) any {
	if src == nil {
		return nil
	}

	if s, ok := src.(Serializable); ok {
		return Serialize(s.Serialize(), spec)
	}
	if c, ok := src.(Collection); ok {
		items := c.Items()
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, Serialize(item, spec))
		}
		return out
	}
	if passthrough(src) {
		return src
	}

	v := reflect.ValueOf(src)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return src
		}
		out := make([]any, 0, v.Len())
		for i := range v.Len() {
			out = append(out, Serialize(v.Index(i).Interface(), spec))
		}
		return out

	case reflect.Map:
		if isSet(v.Type()) {
			return serializeSet(v, spec)
		}
		return serializeMap(v, src, spec)

	case reflect.Struct:
		out := make(map[string]any)
		serializeFields(v, spec, out)
		applyComputed(src, spec, out)
		return out

	default:
		return v.Interface()
	}
}

// passthrough reports whether the value renders itself during JSON
// encoding and must not be decomposed by the walk.
func passthrough(src any) bool {
	switch src.(type) {
	case time.Time, *time.Time, json.Marshaler, encoding.TextMarshaler:
		return true
	}
	return false
}

func isSet(t reflect.Type) bool {
	return t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

// serializeSet renders map[K]struct{} as a sorted slice so output is
// deterministic across runs.
func serializeSet(v reflect.Value, spec *Spec) any {
	out := make([]any, 0, v.Len())
	for _, key := range v.MapKeys() {
		out = append(out, Serialize(key.Interface(), spec))
	}
	slices.SortFunc(out, func(a, b any) int {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
	return out
}

func serializeMap(v reflect.Value, src any, spec *Spec) any {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		name := fmt.Sprint(iter.Key().Interface())
		if !spec.includes(name) {
			continue
		}
		sub, _ := spec.related(name)
		val := Serialize(iter.Value().Interface(), sub)
		if sub != nil && sub.Flatten {
			if m, ok := val.(map[string]any); ok {
				maps.Copy(out, m)
				continue
			}
		}
		out[name] = val
	}
	applyComputed(src, spec, out)
	return out
}

func serializeFields(v reflect.Value, spec *Spec, out map[string]any) {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)

		// Embedded structs inline their fields into the parent, even
		// when the embedded type itself is unexported (matching
		// encoding/json promotion). Recursion stays on reflect.Value
		// because Interface() is off-limits for unexported fields.
		// A nil embedded pointer contributes nothing.
		if field.Anonymous && field.Tag.Get("json") == "" {
			fv := v.Field(i)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				serializeFields(fv, spec, out)
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		name := fieldName(field)
		if name == "" || !spec.includes(name) {
			continue
		}

		sub, _ := spec.related(name)
		val := Serialize(v.Field(i).Interface(), sub)
		if sub != nil && sub.Flatten {
			if m, ok := val.(map[string]any); ok {
				maps.Copy(out, m)
				continue
			}
		}
		out[name] = val
	}
}

func applyComputed(src any, spec *Spec, out map[string]any) {
	if spec == nil {
		return
	}
	for name, fn := range spec.Computed {
		out[name] = Serialize(fn(src), nil)
	}
}

// fieldName resolves the output key: json tag first, then snake_case
// of the Go field name. Returns "" for json:"-".
func fieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return snakeCase(field.Name)
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
