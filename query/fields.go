package query

import (
	"reflect"
	"strings"
)

// fieldValue resolves a named field on an item. Maps resolve by key;
// structs resolve by exported field name, json tag, then
// case-insensitive name, with pointers dereferenced along the way.
func fieldValue(item any, name string) (any, bool) {
	if item == nil || name == "" {
		return nil, false
	}

	if m, ok := item.(map[string]any); ok {
		v, ok := m[name]
		return v, ok
	}

	rv := reflect.ValueOf(item)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true

	case reflect.Struct:
		rt := rv.Type()
		if f, ok := rt.FieldByName(name); ok && f.IsExported() {
			return rv.FieldByIndex(f.Index).Interface(), true
		}
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			if jsonName(f) == name || strings.EqualFold(f.Name, name) {
				return rv.Field(i).Interface(), true
			}
		}
	}
	return nil, false
}

// jsonName extracts the field name from a json struct tag, if any.
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}
