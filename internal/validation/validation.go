// Package validation holds name and value checks shared by the
// repository layer and the CLI.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

// ValidateContainerName checks the name against the naming rules the
// object-storage backends share: 3 to 63 characters, lowercase letters,
// digits, hyphens and dots, starting and ending alphanumeric.
func ValidateContainerName(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return fmt.Errorf("container name must be between 3 and 63 characters, got %d", len(name))
	}
	if !isLowerAlnum(rune(name[0])) || !isLowerAlnum(rune(name[len(name)-1])) {
		return fmt.Errorf("container name must start and end with a lowercase letter or digit")
	}
	for _, r := range name {
		if !isLowerAlnum(r) && r != '-' && r != '.' {
			return fmt.Errorf("container name contains invalid character %q", r)
		}
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("container name cannot contain consecutive dots")
	}
	return nil
}

func isLowerAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// ValidateObjectName checks that a mirror object name is usable both
// as a storage key and as a staging file name.
func ValidateObjectName(name string) error {
	if name == "" {
		return fmt.Errorf("object name cannot be empty")
	}
	if len(name) > 1024 {
		return fmt.Errorf("object name too long: %d characters (maximum 1024)", len(name))
	}
	if name == "." || name == ".." {
		return fmt.Errorf("object name %q is reserved", name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("object name cannot contain path separators")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("object name contains control characters")
		}
	}
	return nil
}

// ValidateKeyField checks a record field name used as the key, such as
// "id" or "email".
func ValidateKeyField(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("key field cannot be empty")
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return fmt.Errorf("key field cannot contain whitespace")
		}
	}
	return nil
}

// ValidateFilterValue ensures a filter comparison value is a simple
// type (string, number, bool or time.Time).
func ValidateFilterValue(value interface{}, field string) error {
	if value == nil {
		return nil
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Slice, reflect.Array:
		return fmt.Errorf("filter on '%s' cannot use an array/slice value, got %T", field, value)
	case reflect.Map:
		return fmt.Errorf("filter on '%s' cannot use a map value, got %T", field, value)
	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		return ValidateFilterValue(v.Elem().Interface(), field)
	case reflect.Struct:
		// Allow time.Time as it's commonly used
		if _, ok := value.(time.Time); ok {
			return nil
		}
		return fmt.Errorf("filter on '%s' cannot use a struct value, got %T", field, value)
	default:
		return fmt.Errorf("filter on '%s' must use a simple value (string, number, or bool), got %T", field, value)
	}
}
