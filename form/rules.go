package form

import (
	"fmt"
	"net/mail"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Required fails for nil, empty strings, false, zero numbers and empty
// collections.
func Required(message string) Rule {
	if message == "" {
		message = "Field is required"
	}
	return Check(present, message)
}

// MinLength fails when a string value has fewer than n runes.
func MinLength(n int, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("must be at least %d characters long", n)
	}
	return Check(func(value any) bool {
		s, ok := value.(string)
		return ok && utf8.RuneCountInString(s) >= n
	}, message)
}

// MaxLength fails when a string value has more than n runes.
func MaxLength(n int, message string) Rule {
	if message == "" {
		message = fmt.Sprintf("must be at most %d characters long", n)
	}
	return Check(func(value any) bool {
		s, ok := value.(string)
		return ok && utf8.RuneCountInString(s) <= n
	}, message)
}

// Pattern fails when a string value does not match re.
func Pattern(re *regexp.Regexp, message string) Rule {
	if message == "" {
		message = "invalid format"
	}
	return Check(func(value any) bool {
		s, ok := value.(string)
		return ok && re != nil && re.MatchString(s)
	}, message)
}

// Email fails unless the value is a bare address such as user@example.com.
func Email(message string) Rule {
	if message == "" {
		message = "must be a valid email address"
	}
	return Check(func(value any) bool {
		s, ok := value.(string)
		if !ok || s == "" {
			return false
		}
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
	}, message)
}

// HasUppercase fails unless a string value contains an uppercase letter.
func HasUppercase(message string) Rule {
	if message == "" {
		message = "must include an uppercase letter"
	}
	return Check(func(value any) bool {
		s, ok := value.(string)
		return ok && strings.IndexFunc(s, unicode.IsUpper) >= 0
	}, message)
}

// OneOf fails unless the value's string form is one of choices.
func OneOf(choices []string, message string) Rule {
	if message == "" {
		message = "must be one of: " + strings.Join(choices, ", ")
	}
	return Check(func(value any) bool {
		if value == nil {
			return false
		}
		return slices.Contains(choices, fmt.Sprint(value))
	}, message)
}

func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}
