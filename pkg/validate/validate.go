// Package validate implements declarative, single-field form validation with
// localised messages.
package validate

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Rule declares the checks applied to one field. Zero values disable a check,
// except Min and Max which are pointers so that a bound of 0 can be expressed.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Min       *float64
	Max       *float64
	Pattern   *regexp.Regexp
	Custom    func(value any) bool
}

// Result is the outcome of validating one field.
type Result struct {
	Valid   bool
	Message string
}

// Bound is a helper for building Rule.Min and Rule.Max.
func Bound(v float64) *float64 { return &v }

var valid = Result{Valid: true}

// Validate checks value against rule using the default locale. label names the
// field in the failure message.
func Validate(value any, rule Rule, label string) Result {
	return ValidateLocale(DefaultLocale, value, rule, label)
}

// ValidateLocale checks value against rule and reports failures in the given
// locale. Checks run in a fixed order and the first failure wins: required,
// minimum length, maximum length, pattern (strings only), numeric bounds
// (numbers and numeric strings), custom predicate.
func ValidateLocale(locale Locale, value any, rule Rule, label string) Result {
	msgs := MessagesFor(locale)
	if label == "" {
		label = msgs.DefaultLabel
	}

	value = deref(value)
	empty := isFalsy(value)
	if rule.Required && empty {
		return invalid(msgs.Required, label)
	}
	if empty {
		return valid
	}

	if rv := reflect.ValueOf(value); rv.Kind() == reflect.String {
		s := rv.String()
		n := len([]rune(s))
		if rule.MinLength > 0 && n < rule.MinLength {
			return invalid(msgs.MinLength, label, rule.MinLength)
		}
		if rule.MaxLength > 0 && n > rule.MaxLength {
			return invalid(msgs.MaxLength, label, rule.MaxLength)
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
			return invalid(msgs.Pattern, label)
		}
	}

	if num, ok := numeric(value); ok {
		if rule.Min != nil && num < *rule.Min {
			return invalid(msgs.Min, label, formatNumber(*rule.Min))
		}
		if rule.Max != nil && num > *rule.Max {
			return invalid(msgs.Max, label, formatNumber(*rule.Max))
		}
	}

	if rule.Custom != nil && !rule.Custom(value) {
		return invalid(msgs.Custom, label)
	}

	return valid
}

func invalid(format, label string, args ...any) Result {
	return Result{
		Valid:   false,
		Message: fmt.Sprintf(format, append([]any{label}, args...)...),
	}
}

// deref follows pointers so that *string and *int form fields validate like
// their values. A nil pointer becomes nil.
func deref(value any) any {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// isFalsy reports whether value counts as "not provided": nil, the empty
// string, a numeric zero or false.
func isFalsy(value any) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		return rv.IsNil()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f == 0 || math.IsNaN(f)
	default:
		return false
	}
}

// numeric converts numbers and numeric strings to float64.
func numeric(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
