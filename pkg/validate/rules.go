package validate

import (
	"regexp"
	"sort"
	"strings"
)

// Patterns used by the built-in rules.
var Patterns = struct {
	Email        *regexp.Regexp
	URL          *regexp.Regexp
	Phone        *regexp.Regexp
	Alphanumeric *regexp.Regexp
}{
	Email:        regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`),
	URL:          regexp.MustCompile(`^https?://.+`),
	Phone:        regexp.MustCompile(`^\+?[\d\s\-()]+$`),
	Alphanumeric: regexp.MustCompile(`^[a-zA-Z0-9]+$`),
}

// Rules are the field rules shared by the login, register and product forms.
var Rules = struct {
	Email       Rule
	Password    Rule
	Name        Rule
	ProductName Rule
	Price       Rule
	Stock       Rule
	ImageURL    Rule
}{
	Email:       Rule{Required: true, Pattern: Patterns.Email},
	Password:    Rule{Required: true, MinLength: 6},
	Name:        Rule{Required: true, MinLength: 2, MaxLength: 50},
	ProductName: Rule{Required: true, MinLength: 3, MaxLength: 50},
	Price:       Rule{Required: true, Min: Bound(1)},
	Stock:       Rule{Required: true, Min: Bound(1)},
	ImageURL:    Rule{Required: true, Pattern: Patterns.URL},
}

// Field pairs a value with the rule and label used to check it.
type Field struct {
	Name  string
	Label string
	Value any
	Rule  Rule
}

// Errors maps field names to their failure message.
type Errors map[string]string

// Error lists the failures sorted by field name.
func (e Errors) Error() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields validates every field and returns the failures keyed by field name,
// or nil when all fields pass.
func Fields(locale Locale, fields ...Field) Errors {
	errs := make(Errors)
	for _, f := range fields {
		if res := ValidateLocale(locale, f.Value, f.Rule, f.Label); !res.Valid {
			errs[f.Name] = res.Message
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
