package validate

// Locale selects the language of validation messages.
type Locale string

const (
	LocaleES Locale = "es"
	LocaleEN Locale = "en"

	DefaultLocale = LocaleES
)

// Messages holds the fmt formats used for each failure. Every format takes the
// field label as its first argument; length and bound formats take the limit
// as the second.
type Messages struct {
	DefaultLabel string
	Required     string
	MinLength    string
	MaxLength    string
	Pattern      string
	Min          string
	Max          string
	Custom       string
}

var catalogue = map[Locale]Messages{
	LocaleES: {
		DefaultLabel: "Campo",
		Required:     "%s es requerido",
		MinLength:    "%s debe tener al menos %d caracteres",
		MaxLength:    "%s no puede tener más de %d caracteres",
		Pattern:      "%s no tiene un formato válido",
		Min:          "%s debe ser mayor o igual a %s",
		Max:          "%s debe ser menor o igual a %s",
		Custom:       "%s no es válido",
	},
	LocaleEN: {
		DefaultLabel: "Field",
		Required:     "%s is required",
		MinLength:    "%s must be at least %d characters",
		MaxLength:    "%s cannot be longer than %d characters",
		Pattern:      "%s has an invalid format",
		Min:          "%s must be greater than or equal to %s",
		Max:          "%s must be less than or equal to %s",
		Custom:       "%s is not valid",
	},
}

// MessagesFor returns the catalogue for locale, falling back to DefaultLocale
// for unknown locales.
func MessagesFor(locale Locale) Messages {
	if m, ok := catalogue[locale]; ok {
		return m
	}
	return catalogue[DefaultLocale]
}

// ParseLocale maps a configuration string to a Locale. Unknown values yield
// DefaultLocale.
func ParseLocale(s string) Locale {
	switch Locale(s) {
	case LocaleES, LocaleEN:
		return Locale(s)
	default:
		return DefaultLocale
	}
}
