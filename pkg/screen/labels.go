package screen

import "github.com/aussiebroadwan/storefront/pkg/validate"

// labels are the field names shown in validation messages.
type labels struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	ProductName  string
	Price        string
	Stock        string
	ImageURL     string
	DatesMissing string
}

var catalogue = map[validate.Locale]labels{
	validate.LocaleES: {
		Email:        "El correo electrónico",
		Password:     "La contraseña",
		FirstName:    "El nombre",
		LastName:     "El apellido",
		ProductName:  "El nombre del producto",
		Price:        "El precio",
		Stock:        "El stock",
		ImageURL:     "La URL de la imagen",
		DatesMissing: "Por favor selecciona ambas fechas.",
	},
	validate.LocaleEN: {
		Email:        "Email",
		Password:     "Password",
		FirstName:    "First name",
		LastName:     "Last name",
		ProductName:  "Product name",
		Price:        "Price",
		Stock:        "Stock",
		ImageURL:     "Image URL",
		DatesMissing: "Please select both dates.",
	},
}

func labelsFor(locale validate.Locale) labels {
	if l, ok := catalogue[locale]; ok {
		return l
	}
	return catalogue[validate.DefaultLocale]
}
