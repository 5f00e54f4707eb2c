package screen

import (
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/aussiebroadwan/storefront/pkg/validate"
)

type LoginForm struct {
	Email    string
	Password string
}

// Validate returns the failing fields, nil when the form can be submitted.
func (f LoginForm) Validate(locale validate.Locale) validate.Errors {
	l := labelsFor(locale)
	return validate.Fields(locale,
		validate.Field{Name: "email", Label: l.Email, Value: f.Email, Rule: validate.Rules.Email},
		validate.Field{Name: "password", Label: l.Password, Value: f.Password, Rule: validate.Rules.Password},
	)
}

type RegisterForm struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (f RegisterForm) Validate(locale validate.Locale) validate.Errors {
	l := labelsFor(locale)
	return validate.Fields(locale,
		validate.Field{Name: "firstName", Label: l.FirstName, Value: f.FirstName, Rule: validate.Rules.Name},
		validate.Field{Name: "lastName", Label: l.LastName, Value: f.LastName, Rule: validate.Rules.Name},
		validate.Field{Name: "email", Label: l.Email, Value: f.Email, Rule: validate.Rules.Email},
		validate.Field{Name: "password", Label: l.Password, Value: f.Password, Rule: validate.Rules.Password},
	)
}

// Request builds the register body. The form has a single password input, so
// the confirmation repeats it.
func (f RegisterForm) Request() storefrontsdk.RegisterRequest {
	return storefrontsdk.RegisterRequest{
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.Password,
	}
}
