package storefrontsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================================
// Auth Types
// ============================================================================

// LoginRequest is the body of POST /Auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /Auth/register.
type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthResponse is returned by login, register and refresh.
type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int         `json:"expiresIn"`
	User         UserProfile `json:"user"`
}

// UserProfile is the server's snapshot of the logged in user. It is never
// modified locally.
type UserProfile struct {
	ID        UserID `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName joins first and last name.
func (u UserProfile) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserID accepts both JSON numbers and strings, since the API has used both.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// SessionData is the persisted session.
type SessionData struct {
	AccessToken  string
	RefreshToken string
	User         UserProfile
}

// ============================================================================
// Product Types
// ============================================================================

// Product is a catalogue entry. The server owns it; the client only holds
// copies from the latest fetch.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"imageUrl"`
}

// ProductInput is the body of POST /Products, a Product without its ID.
type ProductInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"imageUrl"`
}

// WithID turns the input into a Product carrying id.
func (p ProductInput) WithID(id int) Product {
	return Product{ID: id, Name: p.Name, Price: p.Price, Stock: p.Stock, ImageURL: p.ImageURL}
}

// ============================================================================
// Sale Types
// ============================================================================

// SaleItem is one line of a registered sale.
type SaleItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"productId"`
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Sale is read-only to the client.
type Sale struct {
	ID    int        `json:"id"`
	Date  string     `json:"date"`
	Total float64    `json:"total"`
	Items []SaleItem `json:"items"`
}

// CreateSaleItem is one line of POST /Sales.
type CreateSaleItem struct {
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// CreateSaleRequest is the body of POST /Sales. Date is formatted with DateLayout.
type CreateSaleRequest struct {
	Date  string           `json:"date"`
	Items []CreateSaleItem `json:"items"`
}

// DateLayout is the YYYY-MM-DD format the API uses for sale dates and report bounds.
const DateLayout = "2006-01-02"
