package storefrontsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired is terminal: the access token expired and could not be
	// refreshed. The session has been cleared and the user must login again.
	ErrSessionExpired = errors.New("session expired, please login again")

	// ErrNoSession is returned when the store holds no access token.
	ErrNoSession = errors.New("no active session")

	// ErrDateRangeRequired is returned by SalesReport when either bound is missing.
	ErrDateRangeRequired = errors.New("both start and end dates are required")

	// ErrInvalidDateRange is returned by SalesReport when end is before start.
	ErrInvalidDateRange = errors.New("end date is before start date")

	errNoRefreshToken = errors.New("no refresh token available")
)

// Fallback messages used when an error response carries no "message".
const (
	msgLogin          = "Error al iniciar sesión"
	msgRegister       = "Error al registrar usuario"
	msgRefresh        = "Error al refrescar el token"
	msgListProducts   = "Error getting products"
	msgGetProduct     = "Error getting product by ID"
	msgCreateProduct  = "Error creating product"
	msgUpdateProduct  = "Error updating product"
	msgDeleteProduct  = "Error deleting product"
	msgCreateSale     = "Error al registrar la venta"
	msgGetSalesReport = "Error al obtener el reporte"
)

// APIError is a non-2xx response from the storefront API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// parseErrorResponse turns an error response into an *APIError. The server's
// "message" field wins; fallback is used when the body has none.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte, fallback string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg := strings.TrimSpace(errResp.Message); msg != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: fallback}
}
