package cart

import (
	"errors"

	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

// Level tells a Notifier how to present a message.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notifier shows cart events to the user.
type Notifier func(level Level, message string)

const (
	msgAdded      = "%s agregado al carrito"
	msgMerged     = "Se actualizó la cantidad de %s"
	msgUpdated    = "Cantidad actualizada para %s"
	msgRemoved    = "%s eliminado del carrito"
	msgNoStock    = "No hay suficiente stock de %s. Stock disponible: %d"
	msgEmpty      = "Debe agregar al menos un producto"
	msgRegistered = "Venta registrada exitosamente"
	msgSaleFailed = "Error al registrar la venta"
)

// failureMessage picks what the user sees when a sale is rejected.
func failureMessage(err error) string {
	var apiErr *storefrontsdk.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, storefrontsdk.ErrSessionExpired):
		return storefrontsdk.ErrSessionExpired.Error()
	}
	return msgSaleFailed
}
