package cart_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/cart"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/stretchr/testify/require"
)

var (
	coffee = storefrontsdk.Product{ID: 1, Name: "Café", Price: 10, Stock: 5}
	tea    = storefrontsdk.Product{ID: 2, Name: "Té", Price: 5, Stock: 3}
)

// fakeCreator records the requests it receives.
type fakeCreator struct {
	mu       sync.Mutex
	requests []storefrontsdk.CreateSaleRequest
	err      error
}

func (f *fakeCreator) CreateSale(_ context.Context, req storefrontsdk.CreateSaleRequest) (*storefrontsdk.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &storefrontsdk.Sale{ID: len(f.requests), Date: req.Date}, nil
}

type recorder struct {
	levels   []cart.Level
	messages []string
}

func (r *recorder) notify(level cart.Level, msg string) {
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, msg)
}

func (r *recorder) last() string {
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

func TestAdd(t *testing.T) {
	t.Parallel()

	t.Run("accumulates until stock is exceeded", func(t *testing.T) {
		rec := &recorder{}
		c := cart.New(cart.WithNotifier(rec.notify))

		require.NoError(t, c.Add(coffee, 3))
		require.Equal(t, "Café agregado al carrito", rec.last())

		err := c.Add(coffee, 3)
		require.ErrorIs(t, err, cart.ErrInsufficientStock)

		var stockErr *cart.StockError
		require.ErrorAs(t, err, &stockErr)
		require.Equal(t, 6, stockErr.Requested)
		require.Equal(t, 5, stockErr.Available)
		require.Equal(t, "No hay suficiente stock de Café. Stock disponible: 5", rec.last())
		require.Equal(t, cart.LevelError, rec.levels[len(rec.levels)-1])

		lines := c.Lines()
		require.Len(t, lines, 1)
		require.Equal(t, 3, lines[0].Quantity, "rejected add leaves the line untouched")

		require.NoError(t, c.Add(coffee, 2))
		require.Equal(t, "Se actualizó la cantidad de Café", rec.last())
		require.Equal(t, 5, c.Lines()[0].Quantity)
	})

	t.Run("first add above stock", func(t *testing.T) {
		c := cart.New()
		require.ErrorIs(t, c.Add(tea, 4), cart.ErrInsufficientStock)
		require.Zero(t, c.Len())
	})

	t.Run("exactly stock", func(t *testing.T) {
		c := cart.New()
		require.NoError(t, c.Add(tea, 3))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		c := cart.New()
		require.ErrorIs(t, c.Add(tea, 0), cart.ErrInvalidQuantity)
		require.ErrorIs(t, c.Add(tea, -1), cart.ErrInvalidQuantity)
		require.Zero(t, c.Len())
	})

	t.Run("unit price is a snapshot", func(t *testing.T) {
		c := cart.New()
		require.NoError(t, c.Add(coffee, 1))

		repriced := coffee
		repriced.Price = 99
		require.NoError(t, c.Add(repriced, 1))

		lines := c.Lines()
		require.Equal(t, 10.0, lines[0].UnitPrice)
		require.Equal(t, 20.0, c.Total())
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	c := cart.New(cart.WithNotifier(rec.notify))
	require.NoError(t, c.Add(coffee, 1))
	require.NoError(t, c.Add(tea, 1))

	c.Remove(coffee.ID)
	require.Equal(t, "Café eliminado del carrito", rec.last())
	require.Len(t, c.Lines(), 1)
	require.Equal(t, tea.ID, c.Lines()[0].ProductID)

	n := len(rec.messages)
	c.Remove(42)
	require.Len(t, c.Lines(), 1)
	require.Len(t, rec.messages, n, "removing an absent line is silent")
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	t.Run("zero is remove", func(t *testing.T) {
		a := cart.New()
		b := cart.New()
		for _, c := range []*cart.Cart{a, b} {
			require.NoError(t, c.Add(coffee, 2))
			require.NoError(t, c.Add(tea, 1))
		}

		require.NoError(t, a.UpdateQuantity(coffee.ID, 0))
		b.Remove(coffee.ID)
		require.Equal(t, b.Lines(), a.Lines())

		require.NoError(t, a.UpdateQuantity(tea.ID, -3))
		require.Zero(t, a.Len())
	})

	t.Run("replaces quantity within stock", func(t *testing.T) {
		rec := &recorder{}
		c := cart.New(cart.WithNotifier(rec.notify))
		require.NoError(t, c.Add(coffee, 1))

		require.NoError(t, c.UpdateQuantity(coffee.ID, 5))
		require.Equal(t, 5, c.Lines()[0].Quantity)
		require.Equal(t, "Cantidad actualizada para Café", rec.last())
	})

	t.Run("above stock is rejected", func(t *testing.T) {
		c := cart.New()
		require.NoError(t, c.Add(coffee, 2))

		require.ErrorIs(t, c.UpdateQuantity(coffee.ID, 6), cart.ErrInsufficientStock)
		require.Equal(t, 2, c.Lines()[0].Quantity)
	})

	t.Run("unknown product is ignored", func(t *testing.T) {
		c := cart.New()
		require.NoError(t, c.UpdateQuantity(7, 1))
		require.Zero(t, c.Len())
	})
}

func TestTotal(t *testing.T) {
	t.Parallel()

	c := cart.New()
	require.Zero(t, c.Total())

	require.NoError(t, c.Add(storefrontsdk.Product{ID: 1, Name: "A", Price: 10, Stock: 10}, 2))
	require.NoError(t, c.Add(storefrontsdk.Product{ID: 2, Name: "B", Price: 5, Stock: 10}, 1))
	require.Equal(t, 25.0, c.Total())
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 5, 1, 23, 30, 0, 0, time.FixedZone("UTC-3", -3*60*60))

	t.Run("empty cart makes no call", func(t *testing.T) {
		rec := &recorder{}
		creator := &fakeCreator{}
		c := cart.New(cart.WithNotifier(rec.notify))

		_, err := c.Checkout(t.Context(), creator)
		require.ErrorIs(t, err, cart.ErrEmptyCart)
		require.Empty(t, creator.requests)
		require.Equal(t, "Debe agregar al menos un producto", rec.last())
	})

	t.Run("success clears the cart", func(t *testing.T) {
		rec := &recorder{}
		creator := &fakeCreator{}
		c := cart.New(cart.WithClock(func() time.Time { return fixed }), cart.WithNotifier(rec.notify))
		require.NoError(t, c.Add(coffee, 2))
		require.NoError(t, c.Add(tea, 1))

		sale, err := c.Checkout(t.Context(), creator)
		require.NoError(t, err)
		require.Equal(t, 1, sale.ID)
		require.Zero(t, c.Len())
		require.Equal(t, "Venta registrada exitosamente", rec.last())

		require.Len(t, creator.requests, 1)
		require.Equal(t, storefrontsdk.CreateSaleRequest{
			Date: "2024-05-02",
			Items: []storefrontsdk.CreateSaleItem{
				{ProductID: 1, Quantity: 2, UnitPrice: 10},
				{ProductID: 2, Quantity: 1, UnitPrice: 5},
			},
		}, creator.requests[0])
	})

	t.Run("failure keeps the lines", func(t *testing.T) {
		rec := &recorder{}
		creator := &fakeCreator{err: &storefrontsdk.APIError{StatusCode: http.StatusBadRequest, Message: "Stock insuficiente"}}
		c := cart.New(cart.WithNotifier(rec.notify))
		require.NoError(t, c.Add(coffee, 2))
		before := c.Lines()

		_, err := c.Checkout(t.Context(), creator)
		require.Error(t, err)
		require.Equal(t, before, c.Lines())
		require.Equal(t, "Stock insuficiente", rec.last())

		// A retry sends the same lines again
		creator.err = nil
		_, err = c.Checkout(t.Context(), creator)
		require.NoError(t, err)
		require.Equal(t, creator.requests[0].Items, creator.requests[1].Items)
	})

	t.Run("transport failure uses generic message", func(t *testing.T) {
		rec := &recorder{}
		creator := &fakeCreator{err: errors.New("dial tcp: connection refused")}
		c := cart.New(cart.WithNotifier(rec.notify))
		require.NoError(t, c.Add(coffee, 1))

		_, err := c.Checkout(t.Context(), creator)
		require.Error(t, err)
		require.Equal(t, "Error al registrar la venta", rec.last())
	})
}

func TestConcurrentAddsRespectStock(t *testing.T) {
	t.Parallel()

	c := cart.New()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Add(coffee, 1)
		}()
	}
	wg.Wait()

	require.Equal(t, coffee.Stock, c.Lines()[0].Quantity)
}
