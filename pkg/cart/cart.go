// Package cart aggregates sale lines client-side before a single sale is
// registered. Quantities are bounded by the stock of the product snapshot
// taken when the line was first added.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
)

var (
	ErrInsufficientStock = errors.New("cart: insufficient stock")
	ErrInvalidQuantity   = errors.New("cart: quantity must be positive")
	ErrEmptyCart         = errors.New("cart: no items")
)

// StockError reports a rejected quantity. It matches ErrInsufficientStock.
type StockError struct {
	Product   string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("cart: insufficient stock of %s: requested %d, available %d", e.Product, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Line is one product pending inclusion in the sale. UnitPrice is copied from
// the product when the line is created and does not follow later price changes.
type Line struct {
	ProductID int
	Product   storefrontsdk.Product
	Quantity  int
	UnitPrice float64
}

// Subtotal is Quantity × UnitPrice.
func (l Line) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// SaleCreator registers a sale. *storefrontsdk.Session implements it.
type SaleCreator interface {
	CreateSale(ctx context.Context, req storefrontsdk.CreateSaleRequest) (*storefrontsdk.Sale, error)
}

// Cart is safe for concurrent use; mutations apply in lock order.
type Cart struct {
	mu    sync.Mutex
	lines []Line

	now    func() time.Time
	notify Notifier
}

type Option func(*Cart)

// WithClock replaces time.Now when dating the sale.
func WithClock(now func() time.Time) Option {
	return func(c *Cart) { c.now = now }
}

// WithNotifier receives a user-facing message after every cart event.
func WithNotifier(n Notifier) Option {
	return func(c *Cart) { c.notify = n }
}

func New(opts ...Option) *Cart {
	c := &Cart{now: time.Now, notify: func(Level, string) {}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add puts qty units of product in the cart, merging with an existing line.
// If the merged quantity would exceed the product's stock nothing changes and
// a *StockError is returned.
func (c *Cart) Add(product storefrontsdk.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.find(product.ID)
	if i < 0 {
		if qty > product.Stock {
			return c.rejectStock(product, qty)
		}
		c.lines = append(c.lines, Line{
			ProductID: product.ID,
			Product:   product,
			Quantity:  qty,
			UnitPrice: product.Price,
		})
		c.notify(LevelSuccess, fmt.Sprintf(msgAdded, product.Name))
		return nil
	}

	total := c.lines[i].Quantity + qty
	if total > product.Stock {
		return c.rejectStock(product, total)
	}
	c.lines[i].Quantity = total
	c.notify(LevelSuccess, fmt.Sprintf(msgMerged, product.Name))
	return nil
}

// Remove deletes the line for productID. Unknown ids are ignored.
func (c *Cart) Remove(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
}

// UpdateQuantity sets the quantity of an existing line. qty <= 0 removes the
// line. A quantity above the line's stock snapshot is rejected with a
// *StockError. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(productID, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty <= 0 {
		c.remove(productID)
		return nil
	}

	i := c.find(productID)
	if i < 0 {
		return nil
	}

	line := &c.lines[i]
	if qty > line.Product.Stock {
		return c.rejectStock(line.Product, qty)
	}
	line.Quantity = qty
	c.notify(LevelSuccess, fmt.Sprintf(msgUpdated, line.Product.Name))
	return nil
}

// Total is the sum of all line subtotals; 0 for an empty cart.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the lines in the order they were added.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Request builds the sale request for the current lines, dated today (UTC).
func (c *Cart) Request() storefrontsdk.CreateSaleRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.request()
}

// Checkout registers the cart as one sale. An empty cart fails with
// ErrEmptyCart without calling creator. The cart is emptied only when the
// sale is accepted; on failure the lines are kept so the caller can retry.
//
// The lock is held for the whole call, so edits made meanwhile wait and
// apply to whatever is left afterwards.
func (c *Cart) Checkout(ctx context.Context, creator SaleCreator) (*storefrontsdk.Sale, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		c.notify(LevelError, msgEmpty)
		return nil, ErrEmptyCart
	}

	sale, err := creator.CreateSale(ctx, c.request())
	if err != nil {
		c.notify(LevelError, failureMessage(err))
		return nil, err
	}

	c.lines = nil
	c.notify(LevelSuccess, msgRegistered)
	return sale, nil
}

func (c *Cart) request() storefrontsdk.CreateSaleRequest {
	items := make([]storefrontsdk.CreateSaleItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, storefrontsdk.CreateSaleItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return storefrontsdk.CreateSaleRequest{
		Date:  c.now().UTC().Format(storefrontsdk.DateLayout),
		Items: items,
	}
}

func (c *Cart) find(productID int) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(productID int) {
	i := c.find(productID)
	if i < 0 {
		return
	}
	name := c.lines[i].Product.Name
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.notify(LevelSuccess, fmt.Sprintf(msgRemoved, name))
}

func (c *Cart) rejectStock(product storefrontsdk.Product, requested int) error {
	c.notify(LevelError, fmt.Sprintf(msgNoStock, product.Name, product.Stock))
	return &StockError{Product: product.Name, Requested: requested, Available: product.Stock}
}
