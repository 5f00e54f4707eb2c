package screen

import (
	"context"

	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/aussiebroadwan/storefront/pkg/validate"
)

// ProductService is the part of *storefrontsdk.Session the product form needs.
type ProductService interface {
	CreateProduct(ctx context.Context, input storefrontsdk.ProductInput) (*storefrontsdk.Product, error)
	UpdateProduct(ctx context.Context, product storefrontsdk.Product) (*storefrontsdk.Product, error)
}

// ProductForm is the product create/edit dialog.
type ProductForm struct {
	Locale validate.Locale
	Modal  Modal[storefrontsdk.Product]
	Input  storefrontsdk.ProductInput

	// Errors holds the field failures of the last Submit.
	Errors validate.Errors
	// Err holds the service failure of the last Submit.
	Err error
}

func NewProductForm(locale validate.Locale) *ProductForm {
	return &ProductForm{Locale: locale}
}

// OpenCreate opens the dialog with empty inputs.
func (f *ProductForm) OpenCreate() error {
	if err := f.Modal.OpenCreate(); err != nil {
		return err
	}
	f.reset(storefrontsdk.ProductInput{})
	return nil
}

// OpenEdit opens the dialog prefilled with product.
func (f *ProductForm) OpenEdit(product storefrontsdk.Product) error {
	if err := f.Modal.OpenEdit(product); err != nil {
		return err
	}
	f.reset(storefrontsdk.ProductInput{
		Name:     product.Name,
		Price:    product.Price,
		Stock:    product.Stock,
		ImageURL: product.ImageURL,
	})
	return nil
}

func (f *ProductForm) Close() {
	f.Modal.Close()
	f.reset(storefrontsdk.ProductInput{})
}

func (f *ProductForm) Validate() validate.Errors {
	l := labelsFor(f.Locale)
	return validate.Fields(f.Locale,
		validate.Field{Name: "name", Label: l.ProductName, Value: f.Input.Name, Rule: validate.Rules.ProductName},
		validate.Field{Name: "price", Label: l.Price, Value: f.Input.Price, Rule: validate.Rules.Price},
		validate.Field{Name: "stock", Label: l.Stock, Value: f.Input.Stock, Rule: validate.Rules.Stock},
		validate.Field{Name: "imageUrl", Label: l.ImageURL, Value: f.Input.ImageURL, Rule: validate.Rules.ImageURL},
	)
}

// Submit creates or updates the product depending on the modal mode. Invalid
// input returns validate.Errors without calling svc. On success the dialog
// closes; on failure it stays open with Err set.
func (f *ProductForm) Submit(ctx context.Context, svc ProductService) (*storefrontsdk.Product, error) {
	if f.Modal.Mode() == Closed {
		return nil, f.Modal.invalid("submit")
	}

	f.Err = nil
	if errs := f.Validate(); errs != nil {
		f.Errors = errs
		return nil, errs
	}
	f.Errors = nil

	var (
		product *storefrontsdk.Product
		err     error
	)
	if editing, ok := f.Modal.Entity(); ok {
		product, err = svc.UpdateProduct(ctx, f.Input.WithID(editing.ID))
	} else {
		product, err = svc.CreateProduct(ctx, f.Input)
	}
	if err != nil {
		f.Err = err
		return nil, err
	}

	f.Close()
	return product, nil
}

func (f *ProductForm) reset(input storefrontsdk.ProductInput) {
	f.Input = input
	f.Errors = nil
	f.Err = nil
}
