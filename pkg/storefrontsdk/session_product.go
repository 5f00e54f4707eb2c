package storefrontsdk

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// Product catalogue operations

func productPath(id int) string {
	return "/Products/" + strconv.Itoa(id)
}

// ListProducts returns the whole catalogue.
func (s *Session) ListProducts(ctx context.Context) ([]Product, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/Products", nil, nil)
	if err != nil {
		return nil, err
	}

	products := []Product{}
	if err := decodeJSON(resp, &products, msgListProducts); err != nil {
		return nil, err
	}

	return products, nil
}

// GetProduct returns a single product.
func (s *Session) GetProduct(ctx context.Context, id int) (*Product, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, productPath(id), nil, nil)
	if err != nil {
		return nil, err
	}

	var product Product
	if err := decodeJSON(resp, &product, msgGetProduct); err != nil {
		return nil, err
	}

	return &product, nil
}

// CreateProduct adds a product and returns it as stored by the server.
func (s *Session) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	body, err := encodeJSON(input)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/Products", body, nil)
	if err != nil {
		return nil, err
	}

	var product Product
	if err := decodeJSON(resp, &product, msgCreateProduct); err != nil {
		return nil, err
	}

	return &product, nil
}

// UpdateProduct replaces a product. The API answers 204 No Content on
// success, in which case the submitted product is returned.
func (s *Session) UpdateProduct(ctx context.Context, product Product) (*Product, error) {
	if product.ID == 0 {
		return nil, fmt.Errorf("update product: missing id")
	}

	body, err := encodeJSON(product)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPut, productPath(product.ID), body, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		discard(resp)
		return &product, nil
	}

	updated := product
	if err := decodeJSON(resp, &updated, msgUpdateProduct); err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteProduct removes a product.
func (s *Session) DeleteProduct(ctx context.Context, id int) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, productPath(id), nil, nil)
	if err != nil {
		return err
	}

	return checkStatusOK(resp, msgDeleteProduct)
}
