package storefrontsdk

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// CreateSale registers a sale.
func (s *Session) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	body, err := encodeJSON(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/Sales", body, nil)
	if err != nil {
		return nil, err
	}

	var sale Sale
	if err := decodeJSON(resp, &sale, msgCreateSale); err != nil {
		return nil, err
	}

	return &sale, nil
}

// SalesReport lists the sales between start and end, both inclusive days.
// A zero bound fails with ErrDateRangeRequired and end before start with
// ErrInvalidDateRange, neither reaching the network.
func (s *Session) SalesReport(ctx context.Context, start, end time.Time) ([]Sale, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrDateRangeRequired
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	query := url.Values{
		"start": {start.Format(DateLayout)},
		"end":   {end.Format(DateLayout)},
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/sales/report?"+query.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	sales := []Sale{}
	if err := decodeJSON(resp, &sales, msgGetSalesReport); err != nil {
		return nil, err
	}

	return sales, nil
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields the zero time so
// SalesReport can report the missing bound.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}
