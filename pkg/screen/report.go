package screen

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/aussiebroadwan/storefront/pkg/validate"
)

// ReportService is the part of *storefrontsdk.Session the report screen needs.
type ReportService interface {
	SalesReport(ctx context.Context, start, end time.Time) ([]storefrontsdk.Sale, error)
}

// ReportRange is the sales report screen: two YYYY-MM-DD inputs and the last
// result.
type ReportRange struct {
	Locale validate.Locale
	Start  string
	End    string

	Sales []storefrontsdk.Sale
	// Message is the user-facing error of the last Fetch, "" on success.
	Message string
}

// Fetch loads the report for the current range. A missing date is reported
// without calling svc.
func (r *ReportRange) Fetch(ctx context.Context, svc ReportService) ([]storefrontsdk.Sale, error) {
	r.Message = ""

	if r.Start == "" || r.End == "" {
		r.Message = labelsFor(r.Locale).DatesMissing
		return nil, storefrontsdk.ErrDateRangeRequired
	}

	start, err := storefrontsdk.ParseDate(r.Start)
	if err != nil {
		r.Message = err.Error()
		return nil, err
	}
	end, err := storefrontsdk.ParseDate(r.End)
	if err != nil {
		r.Message = err.Error()
		return nil, err
	}

	sales, err := svc.SalesReport(ctx, start, end)
	if err != nil {
		r.Message = userMessage(err)
		return nil, err
	}

	r.Sales = sales
	return sales, nil
}

// Total sums the totals of the fetched sales.
func (r *ReportRange) Total() float64 {
	var total float64
	for _, s := range r.Sales {
		total += s.Total
	}
	return total
}

// userMessage prefers the API's own message over the wrapped error text.
func userMessage(err error) string {
	var apiErr *storefrontsdk.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
