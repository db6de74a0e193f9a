// Package domain defines the upstream gateway lookups used to enrich events
// that arrive without their product/price linkage.
package domain

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable means no gateway credentials are configured; callers
	// treat the fetch as yielding no usable data.
	ErrUnavailable = errors.New("gateway_client_unavailable")
	// ErrFetchFailed wraps transport or API failures from the gateway.
	ErrFetchFailed = errors.New("gateway_fetch_failed")
)

// LineContext is the product/price linkage recovered from an invoice's first
// line item.
type LineContext struct {
	GatewayProductID string
	GatewayPriceID   string
}

// InvoiceFetcher retrieves an invoice with expanded line-item detail.
// A nil LineContext with a nil error means the invoice had no usable line.
type InvoiceFetcher interface {
	FetchInvoice(ctx context.Context, invoiceID string) (*LineContext, error)
}
