// Package stripeclient implements the invoice enrichment lookup against the
// Stripe API.
package stripeclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/billingsync/internal/gateway/domain"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

type Fetcher struct {
	api *client.API
	log *zap.Logger
}

// New builds an invoice fetcher. An empty secret key yields a fetcher whose
// lookups report ErrUnavailable, matching the degraded no-credentials mode.
func New(secretKey string, log *zap.Logger) *Fetcher {
	secretKey = strings.TrimSpace(secretKey)

	var api *client.API
	if secretKey != "" {
		api = &client.API{}
		api.Init(secretKey, nil)
	}

	return &Fetcher{
		api: api,
		log: log.Named("gateway.stripe"),
	}
}

// Available reports whether the fetcher holds usable credentials.
func (f *Fetcher) Available() bool {
	return f != nil && f.api != nil
}

// FetchInvoice retrieves the invoice with its line prices and products
// expanded, and returns the linkage from the first line item.
func (f *Fetcher) FetchInvoice(ctx context.Context, invoiceID string) (*domain.LineContext, error) {
	if !f.Available() {
		return nil, domain.ErrUnavailable
	}
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return nil, nil
	}

	params := &stripe.InvoiceParams{}
	params.Context = ctx
	params.AddExpand("lines.data.price.product")

	inv, err := f.api.Invoices.Get(invoiceID, params)
	if err != nil {
		f.log.Error("invoice lookup failed", zap.String("gateway_invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	if inv.Lines == nil || len(inv.Lines.Data) == 0 {
		return nil, nil
	}
	line := inv.Lines.Data[0]
	if line == nil || line.Price == nil {
		return nil, nil
	}

	out := &domain.LineContext{GatewayPriceID: line.Price.ID}
	if line.Price.Product != nil {
		out.GatewayProductID = line.Price.Product.ID
	}
	return out, nil
}
