package service

import (
	"context"
	"encoding/json"
	"fmt"

	billingdomain "github.com/smallbiznis/billingsync/internal/billing/domain"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
	"go.uber.org/zap"
)

const invoiceStatusPaid = "paid"

func (s *Service) handleInvoiceUpserted(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	var payload webhookdomain.InvoicePayload
	if err := json.Unmarshal(event.Object, &payload); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: invoice payload: %v", webhookdomain.ErrMalformedPayload, err)
	}
	if payload.ID == "" {
		return webhookdomain.Result{}, fmt.Errorf("%w: invoice id missing", webhookdomain.ErrValidation)
	}

	row := billingdomain.Invoice{
		ID:                s.genID.Generate(),
		GatewayName:       s.gateway,
		GatewayInvoiceID:  payload.ID,
		GatewayCustomerID: payload.Customer,
		Amount:            minorToMajor(payload.AmountDue),
		Currency:          normalizeCurrency(payload.Currency),
		Status:            payload.Status,
		DueDate:           epochToDate(payload.DueDate),
		HostedInvoiceURL:  optString(payload.HostedInvoiceURL),
	}

	// Product and price linkage comes from the first line item when present.
	if len(payload.Lines.Data) > 0 && payload.Lines.Data[0].Price != nil {
		row.GatewayPriceID = optString(payload.Lines.Data[0].Price.ID)
		row.GatewayProductID = optString(payload.Lines.Data[0].Price.Product)
	}

	// paid_date records when the paid status was observed, not the
	// gateway's payment timestamp. Kept for schema compatibility.
	if payload.Status == invoiceStatusPaid {
		row.PaidDate = dateToday()
	}

	if err := s.store.Upsert(ctx, collectionInvoices, &row, invoiceConflict); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: upsert invoice: %v", webhookdomain.ErrStorage, err)
	}

	s.log.Info("invoice projected",
		zap.String("gateway_invoice_id", payload.ID),
		zap.String("gateway_customer_id", payload.Customer),
		zap.String("status", payload.Status),
	)
	return webhookdomain.Result{}, nil
}
