package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	billingdomain "github.com/smallbiznis/billingsync/internal/billing/domain"
	gatewaydomain "github.com/smallbiznis/billingsync/internal/gateway/domain"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
	"go.uber.org/zap"
)

// handleChargeSucceeded projects a one-time payment. The charge payload does
// not carry product/price context, so the referenced invoice is fetched from
// the gateway with expanded line items before writing. Both the missing
// invoice reference and missing enrichment data are designed skip paths.
func (s *Service) handleChargeSucceeded(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	var payload webhookdomain.ChargePayload
	if err := json.Unmarshal(event.Object, &payload); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: charge payload: %v", webhookdomain.ErrMalformedPayload, err)
	}
	if payload.ID == "" {
		return webhookdomain.Result{}, fmt.Errorf("%w: charge id missing", webhookdomain.ErrValidation)
	}

	if payload.Invoice == "" {
		return webhookdomain.Result{Warning: warnMissingInvoiceRef}, nil
	}

	line, err := s.fetcher.FetchInvoice(ctx, payload.Invoice)
	if err != nil {
		if errors.Is(err, gatewaydomain.ErrUnavailable) {
			return webhookdomain.Result{Warning: warnMissingLineContext}, nil
		}
		return webhookdomain.Result{}, fmt.Errorf("%w: %v", webhookdomain.ErrEnrichmentFetch, err)
	}
	if line == nil {
		return webhookdomain.Result{Warning: warnMissingLineContext}, nil
	}

	row := billingdomain.OneTimePayment{
		ID:                s.genID.Generate(),
		GatewayName:       s.gateway,
		GatewayChargeID:   payload.ID,
		GatewayCustomerID: payload.Customer,
		GatewayInvoiceID:  payload.Invoice,
		GatewayProductID:  optString(line.GatewayProductID),
		GatewayPriceID:    optString(line.GatewayPriceID),
		Amount:            minorToMajor(payload.Amount),
		Currency:          normalizeCurrency(payload.Currency),
		Status:            payload.Status,
		ChargedAt:         epochToTime(payload.Created, event.Created),
	}

	if err := s.store.Upsert(ctx, collectionOneTimePayments, &row, paymentConflict); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: upsert payment: %v", webhookdomain.ErrStorage, err)
	}

	s.log.Info("one-time payment projected",
		zap.String("gateway_charge_id", payload.ID),
		zap.String("gateway_invoice_id", payload.Invoice),
		zap.String("amount", row.Amount.String()),
	)
	return webhookdomain.Result{}, nil
}
