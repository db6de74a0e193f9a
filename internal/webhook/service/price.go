package service

import (
	"context"
	"encoding/json"
	"fmt"

	billingdomain "github.com/smallbiznis/billingsync/internal/billing/domain"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
	"github.com/smallbiznis/billingsync/pkg/db"
	"go.uber.org/zap"
)

func (s *Service) handlePriceCreated(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	var payload webhookdomain.PricePayload
	if err := json.Unmarshal(event.Object, &payload); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: price payload: %v", webhookdomain.ErrMalformedPayload, err)
	}
	if payload.ID == "" {
		return webhookdomain.Result{}, fmt.Errorf("%w: price id missing", webhookdomain.ErrValidation)
	}

	row := billingdomain.Price{
		ID:               s.genID.Generate(),
		GatewayName:      s.gateway,
		GatewayPriceID:   payload.ID,
		GatewayProductID: payload.Product,
		Currency:         normalizeCurrency(payload.Currency),
		Amount:           minorToMajor(payload.UnitAmount),
		Active:           boolOrDefault(payload.Active, true),
	}
	if payload.Recurring != nil {
		row.RecurringInterval = optString(payload.Recurring.Interval)
		row.RecurringIntervalCount = payload.Recurring.IntervalCount
		row.TrialPeriodDays = payload.Recurring.TrialPeriodDays
	}

	if err := s.store.Insert(ctx, collectionPrices, &row); err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.log.Debug("price already projected",
				zap.String("gateway_price_id", payload.ID),
			)
			return webhookdomain.Result{}, nil
		}
		return webhookdomain.Result{}, fmt.Errorf("%w: insert price: %v", webhookdomain.ErrStorage, err)
	}

	s.log.Info("price projected",
		zap.String("gateway_price_id", payload.ID),
		zap.String("gateway_product_id", payload.Product),
		zap.String("amount", row.Amount.String()),
	)
	return webhookdomain.Result{}, nil
}
