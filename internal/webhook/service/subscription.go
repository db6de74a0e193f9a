package service

import (
	"context"
	"encoding/json"
	"fmt"

	billingdomain "github.com/smallbiznis/billingsync/internal/billing/domain"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
	"go.uber.org/zap"
)

func (s *Service) handleSubscriptionUpserted(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	var payload webhookdomain.SubscriptionPayload
	if err := json.Unmarshal(event.Object, &payload); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: subscription payload: %v", webhookdomain.ErrMalformedPayload, err)
	}
	if payload.ID == "" {
		return webhookdomain.Result{}, fmt.Errorf("%w: subscription id missing", webhookdomain.ErrValidation)
	}
	if len(payload.Items.Data) == 0 {
		return webhookdomain.Result{}, fmt.Errorf("%w: subscription items missing", webhookdomain.ErrValidation)
	}

	status := billingdomain.NormalizeSubscriptionStatus(payload.Status)

	row := billingdomain.Subscription{
		ID:                    s.genID.Generate(),
		GatewayName:           s.gateway,
		GatewaySubscriptionID: payload.ID,
		GatewayCustomerID:     payload.Customer,
		Status:                status,
		CurrentPeriodStart:    epochToDate(payload.CurrentPeriodStart),
		CurrentPeriodEnd:      epochToDate(payload.CurrentPeriodEnd),
		Currency:              optString(normalizeCurrency(payload.Currency)),
		Trialing:              status == billingdomain.SubscriptionStatusTrialing,
		TrialEnd:              epochToDate(payload.TrialEnd),
		CancelAtPeriodEnd:     boolOrDefault(payload.CancelAtPeriodEnd, false),
		Quantity:              1,
	}

	first := payload.Items.Data[0]
	if first.Price != nil {
		row.GatewayPriceID = optString(first.Price.ID)
		row.GatewayProductID = optString(first.Price.Product)
	}
	if first.Quantity != nil && *first.Quantity > 0 {
		row.Quantity = *first.Quantity
	}

	if err := s.store.Upsert(ctx, collectionSubscriptions, &row, subscriptionConflict); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: upsert subscription: %v", webhookdomain.ErrStorage, err)
	}

	s.log.Info("subscription projected",
		zap.String("gateway_subscription_id", payload.ID),
		zap.String("gateway_customer_id", payload.Customer),
		zap.String("status", string(status)),
	)
	return webhookdomain.Result{}, nil
}

func (s *Service) handleSubscriptionDeleted(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	var payload webhookdomain.SubscriptionPayload
	if err := json.Unmarshal(event.Object, &payload); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: subscription payload: %v", webhookdomain.ErrMalformedPayload, err)
	}
	if payload.ID == "" {
		return webhookdomain.Result{}, fmt.Errorf("%w: subscription id missing", webhookdomain.ErrValidation)
	}

	// Deleting a row that was never projected is a success, not an error.
	err := s.store.DeleteMatching(ctx, collectionSubscriptions, map[string]any{
		"gateway_name":            s.gateway,
		"gateway_subscription_id": payload.ID,
	})
	if err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: delete subscription: %v", webhookdomain.ErrStorage, err)
	}

	s.log.Info("subscription removed",
		zap.String("gateway_subscription_id", payload.ID),
	)
	return webhookdomain.Result{}, nil
}
