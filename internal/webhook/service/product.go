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

func (s *Service) handleProductCreated(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	var payload webhookdomain.ProductPayload
	if err := json.Unmarshal(event.Object, &payload); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: product payload: %v", webhookdomain.ErrMalformedPayload, err)
	}
	if payload.ID == "" {
		return webhookdomain.Result{}, fmt.Errorf("%w: product id missing", webhookdomain.ErrValidation)
	}

	row := billingdomain.Product{
		ID:               s.genID.Generate(),
		GatewayName:      s.gateway,
		GatewayProductID: payload.ID,
		Name:             payload.Name,
		Description:      payload.Description,
		Features:         parseFeatures(payload.Metadata),
		Active:           boolOrDefault(payload.Active, true),
		Display:          parseDisplay(payload.Metadata),
	}

	if err := s.store.Insert(ctx, collectionProducts, &row); err != nil {
		// Redelivered events hit the natural-key constraint; the first
		// projection already happened.
		if db.IsDuplicateKeyErr(err) {
			s.log.Debug("product already projected",
				zap.String("gateway_product_id", payload.ID),
			)
			return webhookdomain.Result{}, nil
		}
		return webhookdomain.Result{}, fmt.Errorf("%w: insert product: %v", webhookdomain.ErrStorage, err)
	}

	s.log.Info("product projected",
		zap.String("gateway_product_id", payload.ID),
		zap.String("name", payload.Name),
	)
	return webhookdomain.Result{}, nil
}
