package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	billingdomain "github.com/smallbiznis/billingsync/internal/billing/domain"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
	"go.uber.org/zap"
)

// metadataWorkspaceKey links a gateway customer to an internal workspace.
const metadataWorkspaceKey = "workspace_id"

func (s *Service) handleCustomerUpserted(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	var payload webhookdomain.CustomerPayload
	if err := json.Unmarshal(event.Object, &payload); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: customer payload: %v", webhookdomain.ErrMalformedPayload, err)
	}
	if payload.ID == "" {
		return webhookdomain.Result{}, fmt.Errorf("%w: customer id missing", webhookdomain.ErrValidation)
	}

	workspaceID := strings.TrimSpace(payload.Metadata[metadataWorkspaceKey])
	if workspaceID == "" {
		// Accepted but not projected: without the tenant link the row
		// cannot be attributed to a workspace.
		return webhookdomain.Result{Warning: warnMissingWorkspace}, nil
	}

	email := strings.TrimSpace(payload.Email)
	if email == "" {
		email = billingdomain.PlaceholderEmail
	}

	row := billingdomain.Customer{
		ID:                s.genID.Generate(),
		GatewayName:       s.gateway,
		GatewayCustomerID: payload.ID,
		WorkspaceID:       workspaceID,
		Currency:          optString(normalizeCurrency(payload.Currency)),
		BillingEmail:      email,
		Metadata:          metadataMap(payload.Metadata),
	}

	if err := s.store.Upsert(ctx, collectionCustomers, &row, customerConflict); err != nil {
		return webhookdomain.Result{}, fmt.Errorf("%w: upsert customer: %v", webhookdomain.ErrStorage, err)
	}

	s.log.Info("customer projected",
		zap.String("gateway_customer_id", payload.ID),
		zap.String("workspace_id", workspaceID),
	)
	return webhookdomain.Result{}, nil
}
