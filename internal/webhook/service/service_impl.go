package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billingsync/internal/config"
	gatewaydomain "github.com/smallbiznis/billingsync/internal/gateway/domain"
	obsmetrics "github.com/smallbiznis/billingsync/internal/observability/metrics"
	storedomain "github.com/smallbiznis/billingsync/internal/store/domain"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Collections written by the projection handlers.
const (
	collectionProducts        = "products"
	collectionPrices          = "prices"
	collectionCustomers       = "customers"
	collectionInvoices        = "invoices"
	collectionOneTimePayments = "one_time_payments"
	collectionSubscriptions   = "subscriptions"
)

// Conflict targets, the natural key of each collection.
var (
	customerConflict     = []string{"gateway_name", "gateway_customer_id"}
	invoiceConflict      = []string{"gateway_name", "gateway_invoice_id"}
	paymentConflict      = []string{"gateway_name", "gateway_charge_id"}
	subscriptionConflict = []string{"gateway_name", "gateway_subscription_id"}
)

// Warnings returned on the designed skip paths.
const (
	warnMissingWorkspace   = "customer event carries no workspace metadata; no row written"
	warnMissingInvoiceRef  = "charge event has no associated invoice; no row written"
	warnMissingLineContext = "no product/price context available for charge; no row written"
)

var warningReasons = map[string]string{
	warnMissingWorkspace:   "missing_workspace_link",
	warnMissingInvoiceRef:  "missing_invoice_reference",
	warnMissingLineContext: "missing_line_context",
}

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Store   storedomain.Store
	Fetcher gatewaydomain.InvoiceFetcher
	GenID   *snowflake.Node
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	gateway string
	log     *zap.Logger
	store   storedomain.Store
	fetcher gatewaydomain.InvoiceFetcher
	genID   *snowflake.Node
	metrics *obsmetrics.Metrics
}

func New(p Params) webhookdomain.Service {
	return &Service{
		gateway: p.Cfg.GatewayName,
		log:     p.Log.Named("webhook.projection"),
		store:   p.Store,
		fetcher: p.Fetcher,
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

type handlerFunc func(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error)

// Process dispatches a decoded event to exactly one projection handler.
// Unrecognized event types are an acknowledged no-op; the pipeline never
// fails the whole request because of a type it does not know.
func (s *Service) Process(ctx context.Context, event *webhookdomain.Event) (webhookdomain.Result, error) {
	s.metrics.RecordReceived(event.Type, string(event.Mode))

	handler, ok := s.handlerFor(event.Type)
	if !ok {
		s.log.Debug("unrecognized event type acknowledged",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		s.metrics.RecordSkipped(event.Type, "unrecognized_type")
		return webhookdomain.Result{}, nil
	}

	result, err := handler(ctx, event)
	switch {
	case err != nil:
		s.metrics.RecordFailed(event.Type, errorLabel(err))
		s.log.Error("event projection failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
	case result.Skipped():
		s.metrics.RecordSkipped(event.Type, warningReasons[result.Warning])
		s.log.Warn("event acknowledged without projection",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("warning", result.Warning),
		)
	default:
		s.metrics.RecordProjected(event.Type)
	}
	return result, err
}

func (s *Service) handlerFor(eventType string) (handlerFunc, bool) {
	switch eventType {
	case webhookdomain.EventProductCreated:
		return s.handleProductCreated, true
	case webhookdomain.EventPriceCreated:
		return s.handlePriceCreated, true
	case webhookdomain.EventCustomerCreated, webhookdomain.EventCustomerUpdated:
		return s.handleCustomerUpserted, true
	case webhookdomain.EventInvoiceCreated, webhookdomain.EventInvoiceUpdated:
		return s.handleInvoiceUpserted, true
	case webhookdomain.EventChargeSucceeded:
		return s.handleChargeSucceeded, true
	case webhookdomain.EventSubscriptionCreated, webhookdomain.EventSubscriptionUpdated:
		return s.handleSubscriptionUpserted, true
	case webhookdomain.EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted, true
	default:
		return nil, false
	}
}

func errorLabel(err error) string {
	switch {
	case errors.Is(err, webhookdomain.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, webhookdomain.ErrValidation):
		return "validation"
	case errors.Is(err, webhookdomain.ErrStorage):
		return "storage"
	case errors.Is(err, webhookdomain.ErrEnrichmentFetch):
		return "enrichment"
	default:
		return "internal"
	}
}
