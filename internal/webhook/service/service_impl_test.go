package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/billingsync/internal/billing/domain"
	"github.com/smallbiznis/billingsync/internal/config"
	gatewaydomain "github.com/smallbiznis/billingsync/internal/gateway/domain"
	"github.com/smallbiznis/billingsync/internal/store/repository"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fetcherStub struct {
	line  *gatewaydomain.LineContext
	err   error
	calls int
}

func (f *fetcherStub) FetchInvoice(ctx context.Context, invoiceID string) (*gatewaydomain.LineContext, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.line, nil
}

func setupService(t *testing.T, fetcher gatewaydomain.InvoiceFetcher) (webhookdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&billingdomain.Product{},
		&billingdomain.Price{},
		&billingdomain.Customer{},
		&billingdomain.Invoice{},
		&billingdomain.OneTimePayment{},
		&billingdomain.Subscription{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		Cfg:     config.Config{GatewayName: "stripe"},
		Log:     zap.NewNop(),
		Store:   repository.Provide(db),
		Fetcher: fetcher,
		GenID:   node,
	})
	return svc, db
}

func newEvent(t *testing.T, eventType string, object any) *webhookdomain.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	if err != nil {
		t.Fatalf("marshal object: %v", err)
	}
	return &webhookdomain.Event{
		ID:      "evt_" + eventType,
		Type:    eventType,
		Created: time.Now().UTC().Unix(),
		Object:  raw,
		Mode:    webhookdomain.ModeManual,
	}
}

func rowCount(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestProductCreatedProjection(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})

	event := newEvent(t, webhookdomain.EventProductCreated, map[string]any{
		"id":          "prod_1",
		"name":        "Starter",
		"description": "entry plan",
		"metadata": map[string]string{
			"features": "sso,audit_log",
			"display":  "false",
		},
	})
	result, err := svc.Process(context.Background(), event)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Skipped() {
		t.Fatalf("unexpected warning: %s", result.Warning)
	}

	var row billingdomain.Product
	if err := db.First(&row, "gateway_product_id = ?", "prod_1").Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if row.GatewayName != "stripe" {
		t.Fatalf("expected gateway stripe, got %s", row.GatewayName)
	}
	if row.Name != "Starter" {
		t.Fatalf("expected name Starter, got %s", row.Name)
	}
	if !row.Active {
		t.Fatalf("expected active default true")
	}
	if row.Display {
		t.Fatalf("expected display disabled via metadata")
	}

	var features []string
	if err := json.Unmarshal(row.Features, &features); err != nil {
		t.Fatalf("decode features: %v", err)
	}
	if len(features) != 2 || features[0] != "sso" || features[1] != "audit_log" {
		t.Fatalf("unexpected features: %v", features)
	}
}

func TestProductCreatedReplayAcknowledged(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})
	ctx := context.Background()

	event := newEvent(t, webhookdomain.EventProductCreated, map[string]any{
		"id":   "prod_replay",
		"name": "Starter",
	})
	if _, err := svc.Process(ctx, event); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := svc.Process(ctx, event); err != nil {
		t.Fatalf("redelivery must be acknowledged: %v", err)
	}
	if n := rowCount(t, db, &billingdomain.Product{}); n != 1 {
		t.Fatalf("expected 1 product row, got %d", n)
	}
}

func TestPriceMinorUnitsConversion(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})

	event := newEvent(t, webhookdomain.EventPriceCreated, map[string]any{
		"id":          "price_1",
		"product":     "prod_1",
		"currency":    "usd",
		"unit_amount": 1999,
		"recurring": map[string]any{
			"interval":          "month",
			"interval_count":    1,
			"trial_period_days": 14,
		},
	})
	if _, err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("process: %v", err)
	}

	var row billingdomain.Price
	if err := db.First(&row, "gateway_price_id = ?", "price_1").Error; err != nil {
		t.Fatalf("load price: %v", err)
	}
	if !row.Amount.Equal(decimal.RequireFromString("19.99")) {
		t.Fatalf("expected amount 19.99, got %s", row.Amount)
	}
	if row.Currency != "USD" {
		t.Fatalf("expected currency USD, got %s", row.Currency)
	}
	if row.RecurringInterval == nil || *row.RecurringInterval != "month" {
		t.Fatalf("expected monthly interval")
	}
	if row.TrialPeriodDays == nil || *row.TrialPeriodDays != 14 {
		t.Fatalf("expected trial period 14")
	}
}

func TestCustomerUpsertIdempotent(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})
	ctx := context.Background()

	created := newEvent(t, webhookdomain.EventCustomerCreated, map[string]any{
		"id":       "cus_1",
		"email":    "first@example.com",
		"currency": "usd",
		"metadata": map[string]string{"workspace_id": "ws_42"},
	})
	if _, err := svc.Process(ctx, created); err != nil {
		t.Fatalf("process created: %v", err)
	}
	// Replay plus a later update must converge to one row.
	if _, err := svc.Process(ctx, created); err != nil {
		t.Fatalf("replay created: %v", err)
	}
	updated := newEvent(t, webhookdomain.EventCustomerUpdated, map[string]any{
		"id":       "cus_1",
		"email":    "second@example.com",
		"metadata": map[string]string{"workspace_id": "ws_42"},
	})
	if _, err := svc.Process(ctx, updated); err != nil {
		t.Fatalf("process updated: %v", err)
	}

	if n := rowCount(t, db, &billingdomain.Customer{}); n != 1 {
		t.Fatalf("expected 1 customer row, got %d", n)
	}
	var row billingdomain.Customer
	if err := db.First(&row, "gateway_customer_id = ?", "cus_1").Error; err != nil {
		t.Fatalf("load customer: %v", err)
	}
	if row.BillingEmail != "second@example.com" {
		t.Fatalf("expected updated email, got %s", row.BillingEmail)
	}
	if row.WorkspaceID != "ws_42" {
		t.Fatalf("expected workspace ws_42, got %s", row.WorkspaceID)
	}
}

func TestCustomerWithoutWorkspaceSkipped(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})

	event := newEvent(t, webhookdomain.EventCustomerCreated, map[string]any{
		"id":    "cus_orphan",
		"email": "orphan@example.com",
	})
	result, err := svc.Process(context.Background(), event)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Warning != warnMissingWorkspace {
		t.Fatalf("expected missing workspace warning, got %q", result.Warning)
	}
	if n := rowCount(t, db, &billingdomain.Customer{}); n != 0 {
		t.Fatalf("expected no customer rows, got %d", n)
	}
}

func TestCustomerPlaceholderEmail(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})

	event := newEvent(t, webhookdomain.EventCustomerCreated, map[string]any{
		"id":       "cus_noemail",
		"metadata": map[string]string{"workspace_id": "ws_1"},
	})
	if _, err := svc.Process(context.Background(), event); err != nil {
		t.Fatalf("process: %v", err)
	}

	var row billingdomain.Customer
	if err := db.First(&row, "gateway_customer_id = ?", "cus_noemail").Error; err != nil {
		t.Fatalf("load customer: %v", err)
	}
	if row.BillingEmail != billingdomain.PlaceholderEmail {
		t.Fatalf("expected placeholder email, got %s", row.BillingEmail)
	}
}

func TestInvoiceLifecyclePaidDate(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})
	ctx := context.Background()

	open := newEvent(t, webhookdomain.EventInvoiceCreated, map[string]any{
		"id":         "in_1",
		"customer":   "cus_1",
		"currency":   "usd",
		"status":     "open",
		"amount_due": 5000,
		"due_date":   time.Now().UTC().Add(72 * time.Hour).Unix(),
		"lines": map[string]any{
			"data": []map[string]any{{
				"price": map[string]any{"id": "price_1", "product": "prod_1"},
			}},
		},
	})
	if _, err := svc.Process(ctx, open); err != nil {
		t.Fatalf("process open invoice: %v", err)
	}

	var row billingdomain.Invoice
	if err := db.First(&row, "gateway_invoice_id = ?", "in_1").Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if row.PaidDate != nil {
		t.Fatalf("expected no paid date on open invoice")
	}
	if row.DueDate == nil {
		t.Fatalf("expected due date")
	}
	if row.GatewayPriceID == nil || *row.GatewayPriceID != "price_1" {
		t.Fatalf("expected price linkage from first line")
	}
	if !row.Amount.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected amount 50, got %s", row.Amount)
	}

	paid := newEvent(t, webhookdomain.EventInvoiceUpdated, map[string]any{
		"id":         "in_1",
		"customer":   "cus_1",
		"currency":   "usd",
		"status":     "paid",
		"amount_due": 5000,
	})
	if _, err := svc.Process(ctx, paid); err != nil {
		t.Fatalf("process paid invoice: %v", err)
	}

	if n := rowCount(t, db, &billingdomain.Invoice{}); n != 1 {
		t.Fatalf("expected 1 invoice row, got %d", n)
	}
	if err := db.First(&row, "gateway_invoice_id = ?", "in_1").Error; err != nil {
		t.Fatalf("reload invoice: %v", err)
	}
	if row.Status != "paid" {
		t.Fatalf("expected paid status, got %s", row.Status)
	}
	if row.PaidDate == nil {
		t.Fatalf("expected paid date set")
	}
}

func TestChargeWithoutInvoiceSkipped(t *testing.T) {
	fetcher := &fetcherStub{}
	svc, db := setupService(t, fetcher)

	event := newEvent(t, webhookdomain.EventChargeSucceeded, map[string]any{
		"id":       "ch_1",
		"customer": "cus_1",
		"currency": "usd",
		"status":   "succeeded",
		"amount":   1500,
	})
	result, err := svc.Process(context.Background(), event)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Warning != warnMissingInvoiceRef {
		t.Fatalf("expected missing invoice warning, got %q", result.Warning)
	}
	if fetcher.calls != 0 {
		t.Fatalf("expected no fetch without invoice reference")
	}
	if n := rowCount(t, db, &billingdomain.OneTimePayment{}); n != 0 {
		t.Fatalf("expected no payment rows, got %d", n)
	}
}

func TestChargeEnrichedFromInvoice(t *testing.T) {
	fetcher := &fetcherStub{line: &gatewaydomain.LineContext{
		GatewayProductID: "prod_1",
		GatewayPriceID:   "price_1",
	}}
	svc, db := setupService(t, fetcher)

	event := newEvent(t, webhookdomain.EventChargeSucceeded, map[string]any{
		"id":       "ch_2",
		"customer": "cus_1",
		"invoice":  "in_1",
		"currency": "usd",
		"status":   "succeeded",
		"amount":   1500,
		"created":  time.Now().UTC().Unix(),
	})
	result, err := svc.Process(context.Background(), event)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Skipped() {
		t.Fatalf("unexpected warning: %s", result.Warning)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one enrichment fetch, got %d", fetcher.calls)
	}

	var row billingdomain.OneTimePayment
	if err := db.First(&row, "gateway_charge_id = ?", "ch_2").Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if row.GatewayProductID == nil || *row.GatewayProductID != "prod_1" {
		t.Fatalf("expected product linkage from enrichment")
	}
	if row.GatewayPriceID == nil || *row.GatewayPriceID != "price_1" {
		t.Fatalf("expected price linkage from enrichment")
	}
	if !row.Amount.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("expected amount 15, got %s", row.Amount)
	}
}

func TestChargeEnrichmentUnavailableSkipped(t *testing.T) {
	fetcher := &fetcherStub{err: gatewaydomain.ErrUnavailable}
	svc, db := setupService(t, fetcher)

	event := newEvent(t, webhookdomain.EventChargeSucceeded, map[string]any{
		"id":      "ch_3",
		"invoice": "in_1",
		"amount":  1500,
	})
	result, err := svc.Process(context.Background(), event)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Warning != warnMissingLineContext {
		t.Fatalf("expected missing line context warning, got %q", result.Warning)
	}
	if n := rowCount(t, db, &billingdomain.OneTimePayment{}); n != 0 {
		t.Fatalf("expected no payment rows, got %d", n)
	}
}

func TestChargeEnrichmentFailure(t *testing.T) {
	fetcher := &fetcherStub{err: fmt.Errorf("%w: boom", gatewaydomain.ErrFetchFailed)}
	svc, _ := setupService(t, fetcher)

	event := newEvent(t, webhookdomain.EventChargeSucceeded, map[string]any{
		"id":      "ch_4",
		"invoice": "in_1",
		"amount":  1500,
	})
	_, err := svc.Process(context.Background(), event)
	if !errors.Is(err, webhookdomain.ErrEnrichmentFetch) {
		t.Fatalf("expected enrichment fetch error, got %v", err)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})
	ctx := context.Background()

	start := time.Now().UTC().Unix()
	end := time.Now().UTC().Add(30 * 24 * time.Hour).Unix()

	created := newEvent(t, webhookdomain.EventSubscriptionCreated, map[string]any{
		"id":                   "sub_1",
		"customer":             "cus_1",
		"status":               "trialing",
		"currency":             "usd",
		"current_period_start": start,
		"current_period_end":   end,
		"trial_end":            end,
		"items": map[string]any{
			"data": []map[string]any{{
				"price":    map[string]any{"id": "price_1", "product": "prod_1"},
				"quantity": 3,
			}},
		},
	})
	if _, err := svc.Process(ctx, created); err != nil {
		t.Fatalf("process created: %v", err)
	}

	var row billingdomain.Subscription
	if err := db.First(&row, "gateway_subscription_id = ?", "sub_1").Error; err != nil {
		t.Fatalf("load subscription: %v", err)
	}
	if row.Status != billingdomain.SubscriptionStatusTrialing {
		t.Fatalf("expected TRIALING, got %s", row.Status)
	}
	if !row.Trialing {
		t.Fatalf("expected trialing flag")
	}
	if row.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", row.Quantity)
	}
	if row.TrialEnd == nil {
		t.Fatalf("expected trial end date")
	}

	updated := newEvent(t, webhookdomain.EventSubscriptionUpdated, map[string]any{
		"id":                   "sub_1",
		"customer":             "cus_1",
		"status":               "active",
		"currency":             "usd",
		"current_period_start": start,
		"current_period_end":   end,
		"items": map[string]any{
			"data": []map[string]any{{
				"price": map[string]any{"id": "price_1", "product": "prod_1"},
			}},
		},
	})
	if _, err := svc.Process(ctx, updated); err != nil {
		t.Fatalf("process updated: %v", err)
	}

	if n := rowCount(t, db, &billingdomain.Subscription{}); n != 1 {
		t.Fatalf("expected 1 subscription row, got %d", n)
	}
	if err := db.First(&row, "gateway_subscription_id = ?", "sub_1").Error; err != nil {
		t.Fatalf("reload subscription: %v", err)
	}
	if row.Status != billingdomain.SubscriptionStatusActive {
		t.Fatalf("expected ACTIVE, got %s", row.Status)
	}
	if row.Trialing {
		t.Fatalf("expected trialing flag cleared")
	}

	deleted := newEvent(t, webhookdomain.EventSubscriptionDeleted, map[string]any{
		"id": "sub_1",
	})
	if _, err := svc.Process(ctx, deleted); err != nil {
		t.Fatalf("process deleted: %v", err)
	}
	if n := rowCount(t, db, &billingdomain.Subscription{}); n != 0 {
		t.Fatalf("expected subscription removed, got %d rows", n)
	}

	// Deleting an unknown subscription is acknowledged without error.
	if _, err := svc.Process(ctx, deleted); err != nil {
		t.Fatalf("process repeat delete: %v", err)
	}
}

func TestSubscriptionWithoutItemsRejected(t *testing.T) {
	svc, _ := setupService(t, &fetcherStub{})

	event := newEvent(t, webhookdomain.EventSubscriptionCreated, map[string]any{
		"id":       "sub_empty",
		"customer": "cus_1",
		"status":   "active",
		"items":    map[string]any{"data": []map[string]any{}},
	})
	_, err := svc.Process(context.Background(), event)
	if !errors.Is(err, webhookdomain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnknownEventTypeAcknowledged(t *testing.T) {
	svc, db := setupService(t, &fetcherStub{})

	event := newEvent(t, "payment_intent.created", map[string]any{"id": "pi_1"})
	result, err := svc.Process(context.Background(), event)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Skipped() {
		t.Fatalf("unexpected warning: %s", result.Warning)
	}
	for _, model := range []any{
		&billingdomain.Product{},
		&billingdomain.Price{},
		&billingdomain.Customer{},
		&billingdomain.Invoice{},
		&billingdomain.OneTimePayment{},
		&billingdomain.Subscription{},
	} {
		if n := rowCount(t, db, model); n != 0 {
			t.Fatalf("expected no side effects, found rows in %T", model)
		}
	}
}

func TestMalformedObjectRejected(t *testing.T) {
	svc, _ := setupService(t, &fetcherStub{})

	event := &webhookdomain.Event{
		ID:     "evt_bad",
		Type:   webhookdomain.EventProductCreated,
		Object: json.RawMessage(`"not an object"`),
		Mode:   webhookdomain.ModeManual,
	}
	_, err := svc.Process(context.Background(), event)
	if !errors.Is(err, webhookdomain.ErrMalformedPayload) {
		t.Fatalf("expected malformed payload error, got %v", err)
	}
}
