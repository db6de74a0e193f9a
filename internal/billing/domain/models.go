// Package domain contains the persisted projection rows. Every row is keyed
// by the composite of gateway name and gateway-assigned id, which is the
// conflict target for idempotent upserts under webhook replay.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PlaceholderEmail is stored when a gateway customer carries no email.
const PlaceholderEmail = "unknown@example.com"

type Product struct {
	ID               snowflake.ID   `gorm:"primaryKey"`
	GatewayName      string         `gorm:"type:text;not null;uniqueIndex:ux_products_gateway,priority:1"`
	GatewayProductID string         `gorm:"type:text;not null;uniqueIndex:ux_products_gateway,priority:2"`
	Name             string         `gorm:"type:text;not null"`
	Description      *string        `gorm:"type:text"`
	Features         datatypes.JSON `gorm:"type:jsonb"`
	Active           bool           `gorm:"not null;default:true"`
	Display          bool           `gorm:"not null;default:true"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

type Price struct {
	ID                     snowflake.ID    `gorm:"primaryKey"`
	GatewayName            string          `gorm:"type:text;not null;uniqueIndex:ux_prices_gateway,priority:1"`
	GatewayPriceID         string          `gorm:"type:text;not null;uniqueIndex:ux_prices_gateway,priority:2"`
	GatewayProductID       string          `gorm:"type:text;not null"`
	Currency               string          `gorm:"type:text;not null"`
	Amount                 decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	RecurringInterval      *string         `gorm:"type:text"`
	RecurringIntervalCount *int64          `gorm:""`
	TrialPeriodDays        *int64          `gorm:""`
	Active                 bool            `gorm:"not null;default:true"`
	CreatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Price) TableName() string { return "prices" }

type Customer struct {
	ID                snowflake.ID      `gorm:"primaryKey"`
	GatewayName       string            `gorm:"type:text;not null;uniqueIndex:ux_customers_gateway,priority:1"`
	GatewayCustomerID string            `gorm:"type:text;not null;uniqueIndex:ux_customers_gateway,priority:2"`
	WorkspaceID       string            `gorm:"type:text;not null"`
	Currency          *string           `gorm:"type:text"`
	BillingEmail      string            `gorm:"type:text;not null"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Customer) TableName() string { return "customers" }

type Invoice struct {
	ID                snowflake.ID    `gorm:"primaryKey"`
	GatewayName       string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_gateway,priority:1"`
	GatewayInvoiceID  string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_gateway,priority:2"`
	GatewayCustomerID string          `gorm:"type:text;not null"`
	GatewayProductID  *string         `gorm:"type:text"`
	GatewayPriceID    *string         `gorm:"type:text"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency          string          `gorm:"type:text;not null"`
	Status            string          `gorm:"type:text;not null"`
	DueDate           *datatypes.Date `gorm:"type:date"`
	PaidDate          *datatypes.Date `gorm:"type:date"`
	HostedInvoiceURL  *string         `gorm:"type:text"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Invoice) TableName() string { return "invoices" }

type OneTimePayment struct {
	ID                snowflake.ID    `gorm:"primaryKey"`
	GatewayName       string          `gorm:"type:text;not null;uniqueIndex:ux_one_time_payments_gateway,priority:1"`
	GatewayChargeID   string          `gorm:"type:text;not null;uniqueIndex:ux_one_time_payments_gateway,priority:2"`
	GatewayCustomerID string          `gorm:"type:text;not null"`
	GatewayInvoiceID  string          `gorm:"type:text;not null"`
	GatewayProductID  *string         `gorm:"type:text"`
	GatewayPriceID    *string         `gorm:"type:text"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency          string          `gorm:"type:text;not null"`
	Status            string          `gorm:"type:text;not null"`
	ChargedAt         time.Time       `gorm:"not null"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (OneTimePayment) TableName() string { return "one_time_payments" }

// SubscriptionStatus is the normalized lifecycle vocabulary.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "ACTIVE"
	SubscriptionStatusTrialing          SubscriptionStatus = "TRIALING"
	SubscriptionStatusPastDue           SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled          SubscriptionStatus = "CANCELED"
	SubscriptionStatusUnpaid            SubscriptionStatus = "UNPAID"
	SubscriptionStatusIncomplete        SubscriptionStatus = "INCOMPLETE"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "INCOMPLETE_EXPIRED"
	SubscriptionStatusPaused            SubscriptionStatus = "PAUSED"
)

type Subscription struct {
	ID                    snowflake.ID       `gorm:"primaryKey"`
	GatewayName           string             `gorm:"type:text;not null;uniqueIndex:ux_subscriptions_gateway,priority:1"`
	GatewaySubscriptionID string             `gorm:"type:text;not null;uniqueIndex:ux_subscriptions_gateway,priority:2"`
	GatewayCustomerID     string             `gorm:"type:text;not null"`
	GatewayProductID      *string            `gorm:"type:text"`
	GatewayPriceID        *string            `gorm:"type:text"`
	Status                SubscriptionStatus `gorm:"type:text;not null"`
	CurrentPeriodStart    *datatypes.Date    `gorm:"type:date"`
	CurrentPeriodEnd      *datatypes.Date    `gorm:"type:date"`
	Currency              *string            `gorm:"type:text"`
	Trialing              bool               `gorm:"not null;default:false"`
	TrialEnd              *datatypes.Date    `gorm:"type:date"`
	CancelAtPeriodEnd     bool               `gorm:"not null;default:false"`
	Quantity              int64              `gorm:"not null;default:1"`
	CreatedAt             time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscription) TableName() string { return "subscriptions" }

// NormalizeSubscriptionStatus maps a gateway status string into the fixed
// uppercase vocabulary. Unknown values pass through uppercased.
func NormalizeSubscriptionStatus(raw string) SubscriptionStatus {
	switch raw {
	case "active":
		return SubscriptionStatusActive
	case "trialing":
		return SubscriptionStatusTrialing
	case "past_due":
		return SubscriptionStatusPastDue
	case "canceled":
		return SubscriptionStatusCanceled
	case "unpaid":
		return SubscriptionStatusUnpaid
	case "incomplete":
		return SubscriptionStatusIncomplete
	case "incomplete_expired":
		return SubscriptionStatusIncompleteExpired
	case "paused":
		return SubscriptionStatusPaused
	default:
		return SubscriptionStatus(strings.ToUpper(strings.TrimSpace(raw)))
	}
}
