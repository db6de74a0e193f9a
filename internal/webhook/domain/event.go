// Package domain models the inbound event envelope and the per-event-type
// payload shapes the projection handlers consume. Every externally sourced
// field that may be absent is a pointer; handlers state a default or a skip
// policy per field instead of crashing on partial data.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode records how an event entered the pipeline.
type Mode string

const (
	// ModeVerified marks events whose signature was checked.
	ModeVerified Mode = "verified"
	// ModeManual marks unauthenticated manual/test submissions.
	ModeManual Mode = "manual"
)

// Event type discriminators handled by the router.
const (
	EventProductCreated      = "product.created"
	EventPriceCreated        = "price.created"
	EventCustomerCreated     = "customer.created"
	EventCustomerUpdated     = "customer.updated"
	EventInvoiceCreated      = "invoice.created"
	EventInvoiceUpdated      = "invoice.updated"
	EventChargeSucceeded     = "charge.succeeded"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is a decoded webhook envelope.
type Event struct {
	ID         string
	Type       string
	APIVersion string
	Created    int64
	Object     json.RawMessage
	Mode       Mode
}

type envelope struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	APIVersion string `json:"api_version"`
	Created    int64  `json:"created"`
	Data       struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ParseEvent decodes a raw body into an event envelope without verifying
// authenticity. Used for manual submissions.
func ParseEvent(payload []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &Event{
		ID:         strings.TrimSpace(env.ID),
		Type:       strings.TrimSpace(env.Type),
		APIVersion: env.APIVersion,
		Created:    env.Created,
		Object:     env.Data.Object,
		Mode:       ModeManual,
	}, nil
}
