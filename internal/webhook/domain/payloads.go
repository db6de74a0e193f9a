package domain

// ProductPayload is the product object carried by product lifecycle events.
type ProductPayload struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Active      *bool             `json:"active"`
	Metadata    map[string]string `json:"metadata"`
}

// PriceRecurring describes the billing cadence of a recurring price.
type PriceRecurring struct {
	Interval        string `json:"interval"`
	IntervalCount   *int64 `json:"interval_count"`
	TrialPeriodDays *int64 `json:"trial_period_days"`
}

// PricePayload is the price object carried by price lifecycle events.
// UnitAmount is in the gateway's minor units.
type PricePayload struct {
	ID         string          `json:"id"`
	Product    string          `json:"product"`
	Currency   string          `json:"currency"`
	UnitAmount *int64          `json:"unit_amount"`
	Recurring  *PriceRecurring `json:"recurring"`
	Active     *bool           `json:"active"`
}

// CustomerPayload is the customer object carried by customer lifecycle events.
type CustomerPayload struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// InvoiceLinePrice is the (unexpanded) price reference on an invoice line.
type InvoiceLinePrice struct {
	ID      string `json:"id"`
	Product string `json:"product"`
}

// InvoiceLine is one invoice line item.
type InvoiceLine struct {
	Price *InvoiceLinePrice `json:"price"`
}

// InvoicePayload is the invoice object carried by invoice lifecycle events.
type InvoicePayload struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	AmountDue        *int64 `json:"amount_due"`
	DueDate          *int64 `json:"due_date"`
	HostedInvoiceURL string `json:"hosted_invoice_url"`
	Lines            struct {
		Data []InvoiceLine `json:"data"`
	} `json:"lines"`
}

// ChargePayload is the charge object carried by charge.succeeded events.
// The charge itself carries no product/price linkage; that is resolved via
// the enrichment fetch against the referenced invoice.
type ChargePayload struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Amount   *int64 `json:"amount"`
	Created  *int64 `json:"created"`
	Invoice  string `json:"invoice"`
}

// SubscriptionItem is one line of a subscription.
type SubscriptionItem struct {
	Price    *InvoiceLinePrice `json:"price"`
	Quantity *int64            `json:"quantity"`
}

// SubscriptionPayload is the subscription object carried by subscription
// lifecycle events.
type SubscriptionPayload struct {
	ID                 string `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	Currency           string `json:"currency"`
	CurrentPeriodStart *int64 `json:"current_period_start"`
	CurrentPeriodEnd   *int64 `json:"current_period_end"`
	TrialEnd           *int64 `json:"trial_end"`
	CancelAtPeriodEnd  *bool  `json:"cancel_at_period_end"`
	Items              struct {
		Data []SubscriptionItem `json:"data"`
	} `json:"items"`
}
