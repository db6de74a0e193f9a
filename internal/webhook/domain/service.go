package domain

import "context"

// Result is the outcome of processing one event. Warning is set on the
// designed skip paths (missing tenant link, missing charge-invoice
// association, missing enrichment data); the event is still acknowledged.
type Result struct {
	Warning string
}

// Skipped reports whether the event was acknowledged without a write.
func (r Result) Skipped() bool { return r.Warning != "" }

// Verifier authenticates raw request bytes into a decoded event.
type Verifier interface {
	Verify(payload []byte, signatureHeader string) (*Event, error)
}

// Service routes a decoded event to its projection handler.
type Service interface {
	Process(ctx context.Context, event *Event) (Result, error)
}
