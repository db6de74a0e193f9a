package domain

import "errors"

var (
	// ErrAuthentication means the signature check failed for a request that
	// carried a signature while verification was configured.
	ErrAuthentication = errors.New("authentication_failed")
	// ErrMalformedPayload means the body could not be parsed as an event.
	ErrMalformedPayload = errors.New("malformed_payload")
	// ErrValidation means a required structural field was missing.
	ErrValidation = errors.New("validation_failed")
	// ErrStorage means a projection write failed.
	ErrStorage = errors.New("storage_write_failed")
	// ErrEnrichmentFetch means the secondary gateway lookup failed.
	ErrEnrichmentFetch = errors.New("enrichment_fetch_failed")
	// ErrConfiguration means required backend configuration is absent.
	ErrConfiguration = errors.New("configuration_error")
)
