// Package verify authenticates inbound webhook payloads. When a signature
// header, the shared webhook secret, and gateway credentials are all present
// the signature is checked; otherwise the request is treated as a manual
// submission and parsed directly, which exists for local testing.
package verify

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/billingsync/internal/config"
	"github.com/smallbiznis/billingsync/internal/webhook/domain"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

type Verifier struct {
	secret          string
	clientAvailable bool
	log             *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Verifier {
	return &Verifier{
		secret:          strings.TrimSpace(cfg.StripeWebhookSecret),
		clientAvailable: strings.TrimSpace(cfg.StripeSecretKey) != "",
		log:             log.Named("webhook.verify"),
	}
}

// Verify produces a decoded event or a rejection. Signature failures on the
// verified path reject the request; the manual path only rejects bodies that
// cannot be parsed.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (*domain.Event, error) {
	signatureHeader = strings.TrimSpace(signatureHeader)

	if signatureHeader != "" && v.secret != "" && v.clientAvailable {
		event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
		}
		return &domain.Event{
			ID:         event.ID,
			Type:       string(event.Type),
			APIVersion: event.APIVersion,
			Created:    event.Created,
			Object:     event.Data.Raw,
			Mode:       domain.ModeVerified,
		}, nil
	}

	v.log.Warn("manual webhook submission, signature verification skipped",
		zap.Bool("signature_present", signatureHeader != ""),
		zap.Bool("secret_configured", v.secret != ""),
		zap.Bool("client_configured", v.clientAvailable),
	)
	return domain.ParseEvent(payload)
}
