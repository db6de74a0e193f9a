package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
)

// maxWebhookBodyBytes caps the payload a single delivery may carry.
const maxWebhookBodyBytes = 1 << 20

func (s *Server) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: read body: %v", webhookdomain.ErrMalformedPayload, err))
		return
	}

	event, err := s.verifier.Verify(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.webhookSvc.Process(c.Request.Context(), event)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body := gin.H{"received": true}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, body)
}
