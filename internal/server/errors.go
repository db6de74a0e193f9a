package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	webhookdomain "github.com/smallbiznis/billingsync/internal/webhook/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// ErrorHandlingMiddleware maps deferred handler errors onto the response.
// Rejections the sender can fix are 400s; everything on our side is a 500 so
// the gateway retries the delivery.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, webhookdomain.ErrAuthentication):
		return http.StatusBadRequest, "webhook signature verification failed"
	case errors.Is(err, webhookdomain.ErrMalformedPayload):
		return http.StatusBadRequest, "malformed event payload"
	case errors.Is(err, webhookdomain.ErrValidation):
		return http.StatusBadRequest, "invalid event payload"
	case errors.Is(err, webhookdomain.ErrEnrichmentFetch):
		return http.StatusInternalServerError, "failed to resolve event context with the gateway"
	case errors.Is(err, webhookdomain.ErrStorage):
		return http.StatusInternalServerError, "failed to persist event projection"
	case errors.Is(err, webhookdomain.ErrConfiguration):
		return http.StatusInternalServerError, "webhook receiver misconfigured"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case errors.Is(err, webhookdomain.ErrAuthentication):
		return "authentication", "signature_invalid"
	case errors.Is(err, webhookdomain.ErrMalformedPayload):
		return "validation", "malformed_payload"
	case errors.Is(err, webhookdomain.ErrValidation):
		return "validation", "invalid_payload"
	case errors.Is(err, webhookdomain.ErrEnrichmentFetch):
		return "dependency", "enrichment_fetch_failed"
	case errors.Is(err, webhookdomain.ErrStorage):
		return "internal", "storage_failed"
	case errors.Is(err, webhookdomain.ErrConfiguration):
		return "internal", "misconfigured"
	default:
		return "internal", "unknown"
	}
}
