package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/shared/telemetry"
)

// Keys handlers may set on the gin context to enrich the request log line.
const (
	InvoiceIDKey   = "invoiceId"
	DocumentIDKey  = "documentId"
	ContentKindKey = "contentKind"
	ReviewStateKey = "reviewState"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":   RequestIDFromContext(c),
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"status":       c.Writer.Status(),
			"duration_ms":  float64(latency.Microseconds()) / 1000.0,
			"user_id":      UserIDFromContext(c),
			"is_guest":     IsGuest(c),
			"invoice_id":   c.GetString(InvoiceIDKey),
			"document_id":  c.GetString(DocumentIDKey),
			"content_kind": c.GetString(ContentKindKey),
			"review_state": c.GetString(ReviewStateKey),
			"client_ip":    c.ClientIP(),
			"user_agent":   c.Request.UserAgent(),
		})
	}
}
