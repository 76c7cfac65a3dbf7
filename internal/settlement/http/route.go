package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the webhook endpoint. It is deliberately
// unauthenticated; the Stripe-Signature header is the credential.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.POST("/webhooks/stripe", h.HandleStripeWebhook)
}
