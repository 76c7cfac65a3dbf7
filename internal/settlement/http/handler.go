package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/payment"
	"github.com/nekogravitycat/hotel-booking-backend/internal/settlement"
)

type Handler struct {
	service settlement.Service
	gateway payment.Gateway
}

func NewHandler(service settlement.Service, gateway payment.Gateway) *Handler {
	return &Handler{service: service, gateway: gateway}
}

// HandleStripeWebhook verifies and dispatches provider events. Database
// errors return a 5xx so the provider redelivers; everything else is acked
// with a 2xx, including events we deliberately skip.
func (h *Handler) HandleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	event, err := h.gateway.ConstructWebhookEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		zap.L().Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			zap.L().Error("malformed checkout session payload",
				zap.String("eventId", event.ID), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			zap.L().Info("checkout session completed without payment, skipping",
				zap.String("sessionId", session.ID),
				zap.String("paymentStatus", string(session.PaymentStatus)))
			break
		}

		ids, err := settlement.ParseBookingIDs(session.Metadata)
		if err != nil {
			zap.L().Error("checkout session carries no usable booking ids",
				zap.String("sessionId", session.ID), zap.Error(err))
			break
		}
		txnID := ""
		if session.PaymentIntent != nil {
			txnID = session.PaymentIntent.ID
		}
		if txnID == "" {
			zap.L().Error("checkout session has no payment intent",
				zap.String("sessionId", session.ID))
			break
		}

		if err := h.service.SettleSuccess(c.Request.Context(), settlement.Outcome{
			BookingIDs:    ids,
			ProviderTxnID: txnID,
		}); err != nil {
			h.settlementError(c, event, err)
			return
		}

	case "payment_intent.succeeded":
		// The checkout session event already settles this payment;
		// acknowledging without acting keeps the flow idempotent.
		zap.L().Debug("payment intent succeeded acknowledged", zap.String("eventId", event.ID))

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			zap.L().Error("malformed payment intent payload",
				zap.String("eventId", event.ID), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}

		ids, err := settlement.ParseBookingIDs(intent.Metadata)
		if err != nil {
			zap.L().Warn("failed payment intent carries no usable booking ids",
				zap.String("paymentIntentId", intent.ID), zap.Error(err))
			break
		}

		if err := h.service.SettleFailure(c.Request.Context(), settlement.Outcome{
			BookingIDs:    ids,
			ProviderTxnID: intent.ID,
		}); err != nil {
			h.settlementError(c, event, err)
			return
		}

	default:
		zap.L().Debug("unhandled webhook event type", zap.String("type", string(event.Type)))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// settlementError answers non-2xx so the provider retries later.
func (h *Handler) settlementError(c *gin.Context, event stripe.Event, err error) {
	if errors.Is(err, settlement.ErrCorrelationDataInvalid) {
		// Should have been caught before settling; ack so Stripe stops
		// redelivering an event we can never process.
		zap.L().Error("dropping event with invalid correlation data",
			zap.String("eventId", event.ID), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	zap.L().Error("settlement failed, requesting redelivery",
		zap.String("eventId", event.ID),
		zap.String("type", string(event.Type)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
}
