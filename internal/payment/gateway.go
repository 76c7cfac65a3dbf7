package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/webhook"
)

// metadataKeyBookingIDs carries the JSON-encoded booking IDs through the
// checkout session and its payment intent so webhook events can be
// correlated back to our records.
const metadataKeyBookingIDs = "bookingIds"

// CheckoutParams describes one hosted checkout session for a payment record.
type CheckoutParams struct {
	AmountCents int64
	Currency    string
	HotelName   string
	Description string
	BookingIDs  []string
}

// Gateway abstracts the payment provider so services and tests do not touch
// the Stripe SDK directly.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (url string, err error)
	ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type stripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeGateway configures the global Stripe client key and returns a
// Gateway backed by Stripe Checkout.
func NewStripeGateway(secretKey, webhookSecret, checkoutBaseURL string) Gateway {
	stripe.Key = secretKey
	return &stripeGateway{
		webhookSecret: webhookSecret,
		successURL:    checkoutBaseURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:     checkoutBaseURL + "/bookings",
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	idsJSON, err := json.Marshal(params.BookingIDs)
	if err != nil {
		return "", fmt.Errorf("encode booking ids failed: %w", err)
	}
	metadata := map[string]string{metadataKeyBookingIDs: string(idsJSON)}

	sessionParams := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String(uuid.NewString()),
		},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(g.successURL),
		CancelURL:          stripe.String(g.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(params.Currency),
					UnitAmount: stripe.Int64(params.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Stay at " + params.HotelName),
						Description: stripe.String(params.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: metadata,
		// The payment intent needs its own copy so intent-level webhook
		// events can recover the booking IDs.
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}

	s, err := session.New(sessionParams)
	if err != nil {
		return "", fmt.Errorf("create checkout session failed: %w", err)
	}
	return s.URL, nil
}

func (g *stripeGateway) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
}
