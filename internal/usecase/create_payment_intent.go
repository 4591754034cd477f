package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/Monkachunkaa/tote-storage-api/internal/intake"
	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
	"github.com/Monkachunkaa/tote-storage-api/internal/pricing"
)

var (
	ErrRateLimited = errors.New("too many requests, please try again in a minute")
	// ErrInvalidAmount is deliberately generic toward the caller; the
	// detailed mismatch goes to the server log only.
	ErrInvalidAmount = errors.New("invalid order amount")
)

type CreatePaymentIntentInput struct {
	AmountCents int64
	Order       intake.RawOrder
}

type CreatePaymentIntentOutput struct {
	ClientSecret    string
	PaymentIntentID string
	CustomerID      string
}

// CreatePaymentIntent is the first half of the payment flow: throttle,
// re-validate the order, authorize the amount against the pricing formula,
// then ask the gateway for an intent.
type CreatePaymentIntent struct {
	gateway   PaymentGateway
	limiter   RateLimiter
	analytics Analytics
}

func NewCreatePaymentIntent(gw PaymentGateway, limiter RateLimiter, analytics Analytics) *CreatePaymentIntent {
	return &CreatePaymentIntent{gateway: gw, limiter: limiter, analytics: analytics}
}

func (uc *CreatePaymentIntent) Execute(ctx context.Context, in CreatePaymentIntentInput, clientIP string) (CreatePaymentIntentOutput, error) {
	log := logging.FromCtx(ctx)

	// Throttle before anything else; a limited caller never costs a
	// gateway call. Limiter errors fail open: throttling is best-effort
	// and must not take orders down with it.
	allowed, err := uc.limiter.Allow(ctx, clientIP)
	if err != nil {
		log.Warn("rate limiter unavailable, failing open", "error", err)
		allowed = true
	}
	if !allowed {
		return CreatePaymentIntentOutput{}, ErrRateLimited
	}

	// Full server-side re-validation. The client's displayed numbers are
	// never authoritative.
	order, err := intake.Validate(in.Order)
	if err != nil {
		var ve *intake.ValidationError
		if errors.As(err, &ve) && ve.Tamper {
			log.Warn("order cost mismatch, possible tampering",
				"client_ip", clientIP, "tote_count", in.Order.ToteCount,
				"declared_total", in.Order.DeclaredTotal)
			return CreatePaymentIntentOutput{}, ErrInvalidAmount
		}
		return CreatePaymentIntentOutput{}, err
	}

	// Absolute bounds first, then the exact formula. Two independent
	// checks so a formula bug can never authorize an arbitrary amount.
	if in.AmountCents < pricing.MinSetupCents || in.AmountCents > pricing.MaxSetupCents {
		log.Warn("payment amount outside allowed bounds",
			"client_ip", clientIP, "amount_cents", in.AmountCents)
		return CreatePaymentIntentOutput{}, ErrInvalidAmount
	}
	if !pricing.MatchesSetupCents(in.AmountCents, order.ToteCount) {
		expected, _ := pricing.SetupCostCents(order.ToteCount)
		log.Warn("payment amount does not match pricing formula",
			"client_ip", clientIP, "amount_cents", in.AmountCents,
			"expected_cents", expected, "tote_count", order.ToteCount)
		return CreatePaymentIntentOutput{}, ErrInvalidAmount
	}

	cust, err := uc.gateway.EnsureCustomer(ctx, order.Name, order.Email, order.Phone)
	if err != nil {
		return CreatePaymentIntentOutput{}, fmt.Errorf("ensure customer: %w", err)
	}

	intent, err := uc.gateway.CreatePaymentIntent(ctx, in.AmountCents, "usd", cust.ID, map[string]string{
		"customer_name":  order.Name,
		"customer_email": order.Email,
		"customer_phone": order.Phone,
		"pickup_address": order.Address,
		"tote_count":     strconv.Itoa(order.ToteCount),
		"monthly_cost":   strconv.FormatInt(order.MonthlyCost, 10),
		"client_ip":      clientIP,
		"created_via":    "tote-api",
	})
	if err != nil {
		return CreatePaymentIntentOutput{}, fmt.Errorf("create payment intent: %w", err)
	}

	uc.analytics.Publish(ctx, AnalyticsEvent{
		Name:      "begin_checkout",
		RequestID: uuid.NewString(),
		Params: map[string]string{
			"value_cents": strconv.FormatInt(in.AmountCents, 10),
			"tote_count":  strconv.Itoa(order.ToteCount),
		},
	})

	log.Info("payment intent created",
		"payment_intent_id", intent.ID, "customer_id", cust.ID,
		"amount_cents", in.AmountCents, "tote_count", order.ToteCount)

	return CreatePaymentIntentOutput{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		CustomerID:      cust.ID,
	}, nil
}
