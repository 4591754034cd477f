package usecase

import (
	"context"
	"fmt"
)

// GatewayError carries the provider's human-readable reason when there is
// one. Handlers may surface Msg to the user; Err stays in the logs.
type GatewayError struct {
	Msg string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Gateway-owned resources, reduced to the fields the orchestrator reads.
// The gateway keeps the full lifecycle; we only ever look at these.
type PaymentIntentRecord struct {
	ID              string
	ClientSecret    string
	Status          string // gateway lifecycle state, e.g. "succeeded"
	Amount          int64  // minor units
	PaymentMethodID string
	CustomerID      string
	// Metadata echoes the sanitized order fields attached at creation.
	Metadata map[string]string
}

// PaymentIntentSucceeded is the only gateway state that authorizes
// subscription creation.
const PaymentIntentSucceeded = "succeeded"

type SubscriptionRecord struct {
	ID         string
	Status     string
	CustomerID string
	PriceID    string
	TrialEnd   int64 // epoch seconds; also the billing cycle anchor
}

type CustomerRecord struct {
	ID    string
	Name  string
	Email string
}

// PaymentGateway is the port to the hosted payment provider. Implementations
// must never surface provider credentials through these return values.
type PaymentGateway interface {
	EnsureCustomer(ctx context.Context, name, email, phone string) (CustomerRecord, error)
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency, customerID string, metadata map[string]string) (PaymentIntentRecord, error)
	GetPaymentIntent(ctx context.Context, id string) (PaymentIntentRecord, error)
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error

	// Recurring price dedup: find by exact currency + monthly interval +
	// unit amount, create only on miss.
	FindRecurringPrice(ctx context.Context, currency string, unitAmountCents int64) (string, bool, error)
	CreateRecurringPrice(ctx context.Context, currency string, unitAmountCents int64, productName string) (string, error)

	CreateSubscription(ctx context.Context, customerID, priceID, paymentMethodID string, trialEnd int64) (SubscriptionRecord, error)
	UpdateCustomerMetadata(ctx context.Context, customerID string, metadata map[string]string) error

	FindCustomerByEmail(ctx context.Context, email string) (CustomerRecord, bool, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// RateLimiter bounds requests per identity within a sliding window.
// The in-memory implementation is best-effort (per process); the redis
// one holds across instances.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type EmailMessage struct {
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

// EmailSender delivers one message and returns the provider message id.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

// Notifier hands the order confirmation off for asynchronous delivery.
// Failures are logged by callers, never propagated to the payment path.
type Notifier interface {
	OrderConfirmed(ctx context.Context, msg OrderConfirmationMsg) error
}

type AnalyticsEvent struct {
	Name      string            `json:"name"`
	RequestID string            `json:"request_id"`
	Params    map[string]string `json:"params,omitempty"`
}

// Analytics publishes storefront events fire-and-forget; implementations
// must never block or fail the payment path.
type Analytics interface {
	Publish(ctx context.Context, ev AnalyticsEvent)
}

// FollowUp is a post-payment side effect that failed and needs a human.
type FollowUp struct {
	ID              string
	PaymentIntentID string
	CustomerID      string
	Reason          string
	Details         string
}

type FollowUpRepo interface {
	Insert(ctx context.Context, f *FollowUp) error
	ListOpen(ctx context.Context) ([]*FollowUp, error)
	Resolve(ctx context.Context, id string) error
}
