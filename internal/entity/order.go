package domain

// Status tracks one order through the payment and subscription flow.
type Status string

const (
	StatusFormFilled           Status = "FORM_FILLED"
	StatusValidated            Status = "VALIDATED"
	StatusPaymentIntentCreated Status = "PAYMENT_INTENT_CREATED"
	StatusPaymentConfirmed     Status = "PAYMENT_CONFIRMED"
	// Terminal. SubscriptionFailed is terminal for automation only; a human
	// follows up from the followups table.
	StatusSubscriptionCreated Status = "SUBSCRIPTION_CREATED"
	StatusSubscriptionFailed  Status = "SUBSCRIPTION_FAILED"
)

// Order is a validated, sanitized submission. Immutable once built by the
// intake validator; never persisted locally (durable customer state lives
// in the payment gateway account).
type Order struct {
	Name      string
	Email     string // lower-cased
	Phone     string
	Address   string
	ToteCount int

	// Recomputed server-side from ToteCount, never taken from the client.
	SetupCost   int64 // dollars
	MonthlyCost int64 // dollars
}
