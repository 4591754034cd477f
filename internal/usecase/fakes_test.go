package usecase

import (
	"context"
	"errors"
)

// Hand-written fakes over the ports, one per collaborator.

type gatewayFake struct {
	calls []string

	customers map[string]CustomerRecord // keyed by email
	listErr   error

	createIntentErr error
	lastAmount      int64
	lastMetadata    map[string]string

	intent    PaymentIntentRecord
	intentErr error

	setDefaultErr error
	defaultPM     string

	foundPriceID   string
	findPriceErr   error
	createPriceErr error

	sub          SubscriptionRecord
	subErr       error
	lastTrialEnd int64
	lastPriceID  string

	metadataUpdates map[string]string
	metadataErr     error

	portalURL string
	portalErr error
}

func newGatewayFake() *gatewayFake {
	return &gatewayFake{
		customers: map[string]CustomerRecord{},
		intent: PaymentIntentRecord{
			ID:              "pi_123",
			Status:          PaymentIntentSucceeded,
			Amount:          7000,
			PaymentMethodID: "pm_123",
			CustomerID:      "cus_123",
			Metadata:        map[string]string{},
		},
		sub: SubscriptionRecord{ID: "sub_123", Status: "trialing"},
	}
}

func (f *gatewayFake) record(call string) { f.calls = append(f.calls, call) }

func (f *gatewayFake) called(name string) bool {
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *gatewayFake) EnsureCustomer(_ context.Context, name, email, _ string) (CustomerRecord, error) {
	f.record("EnsureCustomer")
	if c, ok := f.customers[email]; ok {
		return c, nil
	}
	return CustomerRecord{ID: "cus_123", Name: name, Email: email}, nil
}

func (f *gatewayFake) CreatePaymentIntent(_ context.Context, amountCents int64, _, customerID string, metadata map[string]string) (PaymentIntentRecord, error) {
	f.record("CreatePaymentIntent")
	if f.createIntentErr != nil {
		return PaymentIntentRecord{}, f.createIntentErr
	}
	f.lastAmount = amountCents
	f.lastMetadata = metadata
	return PaymentIntentRecord{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
		Status:       "requires_payment_method",
		Amount:       amountCents,
		CustomerID:   customerID,
		Metadata:     metadata,
	}, nil
}

func (f *gatewayFake) GetPaymentIntent(_ context.Context, _ string) (PaymentIntentRecord, error) {
	f.record("GetPaymentIntent")
	return f.intent, f.intentErr
}

func (f *gatewayFake) SetDefaultPaymentMethod(_ context.Context, _, paymentMethodID string) error {
	f.record("SetDefaultPaymentMethod")
	if f.setDefaultErr != nil {
		return f.setDefaultErr
	}
	f.defaultPM = paymentMethodID
	return nil
}

func (f *gatewayFake) FindRecurringPrice(_ context.Context, _ string, _ int64) (string, bool, error) {
	f.record("FindRecurringPrice")
	if f.findPriceErr != nil {
		return "", false, f.findPriceErr
	}
	if f.foundPriceID != "" {
		return f.foundPriceID, true, nil
	}
	return "", false, nil
}

func (f *gatewayFake) CreateRecurringPrice(_ context.Context, _ string, _ int64, _ string) (string, error) {
	f.record("CreateRecurringPrice")
	if f.createPriceErr != nil {
		return "", f.createPriceErr
	}
	return "price_new", nil
}

func (f *gatewayFake) CreateSubscription(_ context.Context, customerID, priceID, _ string, trialEnd int64) (SubscriptionRecord, error) {
	f.record("CreateSubscription")
	if f.subErr != nil {
		return SubscriptionRecord{}, f.subErr
	}
	f.lastTrialEnd = trialEnd
	f.lastPriceID = priceID
	sub := f.sub
	sub.CustomerID = customerID
	sub.PriceID = priceID
	sub.TrialEnd = trialEnd
	return sub, nil
}

func (f *gatewayFake) UpdateCustomerMetadata(_ context.Context, _ string, metadata map[string]string) error {
	f.record("UpdateCustomerMetadata")
	if f.metadataErr != nil {
		return f.metadataErr
	}
	f.metadataUpdates = metadata
	return nil
}

func (f *gatewayFake) FindCustomerByEmail(_ context.Context, email string) (CustomerRecord, bool, error) {
	f.record("FindCustomerByEmail")
	if f.listErr != nil {
		return CustomerRecord{}, false, f.listErr
	}
	c, ok := f.customers[email]
	return c, ok, nil
}

func (f *gatewayFake) CreatePortalSession(_ context.Context, _, _ string) (string, error) {
	f.record("CreatePortalSession")
	if f.portalErr != nil {
		return "", f.portalErr
	}
	return f.portalURL, nil
}

var _ PaymentGateway = (*gatewayFake)(nil)

type limiterFake struct {
	allow bool
	err   error
	keys  []string
}

func (f *limiterFake) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allow, f.err
}

type notifierFake struct {
	msgs []OrderConfirmationMsg
	err  error
}

func (f *notifierFake) OrderConfirmed(_ context.Context, msg OrderConfirmationMsg) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

type analyticsFake struct {
	events []AnalyticsEvent
}

func (f *analyticsFake) Publish(_ context.Context, ev AnalyticsEvent) {
	f.events = append(f.events, ev)
}

func (f *analyticsFake) names() []string {
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Name)
	}
	return out
}

type followupFake struct {
	inserted []*FollowUp
	err      error
}

func (f *followupFake) Insert(_ context.Context, fu *FollowUp) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, fu)
	return nil
}

func (f *followupFake) ListOpen(context.Context) ([]*FollowUp, error) { return f.inserted, nil }
func (f *followupFake) Resolve(context.Context, string) error         { return nil }

type senderFake struct {
	sent  []EmailMessage
	err   error
	errOn int // 1-based index of the send that fails; 0 = use err for all
	n     int
}

func (f *senderFake) Send(_ context.Context, msg EmailMessage) (string, error) {
	f.n++
	if f.err != nil && (f.errOn == 0 || f.errOn == f.n) {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg_123", nil
}

var errBoom = errors.New("boom")
