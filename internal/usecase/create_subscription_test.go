package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubInput() CreateSubscriptionInput {
	return CreateSubscriptionInput{
		PaymentIntentID: "pi_123",
		CustomerID:      "cus_123",
		MonthlyAmount:   50,
		ToteQuantity:    5,
	}
}

func newSubUC(gw *gatewayFake) (*CreateSubscription, *notifierFake, *analyticsFake, *followupFake) {
	notifier := &notifierFake{}
	analytics := &analyticsFake{}
	followups := &followupFake{}
	uc := NewCreateSubscription(gw, notifier, analytics, followups)
	return uc, notifier, analytics, followups
}

func TestCreateSubscription_MissingData(t *testing.T) {
	cases := map[string]func(*CreateSubscriptionInput){
		"payment intent": func(in *CreateSubscriptionInput) { in.PaymentIntentID = "" },
		"customer":       func(in *CreateSubscriptionInput) { in.CustomerID = "" },
		"monthly amount": func(in *CreateSubscriptionInput) { in.MonthlyAmount = 0 },
		"tote quantity":  func(in *CreateSubscriptionInput) { in.ToteQuantity = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			gw := newGatewayFake()
			uc, _, _, _ := newSubUC(gw)

			in := validSubInput()
			mutate(&in)
			_, err := uc.Execute(context.Background(), in)
			assert.ErrorIs(t, err, ErrMissingData)
			assert.Empty(t, gw.calls)
		})
	}
}

func TestCreateSubscription_MonthlyAmountBounds(t *testing.T) {
	for _, amount := range []int64{10, 19, 101, 500} {
		gw := newGatewayFake()
		uc, _, _, _ := newSubUC(gw)

		in := validSubInput()
		in.MonthlyAmount = amount
		_, err := uc.Execute(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "monthly=%d", amount)
		assert.Empty(t, gw.calls)
	}
}

func TestCreateSubscription_PaymentNotConfirmed(t *testing.T) {
	gw := newGatewayFake()
	gw.intent.Status = "requires_payment_method"
	uc, notifier, _, _ := newSubUC(gw)

	_, err := uc.Execute(context.Background(), validSubInput())
	assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
	assert.False(t, gw.called("CreateSubscription"), "unconfirmed payment must never start billing")
	assert.Empty(t, notifier.msgs)
}

func TestCreateSubscription_NoPaymentMethod(t *testing.T) {
	gw := newGatewayFake()
	gw.intent.PaymentMethodID = ""
	uc, _, _, _ := newSubUC(gw)

	_, err := uc.Execute(context.Background(), validSubInput())
	assert.ErrorIs(t, err, ErrNoPaymentMethod)
	assert.False(t, gw.called("CreateSubscription"))
}

func TestCreateSubscription_HappyPath_PriceCreatedOnMiss(t *testing.T) {
	gw := newGatewayFake()
	gw.intent.Metadata = map[string]string{
		"customer_name":  "Jane Doe",
		"customer_email": "jane@example.com",
		"tote_count":     "5",
	}
	uc, notifier, analytics, followups := newSubUC(gw)

	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	out, err := uc.Execute(context.Background(), validSubInput())
	require.NoError(t, err)

	wantTrialEnd := fixed.Add(TrialPeriod).Unix()
	assert.Equal(t, "sub_123", out.SubscriptionID)
	assert.Equal(t, SubscriptionActive, out.Status)
	assert.Equal(t, wantTrialEnd, out.TrialEnd)
	assert.Equal(t, time.Unix(wantTrialEnd, 0).UTC().Format(time.RFC3339), out.NextBillingDate)
	assert.False(t, out.Pending)

	assert.True(t, gw.called("SetDefaultPaymentMethod"))
	assert.Equal(t, "pm_123", gw.defaultPM)
	assert.True(t, gw.called("CreateRecurringPrice"), "no existing price, expected create-on-miss")
	assert.Equal(t, wantTrialEnd, gw.lastTrialEnd)
	assert.Equal(t, "sub_123", gw.metadataUpdates["subscription_id"])
	assert.Equal(t, "50", gw.metadataUpdates["monthly_amount"])

	require.Len(t, notifier.msgs, 1)
	msg := notifier.msgs[0]
	assert.Equal(t, "Jane Doe", msg.Name)
	assert.Equal(t, "jane@example.com", msg.Email)
	assert.Equal(t, 5, msg.ToteCount)
	assert.Equal(t, int64(70), msg.SetupCost)
	assert.Equal(t, int64(50), msg.MonthlyCost)
	assert.Equal(t, SubscriptionActive, msg.SubscriptionStatus)

	assert.Equal(t, []string{"purchase"}, analytics.names())
	assert.Empty(t, followups.inserted)
}

func TestCreateSubscription_PriceReused(t *testing.T) {
	gw := newGatewayFake()
	gw.foundPriceID = "price_existing"
	uc, _, _, _ := newSubUC(gw)

	_, err := uc.Execute(context.Background(), validSubInput())
	require.NoError(t, err)

	assert.False(t, gw.called("CreateRecurringPrice"), "matching price must be reused, not duplicated")
	assert.Equal(t, "price_existing", gw.lastPriceID)
}

func TestCreateSubscription_ProvisionFailureDegradesToPending(t *testing.T) {
	gw := newGatewayFake()
	gw.subErr = errBoom
	uc, notifier, analytics, followups := newSubUC(gw)

	out, err := uc.Execute(context.Background(), validSubInput())
	require.NoError(t, err, "a failed subscription must not fail the confirmed payment")

	assert.True(t, out.Pending)
	assert.Equal(t, SubscriptionPendingManual, out.Status)
	assert.Empty(t, out.SubscriptionID)

	require.Len(t, followups.inserted, 1)
	assert.Equal(t, "pi_123", followups.inserted[0].PaymentIntentID)
	assert.Equal(t, "subscription_create_failed", followups.inserted[0].Reason)

	require.Len(t, notifier.msgs, 1)
	assert.Equal(t, SubscriptionPendingManual, notifier.msgs[0].SubscriptionStatus)
	assert.Equal(t, []string{"subscription_failed"}, analytics.names())
}

func TestCreateSubscription_FollowUpInsertFailureStillPending(t *testing.T) {
	gw := newGatewayFake()
	gw.subErr = errBoom
	notifier := &notifierFake{}
	uc := NewCreateSubscription(gw, notifier, &analyticsFake{}, &followupFake{err: errBoom})

	out, err := uc.Execute(context.Background(), validSubInput())
	require.NoError(t, err)
	assert.True(t, out.Pending)
}

func TestCreateSubscription_NotifierFailureDoesNotFail(t *testing.T) {
	gw := newGatewayFake()
	uc := NewCreateSubscription(gw, &notifierFake{err: errBoom}, &analyticsFake{}, &followupFake{})

	out, err := uc.Execute(context.Background(), validSubInput())
	require.NoError(t, err)
	assert.Equal(t, SubscriptionActive, out.Status)
}

func TestCreateSubscription_MetadataUpdateFailureStillSucceeds(t *testing.T) {
	gw := newGatewayFake()
	gw.metadataErr = errBoom
	uc, _, _, followups := newSubUC(gw)

	out, err := uc.Execute(context.Background(), validSubInput())
	require.NoError(t, err)
	assert.Equal(t, SubscriptionActive, out.Status)
	assert.Empty(t, followups.inserted)
}
