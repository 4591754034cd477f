package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
	"github.com/Monkachunkaa/tote-storage-api/internal/pricing"
)

var (
	ErrMissingData         = errors.New("missing required subscription data")
	ErrPaymentNotConfirmed = errors.New("payment has not been confirmed")
	ErrNoPaymentMethod     = errors.New("no payment method on confirmed payment")
)

// TrialPeriod delays the first recurring charge so it lands one billing
// cycle after the setup payment.
const TrialPeriod = 30 * 24 * time.Hour

const (
	SubscriptionActive        = "active"
	SubscriptionPendingManual = "pending_manual_setup"
)

const recurringProductName = "Monthly Tote Storage"

type CreateSubscriptionInput struct {
	PaymentIntentID string
	CustomerID      string
	MonthlyAmount   int64 // dollars
	ToteQuantity    int
}

type CreateSubscriptionOutput struct {
	SubscriptionID  string
	Status          string
	NextBillingDate string // RFC 3339
	MonthlyAmount   int64
	TrialEnd        int64 // epoch seconds
	// Pending marks the payment-succeeded-but-subscription-failed outcome
	// that a human resolves from the followups table.
	Pending bool
}

// CreateSubscription turns a confirmed setup payment into a recurring
// monthly subscription. The gateway is re-queried for the intent state;
// a client-asserted success is never enough to start billing someone.
type CreateSubscription struct {
	gateway   PaymentGateway
	notifier  Notifier
	analytics Analytics
	followups FollowUpRepo

	now func() time.Time
}

func NewCreateSubscription(gw PaymentGateway, notifier Notifier, analytics Analytics, followups FollowUpRepo) *CreateSubscription {
	return &CreateSubscription{
		gateway:   gw,
		notifier:  notifier,
		analytics: analytics,
		followups: followups,
		now:       time.Now,
	}
}

func (uc *CreateSubscription) Execute(ctx context.Context, in CreateSubscriptionInput) (CreateSubscriptionOutput, error) {
	log := logging.FromCtx(ctx)

	if in.PaymentIntentID == "" || in.CustomerID == "" || in.MonthlyAmount == 0 || in.ToteQuantity == 0 {
		return CreateSubscriptionOutput{}, ErrMissingData
	}
	if in.MonthlyAmount < pricing.MinMonthly || in.MonthlyAmount > pricing.MaxMonthly {
		return CreateSubscriptionOutput{}, ErrInvalidAmount
	}

	intent, err := uc.gateway.GetPaymentIntent(ctx, in.PaymentIntentID)
	if err != nil {
		return CreateSubscriptionOutput{}, fmt.Errorf("fetch payment intent: %w", err)
	}
	if intent.Status != PaymentIntentSucceeded {
		log.Warn("subscription requested for unconfirmed payment",
			"payment_intent_id", in.PaymentIntentID, "status", intent.Status)
		return CreateSubscriptionOutput{}, ErrPaymentNotConfirmed
	}
	if intent.PaymentMethodID == "" {
		return CreateSubscriptionOutput{}, ErrNoPaymentMethod
	}

	// The payment is confirmed past this point. Nothing below may fail the
	// request: failures are logged, flagged for manual follow-up, and the
	// caller gets a pending outcome with the payment left intact.
	sub, err := uc.provision(ctx, in, intent.PaymentMethodID)
	if err != nil {
		log.Error("subscription provisioning failed, flagging for manual follow-up",
			"payment_intent_id", in.PaymentIntentID, "customer_id", in.CustomerID, "error", err)

		fu := &FollowUp{
			ID:              uuid.NewString(),
			PaymentIntentID: in.PaymentIntentID,
			CustomerID:      in.CustomerID,
			Reason:          "subscription_create_failed",
			Details:         err.Error(),
		}
		if ferr := uc.followups.Insert(ctx, fu); ferr != nil {
			log.Error("could not record follow-up", "error", ferr, "payment_intent_id", in.PaymentIntentID)
		}

		uc.analytics.Publish(ctx, AnalyticsEvent{
			Name:      "subscription_failed",
			RequestID: uuid.NewString(),
			Params:    map[string]string{"payment_intent_id": in.PaymentIntentID},
		})

		out := CreateSubscriptionOutput{
			Status:        SubscriptionPendingManual,
			MonthlyAmount: in.MonthlyAmount,
			Pending:       true,
		}
		uc.notify(ctx, intent, in, out)
		return out, nil
	}

	nextBilling := time.Unix(sub.TrialEnd, 0).UTC()
	out := CreateSubscriptionOutput{
		SubscriptionID:  sub.ID,
		Status:          SubscriptionActive,
		NextBillingDate: nextBilling.Format(time.RFC3339),
		MonthlyAmount:   in.MonthlyAmount,
		TrialEnd:        sub.TrialEnd,
	}

	// Best-effort bookkeeping and notifications. Log-and-continue only.
	if err := uc.gateway.UpdateCustomerMetadata(ctx, in.CustomerID, map[string]string{
		"subscription_id":   sub.ID,
		"next_billing_date": out.NextBillingDate,
		"monthly_amount":    strconv.FormatInt(in.MonthlyAmount, 10),
	}); err != nil {
		log.Warn("customer metadata update failed", "customer_id", in.CustomerID, "error", err)
	}

	uc.analytics.Publish(ctx, AnalyticsEvent{
		Name:      "purchase",
		RequestID: uuid.NewString(),
		Params: map[string]string{
			"subscription_id": sub.ID,
			"monthly_amount":  strconv.FormatInt(in.MonthlyAmount, 10),
			"tote_count":      strconv.Itoa(in.ToteQuantity),
		},
	})

	log.Info("subscription created",
		"subscription_id", sub.ID, "customer_id", in.CustomerID,
		"trial_end", sub.TrialEnd, "monthly_amount", in.MonthlyAmount)

	uc.notify(ctx, intent, in, out)
	return out, nil
}

// notify queues the confirmation email for either outcome, rebuilding the
// order details from the metadata echoed on the payment intent. Exactly
// one notification attempt per confirmed payment; failure is logged only.
func (uc *CreateSubscription) notify(ctx context.Context, intent PaymentIntentRecord, in CreateSubscriptionInput, out CreateSubscriptionOutput) {
	toteCount, _ := strconv.Atoi(intent.Metadata["tote_count"])
	msg := OrderConfirmationMsg{
		RequestID:          uuid.NewString(),
		Name:               intent.Metadata["customer_name"],
		Email:              intent.Metadata["customer_email"],
		Phone:              intent.Metadata["customer_phone"],
		Address:            intent.Metadata["pickup_address"],
		ToteCount:          toteCount,
		SetupCost:          intent.Amount / 100,
		MonthlyCost:        in.MonthlyAmount,
		SubscriptionID:     out.SubscriptionID,
		NextBillingDate:    out.NextBillingDate,
		SubscriptionStatus: out.Status,
	}
	if err := uc.notifier.OrderConfirmed(ctx, msg); err != nil {
		logging.FromCtx(ctx).Warn("confirmation notification enqueue failed",
			"email", msg.Email, "error", err)
	}
}

// provision performs the gateway calls that make up subscription creation.
func (uc *CreateSubscription) provision(ctx context.Context, in CreateSubscriptionInput, paymentMethodID string) (SubscriptionRecord, error) {
	if err := uc.gateway.SetDefaultPaymentMethod(ctx, in.CustomerID, paymentMethodID); err != nil {
		return SubscriptionRecord{}, fmt.Errorf("set default payment method: %w", err)
	}

	monthlyCents := in.MonthlyAmount * 100
	priceID, found, err := uc.gateway.FindRecurringPrice(ctx, "usd", monthlyCents)
	if err != nil {
		return SubscriptionRecord{}, fmt.Errorf("find recurring price: %w", err)
	}
	if !found {
		priceID, err = uc.gateway.CreateRecurringPrice(ctx, "usd", monthlyCents, recurringProductName)
		if err != nil {
			return SubscriptionRecord{}, fmt.Errorf("create recurring price: %w", err)
		}
	}

	trialEnd := uc.now().Add(TrialPeriod).Unix()
	sub, err := uc.gateway.CreateSubscription(ctx, in.CustomerID, priceID, paymentMethodID, trialEnd)
	if err != nil {
		return SubscriptionRecord{}, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}
