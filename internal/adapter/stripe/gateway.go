// Package stripe adapts the hosted Stripe API to the usecase.PaymentGateway
// port. All durable customer and billing state lives in the Stripe account;
// this adapter only translates.
package stripe

import (
	"context"
	"errors"
	"time"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

type Gateway struct {
	sc      *client.API
	timeout time.Duration
}

func New(secretKey string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Gateway{sc: sc, timeout: timeout}
}

// callCtx ensures a per-call deadline when the caller didn't set one.
func (g *Gateway) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, g.timeout)
	}
	return ctx, func() {}
}

// wrap converts SDK errors into usecase.GatewayError, keeping Stripe's
// user-presentable message when one exists (card declines and the like).
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return &usecase.GatewayError{Msg: se.Msg, Err: err}
	}
	return &usecase.GatewayError{Err: err}
}

func (g *Gateway) EnsureCustomer(ctx context.Context, name, email, phone string) (usecase.CustomerRecord, error) {
	if c, found, err := g.FindCustomerByEmail(ctx, email); err != nil {
		return usecase.CustomerRecord{}, err
	} else if found {
		return c, nil
	}

	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.CustomerParams{
		Name:  stripe.String(name),
		Email: stripe.String(email),
		Phone: stripe.String(phone),
	}
	params.Context = ctx
	c, err := g.sc.Customers.New(params)
	if err != nil {
		return usecase.CustomerRecord{}, wrap(err)
	}
	return usecase.CustomerRecord{ID: c.ID, Name: c.Name, Email: c.Email}, nil
}

func (g *Gateway) CreatePaymentIntent(ctx context.Context, amountCents int64, currency, customerID string, metadata map[string]string) (usecase.PaymentIntentRecord, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Customer: stripe.String(customerID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		// The confirmed payment method must be reusable for the monthly
		// subscription that follows.
		SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return usecase.PaymentIntentRecord{}, wrap(err)
	}
	return toIntentRecord(pi), nil
}

func (g *Gateway) GetPaymentIntent(ctx context.Context, id string) (usecase.PaymentIntentRecord, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("payment_method")

	pi, err := g.sc.PaymentIntents.Get(id, params)
	if err != nil {
		return usecase.PaymentIntentRecord{}, wrap(err)
	}
	return toIntentRecord(pi), nil
}

func toIntentRecord(pi *stripe.PaymentIntent) usecase.PaymentIntentRecord {
	rec := usecase.PaymentIntentRecord{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Metadata:     pi.Metadata,
	}
	if pi.PaymentMethod != nil {
		rec.PaymentMethodID = pi.PaymentMethod.ID
	}
	if pi.Customer != nil {
		rec.CustomerID = pi.Customer.ID
	}
	return rec
}

func (g *Gateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx
	_, err := g.sc.Customers.Update(customerID, params)
	return wrap(err)
}

// FindRecurringPrice lists active monthly recurring prices and matches on
// exact currency + unit amount, so identical amounts never spawn duplicate
// price objects.
func (g *Gateway) FindRecurringPrice(ctx context.Context, currency string, unitAmountCents int64) (string, bool, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.PriceListParams{
		Active:   stripe.Bool(true),
		Currency: stripe.String(currency),
		Type:     stripe.String(string(stripe.PriceTypeRecurring)),
	}
	params.Context = ctx

	it := g.sc.Prices.List(params)
	for it.Next() {
		p := it.Price()
		if p.Recurring != nil && p.Recurring.Interval == stripe.PriceRecurringIntervalMonth && p.UnitAmount == unitAmountCents {
			return p.ID, true, nil
		}
	}
	if err := it.Err(); err != nil {
		return "", false, wrap(err)
	}
	return "", false, nil
}

func (g *Gateway) CreateRecurringPrice(ctx context.Context, currency string, unitAmountCents int64, productName string) (string, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.PriceParams{
		Currency:   stripe.String(currency),
		UnitAmount: stripe.Int64(unitAmountCents),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
		},
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(productName),
		},
	}
	params.Context = ctx

	p, err := g.sc.Prices.New(params)
	if err != nil {
		return "", wrap(err)
	}
	return p.ID, nil
}

func (g *Gateway) CreateSubscription(ctx context.Context, customerID, priceID, paymentMethodID string, trialEnd int64) (usecase.SubscriptionRecord, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
		DefaultPaymentMethod: stripe.String(paymentMethodID),
		// First real charge lands exactly at trial end.
		TrialEnd:           stripe.Int64(trialEnd),
		BillingCycleAnchor: stripe.Int64(trialEnd),
		CollectionMethod:   stripe.String(string(stripe.SubscriptionCollectionMethodChargeAutomatically)),
	}
	params.Context = ctx

	sub, err := g.sc.Subscriptions.New(params)
	if err != nil {
		return usecase.SubscriptionRecord{}, wrap(err)
	}
	rec := usecase.SubscriptionRecord{
		ID:       sub.ID,
		Status:   string(sub.Status),
		TrialEnd: sub.TrialEnd,
		PriceID:  priceID,
	}
	if sub.Customer != nil {
		rec.CustomerID = sub.Customer.ID
	}
	return rec, nil
}

func (g *Gateway) UpdateCustomerMetadata(ctx context.Context, customerID string, metadata map[string]string) error {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.CustomerParams{}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	_, err := g.sc.Customers.Update(customerID, params)
	return wrap(err)
}

func (g *Gateway) FindCustomerByEmail(ctx context.Context, email string) (usecase.CustomerRecord, bool, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := g.sc.Customers.List(params)
	for it.Next() {
		c := it.Customer()
		return usecase.CustomerRecord{ID: c.ID, Name: c.Name, Email: c.Email}, true, nil
	}
	if err := it.Err(); err != nil {
		return usecase.CustomerRecord{}, false, wrap(err)
	}
	return usecase.CustomerRecord{}, false, nil
}

func (g *Gateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	ctx, cancel := g.callCtx(ctx)
	defer cancel()

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := g.sc.BillingPortalSessions.New(params)
	if err != nil {
		return "", wrap(err)
	}
	return s.URL, nil
}

var _ usecase.PaymentGateway = (*Gateway)(nil)
