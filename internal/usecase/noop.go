package usecase

import "context"

// No-op collaborators. Wiring injects these when a broker/queue is not
// configured, so the use cases never branch on "is this present".

type NoopAnalytics struct{}

func (NoopAnalytics) Publish(context.Context, AnalyticsEvent) {}

type NoopNotifier struct{}

func (NoopNotifier) OrderConfirmed(context.Context, OrderConfirmationMsg) error { return nil }

type NoopFollowUpRepo struct{}

func (NoopFollowUpRepo) Insert(context.Context, *FollowUp) error       { return nil }
func (NoopFollowUpRepo) ListOpen(context.Context) ([]*FollowUp, error) { return nil, nil }
func (NoopFollowUpRepo) Resolve(context.Context, string) error         { return nil }

var (
	_ Analytics    = NoopAnalytics{}
	_ Notifier     = NoopNotifier{}
	_ FollowUpRepo = NoopFollowUpRepo{}
)
