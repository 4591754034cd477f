package queue

import (
	"context"

	"github.com/Monkachunkaa/tote-storage-api/internal/usecase"
)

// ConfirmationSender is the port this handler drains deliveries into.
// Implemented by usecase.SendEmail.
type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, msg usecase.OrderConfirmationMsg) (string, error)
}

// OrderConfirmedHandler sends the confirmation email for a queued order
// outcome. Errors propagate to the Router, which retries once.
type OrderConfirmedHandler struct {
	Sender ConfirmationSender
}

func NewOrderConfirmedHandler(s ConfirmationSender) *OrderConfirmedHandler {
	return &OrderConfirmedHandler{Sender: s}
}

// HandleConfirmed is intended to be used with the JSON adapter
// (queue.JSONHandler[usecase.OrderConfirmationMsg]).
func (h *OrderConfirmedHandler) HandleConfirmed(ctx context.Context, msg usecase.OrderConfirmationMsg) error {
	_, err := h.Sender.SendOrderConfirmation(ctx, msg)
	return err
}
