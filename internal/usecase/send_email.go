package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Monkachunkaa/tote-storage-api/internal/intake"
	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
)

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// SendEmail composes and delivers transactional mail through the
// EmailSender port. Bodies are plain strings; the marketing templates
// live outside this service.
type SendEmail struct {
	sender     EmailSender
	ownerInbox string
}

func NewSendEmail(sender EmailSender, ownerInbox string) *SendEmail {
	return &SendEmail{sender: sender, ownerInbox: ownerInbox}
}

// SendContact forwards a contact-form message to the owner inbox with
// reply-to set to the visitor.
func (uc *SendEmail) SendContact(ctx context.Context, in ContactInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	message := strings.TrimSpace(in.Message)

	switch {
	case name == "":
		return "", &intake.ValidationError{Kind: intake.KindMissingField, Field: "name"}
	case email == "":
		return "", &intake.ValidationError{Kind: intake.KindMissingField, Field: "email"}
	case message == "":
		return "", &intake.ValidationError{Kind: intake.KindMissingField, Field: "message"}
	}
	if !intake.ValidEmail(email) {
		return "", &intake.ValidationError{Kind: intake.KindInvalidEmail, Field: "email"}
	}

	body := fmt.Sprintf("<p><strong>From:</strong> %s (%s)</p><p>%s</p>",
		intake.Sanitize(name), intake.Sanitize(email), intake.Sanitize(message))

	id, err := uc.sender.Send(ctx, EmailMessage{
		To:       uc.ownerInbox,
		ReplyTo:  email,
		Subject:  "New contact form message from " + intake.Sanitize(name),
		HTMLBody: body,
	})
	if err != nil {
		return "", fmt.Errorf("send contact email: %w", err)
	}
	logging.FromCtx(ctx).Info("contact email sent", "message_id", id)
	return id, nil
}

// SendOrderConfirmation mails the customer their order summary and copies
// the owner inbox. Fields in msg are already sanitized by intake.
func (uc *SendEmail) SendOrderConfirmation(ctx context.Context, msg OrderConfirmationMsg) (string, error) {
	if msg.Email == "" {
		return "", &intake.ValidationError{Kind: intake.KindMissingField, Field: "email"}
	}
	if !intake.ValidEmail(msg.Email) {
		return "", &intake.ValidationError{Kind: intake.KindInvalidEmail, Field: "email"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s, thanks for your order!</p>", msg.Name)
	fmt.Fprintf(&b, "<p>%d totes &mdash; $%d.00 today, then $%d.00/month.</p>",
		msg.ToteCount, msg.SetupCost, msg.MonthlyCost)
	fmt.Fprintf(&b, "<p>Pickup address: %s</p>", msg.Address)
	if msg.SubscriptionStatus == SubscriptionActive {
		fmt.Fprintf(&b, "<p>Your first monthly bill lands on %s.</p>", msg.NextBillingDate)
	} else {
		b.WriteString("<p>Your payment went through. We are finishing your monthly billing setup and will follow up shortly.</p>")
	}

	id, err := uc.sender.Send(ctx, EmailMessage{
		To:       msg.Email,
		Subject:  "Your Instant Closet Tote Storage order",
		HTMLBody: b.String(),
	})
	if err != nil {
		return "", fmt.Errorf("send order confirmation: %w", err)
	}

	// Owner copy is best-effort; the customer's receipt is the one that counts.
	if uc.ownerInbox != "" {
		if _, cerr := uc.sender.Send(ctx, EmailMessage{
			To:      uc.ownerInbox,
			Subject: fmt.Sprintf("New order: %d totes for %s", msg.ToteCount, msg.Name),
			HTMLBody: fmt.Sprintf("<p>%s / %s / %s</p><p>%s</p><p>Subscription: %s (%s)</p>",
				msg.Name, msg.Email, msg.Phone, msg.Address, msg.SubscriptionID, msg.SubscriptionStatus),
		}); cerr != nil {
			logging.FromCtx(ctx).Warn("owner copy failed", "error", cerr)
		}
	}

	logging.FromCtx(ctx).Info("order confirmation sent", "message_id", id, "email", msg.Email)
	return id, nil
}
