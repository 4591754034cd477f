package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Monkachunkaa/tote-storage-api/internal/intake"
	"github.com/Monkachunkaa/tote-storage-api/internal/logging"
)

var (
	ErrInvalidEmail     = errors.New("please enter a valid email address")
	ErrCustomerNotFound = errors.New("no account found for that email address")
)

type CustomerPortalOutput struct {
	PortalURL    string
	CustomerID   string
	CustomerName string
}

// CustomerPortal resolves an email to a gateway customer and opens a
// billing portal session returning to the public site.
type CustomerPortal struct {
	gateway PaymentGateway
	siteURL string
}

func NewCustomerPortal(gw PaymentGateway, siteURL string) *CustomerPortal {
	return &CustomerPortal{gateway: gw, siteURL: siteURL}
}

func (uc *CustomerPortal) Execute(ctx context.Context, email string) (CustomerPortalOutput, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !intake.ValidEmail(email) {
		return CustomerPortalOutput{}, ErrInvalidEmail
	}

	cust, found, err := uc.gateway.FindCustomerByEmail(ctx, email)
	if err != nil {
		return CustomerPortalOutput{}, fmt.Errorf("find customer: %w", err)
	}
	if !found {
		return CustomerPortalOutput{}, ErrCustomerNotFound
	}

	url, err := uc.gateway.CreatePortalSession(ctx, cust.ID, uc.siteURL)
	if err != nil {
		return CustomerPortalOutput{}, fmt.Errorf("create portal session: %w", err)
	}

	logging.FromCtx(ctx).Info("portal session created", "customer_id", cust.ID)
	return CustomerPortalOutput{
		PortalURL:    url,
		CustomerID:   cust.ID,
		CustomerName: cust.Name,
	}, nil
}
