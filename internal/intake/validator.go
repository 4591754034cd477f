// Package intake turns a raw order submission into a validated, sanitized
// domain.Order. Checks run in a fixed sequence and the first failure wins,
// so the caller always gets one actionable error.
package intake

import (
	"fmt"
	"regexp"
	"strings"

	domain "github.com/Monkachunkaa/tote-storage-api/internal/entity"
	"github.com/Monkachunkaa/tote-storage-api/internal/pricing"
)

type ErrorKind string

const (
	KindMissingField     ErrorKind = "missing_field"
	KindInvalidEmail     ErrorKind = "invalid_email"
	KindInvalidPhone     ErrorKind = "invalid_phone"
	KindAddressTooShort  ErrorKind = "address_too_short"
	KindInvalidToteCount ErrorKind = "invalid_tote_count"
	KindCostMismatch     ErrorKind = "cost_mismatch"
)

// ValidationError names the first check that failed. Tamper marks errors
// that look like request manipulation rather than a user mistake; handlers
// log those with full detail but answer with a generic message.
type ValidationError struct {
	Kind   ErrorKind
	Field  string
	Tamper bool
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindMissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case KindInvalidEmail:
		return "please enter a valid email address"
	case KindInvalidPhone:
		return "please enter a valid 10-digit phone number"
	case KindAddressTooShort:
		return "please enter your full street address"
	case KindInvalidToteCount:
		return pricing.ErrToteCountOutOfRange.Error()
	case KindCostMismatch:
		return "invalid order amount"
	}
	return string(e.Kind)
}

// RawOrder is an unvalidated submission as it arrives off the wire.
type RawOrder struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	ToteCount int

	// DeclaredTotal is the client-displayed total in dollars, when present.
	// It is cross-checked against the recomputed cost, never trusted.
	DeclaredTotal *float64
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9()+.\-\s]+$`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// ValidEmail reports whether s passes the same email check Validate uses.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate runs the check sequence and returns a sanitized Order with
// server-computed costs, or a *ValidationError for the first failure.
func Validate(raw RawOrder) (domain.Order, error) {
	name := strings.TrimSpace(raw.Name)
	email := strings.TrimSpace(raw.Email)
	phone := strings.TrimSpace(raw.Phone)
	address := strings.TrimSpace(raw.Address)

	for _, f := range []struct{ field, value string }{
		{"name", name}, {"email", email}, {"phone", phone}, {"address", address},
	} {
		if f.value == "" {
			return domain.Order{}, &ValidationError{Kind: KindMissingField, Field: f.field}
		}
	}
	if len(name) < 2 {
		return domain.Order{}, &ValidationError{Kind: KindMissingField, Field: "name"}
	}

	if !emailPattern.MatchString(email) {
		return domain.Order{}, &ValidationError{Kind: KindInvalidEmail, Field: "email"}
	}

	if !phonePattern.MatchString(phone) || len(digitPattern.FindAllString(phone, -1)) < 10 {
		return domain.Order{}, &ValidationError{Kind: KindInvalidPhone, Field: "phone"}
	}

	if len(address) < 10 {
		return domain.Order{}, &ValidationError{Kind: KindAddressTooShort, Field: "address"}
	}

	if !pricing.ValidTotes(raw.ToteCount) {
		return domain.Order{}, &ValidationError{Kind: KindInvalidToteCount, Field: "toteNumber"}
	}

	if raw.DeclaredTotal != nil && !pricing.MatchesSetup(*raw.DeclaredTotal, raw.ToteCount) {
		return domain.Order{}, &ValidationError{Kind: KindCostMismatch, Field: "totalCost", Tamper: true}
	}

	setup, err := pricing.SetupCost(raw.ToteCount)
	if err != nil {
		// unreachable after the range check above
		return domain.Order{}, &ValidationError{Kind: KindInvalidToteCount, Field: "toteNumber"}
	}

	return domain.Order{
		Name:        Sanitize(name),
		Email:       strings.ToLower(Sanitize(email)),
		Phone:       Sanitize(phone),
		Address:     Sanitize(address),
		ToteCount:   raw.ToteCount,
		SetupCost:   setup,
		MonthlyCost: pricing.MonthlyCost(raw.ToteCount),
	}, nil
}
