// Package gateway fronts the external payment gateway that authorizes
// card details before scoring. Real gateways validate the CVV against the
// card network without revealing it; the CVV is never persisted here.
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validator authorizes payment details before a transaction is scored.
// A negative result short-circuits the pipeline straight to BLOCK.
type Validator interface {
	ValidatePaymentDetails(ctx context.Context, accountNumber, cvv, expiry string) (ok bool, reason string, err error)
}

// MockValidator simulates gateway authorization: any well-formed 3-4 digit
// CVV on a non-expired card is accepted, mimicking a successful network
// auth without calling out.
type MockValidator struct {
	now func() time.Time
}

func NewMockValidator() *MockValidator {
	return &MockValidator{now: time.Now}
}

func (v *MockValidator) ValidatePaymentDetails(ctx context.Context, accountNumber, cvv, expiry string) (bool, string, error) {
	if err := ctx.Err(); err != nil {
		return false, "", fmt.Errorf("gateway call canceled: %w", err)
	}

	cvv = strings.TrimSpace(cvv)
	if cvv == "" {
		return false, "CVV is required", nil
	}
	for _, r := range cvv {
		if r < '0' || r > '9' {
			return false, "CVV must be numeric", nil
		}
	}
	if len(cvv) < 3 || len(cvv) > 4 {
		return false, "CVV must be 3 or 4 digits", nil
	}

	if !v.expiryValid(expiry) {
		return false, "Card has expired", nil
	}

	return true, "Payment authorized by gateway", nil
}

// expiryValid checks an MM/YY card expiry. Cards expire at the end of the
// stated month.
func (v *MockValidator) expiryValid(expiry string) bool {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	if year < 100 {
		year += 2000
	}

	now := v.now().UTC()
	if year > now.Year() {
		return true
	}
	return year == now.Year() && time.Month(month) >= now.Month()
}
