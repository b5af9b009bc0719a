package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedValidator(now time.Time) *MockValidator {
	v := NewMockValidator()
	v.now = func() time.Time { return now }
	return v
}

func TestValidatePaymentDetails(t *testing.T) {
	// Frozen at June 2026 so expiry outcomes are deterministic.
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	v := fixedValidator(now)
	ctx := context.Background()

	tests := []struct {
		name   string
		cvv    string
		expiry string
		ok     bool
		reason string
	}{
		{"valid 3 digit cvv", "123", "12/27", true, "Payment authorized by gateway"},
		{"valid 4 digit cvv", "1234", "06/26", true, "Payment authorized by gateway"},
		{"missing cvv", "", "12/27", false, "CVV is required"},
		{"non numeric cvv", "12a", "12/27", false, "CVV must be numeric"},
		{"cvv too short", "12", "12/27", false, "CVV must be 3 or 4 digits"},
		{"cvv too long", "12345", "12/27", false, "CVV must be 3 or 4 digits"},
		{"expired last month", "123", "05/26", false, "Card has expired"},
		{"expired last year", "123", "12/25", false, "Card has expired"},
		{"malformed expiry", "123", "banana", false, "Card has expired"},
		{"expires this month is still valid", "123", "06/26", true, "Payment authorized by gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason, err := v.ValidatePaymentDetails(ctx, "1234567890", tt.cvv, tt.expiry)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestValidatePaymentDetails_CanceledContext(t *testing.T) {
	v := NewMockValidator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := v.ValidatePaymentDetails(ctx, "1234567890", "123", "12/27")
	assert.Error(t, err)
}
