package classifier

import (
	"context"

	"github.com/payshield/payshield/internal/risk"
)

// MockClassifier is a deterministic stand-in used when no scoring service
// is configured. It leans on the normalized drain feature and the velocity
// indicators, which keeps local demos plausible without a trained model.
type MockClassifier struct {
	// Unavailable forces every call to fail, for exercising degraded mode.
	Unavailable bool
}

func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

func (m *MockClassifier) Score(_ context.Context, features [risk.FeatureCount]float64) (float64, error) {
	if m.Unavailable {
		return 0, ErrUnavailable
	}

	// features[14] is the normalized drain fraction, [17]/[18] the
	// velocity threshold indicators, [20] the large-amount indicator.
	p := 0.4*features[14] + 0.2*features[17] + 0.2*features[18] + 0.2*features[20]
	if p > 1 {
		p = 1
	}
	return p, nil
}
