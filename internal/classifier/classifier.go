// Package classifier wraps the external fraud classifier as a black-box
// scorer. The model itself (training, feature scaling, inference) lives in
// a separate scoring service; this package only talks to it.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/payshield/payshield/internal/risk"
)

// ErrUnavailable signals the classifier could not produce a score. Callers
// recover by scoring with ml_score = 0; the transaction path is never
// blocked on classifier failure alone.
var ErrUnavailable = errors.New("classifier unavailable")

// Classifier scores a fixed-order feature vector, returning a fraud
// probability in [0,1].
type Classifier interface {
	Score(ctx context.Context, features [risk.FeatureCount]float64) (float64, error)
}

// HTTPClassifier calls the scoring sidecar over HTTP with a bounded
// timeout and a circuit breaker, so a slow or dead model service degrades
// the pipeline instead of stalling it.
type HTTPClassifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPClassifier builds a classifier client. timeout bounds each call
// end to end; the breaker trips after five consecutive failures and
// half-opens after 30 seconds.
func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	settings := gobreaker.Settings{
		Name:    "classifier",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("classifier circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &HTTPClassifier{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

type scoreRequest struct {
	Features []float64 `json:"features"`
}

type scoreResponse struct {
	Probability float64 `json:"probability"`
}

// Score posts the feature vector to the scoring service. Any transport,
// breaker, or payload failure is reported as ErrUnavailable.
func (c *HTTPClassifier) Score(ctx context.Context, features [risk.FeatureCount]float64) (float64, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.score(ctx, features)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result.(float64), nil
}

func (c *HTTPClassifier) score(ctx context.Context, features [risk.FeatureCount]float64) (float64, error) {
	body, err := json.Marshal(scoreRequest{Features: features[:]})
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scoring service returned %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Probability < 0 || out.Probability > 1 {
		return 0, fmt.Errorf("probability out of range: %f", out.Probability)
	}
	return out.Probability, nil
}
