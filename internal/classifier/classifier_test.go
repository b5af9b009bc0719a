package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payshield/payshield/internal/risk"
)

func TestHTTPClassifier_Score(t *testing.T) {
	var got scoreRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(scoreResponse{Probability: 0.42})
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, time.Second)
	var features [risk.FeatureCount]float64
	features[0] = 1234.5

	p, err := c.Score(context.Background(), features)
	require.NoError(t, err)
	assert.Equal(t, 0.42, p)
	assert.Len(t, got.Features, risk.FeatureCount)
	assert.Equal(t, 1234.5, got.Features[0])
}

func TestHTTPClassifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, time.Second)

	_, err := c.Score(context.Background(), [risk.FeatureCount]float64{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClassifier_OutOfRangeProbability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(scoreResponse{Probability: 1.7})
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, time.Second)

	_, err := c.Score(context.Background(), [risk.FeatureCount]float64{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClassifier_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL, time.Second)
	for i := 0; i < 7; i++ {
		_, err := c.Score(context.Background(), [risk.FeatureCount]float64{})
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	// After five consecutive failures the breaker stops hitting the wire.
	assert.Equal(t, 5, calls)
}

func TestMockClassifier(t *testing.T) {
	m := NewMockClassifier()

	var clean [risk.FeatureCount]float64
	p, err := m.Score(context.Background(), clean)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	var risky [risk.FeatureCount]float64
	risky[14] = 1
	risky[17] = 1
	risky[18] = 1
	risky[20] = 1
	p, err = m.Score(context.Background(), risky)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	m.Unavailable = true
	_, err = m.Score(context.Background(), clean)
	assert.ErrorIs(t, err, ErrUnavailable)
}
