package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgakit/ratreview/config"
)

// fastConfig returns a fetch configuration with delays short enough for
// tests.
func fastConfig(maxRetries int) config.FetchConfig {
	return config.FetchConfig{
		MaxRetries:        &maxRetries,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		Multiplier:        2.0,
		RequestsPerSecond: 1000,
	}
}

// TestClientGet verifies a successful download returns the response body.
func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, config.DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	body, err := New(fastConfig(0)).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), body)
}

// TestClientGetRetriesServerErrors verifies 5xx responses are retried
// until the server recovers.
func TestClientGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := New(fastConfig(3)).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), body)
	assert.Equal(t, int32(3), calls.Load())
}

// TestClientGetDoesNotRetryClientErrors verifies a 404 fails immediately.
func TestClientGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(fastConfig(3)).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, int32(1), calls.Load())
}

// TestClientGetExhaustsRetries verifies a persistent failure reports the
// attempt count and the last error.
func TestClientGetExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(fastConfig(2)).Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Contains(t, err.Error(), "HTTP 500")
}

// TestClientGetContextCancellation verifies cancellation stops the retry
// loop.
func TestClientGetContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fastConfig(3)).Get(ctx, server.URL)
	require.Error(t, err)
}

// TestBackoffGrowsAndCaps verifies backoff grows with the attempt number
// and never exceeds the cap plus jitter.
func TestBackoffGrowsAndCaps(t *testing.T) {
	client := New(config.FetchConfig{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   10.0,
	})

	for attempt := 0; attempt < 10; attempt++ {
		delay := client.backoff(attempt)
		limit := float64(100*time.Millisecond) * (1 + jitterPercent)
		assert.LessOrEqual(t, float64(delay), limit,
			"delay for attempt %d should not exceed the cap plus jitter", attempt)
	}

	assert.Greater(t, client.backoff(3), client.backoff(0)/2)
}

// TestAddJitterZero verifies zero durations stay zero.
func TestAddJitterZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), addJitter(0))
}
