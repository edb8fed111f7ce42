package llm

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewOpenAIClient(config.LLMConfig{
		BaseURL:    srv.URL + "/",
		APIKey:     "sk-test",
		Model:      "forecast-small",
		MaxRetries: 2,
	}, zap.NewNop())
	c.backoff = time.Millisecond
	return c
}

func TestOpenAIClient_Complete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "forecast-small", gjson.GetBytes(body, "model").String())
		assert.Equal(t, "system", gjson.GetBytes(body, "messages.0.role").String())
		assert.Equal(t, "history", gjson.GetBytes(body, "messages.1.content").String())
		assert.Equal(t, "json_object", gjson.GetBytes(body, "response_format.type").String())

		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"  {\"summary\":\"ok\"} "}}]}`)
	})

	out, err := c.Complete(context.Background(), "you forecast", "history")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)
	assert.Equal(t, "forecast-small", c.Model())
}

func TestOpenAIClient_RetriesRateLimits(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{}"}}]}`)
		}
	})

	out, err := c.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "{}", out)
	assert.EqualValues(t, 3, calls.Load())
}

func TestOpenAIClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.EqualValues(t, 3, calls.Load())
}

func TestOpenAIClient_RetryWaitsGrow(t *testing.T) {
	c := NewOpenAIClient(config.LLMConfig{MaxRetries: 3}, zap.NewNop())
	c.backoff = 10 * time.Millisecond
	policy := c.retryPolicy(context.Background())

	var waits []time.Duration
	for d := policy.NextBackOff(); d != backoff.Stop; d = policy.NextBackOff() {
		waits = append(waits, d)
	}
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, waits)
}

func TestOpenAIClient_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c.backoff = time.Hour

	_, err := c.Complete(ctx, "s", "u")
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAIClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"invalid api key"}}`)
	})

	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAIClient_EmptyCompletion(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	})

	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(context.Background(), config.LLMConfig{}, nil)
	assert.ErrorIs(t, err, ErrDisabled)

	c, err := NewClient(context.Background(), config.LLMConfig{Enabled: true, Provider: "openai"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = NewClient(context.Background(), config.LLMConfig{Enabled: true, Provider: "gemini"}, nil)
	assert.ErrorContains(t, err, "API key is required")

	_, err = NewClient(context.Background(), config.LLMConfig{Enabled: true, Provider: "claude"}, nil)
	assert.ErrorContains(t, err, "unknown llm provider")
}
