package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{"id":"c1","object":"chat.completion","model":"test-model",
 "choices":[{"index":0,"message":{"role":"assistant","content":"Doug's Tasks:\n1. Write the runbook (Non-Coding)"},"finish_reason":"stop"}],
 "usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`

func newTestClient(t *testing.T, asJSON bool, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "test-model", JSON: asJSON, MaxRetries: 2, RetryBase: time.Millisecond})
	c.pause = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestComplete(t *testing.T) {
	var req map[string]any
	c := newTestClient(t, true, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	})

	out, err := c.Complete(context.Background(), "rules", "transcript")
	require.NoError(t, err)
	assert.Contains(t, out, "Write the runbook")

	assert.Equal(t, "test-model", req["model"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "transcript", msgs[1].(map[string]any)["content"])
	assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
}

func TestComplete_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
			return
		}
		_, _ = w.Write([]byte(okBody))
	})
	_, err := c.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestComplete_BackoffHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32
	c := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"busy","type":"server_error"}}`))
	})
	c.opts.RetryBase = time.Hour
	c.pause = pause

	go func() {
		for calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	done := make(chan error, 1)
	go func() {
		_, err := c.Complete(ctx, "s", "u")
		done <- err
	}()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, perr.ErrorCodeCanceled, perr.CodeOf(err))
		assert.EqualValues(t, 1, calls.Load())
	case <-time.After(5 * time.Second):
		t.Fatal("Complete kept sleeping after cancel")
	}
}

func TestPause(t *testing.T) {
	require.NoError(t, pause(context.Background(), time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pause(ctx, time.Hour), context.Canceled)
}

func TestComplete_ErrorCodes(t *testing.T) {
	cases := map[int]perr.ErrorCode{
		http.StatusUnauthorized:       perr.ErrorCodeUnauthorized,
		http.StatusBadRequest:         perr.ErrorCodeUpstream,
		http.StatusServiceUnavailable: perr.ErrorCodeUnavailable,
		http.StatusTooManyRequests:    perr.ErrorCodeTooManyRequests,
	}
	for status, want := range cases {
		var calls atomic.Int32
		c := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"x"}}`))
		})
		_, err := c.Complete(context.Background(), "s", "u")
		assert.Equal(t, want, perr.CodeOf(err), "status %d", status)
		if want == perr.ErrorCodeUpstream || want == perr.ErrorCodeUnauthorized {
			assert.EqualValues(t, 1, calls.Load(), "status %d is not retried", status)
		} else {
			assert.EqualValues(t, 3, calls.Load(), "status %d is retried", status)
		}
	}
}

func TestComplete_NoChoices(t *testing.T) {
	c := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","choices":[]}`))
	})
	_, err := c.Complete(context.Background(), "s", "u")
	assert.Equal(t, perr.ErrorCodeUpstream, perr.CodeOf(err))
}

func TestComplete_Canceled(t *testing.T) {
	c := newTestClient(t, false, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(okBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Complete(ctx, "s", "u")
	assert.Equal(t, perr.ErrorCodeCanceled, perr.CodeOf(err))
}

func TestFromConfig(t *testing.T) {
	t.Setenv("LLM_API_KEY", "k")
	t.Setenv("LLM_MODEL", "gpt-x")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	o := FromConfig(config.New())
	assert.Equal(t, "k", o.APIKey)
	assert.Equal(t, "gpt-x", o.Model)
	assert.InDelta(t, 0.2, o.Temperature, 1e-6)
	assert.Equal(t, defaultTimeout, o.Timeout)
}
