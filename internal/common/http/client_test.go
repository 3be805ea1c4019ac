package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON_RetriesWithFreshBody(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "data:audio/webm;base64,AAAA", body["audioDataUri"])

		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"action":"navigate"}`))
	}))
	defer server.Close()

	c := NewClient(time.Second, 2)
	c.baseDelay = time.Millisecond

	var out map[string]string
	err := c.PostJSON(context.Background(), server.URL, map[string]string{"audioDataUri": "data:audio/webm;base64,AAAA"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "navigate", out["action"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad clip", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(time.Second, 3)
	c.baseDelay = time.Millisecond

	err := c.PostJSON(context.Background(), server.URL, map[string]string{}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.False(t, se.Retryable())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostJSON_ExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(time.Second, 2)
	c.baseDelay = time.Millisecond

	err := c.PostJSON(context.Background(), server.URL, map[string]string{}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSON_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewClient(5*time.Second, 3).PostJSON(ctx, server.URL, map[string]string{}, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestPostJSON_BadResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	var out map[string]interface{}
	err := NewClient(time.Second, 0).PostJSON(context.Background(), server.URL, map[string]string{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
