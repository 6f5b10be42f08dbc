package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phantomlabs/phantom-backend/pkg/config"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testConfig() config.WebhookConfig {
	return config.WebhookConfig{
		RequestTimeout: 5 * time.Second,
		MaxRetries:     3,
	}
}

func TestSendDeliversPayload(t *testing.T) {
	var got Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(testConfig(), withSleep(func(time.Duration) {}))
	msg := Message{Embeds: []Embed{{Title: "New Product", Color: ColorNewProduct}}}
	require.NoError(t, client.Send(context.Background(), server.URL, msg))
	require.Len(t, got.Embeds, 1)
	require.Equal(t, "New Product", got.Embeds[0].Title)
}

func TestSendRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(testConfig(), withSleep(func(d time.Duration) { slept = append(slept, d) }))

	require.NoError(t, client.Send(context.Background(), server.URL, Message{Content: "restock"}))
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, []time.Duration{100 * time.Millisecond}, slept)
}

func TestSendGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(), withSleep(func(time.Duration) {}))
	err := client.Send(context.Background(), server.URL, Message{Content: "restock"})
	require.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
	require.Equal(t, int32(4), calls.Load())
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(testConfig(), withSleep(func(time.Duration) {}))
	err := client.Send(context.Background(), server.URL, Message{Content: "bad"})
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestSendRequiresURL(t *testing.T) {
	client := NewClient(testConfig())
	err := client.Send(context.Background(), "  ", Message{Content: "x"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
