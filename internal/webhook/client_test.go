package webhook_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-bot/internal/apperr"
	"report-bot/internal/webhook"
)

func TestPostCard_SendsJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := webhook.NewClient(time.Second)
	err := c.PostCard(context.Background(), srv.URL, map[string]string{"type": "message"})

	require.NoError(t, err)
	assert.Equal(t, "message", got["type"])
}

func TestPostCard_ErrorStatusIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad card", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := webhook.NewClient(time.Second).PostCard(context.Background(), srv.URL, struct{}{})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDelivery)
	var de *apperr.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusBadRequest, de.StatusCode)
	assert.Contains(t, de.Body, "bad card")
	assert.True(t, apperr.IsRetryable(err))
}

func TestPostCard_TimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	err := webhook.NewClient(50*time.Millisecond).PostCard(context.Background(), srv.URL, struct{}{})

	assert.ErrorIs(t, err, apperr.ErrDelivery)
}

func TestPostCard_MissingURL(t *testing.T) {
	err := webhook.NewClient(time.Second).PostCard(context.Background(), "", struct{}{})

	assert.ErrorIs(t, err, apperr.ErrDelivery)
}
