// Package webhook delivers cards to Teams workflow webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"report-bot/internal/apperr"
)

const maxErrorBody = 4 << 10

type Client struct {
	httpClient *http.Client
}

// NewClient returns a client whose requests give up after timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// PostCard sends doc as JSON to url. It does not retry.
func (c *Client) PostCard(ctx context.Context, url string, doc any) error {
	if url == "" {
		return &apperr.DeliveryError{Err: fmt.Errorf("no webhook url configured")}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal card: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.DeliveryError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &apperr.DeliveryError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
