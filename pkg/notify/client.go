package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client posts JSON payloads to chat webhook endpoints (Slack, Teams
// and compatible services).
type Client struct {
	httpClient *http.Client
}

// NewClient creates a webhook poster.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{}}
}

// PostMessage sends one JSON payload to a webhook URL.
func (c *Client) PostMessage(ctx context.Context, webhookURL string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(raw))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rawResp, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook post error %d: %s", resp.StatusCode, string(rawResp))
	}
	return nil
}
