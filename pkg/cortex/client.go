package cortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client is the analysis engine REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new analysis engine client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// JobRequest describes the observable an analyzer or responder runs on.
type JobRequest struct {
	Data     string `json:"data"`
	DataType string `json:"dataType"`
	TLP      int    `json:"tlp"`
}

// Job is a submitted analyzer or responder run.
type Job struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(raw))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call analysis engine %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rawResp, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("analysis engine %s error %d: %s", path, resp.StatusCode, string(rawResp))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// RunAnalyzer submits an observable to the named analyzer.
func (c *Client) RunAnalyzer(ctx context.Context, analyzerID string, job JobRequest) (*Job, error) {
	var out Job
	if err := c.post(ctx, "/api/analyzer/"+analyzerID+"/run", job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunResponder submits an object to the named responder.
func (c *Client) RunResponder(ctx context.Context, responderID string, job JobRequest) (*Job, error) {
	var out Job
	if err := c.post(ctx, "/api/responder/"+responderID+"/run", job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
