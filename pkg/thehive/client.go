package thehive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client is the HTTP wrapper for the case platform REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new case platform HTTP client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call case platform %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("case platform %s %s error %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// GetCase fetches a case by id.
func (c *Client) GetCase(ctx context.Context, id string) (*Case, error) {
	var out Case
	if err := c.do(ctx, http.MethodGet, "/api/case/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCase patches the given fields of a case.
func (c *Client) UpdateCase(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/api/case/"+id, fields, nil)
}

// CreateTask adds a task to a case and returns the new task id.
func (c *Client) CreateTask(ctx context.Context, caseID string, task Task) (string, error) {
	var out Task
	if err := c.do(ctx, http.MethodPost, "/api/case/"+caseID+"/task", task, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// GetCaseTasks lists the tasks of a case.
func (c *Client) GetCaseTasks(ctx context.Context, caseID string) ([]Task, error) {
	query := map[string]any{"query": map[string]any{"_parent": map[string]any{"_type": "case", "_query": map[string]any{"_id": caseID}}}}
	var out []Task
	if err := c.do(ctx, http.MethodPost, "/api/case/task/_search?range=all", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCaseObservables lists the observables of a case.
func (c *Client) GetCaseObservables(ctx context.Context, caseID string) ([]Observable, error) {
	query := map[string]any{"query": map[string]any{"_parent": map[string]any{"_type": "case", "_query": map[string]any{"_id": caseID}}}}
	var out []Observable
	if err := c.do(ctx, http.MethodPost, "/api/case/artifact/_search?range=all", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCaseObservable attaches one observable to a case.
func (c *Client) CreateCaseObservable(ctx context.Context, caseID string, observable Observable) error {
	return c.do(ctx, http.MethodPost, "/api/case/"+caseID+"/artifact", observable, nil)
}

// FindAlerts searches alerts matching the field query.
func (c *Client) FindAlerts(ctx context.Context, query map[string]any) ([]Alert, error) {
	body := map[string]any{"query": query}
	var out []Alert
	if err := c.do(ctx, http.MethodPost, "/api/alert/_search?range=all", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAlert creates a new alert.
func (c *Client) CreateAlert(ctx context.Context, alert Alert) (*Alert, error) {
	var out Alert
	if err := c.do(ctx, http.MethodPost, "/api/alert", alert, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAlert patches the given fields of an alert.
func (c *Client) UpdateAlert(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPatch, "/api/alert/"+id, fields, nil)
}

// PromoteAlertToCase turns an alert into a case using a case template.
func (c *Client) PromoteAlertToCase(ctx context.Context, id, caseTemplate string) (*Case, error) {
	body := map[string]any{}
	if caseTemplate != "" {
		body["caseTemplate"] = caseTemplate
	}
	var out Case
	if err := c.do(ctx, http.MethodPost, "/api/alert/"+id+"/createCase", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAlertAsRead flags an alert as read.
func (c *Client) MarkAlertAsRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/alert/"+id+"/markAsRead", nil, nil)
}

// RunResponder triggers a responder against an object.
func (c *Client) RunResponder(ctx context.Context, responderID, objectType, objectID string) error {
	body := map[string]any{
		"responderId": responderID,
		"objectType":  objectType,
		"objectId":    objectID,
	}
	return c.do(ctx, http.MethodPost, "/api/connector/cortex/action", body, nil)
}
