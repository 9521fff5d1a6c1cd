package qradar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is the SIEM REST API client. Ariel searches are asynchronous
// on the server side, so query execution polls until completion under a
// hard timeout.
type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	queryTimeout time.Duration
	pollInterval time.Duration
}

// NewClient creates a new SIEM client. queryTimeout bounds the total
// wall-clock time of one Ariel search, polling included.
func NewClient(baseURL, token string, queryTimeout time.Duration) *Client {
	if queryTimeout <= 0 {
		queryTimeout = 3 * time.Minute
	}
	return &Client{
		baseURL:      baseURL,
		token:        token,
		httpClient:   &http.Client{},
		queryTimeout: queryTimeout,
		pollInterval: 2 * time.Second,
	}
}

// SetPollInterval overrides the Ariel polling interval, for testing.
func (c *Client) SetPollInterval(d time.Duration) {
	c.pollInterval = d
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("SEC", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call SIEM %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SIEM %s %s error %d: %s", method, path, resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// GetOffenses lists offenses matching the given API filter expression.
func (c *Client) GetOffenses(ctx context.Context, filter string) ([]Offense, error) {
	path := "/api/siem/offenses"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}
	var out []Offense
	if err := c.do(ctx, http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSourceAddress resolves a source address id to its IP.
func (c *Client) GetSourceAddress(ctx context.Context, id int64) (string, error) {
	var out addressRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/siem/source_addresses/%d", id), &out); err != nil {
		return "", err
	}
	return out.SourceIP, nil
}

// GetLocalDestinationAddress resolves a local destination address id to
// its IP.
func (c *Client) GetLocalDestinationAddress(ctx context.Context, id int64) (string, error) {
	var out addressRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/siem/local_destination_addresses/%d", id), &out); err != nil {
		return "", err
	}
	return out.LocalIP, nil
}

// CloseOffense closes an offense with the given closing reason.
func (c *Client) CloseOffense(ctx context.Context, offenseID, closingReasonID int64) error {
	path := fmt.Sprintf("/api/siem/offenses/%d?status=CLOSED&closing_reason_id=%d", offenseID, closingReasonID)
	return c.do(ctx, http.MethodPost, path, nil)
}

// RunQuery executes an Ariel search and returns its result rows. The
// search is created, polled until it completes, then its results are
// fetched. The whole sequence is bounded by the client's query timeout;
// a search that does not finish in time is abandoned.
func (c *Client) RunQuery(ctx context.Context, query string) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	type outcome struct {
		rows []map[string]any
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		rows, err := c.runSearch(ctx, query)
		done <- outcome{rows: rows, err: err}
	}()

	select {
	case o := <-done:
		return o.rows, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("search did not complete within %s: %w", c.queryTimeout, ctx.Err())
	}
}

func (c *Client) runSearch(ctx context.Context, query string) ([]map[string]any, error) {
	var handle searchHandle
	createPath := "/api/ariel/searches?query_expression=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodPost, createPath, &handle); err != nil {
		return nil, err
	}

	for handle.Status != searchCompleted {
		if handle.Status == searchError || handle.Status == searchCanceled {
			return nil, fmt.Errorf("search %s ended in status %s", handle.SearchID, handle.Status)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		if err := c.do(ctx, http.MethodGet, "/api/ariel/searches/"+handle.SearchID, &handle); err != nil {
			return nil, err
		}
	}

	var results map[string][]map[string]any
	if err := c.do(ctx, http.MethodGet, "/api/ariel/searches/"+handle.SearchID+"/results", &results); err != nil {
		return nil, err
	}
	// The result set is keyed by the queried entity (events, flows).
	for _, rows := range results {
		return rows, nil
	}
	return nil, nil
}
