package qradar_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"case-automation/pkg/qradar"
)

func TestRunQuery(t *testing.T) {
	t.Run("Completes After Polling", func(t *testing.T) {
		polls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/ariel/searches":
				json.NewEncoder(w).Encode(map[string]string{"search_id": "s-1", "status": "WAIT"})
			case r.URL.Path == "/api/ariel/searches/s-1":
				polls++
				status := "EXECUTE"
				if polls >= 2 {
					status = "COMPLETED"
				}
				json.NewEncoder(w).Encode(map[string]string{"search_id": "s-1", "status": status})
			case r.URL.Path == "/api/ariel/searches/s-1/results":
				json.NewEncoder(w).Encode(map[string]any{
					"events": []map[string]any{{"sourceip": "10.0.0.1"}},
				})
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		}))
		defer server.Close()

		c := qradar.NewClient(server.URL, "token", time.Minute)
		c.SetPollInterval(time.Millisecond)

		rows, err := c.RunQuery(context.Background(), "SELECT sourceip FROM events")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 || rows[0]["sourceip"] != "10.0.0.1" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})

	t.Run("Timeout Abandons Search", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"search_id": "s-2", "status": "EXECUTE"})
		}))
		defer server.Close()

		c := qradar.NewClient(server.URL, "token", 20*time.Millisecond)
		c.SetPollInterval(time.Millisecond)

		if _, err := c.RunQuery(context.Background(), "SELECT * FROM events"); err == nil {
			t.Fatalf("expected timeout error")
		}
	})

	t.Run("Failed Search Status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"search_id": "s-3", "status": "ERROR"})
		}))
		defer server.Close()

		c := qradar.NewClient(server.URL, "token", time.Minute)
		c.SetPollInterval(time.Millisecond)

		_, err := c.RunQuery(context.Background(), "SELECT * FROM events")
		if err == nil || !strings.Contains(err.Error(), "ERROR") {
			t.Errorf("expected search status error, got %v", err)
		}
	})
}

func TestCloseOffense(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		if r.Header.Get("SEC") != "token" {
			t.Errorf("missing SEC header")
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := qradar.NewClient(server.URL, "token", time.Minute)
	if err := c.CloseOffense(context.Background(), 42, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotPath, "/api/siem/offenses/42") || !strings.Contains(gotPath, "status=CLOSED") {
		t.Errorf("unexpected request path %q", gotPath)
	}
}
