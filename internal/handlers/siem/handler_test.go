package siem_test

import (
	"context"
	"strings"
	"testing"

	"case-automation/internal/classifier"
	"case-automation/internal/extract"
	"case-automation/internal/handlers/siem"
	"case-automation/internal/model"
	"case-automation/pkg/qradar"
	"case-automation/pkg/thehive"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)  {}
func (m *mockLogger) Error(ctx context.Context, args ...any) {}

func (m *mockLogger) Debugf(ctx context.Context, template string, args ...any) {}
func (m *mockLogger) Infof(ctx context.Context, template string, args ...any)  {}
func (m *mockLogger) Warnf(ctx context.Context, template string, args ...any)  {}
func (m *mockLogger) Errorf(ctx context.Context, template string, args ...any) {}

type mockEngine struct {
	runQueryFunc     func(ctx context.Context, query string) ([]map[string]any, error)
	closeOffenseFunc func(ctx context.Context, offenseID, closingReasonID int64) error
	getOffensesFunc  func(ctx context.Context, filter string) ([]qradar.Offense, error)
}

func (m *mockEngine) RunQuery(ctx context.Context, query string) ([]map[string]any, error) {
	return m.runQueryFunc(ctx, query)
}

func (m *mockEngine) CloseOffense(ctx context.Context, offenseID, closingReasonID int64) error {
	return m.closeOffenseFunc(ctx, offenseID, closingReasonID)
}

func (m *mockEngine) GetOffenses(ctx context.Context, filter string) ([]qradar.Offense, error) {
	if m.getOffensesFunc == nil {
		return nil, nil
	}
	return m.getOffensesFunc(ctx, filter)
}

func (m *mockEngine) GetSourceAddress(ctx context.Context, id int64) (string, error) {
	return "", nil
}

func (m *mockEngine) GetLocalDestinationAddress(ctx context.Context, id int64) (string, error) {
	return "", nil
}

type mockStore struct {
	createTaskFunc      func(ctx context.Context, caseID string, task thehive.Task) (string, error)
	updateAlertFunc     func(ctx context.Context, id string, fields map[string]any) error
	updateCaseFunc      func(ctx context.Context, id string, fields map[string]any) error
	existingObservables []thehive.Observable
	createdObservables  []thehive.Observable
}

func (m *mockStore) FindAlerts(ctx context.Context, query map[string]any) ([]thehive.Alert, error) {
	return nil, nil
}

func (m *mockStore) CreateAlert(ctx context.Context, alert thehive.Alert) (*thehive.Alert, error) {
	return &alert, nil
}

func (m *mockStore) UpdateAlert(ctx context.Context, id string, fields map[string]any) error {
	return m.updateAlertFunc(ctx, id, fields)
}

func (m *mockStore) UpdateCase(ctx context.Context, id string, fields map[string]any) error {
	if m.updateCaseFunc == nil {
		return nil
	}
	return m.updateCaseFunc(ctx, id, fields)
}

func (m *mockStore) CreateTask(ctx context.Context, caseID string, task thehive.Task) (string, error) {
	return m.createTaskFunc(ctx, caseID, task)
}

func (m *mockStore) GetCaseObservables(ctx context.Context, caseID string) ([]thehive.Observable, error) {
	return m.existingObservables, nil
}

func (m *mockStore) CreateCaseObservable(ctx context.Context, caseID string, observable thehive.Observable) error {
	m.createdObservables = append(m.createdObservables, observable)
	return nil
}

type passthroughRenderer struct{}

func (p *passthroughRenderer) Substitute(ctx context.Context, body string, event model.WebhookEvent) (string, bool) {
	extractor := extract.New()
	resolved := true
	for _, name := range []string{"Source IP"} {
		if value, ok := extractor.FromText(event.Object.Description, name); ok {
			body = strings.ReplaceAll(body, "{"+name+"}", value)
		} else if strings.Contains(body, "{"+name+"}") {
			resolved = false
		}
	}
	return body, resolved
}

func handlerConfig() siem.Config {
	return siem.Config{
		StartTimeVariable:  "Start Time",
		StopTimeVariable:   "Stop Time",
		PlatformTimeLayout: "2006-01-02 15:04:05",
		QueryTimeLayout:    "2006-01-02 15:04:05",
		ClosingReasonID:    1,
	}
}

func caseEvent(description string) model.WebhookEvent {
	return model.WebhookEvent{
		ObjectType: model.ObjectTypeCase,
		ObjectID:   "case-1",
		Object:     model.Payload{Description: description, Tags: []string{"QRadar", "UC-100"}},
	}
}

func TestSearchQuery(t *testing.T) {
	description := "| **Source IP** | 10.0.0.1 |\n| **Start Time** | 2020-01-01 10:00:00 |\n\n\n"

	t.Run("Creates Result Table Task", func(t *testing.T) {
		var gotQuery string
		engine := &mockEngine{
			runQueryFunc: func(ctx context.Context, query string) ([]map[string]any, error) {
				gotQuery = query
				return []map[string]any{
					{"username": "alice", "payload": "a|b"},
					{"username": "bob", "payload": nil},
				}, nil
			},
		}
		var gotTask thehive.Task
		store := &mockStore{
			createTaskFunc: func(ctx context.Context, caseID string, task thehive.Task) (string, error) {
				gotTask = task
				return "task-1", nil
			},
		}
		h := siem.New(handlerConfig(), engine, store, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		action := model.Action{
			Parameters: map[string]any{
				"title":             "Authentication events",
				"query":             `SELECT username FROM events WHERE sourceip = '{Source IP}' START '{start_time}' STOP '{stop_time}'`,
				"start_time_offset": 10,
			},
		}
		result := h.Handle(context.Background(), "searchQuery", action, caseEvent(description))
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if !strings.Contains(gotQuery, "sourceip = '10.0.0.1'") {
			t.Errorf("variable not substituted: %q", gotQuery)
		}
		if !strings.Contains(gotQuery, "START '2020-01-01 09:50:00'") {
			t.Errorf("start time offset not applied: %q", gotQuery)
		}
		if gotTask.Title != "Authentication events" {
			t.Errorf("unexpected task title %q", gotTask.Title)
		}
		if !strings.Contains(gotTask.Description, "a&#124;b") {
			t.Errorf("pipe not escaped in table: %q", gotTask.Description)
		}
		if !strings.Contains(gotTask.Description, "&nbsp;") {
			t.Errorf("empty cell not padded: %q", gotTask.Description)
		}
	})

	t.Run("No Results Fallback", func(t *testing.T) {
		engine := &mockEngine{
			runQueryFunc: func(ctx context.Context, query string) ([]map[string]any, error) {
				return nil, nil
			},
		}
		var gotTask thehive.Task
		store := &mockStore{
			createTaskFunc: func(ctx context.Context, caseID string, task thehive.Task) (string, error) {
				gotTask = task
				return "task-1", nil
			},
		}
		h := siem.New(handlerConfig(), engine, store, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		action := model.Action{Parameters: map[string]any{"title": "t", "query": "SELECT 1"}}
		result := h.Handle(context.Background(), "searchQuery", action, caseEvent(description))
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if !strings.Contains(gotTask.Description, "No results") {
			t.Errorf("expected no-results fallback, got %q", gotTask.Description)
		}
	})

	t.Run("Unresolved Variable Fails", func(t *testing.T) {
		h := siem.New(handlerConfig(), &mockEngine{}, &mockStore{}, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		action := model.Action{Parameters: map[string]any{"query": "WHERE ip = '{Source IP}'"}}
		result := h.Handle(context.Background(), "searchQuery", action, caseEvent("no table here"))
		if result.Success || result.Err == nil {
			t.Errorf("unresolved variable must fail, got %+v", result)
		}
	})
}

func TestEnrichmentQuery(t *testing.T) {
	alertEvent := func(description string) model.WebhookEvent {
		return model.WebhookEvent{
			ObjectType: model.ObjectTypeAlert,
			ObjectID:   "alert-1",
			Object:     model.Payload{Description: description, Tags: []string{"QRadar"}},
		}
	}

	t.Run("Appends New Row", func(t *testing.T) {
		engine := &mockEngine{
			runQueryFunc: func(ctx context.Context, query string) ([]map[string]any, error) {
				return []map[string]any{{"hostname": "web-01"}}, nil
			},
		}
		var gotFields map[string]any
		store := &mockStore{
			updateAlertFunc: func(ctx context.Context, id string, fields map[string]any) error {
				gotFields = fields
				return nil
			},
		}
		h := siem.New(handlerConfig(), engine, store, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		action := model.Action{
			Parameters: map[string]any{"name": "Hostname", "query": "SELECT hostname", "result_field": "hostname"},
		}
		result := h.Handle(context.Background(), "enrichmentQuery", action, alertEvent("| **Source IP** | 10.0.0.1 |\n\n\n"))
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		description := gotFields["description"].(string)
		if !strings.Contains(description, "| **Hostname** | web-01 |") {
			t.Errorf("row not appended: %q", description)
		}
	})

	t.Run("Unchanged Value Skips Update", func(t *testing.T) {
		engine := &mockEngine{
			runQueryFunc: func(ctx context.Context, query string) ([]map[string]any, error) {
				return []map[string]any{{"hostname": "web-01"}}, nil
			},
		}
		store := &mockStore{
			updateAlertFunc: func(ctx context.Context, id string, fields map[string]any) error {
				t.Errorf("unchanged enrichment must not update the alert")
				return nil
			},
		}
		h := siem.New(handlerConfig(), engine, store, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		action := model.Action{
			Parameters: map[string]any{"name": "Hostname", "query": "SELECT hostname", "result_field": "hostname"},
		}
		result := h.Handle(context.Background(), "enrichmentQuery", action, alertEvent("| **Hostname** | web-01 |\n\n\n"))
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
	})

	t.Run("Wrong Object Type Fails", func(t *testing.T) {
		h := siem.New(handlerConfig(), &mockEngine{}, &mockStore{}, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		result := h.Handle(context.Background(), "enrichmentQuery", model.Action{
			Parameters: map[string]any{"name": "Hostname", "query": "SELECT 1"},
		}, caseEvent(""))
		if result.Success || result.Err == nil {
			t.Errorf("case events must be rejected, got %+v", result)
		}
	})
}

func TestHandleEvent(t *testing.T) {
	t.Run("Closes Offense", func(t *testing.T) {
		var closed []int64
		engine := &mockEngine{
			closeOffenseFunc: func(ctx context.Context, offenseID, closingReasonID int64) error {
				closed = append(closed, offenseID)
				if closingReasonID != 1 {
					t.Errorf("unexpected closing reason %d", closingReasonID)
				}
				return nil
			},
		}
		h := siem.New(handlerConfig(), engine, &mockStore{}, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		kinds := classifier.Kinds{SIEM: true, ClosedSIEMCase: true, SourceRef: "42"}
		action, handled, err := h.HandleEvent(context.Background(), model.WebhookEvent{}, kinds)
		if err != nil || !handled {
			t.Fatalf("expected handled event, got handled=%v err=%v", handled, err)
		}
		if action != "Closed offense 42" || len(closed) != 1 || closed[0] != 42 {
			t.Errorf("unexpected close: action=%q closed=%v", action, closed)
		}
	})

	t.Run("Stamps Offense Details On Imported Alert", func(t *testing.T) {
		engine := &mockEngine{
			getOffensesFunc: func(ctx context.Context, filter string) ([]qradar.Offense, error) {
				if filter != "id=42" {
					t.Errorf("unexpected offense filter %q", filter)
				}
				return []qradar.Offense{{ID: 42, OffenseType: 3, OffenseSource: "10.0.0.1"}}, nil
			},
		}
		var gotCaseID string
		var gotFields map[string]any
		store := &mockStore{
			updateCaseFunc: func(ctx context.Context, id string, fields map[string]any) error {
				gotCaseID = id
				gotFields = fields
				return nil
			},
		}
		h := siem.New(handlerConfig(), engine, store, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		event := model.WebhookEvent{ObjectType: model.ObjectTypeCase, ObjectID: "case-7"}
		kinds := classifier.Kinds{SIEM: true, SIEMAlertImported: true, SourceRef: "42"}
		action, handled, err := h.HandleEvent(context.Background(), event, kinds)
		if err != nil || !handled {
			t.Fatalf("expected handled event, got handled=%v err=%v", handled, err)
		}
		if action != "Enriched case from offense 42" || gotCaseID != "case-7" {
			t.Errorf("unexpected enrichment: action=%q case=%q", action, gotCaseID)
		}
		custom, ok := gotFields["customFields"].(map[string]any)
		if !ok {
			t.Fatalf("customFields not set: %+v", gotFields)
		}
		for _, field := range []string{"offenseId", "offenseType", "offenseSource"} {
			if _, ok := custom[field]; !ok {
				t.Errorf("missing custom field %s", field)
			}
		}
	})

	t.Run("Imports Alert Artifacts As Observables", func(t *testing.T) {
		store := &mockStore{
			existingObservables: []thehive.Observable{{DataType: "ip", Data: "10.0.0.1"}},
		}
		h := siem.New(handlerConfig(), &mockEngine{}, store, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		event := model.WebhookEvent{
			ObjectType: model.ObjectTypeAlert,
			ObjectID:   "alert-1",
			Object:     model.Payload{Case: "case-8", Tags: []string{"QRadar"}},
			Details: model.Payload{Artifacts: []model.Artifact{
				{DataType: "ip", Data: "10.0.0.1", Message: "Source IP"},
				{DataType: "ip", Data: "192.168.1.1", Message: "Destination IP", Tags: []string{"dst"}},
			}},
		}
		kinds := classifier.Kinds{SIEM: true, SIEMAlertWithEvents: true}
		action, handled, err := h.HandleEvent(context.Background(), event, kinds)
		if err != nil || !handled {
			t.Fatalf("expected handled event, got handled=%v err=%v", handled, err)
		}
		if action != "Imported 1 observables" {
			t.Errorf("unexpected action %q", action)
		}
		if len(store.createdObservables) != 1 || store.createdObservables[0].Data != "192.168.1.1" {
			t.Errorf("expected only the new artifact imported, got %+v", store.createdObservables)
		}
	})

	t.Run("Ignores Non SIEM Events", func(t *testing.T) {
		h := siem.New(handlerConfig(), &mockEngine{}, &mockStore{}, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		_, handled, err := h.HandleEvent(context.Background(), model.WebhookEvent{}, classifier.Kinds{})
		if handled || err != nil {
			t.Errorf("non-SIEM events must pass through, got handled=%v err=%v", handled, err)
		}
	})

	t.Run("Bad Offense Reference", func(t *testing.T) {
		h := siem.New(handlerConfig(), &mockEngine{}, &mockStore{}, &passthroughRenderer{}, extract.New(), testPool(), &mockLogger{})

		kinds := classifier.Kinds{SIEM: true, SIEMAlertMarkedRead: true, SourceRef: "not-a-number"}
		if _, _, err := h.HandleEvent(context.Background(), model.WebhookEvent{}, kinds); err == nil {
			t.Errorf("non-numeric offense reference must error")
		}
	})
}
