package notify_test

import (
	"context"
	"strings"
	"testing"

	"case-automation/internal/dispatch"
	notifyhandler "case-automation/internal/handlers/notify"
	"case-automation/internal/model"
	"case-automation/internal/render"
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

type mockRenderer struct {
	suppress bool
}

func (m *mockRenderer) Render(ctx context.Context, body string, event model.WebhookEvent, channel render.Channel, customerID string) render.Rendered {
	return render.Rendered{Text: body + " \n", SuppressSend: m.suppress}
}

func (m *mockRenderer) ResolveCustomer(tags []string) (string, bool) {
	for _, tag := range tags {
		if tag == "acme" {
			return "acme", true
		}
	}
	return "", false
}

type mockPoster struct {
	urls     []string
	payloads []any
	err      error
}

func (m *mockPoster) PostMessage(ctx context.Context, webhookURL string, payload any) error {
	m.urls = append(m.urls, webhookURL)
	m.payloads = append(m.payloads, payload)
	return m.err
}

type mockMailer struct {
	customerIDs []string
	result      dispatch.Result
}

func (m *mockMailer) CreateMailTask(ctx context.Context, action model.Action, event model.WebhookEvent, customerID string) dispatch.Result {
	m.customerIDs = append(m.customerIDs, customerID)
	return m.result
}

func directory() model.CustomerDirectory {
	return model.CustomerDirectory{
		"acme": {Recipient: "soc@acme.example", SlackURL: "https://hooks.example/acme", TeamsURL: "https://teams.example/acme"},
		"soc":  {Recipient: "soc@internal.example", SlackURL: "https://hooks.example/soc"},
	}
}

func taggedEvent() model.WebhookEvent {
	return model.WebhookEvent{
		ObjectType: model.ObjectTypeCase,
		ObjectID:   "case-1",
		Object:     model.Payload{Title: "Suspicious login", Tags: []string{"acme", "UC-100"}},
	}
}

func TestSendNotification(t *testing.T) {
	t.Run("Slack And Teams", func(t *testing.T) {
		poster := &mockPoster{}
		h := notifyhandler.New(notifyhandler.Config{}, directory(), &mockRenderer{}, poster, &mockMailer{}, &mockLogger{})

		action := model.Action{
			Parameters: map[string]any{
				"platforms":      []any{"slack", "teams"},
				"short_template": "short text",
			},
		}
		result := h.Handle(context.Background(), "sendNotification", action, taggedEvent())
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if len(poster.urls) != 2 || poster.urls[0] != "https://hooks.example/acme" || poster.urls[1] != "https://teams.example/acme" {
			t.Errorf("unexpected webhook targets: %v", poster.urls)
		}
		payload := poster.payloads[0].(map[string]string)
		if !strings.Contains(payload["text"], "*Suspicious login*") || !strings.Contains(payload["text"], "short text") {
			t.Errorf("unexpected slack payload: %q", payload["text"])
		}
	})

	t.Run("Email Delegates To Mailer", func(t *testing.T) {
		mailer := &mockMailer{result: dispatch.Result{Success: true, Action: "Notified customer by mail"}}
		h := notifyhandler.New(notifyhandler.Config{}, directory(), &mockRenderer{}, &mockPoster{}, mailer, &mockLogger{})

		action := model.Action{Parameters: map[string]any{"platforms": []any{"email"}}}
		result := h.Handle(context.Background(), "sendNotification", action, taggedEvent())
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if len(mailer.customerIDs) != 1 || mailer.customerIDs[0] != "acme" {
			t.Errorf("expected mail for acme, got %v", mailer.customerIDs)
		}
	})

	t.Run("Internal Rule Routes To Internal Contact", func(t *testing.T) {
		poster := &mockPoster{}
		h := notifyhandler.New(notifyhandler.Config{InternalCustomerID: "soc"}, directory(), &mockRenderer{}, poster, &mockMailer{}, &mockLogger{})

		action := model.Action{
			Parameters: map[string]any{
				"platforms":      []any{"slack"},
				"short_template": "internal note",
				"internal":       true,
			},
		}
		result := h.Handle(context.Background(), "sendNotification", action, taggedEvent())
		if !result.Success {
			t.Fatalf("expected success, got %+v", result)
		}
		if len(poster.urls) != 1 || poster.urls[0] != "https://hooks.example/soc" {
			t.Errorf("expected internal webhook, got %v", poster.urls)
		}
	})

	t.Run("Unresolved Variables Still Post To Chat", func(t *testing.T) {
		poster := &mockPoster{}
		h := notifyhandler.New(notifyhandler.Config{}, directory(), &mockRenderer{suppress: true}, poster, &mockMailer{}, &mockLogger{})

		action := model.Action{
			Parameters: map[string]any{"platforms": []any{"slack"}, "short_template": "text {missing}"},
		}
		result := h.Handle(context.Background(), "sendNotification", action, taggedEvent())
		if !result.Success {
			t.Fatalf("chat must go out despite unresolved variables, got %+v", result)
		}
		if len(poster.urls) != 1 || poster.urls[0] != "https://hooks.example/acme" {
			t.Errorf("expected one slack post, got %v", poster.urls)
		}
	})

	t.Run("Missing Webhook Fails Platform", func(t *testing.T) {
		h := notifyhandler.New(notifyhandler.Config{InternalCustomerID: "soc"}, directory(), &mockRenderer{}, &mockPoster{}, &mockMailer{}, &mockLogger{})

		// soc entry has no Teams webhook.
		action := model.Action{
			Parameters: map[string]any{"platforms": []any{"teams"}, "short_template": "x", "internal": true},
		}
		result := h.Handle(context.Background(), "sendNotification", action, taggedEvent())
		if result.Success || result.Err == nil {
			t.Errorf("missing webhook must fail, got %+v", result)
		}
	})
}
