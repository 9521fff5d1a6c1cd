package notify

import (
	"context"

	"case-automation/internal/dispatch"
	"case-automation/internal/model"
	"case-automation/internal/render"
)

// Renderer produces notification texts from rule templates.
type Renderer interface {
	Render(ctx context.Context, body string, event model.WebhookEvent, channel render.Channel, customerID string) render.Rendered
	ResolveCustomer(tags []string) (string, bool)
}

// Poster delivers JSON payloads to chat webhook URLs.
type Poster interface {
	PostMessage(ctx context.Context, webhookURL string, payload any) error
}

// Mailer creates and sends mail tasks for the email platform.
type Mailer interface {
	CreateMailTask(ctx context.Context, action model.Action, event model.WebhookEvent, customerID string) dispatch.Result
}
