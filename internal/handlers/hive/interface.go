package hive

import (
	"context"

	"case-automation/internal/model"
	"case-automation/internal/render"
	"case-automation/pkg/thehive"
)

// CaseStore is the slice of the case platform API this handler uses.
type CaseStore interface {
	CreateTask(ctx context.Context, caseID string, task thehive.Task) (string, error)
	RunResponder(ctx context.Context, responderID, objectType, objectID string) error
}

// Renderer produces notification texts from rule templates.
type Renderer interface {
	Render(ctx context.Context, body string, event model.WebhookEvent, channel render.Channel, customerID string) render.Rendered
	ResolveCustomer(tags []string) (string, bool)
}
