package siem

import (
	"context"

	"case-automation/internal/model"
	"case-automation/pkg/qradar"
	"case-automation/pkg/thehive"
	"case-automation/pkg/workpool"
)

// SearchEngine is the slice of the SIEM API this package uses.
type SearchEngine interface {
	RunQuery(ctx context.Context, query string) ([]map[string]any, error)
	CloseOffense(ctx context.Context, offenseID, closingReasonID int64) error
	GetOffenses(ctx context.Context, filter string) ([]qradar.Offense, error)
	GetSourceAddress(ctx context.Context, id int64) (string, error)
	GetLocalDestinationAddress(ctx context.Context, id int64) (string, error)
}

// AlertStore is the slice of the case platform API this package uses.
type AlertStore interface {
	FindAlerts(ctx context.Context, query map[string]any) ([]thehive.Alert, error)
	CreateAlert(ctx context.Context, alert thehive.Alert) (*thehive.Alert, error)
	UpdateAlert(ctx context.Context, id string, fields map[string]any) error
	UpdateCase(ctx context.Context, id string, fields map[string]any) error
	CreateTask(ctx context.Context, caseID string, task thehive.Task) (string, error)
	GetCaseObservables(ctx context.Context, caseID string) ([]thehive.Observable, error)
	CreateCaseObservable(ctx context.Context, caseID string, observable thehive.Observable) error
}

// Renderer resolves {variable} placeholders in query templates.
type Renderer interface {
	Substitute(ctx context.Context, body string, event model.WebhookEvent) (string, bool)
}

// Extractor pulls values out of description tables and shifts
// timestamps between layouts.
type Extractor interface {
	FromText(text, variable string) (string, bool)
	WithOffset(value, inLayout, outLayout string, minutes int) (string, error)
	StopTimeNow(layout string) string
}

// ChangeDetector decides whether a refreshed alert needs re-submission.
type ChangeDetector interface {
	HasChanged(ctx context.Context, current, candidate thehive.Alert) bool
}

// Submitter hands out per-call batches over the shared worker pool, so
// concurrent requests wait only on their own jobs.
type Submitter interface {
	NewBatch() *workpool.Batch
}
