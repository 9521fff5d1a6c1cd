package intel

import (
	"context"

	"case-automation/pkg/cortex"
	"case-automation/pkg/thehive"
)

// CaseStore is the slice of the case platform API this handler uses.
type CaseStore interface {
	GetCase(ctx context.Context, id string) (*thehive.Case, error)
	UpdateCase(ctx context.Context, id string, fields map[string]any) error
	GetCaseTasks(ctx context.Context, caseID string) ([]thehive.Task, error)
	CreateTask(ctx context.Context, caseID string, task thehive.Task) (string, error)
	PromoteAlertToCase(ctx context.Context, id, caseTemplate string) (*thehive.Case, error)
}

// Analyzer runs observables through the analysis engine.
type Analyzer interface {
	RunAnalyzer(ctx context.Context, analyzerID string, job cortex.JobRequest) (*cortex.Job, error)
}
