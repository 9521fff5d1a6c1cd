package automation

import (
	"context"

	"case-automation/internal/classifier"
	"case-automation/internal/dispatch"
	"case-automation/internal/model"
	"case-automation/internal/rules"
)

type UseCase interface {
	// ProcessWebhook runs one raw webhook through classification, event
	// automation and rule dispatch, and returns the cycle report.
	ProcessWebhook(ctx context.Context, raw []byte) (model.Report, error)
}

// Classifier computes the event kind flags once per webhook.
type Classifier interface {
	Classify(ctx context.Context, event model.WebhookEvent) classifier.Kinds
}

// Matcher finds the rules activated by the event's tags.
type Matcher interface {
	Match(ctx context.Context, event model.WebhookEvent) []rules.Match
}

// Dispatcher executes the actions of one matched rule.
type Dispatcher interface {
	DispatchRule(ctx context.Context, rule model.Rule, event model.WebhookEvent) []dispatch.Result
}

// EventModule reacts to classified events regardless of rules. It
// reports the action label and whether it handled the event.
type EventModule interface {
	Name() string
	HandleEvent(ctx context.Context, event model.WebhookEvent, kinds classifier.Kinds) (string, bool, error)
}
