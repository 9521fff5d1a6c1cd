package automation

import (
	"context"

	"github.com/google/uuid"

	"case-automation/internal/model"
	pkgLog "case-automation/pkg/log"
)

type usecase struct {
	cfg        Config
	classifier Classifier
	matcher    Matcher
	dispatcher Dispatcher
	modules    []EventModule
	l          pkgLog.Logger
}

// ProcessWebhook runs one processing cycle. Event modules and rule
// actions degrade independently: a failing stage is logged and never
// stops the remaining work. Success is derived at the end of the cycle
// from whether any action was taken at all. The returned error is
// reserved for payloads that cannot be processed.
func (uc *usecase) ProcessWebhook(ctx context.Context, raw []byte) (model.Report, error) {
	cycleID := uuid.NewString()

	event, err := model.ParseWebhook(raw)
	if err != nil {
		uc.l.Warnf(ctx, "[%s] Rejecting webhook: %v", cycleID, err)
		return model.Report{}, err
	}

	uc.l.Infof(ctx, "[%s] Processing %s %s (object %s)", cycleID, event.Operation, event.ObjectType, event.ObjectID)
	kinds := uc.classifier.Classify(ctx, event)

	report := model.Report{}

	for _, module := range uc.modules {
		action, handled, err := module.HandleEvent(ctx, event, kinds)
		if err != nil {
			uc.l.Errorf(ctx, "[%s] Event module %s failed: %v", cycleID, module.Name(), err)
			continue
		}
		if handled && action != "" {
			report.Action = action
		}
	}

	if uc.cfg.RuleAutomation {
		uc.runRules(ctx, cycleID, event, &report)
	}

	report.Success = report.Action != ""

	uc.l.Infof(ctx, "[%s] Cycle done: success=%v action=%q", cycleID, report.Success, report.Action)
	return report, nil
}

// runRules dispatches every matched rule's actions in order. The last
// successful action label becomes the report action; failed actions are
// logged and skipped.
func (uc *usecase) runRules(ctx context.Context, cycleID string, event model.WebhookEvent, report *model.Report) {
	matches := uc.matcher.Match(ctx, event)
	if len(matches) == 0 {
		uc.l.Debugf(ctx, "[%s] No rules matched", cycleID)
		return
	}

	for _, match := range matches {
		uc.l.Infof(ctx, "[%s] Rule %s activated by tag %q", cycleID, match.Rule.ID, match.Tag)
		for _, result := range uc.dispatcher.DispatchRule(ctx, match.Rule, event) {
			if result.Err != nil || !result.Success {
				uc.l.Errorf(ctx, "[%s] Rule %s action failed: %v", cycleID, match.Rule.ID, result.Err)
				continue
			}
			if result.Action != "" {
				report.Action = result.Action
			}
		}
	}
}
