package dispatch

import (
	"context"
	"fmt"
	"strings"

	"case-automation/internal/model"
	"case-automation/pkg/log"
)

// tasksParam is the action parameter that declares a list of sub-tasks
// executed in order.
const tasksParam = "tasks"

// Dispatcher routes rule actions to their module handlers.
type Dispatcher struct {
	registry *Registry
	l        log.Logger
}

// New creates a Dispatcher over a populated registry.
func New(registry *Registry, l log.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, l: l}
}

// DispatchRule executes all actions of a rule in declaration order and
// returns one result per executed action. A failing action never stops
// the remaining ones. An action declaring a tasks list is expanded into
// one dispatch per entry before execution.
func (d *Dispatcher) DispatchRule(ctx context.Context, rule model.Rule, event model.WebhookEvent) []Result {
	var results []Result
	for _, action := range rule.Actions {
		for _, expanded := range expandTasks(action) {
			results = append(results, d.Dispatch(ctx, withRuleFlags(expanded, rule), event))
		}
	}
	return results
}

// expandTasks turns an action carrying a tasks parameter into one action
// per entry. Entries inherit the parent's type and parameters unless
// they declare their own; actions without a tasks list pass through
// unchanged.
func expandTasks(action model.Action) []model.Action {
	subs := action.SubActions(tasksParam)
	if len(subs) == 0 {
		return []model.Action{action}
	}
	out := make([]model.Action, 0, len(subs))
	for _, sub := range subs {
		merged := model.Action{
			Type:       sub.Type,
			Parameters: make(map[string]any, len(action.Parameters)+len(sub.Parameters)),
		}
		if merged.Type == "" {
			merged.Type = action.Type
		}
		for k, v := range action.Parameters {
			if k == tasksParam {
				continue
			}
			merged.Parameters[k] = v
		}
		for k, v := range sub.Parameters {
			merged.Parameters[k] = v
		}
		out = append(out, merged)
	}
	return out
}

// withRuleFlags propagates rule-level routing flags into the action
// parameters, where handlers read them alongside their own settings.
func withRuleFlags(action model.Action, rule model.Rule) model.Action {
	if !rule.Internal && !rule.Debug {
		return action
	}
	params := make(map[string]any, len(action.Parameters)+2)
	for k, v := range action.Parameters {
		params[k] = v
	}
	if rule.Internal {
		params["internal"] = true
	}
	if rule.Debug {
		params["debug"] = true
	}
	action.Parameters = params
	return action
}

// Dispatch executes a single action. The action type is
// "module.function"; the module selects the handler, the function tells
// the handler what to do. Unknown modules and handler panics degrade to
// a failed result instead of aborting the cycle.
func (d *Dispatcher) Dispatch(ctx context.Context, action model.Action, event model.WebhookEvent) (result Result) {
	module, function, found := strings.Cut(action.Type, ".")
	if !found || module == "" || function == "" {
		return Result{Err: fmt.Errorf("malformed action type %q", action.Type)}
	}

	handler, ok := d.registry.Lookup(module)
	if !ok {
		d.l.Warnf(ctx, "No handler for module %s (action %s)", module, action.Type)
		return Result{Err: fmt.Errorf("%w: %s", ErrHandlerNotFound, module)}
	}

	defer func() {
		if r := recover(); r != nil {
			d.l.Errorf(ctx, "Handler %s panicked: %v", action.Type, r)
			result = Result{Err: fmt.Errorf("handler %s panicked: %v", action.Type, r)}
		}
	}()

	result = handler.Handle(ctx, function, action, event)
	if result.Err != nil {
		d.l.Errorf(ctx, "Action %s failed: %v", action.Type, result.Err)
	} else {
		d.l.Infof(ctx, "Action %s finished, success=%v", action.Type, result.Success)
	}
	return result
}
