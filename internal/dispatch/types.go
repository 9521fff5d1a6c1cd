package dispatch

import (
	"context"
	"errors"

	"case-automation/internal/model"
)

// ErrHandlerNotFound is returned when an action names a module that no
// handler was registered for.
var ErrHandlerNotFound = errors.New("no handler registered for module")

// Result is the outcome of one executed action.
type Result struct {
	Success bool
	// Action is a short human label describing what happened, used as
	// the report action when the action succeeded.
	Action string
	Err    error
}

// Handler executes the actions of one module. The function name is the
// part of the action type after the module prefix.
type Handler interface {
	Handle(ctx context.Context, function string, action model.Action, event model.WebhookEvent) Result
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, function string, action model.Action, event model.WebhookEvent) Result

func (f HandlerFunc) Handle(ctx context.Context, function string, action model.Action, event model.WebhookEvent) Result {
	return f(ctx, function, action, event)
}
