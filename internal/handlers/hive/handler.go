package hive

import (
	"context"
	"fmt"

	"case-automation/internal/dispatch"
	"case-automation/internal/model"
	"case-automation/internal/render"
	"case-automation/pkg/log"
	"case-automation/pkg/thehive"
)

// Config carries the case platform handler settings.
type Config struct {
	// MailerResponderID is the responder used to send mail tasks.
	MailerResponderID string
}

// Handler executes case platform rule actions: plain case tasks and
// rendered mail tasks.
type Handler struct {
	cfg      Config
	store    CaseStore
	renderer Renderer
	l        log.Logger
}

// New creates the case platform action handler.
func New(cfg Config, store CaseStore, renderer Renderer, l log.Logger) *Handler {
	return &Handler{cfg: cfg, store: store, renderer: renderer, l: l}
}

// Handle routes one action function.
func (h *Handler) Handle(ctx context.Context, function string, action model.Action, event model.WebhookEvent) dispatch.Result {
	switch function {
	case "createBasicTask":
		return h.createBasicTask(ctx, action, event)
	case "createMailTask":
		customerID, _ := h.renderer.ResolveCustomer(event.Object.Tags)
		return h.CreateMailTask(ctx, action, event, customerID)
	default:
		return dispatch.Result{Err: fmt.Errorf("unknown case platform function %q", function)}
	}
}

func (h *Handler) createBasicTask(ctx context.Context, action model.Action, event model.WebhookEvent) dispatch.Result {
	caseID := event.CaseID()
	if caseID == "" {
		return dispatch.Result{Err: fmt.Errorf("no case to attach task to")}
	}

	title := action.StringParam("title")
	taskID, err := h.store.CreateTask(ctx, caseID, thehive.Task{
		Title:       title,
		Description: action.StringParam("description"),
	})
	if err != nil {
		return dispatch.Result{Err: fmt.Errorf("create task %q: %w", title, err)}
	}

	h.l.Infof(ctx, "Created task %s (%s) on case %s", taskID, title, caseID)
	return dispatch.Result{Success: true, Action: fmt.Sprintf("Created task %q", title)}
}

// CreateMailTask renders the mail body, attaches it as a case task and
// triggers the mailer responder unless the render withheld sending. It
// is also used by the notification handler for its email platform.
func (h *Handler) CreateMailTask(ctx context.Context, action model.Action, event model.WebhookEvent, customerID string) dispatch.Result {
	caseID := event.CaseID()
	if caseID == "" {
		return dispatch.Result{Err: fmt.Errorf("no case to attach mail task to")}
	}

	rendered := h.renderer.Render(ctx, action.StringParam("content"), event, render.ChannelEmail, customerID)

	title := action.StringParam("title")
	if title == "" {
		title = "Notify customer"
	}
	taskID, err := h.store.CreateTask(ctx, caseID, thehive.Task{
		Title:       title,
		Description: rendered.Text,
	})
	if err != nil {
		return dispatch.Result{Err: fmt.Errorf("create mail task: %w", err)}
	}

	if rendered.SuppressSend || action.BoolParam("debug") {
		h.l.Infof(ctx, "Mail task %s created on case %s, sending withheld", taskID, caseID)
		return dispatch.Result{Success: true, Action: "Created mail task, sending withheld"}
	}

	if err := h.store.RunResponder(ctx, h.cfg.MailerResponderID, "case_task", taskID); err != nil {
		return dispatch.Result{Err: fmt.Errorf("send mail task %s: %w", taskID, err)}
	}

	h.l.Infof(ctx, "Mail task %s created and sent on case %s", taskID, caseID)
	return dispatch.Result{Success: true, Action: "Notified customer by mail"}
}
