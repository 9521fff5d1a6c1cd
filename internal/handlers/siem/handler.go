package siem

import (
	"context"
	"fmt"
	"strings"

	"case-automation/internal/dispatch"
	"case-automation/internal/model"
	"case-automation/pkg/log"
)

// Config carries the SIEM handler settings.
type Config struct {
	// StartTimeVariable and StopTimeVariable are the description table
	// labels holding the event time window.
	StartTimeVariable string
	StopTimeVariable  string
	// PlatformTimeLayout is the layout timestamps are written in by the
	// case platform; QueryTimeLayout the one the SIEM query language
	// expects.
	PlatformTimeLayout string
	QueryTimeLayout    string
	// ClosingReasonID is used when closing offenses.
	ClosingReasonID int64
}

// Handler executes SIEM rule actions: ad-hoc searches attached as case
// tasks, and single-value enrichment of alert descriptions.
type Handler struct {
	cfg       Config
	engine    SearchEngine
	store     AlertStore
	renderer  Renderer
	extractor Extractor
	pool      Submitter
	l         log.Logger
}

// New creates the SIEM action handler.
func New(cfg Config, engine SearchEngine, store AlertStore, renderer Renderer, extractor Extractor, pool Submitter, l log.Logger) *Handler {
	return &Handler{cfg: cfg, engine: engine, store: store, renderer: renderer, extractor: extractor, pool: pool, l: l}
}

// Handle routes one action function.
func (h *Handler) Handle(ctx context.Context, function string, action model.Action, event model.WebhookEvent) dispatch.Result {
	switch function {
	case "searchQuery":
		return h.searchQuery(ctx, action, event)
	case "enrichmentQuery":
		return h.enrichmentQuery(ctx, action, event)
	default:
		return dispatch.Result{Err: fmt.Errorf("unknown SIEM function %q", function)}
	}
}

// searchQuery runs the configured search over the event's time window
// and attaches the result rows as a markdown table task on the case.
func (h *Handler) searchQuery(ctx context.Context, action model.Action, event model.WebhookEvent) dispatch.Result {
	caseID := event.CaseID()
	if caseID == "" {
		return dispatch.Result{Err: fmt.Errorf("no case to attach search task to")}
	}

	query, err := h.buildQuery(ctx, action, event)
	if err != nil {
		return dispatch.Result{Err: err}
	}

	rows, err := h.engine.RunQuery(ctx, query)
	if err != nil {
		return dispatch.Result{Err: fmt.Errorf("run search: %w", err)}
	}

	description := "No results \n"
	if len(rows) > 0 {
		description = resultTable(rows)
	}

	title := action.StringParam("title")
	if _, err := h.store.CreateTask(ctx, caseID, taskOf(title, description)); err != nil {
		return dispatch.Result{Err: fmt.Errorf("create search task: %w", err)}
	}

	h.l.Infof(ctx, "Search task %q created on case %s with %d rows", title, caseID, len(rows))
	return dispatch.Result{Success: true, Action: fmt.Sprintf("Created search task %q", title)}
}

// enrichmentQuery runs a single-value search and appends the result as
// a row to the alert's description table. An unchanged value skips the
// update so the webhook it would trigger is never emitted.
func (h *Handler) enrichmentQuery(ctx context.Context, action model.Action, event model.WebhookEvent) dispatch.Result {
	if event.ObjectType != model.ObjectTypeAlert {
		return dispatch.Result{Err: fmt.Errorf("enrichment applies to alerts, got %s", event.ObjectType)}
	}

	name := action.StringParam("name")
	if name == "" {
		return dispatch.Result{Err: fmt.Errorf("enrichment action has no name")}
	}

	query, err := h.buildQuery(ctx, action, event)
	if err != nil {
		return dispatch.Result{Err: err}
	}

	rows, err := h.engine.RunQuery(ctx, query)
	if err != nil {
		return dispatch.Result{Err: fmt.Errorf("run enrichment search: %w", err)}
	}
	value := firstValue(rows, action.StringParam("result_field"))

	description := event.Object.Description
	if current, ok := h.extractor.FromText(description, name); ok {
		if current == value {
			h.l.Infof(ctx, "Enrichment %q unchanged on alert %s", name, event.ObjectID)
			return dispatch.Result{Success: true, Action: fmt.Sprintf("Enrichment %q unchanged", name)}
		}
		description = replaceRow(description, name, value)
	} else {
		description = appendRow(description, name, value)
	}

	if err := h.store.UpdateAlert(ctx, event.ObjectID, map[string]any{"description": description}); err != nil {
		return dispatch.Result{Err: fmt.Errorf("update alert description: %w", err)}
	}

	h.l.Infof(ctx, "Alert %s enriched with %q", event.ObjectID, name)
	return dispatch.Result{Success: true, Action: fmt.Sprintf("Enriched alert with %q", name)}
}

// buildQuery resolves the time window and every template variable of
// the action's query.
func (h *Handler) buildQuery(ctx context.Context, action model.Action, event model.WebhookEvent) (string, error) {
	template := action.StringParam("query")
	if template == "" {
		return "", fmt.Errorf("action has no query")
	}

	description := event.Object.Description

	if strings.Contains(template, "{start_time}") {
		raw, ok := h.extractor.FromText(description, h.cfg.StartTimeVariable)
		if !ok {
			return "", fmt.Errorf("description has no %q value", h.cfg.StartTimeVariable)
		}
		start, err := h.extractor.WithOffset(raw, h.cfg.PlatformTimeLayout, h.cfg.QueryTimeLayout, action.IntParam("start_time_offset"))
		if err != nil {
			return "", fmt.Errorf("compute search start time: %w", err)
		}
		template = strings.ReplaceAll(template, "{start_time}", start)
	}

	if strings.Contains(template, "{stop_time}") {
		stop := h.extractor.StopTimeNow(h.cfg.QueryTimeLayout)
		if raw, ok := h.extractor.FromText(description, h.cfg.StopTimeVariable); ok {
			converted, err := h.extractor.WithOffset(raw, h.cfg.PlatformTimeLayout, h.cfg.QueryTimeLayout, action.IntParam("stop_time_offset"))
			if err != nil {
				return "", fmt.Errorf("compute search stop time: %w", err)
			}
			stop = converted
		}
		template = strings.ReplaceAll(template, "{stop_time}", stop)
	}

	query, resolved := h.renderer.Substitute(ctx, template, event)
	if !resolved {
		return "", fmt.Errorf("query template has unresolved variables")
	}
	return query, nil
}
