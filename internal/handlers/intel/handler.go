package intel

import (
	"context"
	"fmt"
	"time"

	"case-automation/internal/classifier"
	"case-automation/internal/model"
	"case-automation/pkg/cortex"
	"case-automation/pkg/log"
	"case-automation/pkg/thehive"
)

// Config carries the threat-intel automation settings.
type Config struct {
	// SupportedDataTypes limits which indicator types are auto-handled.
	SupportedDataTypes []string
	// CaseTemplate is applied when promoting intel alerts.
	CaseTemplate string
	// AnalyzerID is run against newly added supported indicators.
	AnalyzerID string
	// SightingThreshold is the minimum taxonomy value that turns an
	// analyzer hit into a review task.
	SightingThreshold float64
}

// Handler reacts to threat-intel lifecycle events: it promotes intel
// alerts, launches indicator lookups and turns confirmed sightings into
// review tasks.
type Handler struct {
	cfg      Config
	store    CaseStore
	analyzer Analyzer
	l        log.Logger
}

// New creates the threat-intel event handler.
func New(cfg Config, store CaseStore, analyzer Analyzer, l log.Logger) *Handler {
	return &Handler{cfg: cfg, store: store, analyzer: analyzer, l: l}
}

// Name identifies this package in event automation logs.
func (h *Handler) Name() string {
	return "intel"
}

// HandleEvent routes one classified event.
func (h *Handler) HandleEvent(ctx context.Context, event model.WebhookEvent, kinds classifier.Kinds) (string, bool, error) {
	switch {
	case kinds.NewIntelAlert:
		return h.promoteAlert(ctx, event)
	case kinds.NewIntelArtifact:
		return h.analyzeArtifact(ctx, event)
	case kinds.Intel && kinds.ArtifactJob && kinds.Success:
		return h.recordSighting(ctx, event)
	}
	return "", false, nil
}

// promoteAlert turns an intel alert into a case when every indicator
// carries a type this service can follow up on.
func (h *Handler) promoteAlert(ctx context.Context, event model.WebhookEvent) (string, bool, error) {
	for _, artifact := range event.Object.Artifacts {
		if !h.supported(artifact.DataType) {
			h.l.Infof(ctx, "Alert %s has unsupported indicator type %q, not promoting", event.ObjectID, artifact.DataType)
			return "", false, nil
		}
	}

	promoted, err := h.store.PromoteAlertToCase(ctx, event.ObjectID, h.cfg.CaseTemplate)
	if err != nil {
		return "", false, fmt.Errorf("promote intel alert %s: %w", event.ObjectID, err)
	}
	h.l.Infof(ctx, "Intel alert %s promoted to case %s", event.ObjectID, promoted.ID)
	return "Promoted intel alert to case", true, nil
}

// analyzeArtifact launches the indicator lookup for a newly added
// supported observable.
func (h *Handler) analyzeArtifact(ctx context.Context, event model.WebhookEvent) (string, bool, error) {
	if !h.supported(event.Object.DataType) {
		return "", false, nil
	}

	job, err := h.analyzer.RunAnalyzer(ctx, h.cfg.AnalyzerID, cortex.JobRequest{
		Data:     event.Object.Data,
		DataType: event.Object.DataType,
	})
	if err != nil {
		return "", false, fmt.Errorf("run analyzer on %s: %w", event.Object.Data, err)
	}
	h.l.Infof(ctx, "Analyzer job %s started for %s", job.ID, event.Object.Data)

	if err := h.touchSearchFields(ctx, event.CaseID()); err != nil {
		h.l.Warnf(ctx, "Could not update search timestamps: %v", err)
	}
	return "Started indicator lookup", true, nil
}

// recordSighting creates a review task when an analyzer result scores
// at or above the sighting threshold. A resolved case is reopened
// first; an existing task with the same title is never duplicated.
func (h *Handler) recordSighting(ctx context.Context, event model.WebhookEvent) (string, bool, error) {
	if event.Object.Report == nil || !aboveThreshold(event.Object.Report.Summary.Taxonomies, h.cfg.SightingThreshold) {
		return "", false, nil
	}

	caseID := event.CaseID()
	if caseID == "" {
		return "", false, fmt.Errorf("sighting job %s has no case", event.ObjectID)
	}

	c, err := h.store.GetCase(ctx, caseID)
	if err != nil {
		return "", false, fmt.Errorf("load case %s: %w", caseID, err)
	}
	if c.Status == model.StatusResolved {
		if err := h.store.UpdateCase(ctx, caseID, map[string]any{"status": model.StatusOpen}); err != nil {
			return "", false, fmt.Errorf("reopen case %s: %w", caseID, err)
		}
		h.l.Infof(ctx, "Reopened case %s for a new sighting", caseID)
	}

	title := fmt.Sprintf("Review sighting of %s", event.Object.Data)
	tasks, err := h.store.GetCaseTasks(ctx, caseID)
	if err != nil {
		return "", false, fmt.Errorf("list tasks of case %s: %w", caseID, err)
	}
	for _, task := range tasks {
		if task.Title == title {
			h.l.Infof(ctx, "Case %s already has task %q", caseID, title)
			return "Sighting already tracked", true, nil
		}
	}

	if _, err := h.store.CreateTask(ctx, caseID, thehive.Task{
		Title:       title,
		Description: "The indicator was sighted by the intel lookup. Verify and contain.",
	}); err != nil {
		return "", false, fmt.Errorf("create sighting task: %w", err)
	}
	return "Created sighting review task", true, nil
}

// touchSearchFields stamps the first and last lookup times on the case.
func (h *Handler) touchSearchFields(ctx context.Context, caseID string) error {
	if caseID == "" {
		return nil
	}
	c, err := h.store.GetCase(ctx, caseID)
	if err != nil {
		return err
	}

	fields := c.CustomFields
	if fields == nil {
		fields = map[string]any{}
	}
	now := time.Now().UnixMilli()
	if _, ok := fields["firstSearched"]; !ok {
		fields["firstSearched"] = thehive.DateField(now)
	}
	fields["lastSearched"] = thehive.DateField(now)

	return h.store.UpdateCase(ctx, caseID, map[string]any{"customFields": fields})
}

func (h *Handler) supported(dataType string) bool {
	for _, t := range h.cfg.SupportedDataTypes {
		if t == dataType {
			return true
		}
	}
	return false
}

func aboveThreshold(taxonomies []model.Taxonomy, threshold float64) bool {
	for _, taxonomy := range taxonomies {
		value, err := taxonomy.Value.Float64()
		if err != nil {
			continue
		}
		if value >= threshold {
			return true
		}
	}
	return false
}
