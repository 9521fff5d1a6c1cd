package siem

import (
	"context"
	"fmt"
	"strconv"

	"case-automation/internal/classifier"
	"case-automation/internal/model"
	"case-automation/pkg/thehive"
)

// Name identifies this package in event automation logs.
func (h *Handler) Name() string {
	return "siem"
}

// HandleEvent reacts to SIEM-classified lifecycle events. Importing a
// SIEM alert into a case stamps the offense details onto the case;
// closing, deleting or marking a SIEM record as read closes the
// originating offense so both systems stay aligned.
func (h *Handler) HandleEvent(ctx context.Context, event model.WebhookEvent, kinds classifier.Kinds) (string, bool, error) {
	if !kinds.SIEM {
		return "", false, nil
	}

	if kinds.SIEMAlertImported {
		return h.enrichCase(ctx, event, kinds)
	}

	if kinds.SIEMAlertWithEvents {
		return h.importObservables(ctx, event)
	}

	if kinds.ClosedSIEMCase || kinds.DeletedSIEMCase || kinds.SIEMAlertMarkedRead {
		if kinds.SourceRef == "" {
			return "", false, fmt.Errorf("SIEM event without offense reference")
		}
		offenseID, err := strconv.ParseInt(kinds.SourceRef, 10, 64)
		if err != nil {
			return "", false, fmt.Errorf("offense reference %q is not numeric: %w", kinds.SourceRef, err)
		}
		if err := h.engine.CloseOffense(ctx, offenseID, h.cfg.ClosingReasonID); err != nil {
			return "", false, fmt.Errorf("close offense %d: %w", offenseID, err)
		}
		h.l.Infof(ctx, "Closed offense %d", offenseID)
		return fmt.Sprintf("Closed offense %d", offenseID), true, nil
	}

	return "", false, nil
}

// enrichCase copies the originating offense's id, type and source into
// the case's custom fields so analysts see them without pivoting.
func (h *Handler) enrichCase(ctx context.Context, event model.WebhookEvent, kinds classifier.Kinds) (string, bool, error) {
	caseID := event.CaseID()
	if caseID == "" {
		return "", false, fmt.Errorf("imported SIEM alert without case reference")
	}
	if kinds.SourceRef == "" {
		return "", false, fmt.Errorf("imported SIEM alert without offense reference")
	}
	offenseID, err := strconv.ParseInt(kinds.SourceRef, 10, 64)
	if err != nil {
		return "", false, fmt.Errorf("offense reference %q is not numeric: %w", kinds.SourceRef, err)
	}

	offenses, err := h.engine.GetOffenses(ctx, fmt.Sprintf("id=%d", offenseID))
	if err != nil {
		return "", false, fmt.Errorf("fetch offense %d: %w", offenseID, err)
	}
	if len(offenses) == 0 {
		return "", false, fmt.Errorf("offense %d not found", offenseID)
	}
	offense := offenses[0]

	fields := map[string]any{
		"customFields": map[string]any{
			"offenseId":     thehive.NumberField(int(offense.ID)),
			"offenseType":   thehive.NumberField(int(offense.OffenseType)),
			"offenseSource": thehive.StringField(offense.OffenseSource),
		},
	}
	if err := h.store.UpdateCase(ctx, caseID, fields); err != nil {
		return "", false, fmt.Errorf("update case %s: %w", caseID, err)
	}

	h.l.Infof(ctx, "Stamped offense %d details onto case %s", offenseID, caseID)
	return fmt.Sprintf("Enriched case from offense %d", offenseID), true, nil
}

// importObservables copies the alert's artifacts onto its case as
// observables, draining the creations through the worker pool.
// Artifacts the case already holds are skipped so re-deliveries stay
// idempotent.
func (h *Handler) importObservables(ctx context.Context, event model.WebhookEvent) (string, bool, error) {
	caseID := event.Object.Case
	if caseID == "" {
		return "", false, fmt.Errorf("alert artifacts without case reference")
	}

	existing, err := h.store.GetCaseObservables(ctx, caseID)
	if err != nil {
		return "", false, fmt.Errorf("list case observables: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, o := range existing {
		seen[o.DataType+"\x00"+o.Data] = true
	}

	imported := 0
	batch := h.pool.NewBatch()
	for _, artifact := range event.Details.Artifacts {
		if seen[artifact.DataType+"\x00"+artifact.Data] {
			continue
		}
		imported++
		observable := thehive.Observable{
			DataType: artifact.DataType,
			Data:     artifact.Data,
			Message:  artifact.Message,
			TLP:      artifact.TLP,
			Tags:     artifact.Tags,
		}
		batch.Submit(ctx, func(ctx context.Context) {
			if err := h.store.CreateCaseObservable(ctx, caseID, observable); err != nil {
				h.l.Errorf(ctx, "Could not add observable %s to case %s: %v", observable.Data, caseID, err)
			}
		})
	}
	batch.Wait()

	if imported == 0 {
		h.l.Infof(ctx, "All artifacts already present on case %s", caseID)
		return "", false, nil
	}

	h.l.Infof(ctx, "Imported %d observables onto case %s", imported, caseID)
	return fmt.Sprintf("Imported %d observables", imported), true, nil
}
