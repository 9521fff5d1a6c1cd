package classifier

import (
	"context"
	"strings"

	"case-automation/internal/model"
)

// Classify computes the full Kinds record for an event. It is total:
// absent optional fields count as false, never as an error. The only
// impure part is the case-origin lookup, scoped to this single call.
func (c *Classifier) Classify(ctx context.Context, event model.WebhookEvent) Kinds {
	k := Kinds{
		Alert:       event.ObjectType == model.ObjectTypeAlert,
		Case:        event.ObjectType == model.ObjectTypeCase,
		Artifact:    event.ObjectType == model.ObjectTypeArtifact,
		ArtifactJob: event.ObjectType == model.ObjectTypeArtifactJob,

		New:    event.Operation == model.OperationCreation,
		Update: event.Operation == model.OperationUpdate,
		Delete: event.Operation == model.OperationDelete,

		MarkedAsRead: event.Details.Status == model.StatusIgnored,
		Closed:       event.Details.Status == model.StatusResolved,
		Success:      event.Details.Status == model.StatusSuccess,

		MergedInto:      event.Object.MergeInto != "",
		FromMergedCases: len(event.Object.MergeFrom) > 0,
	}

	k.NewAlert = k.Alert && k.New
	k.ImportedAlert = k.Alert && k.Update && event.Details.Status == model.StatusImported
	k.NewCase = k.Case && k.New

	k.SIEM = c.isSIEM(event)
	k.Intel = c.isIntel(event)

	if k.SIEM {
		k.SIEMAlertImported = k.ImportedAlert
		if k.SIEMAlertImported {
			k.SourceRef = event.Object.SourceRef
		}
		k.SIEMAlertFollowed = k.Alert && k.Update && event.Details.Follow
		k.SIEMAlertWithEvents = k.Alert && len(event.Details.Artifacts) > 0 && event.Object.Case != ""
		k.NewSIEMCase = k.Case && k.New
		k.UpdatedSIEMCase = k.Case && k.Update
	}

	if k.Alert && k.MarkedAsRead && event.Object.Source == c.cfg.SIEMSource {
		k.SIEMAlertMarkedRead = true
		k.SourceRef = event.Object.SourceRef
	}

	if k.Case && k.Closed && !k.MergedInto {
		if ref, ok := c.caseOriginRef(ctx, event); ok {
			k.ClosedSIEMCase = true
			k.SourceRef = ref
		}
	}
	if k.Case && k.Delete {
		if ref, ok := c.caseOriginRef(ctx, event); ok {
			k.DeletedSIEMCase = true
			k.SourceRef = ref
		}
	}

	if k.Intel {
		k.NewIntelAlert = k.NewAlert
		k.NewIntelCase = k.NewCase
		k.NewIntelArtifact = k.Artifact && k.New
	}

	return k
}

// isSIEM checks the configured SIEM marker tag on either payload.
func (c *Classifier) isSIEM(event model.WebhookEvent) bool {
	if c.cfg.SIEMTag == "" {
		return false
	}
	return event.Object.HasTag(c.cfg.SIEMTag) || event.Details.HasTag(c.cfg.SIEMTag)
}

// isIntel checks the configured intel markers: object type, tag
// membership, or a taxonomy tag carrying the configured prefix.
func (c *Classifier) isIntel(event model.WebhookEvent) bool {
	if c.cfg.IntelType != "" && event.Object.Type == c.cfg.IntelType {
		return true
	}
	if c.cfg.IntelTag != "" &&
		(event.Object.HasTag(c.cfg.IntelTag) || event.Details.HasTag(c.cfg.IntelTag)) {
		return true
	}
	if c.cfg.IntelTagPrefix != "" {
		for _, tag := range event.Details.Tags {
			if strings.Contains(tag, c.cfg.IntelTagPrefix) {
				return true
			}
		}
	}
	return false
}

// caseOriginRef resolves whether the case (or any of the cases merged into
// it) was opened from a SIEM alert, returning the SIEM-native reference.
// First match across the merge chain wins.
func (c *Classifier) caseOriginRef(ctx context.Context, event model.WebhookEvent) (string, bool) {
	if c.alerts == nil {
		return "", false
	}

	if ref, ok := c.lookupCase(ctx, event.ObjectID); ok {
		return ref, true
	}

	for _, merged := range event.Object.MergeFrom {
		if ref, ok := c.lookupCase(ctx, merged); ok {
			return ref, true
		}
	}
	return "", false
}

// lookupCase asks the finder for alerts linked to one case id, cached.
func (c *Classifier) lookupCase(ctx context.Context, caseID string) (string, bool) {
	if caseID == "" {
		return "", false
	}
	if ref, ok := c.caseRefs.Get(caseID); ok {
		return ref, ref != ""
	}

	linked, err := c.alerts.FindAlertsByCase(ctx, caseID)
	if err != nil {
		c.l.Warnf(ctx, "Could not look up alerts for case %s: %v", caseID, err)
		return "", false
	}

	// A case opened from an alert has exactly one linked alert.
	if len(linked) == 1 && linked[0].Source == c.cfg.SIEMSource {
		c.caseRefs.Add(caseID, linked[0].SourceRef)
		return linked[0].SourceRef, true
	}

	c.caseRefs.Add(caseID, "")
	return "", false
}
