package changedetect

import (
	"context"

	"case-automation/pkg/log"
	"case-automation/pkg/thehive"
)

// Detector compares two versions of an alert so unchanged records are
// not re-submitted to the platform.
type Detector struct {
	l log.Logger
}

// New creates a Detector.
func New(l log.Logger) *Detector {
	return &Detector{l: l}
}

// HasChanged reports whether the candidate alert differs from the
// current one. The volatile date field is skipped. Tags are compared as
// sets; artifacts positionally, assuming the producer emits them in a
// stable order. Other scalar fields are not compared yet.
func (d *Detector) HasChanged(ctx context.Context, current, candidate thehive.Alert) bool {
	if tagsDiffer(current.Tags, candidate.Tags) {
		d.l.Debugf(ctx, "Tag difference detected: %v vs %v", current.Tags, candidate.Tags)
		return true
	}

	if len(current.Artifacts) != len(candidate.Artifacts) {
		d.l.Infof(ctx, "Artifact length mismatch: old %d, new %d",
			len(current.Artifacts), len(candidate.Artifacts))
		return true
	}

	for i := range candidate.Artifacts {
		if artifactDiffers(current.Artifacts[i], candidate.Artifacts[i]) {
			d.l.Debugf(ctx, "Artifact change detected at index %d: %+v vs %+v",
				i, current.Artifacts[i], candidate.Artifacts[i])
			return true
		}
	}

	return false
}

// tagsDiffer computes the symmetric difference of the two tag sets.
func tagsDiffer(current, candidate []string) bool {
	currentSet := toSet(current)
	candidateSet := toSet(candidate)

	for tag := range currentSet {
		if !candidateSet[tag] {
			return true
		}
	}
	for tag := range candidateSet {
		if !currentSet[tag] {
			return true
		}
	}
	return false
}

func toSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[tag] = true
	}
	return set
}

// artifactDiffers compares two same-index observables attribute-wise.
func artifactDiffers(current, candidate thehive.Observable) bool {
	if current.DataType != candidate.DataType ||
		current.Data != candidate.Data ||
		current.Message != candidate.Message ||
		current.TLP != candidate.TLP {
		return true
	}
	return tagsDiffer(current.Tags, candidate.Tags)
}
