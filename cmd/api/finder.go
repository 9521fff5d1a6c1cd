package main

import (
	"context"

	"case-automation/internal/classifier"
	"case-automation/pkg/thehive"
)

// caseAlertFinder adapts the case platform client to the classifier's
// alert lookup.
type caseAlertFinder struct {
	client *thehive.Client
}

func (f *caseAlertFinder) FindAlertsByCase(ctx context.Context, caseID string) ([]classifier.LinkedAlert, error) {
	alerts, err := f.client.FindAlerts(ctx, map[string]any{"case": caseID})
	if err != nil {
		return nil, err
	}

	out := make([]classifier.LinkedAlert, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, classifier.LinkedAlert{
			Source:    alert.Source,
			SourceRef: alert.SourceRef,
		})
	}
	return out, nil
}
